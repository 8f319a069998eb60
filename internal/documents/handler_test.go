package documents_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/bootstrap"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/config"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:3000"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func uploadFile(t *testing.T, router *gin.Engine, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestDocumentsUploadListGetDelete(t *testing.T) {
	router := newTestRouter(t)

	resp := uploadFile(t, router, "rfp.txt", []byte("City of Springfield RFP for IT services"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		DocumentID string `json:"documentId"`
		FileName   string `json:"fileName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.DocumentID == "" {
		t.Fatalf("expected documentId, got empty")
	}
	if created.FileName != "rfp.txt" {
		t.Fatalf("expected fileName rfp.txt, got %s", created.FileName)
	}

	// List shows it.
	reqList := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	addGuestHeader(reqList)
	respList := httptest.NewRecorder()
	router.ServeHTTP(respList, reqList)
	if respList.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respList.Code)
	}
	var listed []struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(respList.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed) != 1 || listed[0].DocumentID != created.DocumentID {
		t.Fatalf("expected one listed document matching upload, got %+v", listed)
	}

	// Get by id.
	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocumentID, nil)
	addGuestHeader(reqGet)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respGet.Code)
	}

	// Delete.
	reqDel := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/"+created.DocumentID, nil)
	addGuestHeader(reqDel)
	respDel := httptest.NewRecorder()
	router.ServeHTTP(respDel, reqDel)
	if respDel.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respDel.Code)
	}

	// Gone afterwards.
	reqGone := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocumentID, nil)
	addGuestHeader(reqGone)
	respGone := httptest.NewRecorder()
	router.ServeHTTP(respGone, reqGone)
	if respGone.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", respGone.Code)
	}
}

func TestDocumentsUploadRejectsUnsupportedType(t *testing.T) {
	router := newTestRouter(t)

	resp := uploadFile(t, router, "malware.exe", []byte{0x4d, 0x5a})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestDocumentsOwnershipIsolation(t *testing.T) {
	router := newTestRouter(t)

	resp := uploadFile(t, router, "rfp.txt", []byte("hello"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	var created struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	// Another guest cannot see the document.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocumentID, nil)
	req.Header.Set("X-Guest-Id", "other-guest")
	other := httptest.NewRecorder()
	router.ServeHTTP(other, req)
	if other.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for other guest, got %d", other.Code)
	}
}

func TestDocumentsStatsOverview(t *testing.T) {
	router := newTestRouter(t)

	for _, name := range []string{"a.txt", "b.txt"} {
		resp := uploadFile(t, router, name, []byte("content"))
		if resp.Code != http.StatusCreated {
			t.Fatalf("upload %s: expected 201, got %d", name, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/stats/overview", nil)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var stats struct {
		TotalDocuments int   `json:"totalDocuments"`
		TotalSizeBytes int64 `json:"totalSizeBytes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalDocuments != 2 {
		t.Fatalf("expected 2 documents, got %d", stats.TotalDocuments)
	}
	if stats.TotalSizeBytes == 0 {
		t.Fatalf("expected non-zero total size")
	}
}

func TestDocumentsPrepareReportsReadiness(t *testing.T) {
	router := newTestRouter(t)

	resp := uploadFile(t, router, "rfp.txt", []byte("scope of work and timelines"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	var created struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+created.DocumentID+"/prepare", nil)
	addGuestHeader(req)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var prep struct {
		Ready       bool   `json:"ready"`
		Kind        string `json:"kind"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&prep); err != nil {
		t.Fatalf("decode prepare response: %v", err)
	}
	if !prep.Ready {
		t.Fatalf("expected document to be ready")
	}
	if prep.Description == "" {
		t.Fatalf("expected a type description")
	}

	// Unknown id is a 404.
	reqMissing := httptest.NewRequest(http.MethodPost, "/api/v1/documents/no-such-id/prepare", nil)
	addGuestHeader(reqMissing)
	recMissing := httptest.NewRecorder()
	router.ServeHTTP(recMissing, reqMissing)
	if recMissing.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", recMissing.Code)
	}
}

func TestDocumentsDownloadReturnsContent(t *testing.T) {
	router := newTestRouter(t)

	content := []byte("exact bytes back")
	resp := uploadFile(t, router, "rfp.txt", content)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	var created struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocumentID+"/download", nil)
	addGuestHeader(req)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Fatalf("expected downloaded bytes to match upload")
	}
	if cd := rec.Header().Get("Content-Disposition"); cd == "" {
		t.Fatalf("expected a Content-Disposition header")
	}
}

func addGuestHeader(req *http.Request) {
	req.Header.Set("X-Guest-Id", "test-guest")
}
