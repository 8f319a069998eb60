package docprep

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/storage/object"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/telemetry"
)

const (
	mimePDF = "application/pdf"

	// DefaultMaxSizeBytes is the ceiling applied when none is configured.
	DefaultMaxSizeBytes = 25 << 20 // 25MB
)

var (
	ErrDocumentTooLarge   = errors.New("document exceeds the maximum allowed size")
	ErrDocumentUnreadable = errors.New("document could not be read")
)

var typeDescriptions = map[string]string{
	mimePDF:              "PDF document, text extracted per page",
	"application/msword": "Word document, attached for direct reading",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "Word document, attached for direct reading",
	"text/plain":    "Plain text document",
	"text/markdown": "Markdown document",
	"image/png":     "PNG image, attached for visual analysis",
	"image/jpeg":    "JPEG image, attached for visual analysis",
	"image/webp":    "WebP image, attached for visual analysis",
}

// TypeDescription returns a human-readable label for a supported mime type.
func TypeDescription(mimeType string) string {
	if d, ok := typeDescriptions[mimeType]; ok {
		return d
	}
	return "Unrecognized file type, attached as-is"
}

// Kind tags which representation a PreparedDocument carries.
type Kind string

const (
	KindText   Kind = "text"
	KindBase64 Kind = "base64"
)

// PreparedDocument is the in-memory, AI-consumable form of a stored file.
// Exactly one representation is populated, tagged by Kind: text documents
// carry Content and PageCount, base64 documents carry Content and SizeBytes.
type PreparedDocument struct {
	Kind      Kind
	Name      string
	MimeType  string
	Content   string
	PageCount int
	SizeBytes int64
}

// Preparer converts stored files into prepared documents.
type Preparer struct {
	Store        object.ObjectStore
	MaxSizeBytes int64
}

// NewPreparer constructs a Preparer with the given size ceiling.
func NewPreparer(store object.ObjectStore, maxSizeBytes int64) *Preparer {
	if maxSizeBytes <= 0 {
		maxSizeBytes = DefaultMaxSizeBytes
	}
	return &Preparer{Store: store, MaxSizeBytes: maxSizeBytes}
}

// Prepare reads the stored object and converts it: PDFs become extracted
// text, everything else is base64-encoded. The size ceiling is enforced on
// the actual bytes read, not the recorded size.
func (p *Preparer) Prepare(ctx context.Context, storageKey, mimeType, name string) (PreparedDocument, error) {
	if err := ctx.Err(); err != nil {
		return PreparedDocument{}, err
	}

	body, err := p.Store.Open(ctx, storageKey)
	if err != nil {
		return PreparedDocument{}, fmt.Errorf("%w: %s", ErrDocumentUnreadable, err.Error())
	}
	defer body.Close()

	limited := io.LimitReader(body, p.MaxSizeBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return PreparedDocument{}, fmt.Errorf("%w: %s", ErrDocumentUnreadable, err.Error())
	}
	if int64(len(data)) > p.MaxSizeBytes {
		return PreparedDocument{}, ErrDocumentTooLarge
	}

	normalized := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if normalized == mimePDF {
		content, pages, err := extractPDFText(data, name)
		if err != nil {
			return PreparedDocument{}, err
		}
		return PreparedDocument{
			Kind:      KindText,
			Name:      name,
			MimeType:  normalized,
			Content:   content,
			PageCount: pages,
		}, nil
	}

	if strings.HasPrefix(normalized, "text/") {
		return PreparedDocument{
			Kind:      KindText,
			Name:      name,
			MimeType:  normalized,
			Content:   string(data),
			PageCount: 1,
		}, nil
	}

	return PreparedDocument{
		Kind:      KindBase64,
		Name:      name,
		MimeType:  normalized,
		Content:   base64.StdEncoding.EncodeToString(data),
		SizeBytes: int64(len(data)),
	}, nil
}

// extractPDFText pulls text page by page. A page that fails to yield text is
// logged and skipped rather than aborting the extraction; an image-only PDF
// therefore yields empty content, not an error.
func extractPDFText(data []byte, name string) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s", ErrDocumentUnreadable, err.Error())
	}

	total := reader.NumPage()
	var pages []string
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := extractPageText(page)
		if err != nil {
			telemetry.Warn("docprep.page_skipped", map[string]any{
				"document": name,
				"page":     i,
				"error":    err.Error(),
			})
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return strings.Join(pages, "\n\n"), total, nil
}

func extractPageText(page pdf.Page) (text string, err error) {
	// The pdf package panics on some malformed pages.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page extraction panicked: %v", r)
		}
	}()
	return page.GetPlainText(nil)
}

// IsImage reports whether the prepared document can be attached as an inline image.
func (d PreparedDocument) IsImage() bool {
	return d.Kind == KindBase64 && strings.HasPrefix(d.MimeType, "image/")
}

// DataURL renders a base64 document as a data URL for multimodal attachments.
func (d PreparedDocument) DataURL() string {
	return "data:" + d.MimeType + ";base64," + d.Content
}
