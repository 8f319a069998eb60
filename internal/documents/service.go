package documents

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/storage/object"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/telemetry"
)

// allowedExtensions are the upload formats the analysis pipeline understands.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// ResultsPurger removes analysis results that reference a document. It is
// implemented by the analysis service.
type ResultsPurger interface {
	DeleteByDocument(ctx context.Context, userId, documentID string) (int, error)
}

// Service contains business logic for documents.
type Service struct {
	Store   object.ObjectStore
	Repo    DocumentsRepo
	Purgers []ResultsPurger
}

// Upload saves the file to object storage and records the document.
func (s *Service) Upload(ctx context.Context, userId, fileName, uploadedFrom string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return Document{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userId, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:           uuid.NewString(),
		UserID:       userId,
		FileName:     fileName,
		OriginalName: fileName,
		MimeType:     mimeType,
		SizeBytes:    size,
		UploadedFrom: uploadedFrom,
		StorageKey:   storageKey,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return doc, nil
}

// Get returns a document owned by the user.
func (s *Service) Get(ctx context.Context, userId, documentID string) (Document, error) {
	if userId == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userId, documentID)
}

// List returns documents for a user, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if userId == "" {
		return nil, errors.New("user id required")
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// Delete removes the document record and its stored object. A failure to
// remove the object is logged but does not fail the request.
func (s *Service) Delete(ctx context.Context, userId, documentID string) error {
	doc, err := s.Repo.GetByID(ctx, userId, documentID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, userId, documentID); err != nil {
		return err
	}
	if doc.StorageKey != "" {
		if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
			telemetry.Warn("documents.object_delete_failed", map[string]any{
				"documentId": doc.ID,
				"error":      err.Error(),
			})
		}
	}
	for _, p := range s.Purgers {
		n, err := p.DeleteByDocument(ctx, userId, documentID)
		if err != nil {
			telemetry.Warn("documents.dependent_purge_failed", map[string]any{
				"documentId": doc.ID,
				"error":      err.Error(),
			})
			continue
		}
		if n > 0 {
			telemetry.Info("documents.dependents_purged", map[string]any{
				"documentId": doc.ID,
				"purged":     n,
			})
		}
	}
	return nil
}

// Stats aggregates the user's document holdings.
func (s *Service) Stats(ctx context.Context, userId string) (Stats, error) {
	if userId == "" {
		return Stats{}, errors.New("user id required")
	}
	return s.Repo.StatsByUser(ctx, userId)
}

// Open streams the stored object for a document owned by the user.
func (s *Service) Open(ctx context.Context, userId, documentID string) (Document, io.ReadCloser, error) {
	doc, err := s.Repo.GetByID(ctx, userId, documentID)
	if err != nil {
		return Document{}, nil, err
	}
	rc, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, rc, nil
}
