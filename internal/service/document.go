package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"docvault/internal/ingest"
	"docvault/internal/model"
	"docvault/internal/policy"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

var (
	ErrIDRequired      = errors.New("id is required")
	ErrTitleRequired   = errors.New("title is required")
	ErrReaderNil       = errors.New("reader is nil")
	ErrNotFound        = errors.New("document not found")
	ErrForbidden       = errors.New("permission denied for this document")
	ErrIngestionFailed = errors.New("ingestion failed")
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// CreateDocumentInput carries the caller-supplied document metadata.
type CreateDocumentInput struct {
	Title   string
	Content string
}

// UpdateDocumentInput is a partial patch; nil fields are left untouched.
type UpdateDocumentInput struct {
	Title   *string
	Content *string
	Status  *model.Status
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items      []model.Document `json:"data"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload stores the file bytes in object storage, persists the
	// document with status pending and the caller as its fixed uploader,
	// and rolls the object back if the DB write fails.
	Upload(ctx context.Context, in CreateDocumentInput, r io.Reader, originalFilename, contentType string, size int64, owner *model.User) (*model.Document, error)

	// List returns a page of documents scoped by the caller's role:
	// admins see everything, everyone else only their own uploads.
	List(ctx context.Context, caller *model.User, page, pageSize int) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Update applies the ownership rule against the document's uploader
	// and merges only the provided fields.
	Update(ctx context.Context, id string, patch UpdateDocumentInput, caller *model.User) (*model.Document, error)

	// DownloadURL returns a time-limited presigned URL for the document's
	// stored file.
	DownloadURL(ctx context.Context, id string) (string, error)

	// Delete removes a document permanently from storage and the repository.
	Delete(ctx context.Context, id string) error

	// SetStatus updates only the document's status column. Idempotent.
	SetStatus(ctx context.Context, id string, status model.Status) error

	// TriggerIngestion submits the document's file to the ingestion
	// service and reconciles the reported outcome with document state.
	TriggerIngestion(ctx context.Context, id, path string) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store    storage.Storage
	repo     repository.DocumentRepository
	ingestor ingest.Client
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, ingestor ingest.Client) DocumentService {
	return &documentService{store: store, repo: repo, ingestor: ingestor}
}

func (s *documentService) Upload(ctx context.Context, in CreateDocumentInput, r io.Reader, originalFilename, contentType string, size int64, owner *model.User) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if in.Title == "" {
		return nil, ErrTitleRequired
	}

	// Stored object name is UUID + original extension.
	ext := filepath.Ext(originalFilename)
	key := filepath.ToSlash(filepath.Join("documents", uuid.New().String()+ext))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:         uuid.New().String(),
		Title:      in.Title,
		Content:    in.Content,
		FileURL:    objInfo.Key,
		Status:     model.StatusPending,
		UploadedBy: *owner,
		CreatedAt:  time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// List scopes the page to the caller unless the caller is an admin, and
// computes totalPages = ceil(total / pageSize).
func (s *documentService) List(ctx context.Context, caller *model.User, page, pageSize int) (*DocumentListResult, error) {
	if page <= 0 {
		page = defaultPage
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	pq := repository.PageQuery{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	// Only admin sees everyone's documents; editors are scoped to their
	// own uploads just like viewers.
	if caller.Role.Name != model.RoleAdmin {
		pq.OwnerID = caller.ID
	}

	res, err := s.repo.List(ctx, pq)
	if err != nil {
		return nil, err
	}
	totalPages := (res.Total + pageSize - 1) / pageSize
	return &DocumentListResult{
		Items:      res.Items,
		Total:      res.Total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, id string, patch UpdateDocumentInput, caller *model.User) (*model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.DecideOwnership(caller, policy.DocumentUpdate, doc.UploadedBy.ID); err != nil {
		return nil, ErrForbidden
	}

	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Content != nil {
		doc.Content = *patch.Content
	}
	if patch.Status != nil {
		doc.Status = *patch.Status
	}

	updated, err := s.repo.Update(ctx, doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// downloadURLTTL bounds how long a presigned link stays valid.
const downloadURLTTL = 15 * time.Minute

func (s *documentService) DownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, doc.FileURL, downloadURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return url, nil
}

// Delete removes the stored object first, then the record.
func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// If the storage delete fails the DB row is kept, so the object
	// reference is not lost.
	if err := s.store.Delete(ctx, doc.FileURL); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

func (s *documentService) SetStatus(ctx context.Context, id string, status model.Status) error {
	if id == "" {
		return ErrIDRequired
	}
	return s.repo.SetStatus(ctx, id, status)
}

// TriggerIngestion drives the pending → processed transition. A failed
// invocation surfaces ErrIngestionFailed and leaves the stored status
// untouched; a response other than "processed" also leaves the document
// pending, with no retry scheduled here.
func (s *documentService) TriggerIngestion(ctx context.Context, id, path string) error {
	status, err := s.ingestor.Ingest(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIngestionFailed, err)
	}
	if status != ingest.StatusProcessed {
		return nil
	}
	return s.SetStatus(ctx, id, model.StatusProcessed)
}
