package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	ingestMocks "docvault/internal/ingest/mocks"
	"docvault/internal/model"
	"docvault/internal/repository"
	repoMocks "docvault/internal/repository/mocks"
	"docvault/internal/storage"
	storageMocks "docvault/internal/storage/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func adminCaller() *model.User {
	return &model.User{
		ID:    uuid.New().String(),
		Email: "admin@example.com",
		Role:  model.Role{ID: uuid.New().String(), Name: model.RoleAdmin},
	}
}

func editorCaller() *model.User {
	return &model.User{
		ID:    uuid.New().String(),
		Email: "editor@example.com",
		Role:  model.Role{ID: uuid.New().String(), Name: model.RoleEditor},
	}
}

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()
	owner := editorCaller()

	t.Run("success", func(t *testing.T) {
		mockStore := new(storageMocks.MockStorage)
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(mockStore, mockRepo, nil)

		mockStore.On("Put", ctx, mock.AnythingOfType("string"), mock.Anything, mock.Anything).
			Return(func(_ context.Context, key string, _ io.Reader, _ storage.PutOptions) storage.ObjectInfo {
				return storage.ObjectInfo{Key: key, Size: 11}
			}, nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*model.Document")).
			Return(func(_ context.Context, d *model.Document) *model.Document { return d }, nil).Once()

		in := CreateDocumentInput{Title: "Quarterly Report", Content: "numbers"}
		doc, err := svc.Upload(ctx, in, strings.NewReader("hello world"), "report.pdf", "application/pdf", 11, owner)

		assert.NoError(t, err)
		assert.Equal(t, "Quarterly Report", doc.Title)
		assert.Equal(t, model.StatusPending, doc.Status)
		assert.Equal(t, owner.ID, doc.UploadedBy.ID)
		assert.True(t, strings.HasPrefix(doc.FileURL, "documents/"))
		assert.True(t, strings.HasSuffix(doc.FileURL, ".pdf"))
		mockStore.AssertExpectations(t)
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing title", func(t *testing.T) {
		svc := NewDocumentService(new(storageMocks.MockStorage), new(repoMocks.MockDocumentRepository), nil)

		_, err := svc.Upload(ctx, CreateDocumentInput{}, strings.NewReader("x"), "a.txt", "text/plain", 1, owner)

		assert.ErrorIs(t, err, ErrTitleRequired)
	})

	t.Run("nil reader", func(t *testing.T) {
		svc := NewDocumentService(new(storageMocks.MockStorage), new(repoMocks.MockDocumentRepository), nil)

		_, err := svc.Upload(ctx, CreateDocumentInput{Title: "t"}, nil, "a.txt", "text/plain", 1, owner)

		assert.ErrorIs(t, err, ErrReaderNil)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockStore := new(storageMocks.MockStorage)
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(mockStore, mockRepo, nil)

		mockStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{}, errors.New("minio down")).Once()

		_, err := svc.Upload(ctx, CreateDocumentInput{Title: "t"}, strings.NewReader("x"), "a.txt", "text/plain", 1, owner)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "upload to storage")
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("db failure rolls back storage", func(t *testing.T) {
		mockStore := new(storageMocks.MockStorage)
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(mockStore, mockRepo, nil)

		var storedKey string
		mockStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(func(_ context.Context, key string, _ io.Reader, _ storage.PutOptions) storage.ObjectInfo {
				storedKey = key
				return storage.ObjectInfo{Key: key}
			}, nil).Once()
		mockRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db error")).Once()
		mockStore.On("Delete", ctx, mock.AnythingOfType("string")).Return(nil).Once()

		_, err := svc.Upload(ctx, CreateDocumentInput{Title: "t"}, strings.NewReader("x"), "a.txt", "text/plain", 1, owner)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "db save failed")
		mockStore.AssertCalled(t, "Delete", ctx, storedKey)
	})
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("admin sees all documents", func(t *testing.T) {
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, mockRepo, nil)

		mockRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.Document]{
				Items: []model.Document{{ID: "a"}, {ID: "b"}},
				Total: 25,
			}, nil).Once()

		res, err := svc.List(ctx, adminCaller(), 1, 10)

		assert.NoError(t, err)
		assert.Equal(t, 25, res.Total)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, 3, res.TotalPages)
		mockRepo.AssertExpectations(t)
	})

	t.Run("editor is scoped to own uploads", func(t *testing.T) {
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, mockRepo, nil)
		caller := editorCaller()

		mockRepo.On("List", ctx, repository.PageQuery{Limit: 5, Offset: 5, OwnerID: caller.ID}).
			Return(&repository.PageResult[model.Document]{
				Items: []model.Document{{ID: "mine"}},
				Total: 6,
			}, nil).Once()

		res, err := svc.List(ctx, caller, 2, 5)

		assert.NoError(t, err)
		assert.Equal(t, 2, res.Page)
		assert.Equal(t, 2, res.TotalPages)
		mockRepo.AssertExpectations(t)
	})

	t.Run("defaults for out-of-range paging", func(t *testing.T) {
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, mockRepo, nil)

		mockRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.Document]{Items: []model.Document{}, Total: 0}, nil).Once()

		res, err := svc.List(ctx, adminCaller(), 0, -3)

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, 0, res.TotalPages)
		assert.Empty(t, res.Items)
	})
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(repoMocks.MockDocumentRepository)
	svc := NewDocumentService(nil, mockRepo, nil)

	t.Run("success", func(t *testing.T) {
		doc := &model.Document{ID: "doc-id", Title: "t"}
		mockRepo.On("FindByID", ctx, "doc-id").Return(doc, nil).Once()

		got, err := svc.Get(ctx, "doc-id")

		assert.NoError(t, err)
		assert.Equal(t, doc, got)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows).Once()

		_, err := svc.Get(ctx, "missing")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestDocumentService_Update(t *testing.T) {
	ctx := context.Background()

	newDoc := func(ownerID string) *model.Document {
		return &model.Document{
			ID:         "doc-id",
			Title:      "original",
			Content:    "body",
			Status:     model.StatusPending,
			UploadedBy: model.User{ID: ownerID},
		}
	}

	t.Run("owner can update", func(t *testing.T) {
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, mockRepo, nil)
		caller := editorCaller()

		mockRepo.On("FindByID", ctx, "doc-id").Return(newDoc(caller.ID), nil).Once()
		mockRepo.On("Update", ctx, mock.MatchedBy(func(d *model.Document) bool {
			return d.Title == "renamed" && d.Content == "body" && d.Status == model.StatusPending
		})).Return(func(_ context.Context, d *model.Document) *model.Document { return d }, nil).Once()

		title := "renamed"
		got, err := svc.Update(ctx, "doc-id", UpdateDocumentInput{Title: &title}, caller)

		assert.NoError(t, err)
		assert.Equal(t, "renamed", got.Title)
		mockRepo.AssertExpectations(t)
	})

	t.Run("admin can update someone else's document", func(t *testing.T) {
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, mockRepo, nil)

		mockRepo.On("FindByID", ctx, "doc-id").Return(newDoc("someone-else"), nil).Once()
		status := model.StatusProcessed
		mockRepo.On("Update", ctx, mock.MatchedBy(func(d *model.Document) bool {
			return d.Status == model.StatusProcessed
		})).Return(func(_ context.Context, d *model.Document) *model.Document { return d }, nil).Once()

		got, err := svc.Update(ctx, "doc-id", UpdateDocumentInput{Status: &status}, adminCaller())

		assert.NoError(t, err)
		assert.Equal(t, model.StatusProcessed, got.Status)
	})

	t.Run("editor cannot update someone else's document", func(t *testing.T) {
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, mockRepo, nil)

		mockRepo.On("FindByID", ctx, "doc-id").Return(newDoc("someone-else"), nil).Once()

		title := "stolen"
		_, err := svc.Update(ctx, "doc-id", UpdateDocumentInput{Title: &title}, editorCaller())

		assert.ErrorIs(t, err, ErrForbidden)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(nil, mockRepo, nil)

		mockRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows).Once()

		title := "x"
		_, err := svc.Update(ctx, "missing", UpdateDocumentInput{Title: &title}, adminCaller())

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentService_DownloadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockStore := new(storageMocks.MockStorage)
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(mockStore, mockRepo, nil)

		doc := &model.Document{ID: "doc-id", FileURL: "documents/doc.pdf"}
		mockRepo.On("FindByID", ctx, "doc-id").Return(doc, nil).Once()
		mockStore.On("PresignGet", ctx, "documents/doc.pdf", mock.AnythingOfType("time.Duration")).
			Return("https://minio.local/docvault/documents/doc.pdf?sig=abc", nil).Once()

		url, err := svc.DownloadURL(ctx, "doc-id")

		assert.NoError(t, err)
		assert.Contains(t, url, "documents/doc.pdf")
		mockStore.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(new(storageMocks.MockStorage), mockRepo, nil)

		mockRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows).Once()

		_, err := svc.DownloadURL(ctx, "missing")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("presign failure", func(t *testing.T) {
		mockStore := new(storageMocks.MockStorage)
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(mockStore, mockRepo, nil)

		doc := &model.Document{ID: "doc-id", FileURL: "documents/doc.pdf"}
		mockRepo.On("FindByID", ctx, "doc-id").Return(doc, nil).Once()
		mockStore.On("PresignGet", ctx, "documents/doc.pdf", mock.AnythingOfType("time.Duration")).
			Return("", errors.New("minio down")).Once()

		_, err := svc.DownloadURL(ctx, "doc-id")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "presign download")
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockStore := new(storageMocks.MockStorage)
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(mockStore, mockRepo, nil)

		doc := &model.Document{ID: "doc-id", FileURL: "documents/doc.pdf"}
		mockRepo.On("FindByID", ctx, "doc-id").Return(doc, nil).Once()
		mockStore.On("Delete", ctx, "documents/doc.pdf").Return(nil).Once()
		mockRepo.On("Delete", ctx, "doc-id").Return(nil).Once()

		err := svc.Delete(ctx, "doc-id")

		assert.NoError(t, err)
		mockStore.AssertExpectations(t)
		mockRepo.AssertExpectations(t)
	})

	t.Run("storage failure keeps the record", func(t *testing.T) {
		mockStore := new(storageMocks.MockStorage)
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(mockStore, mockRepo, nil)

		doc := &model.Document{ID: "doc-id", FileURL: "documents/doc.pdf"}
		mockRepo.On("FindByID", ctx, "doc-id").Return(doc, nil).Once()
		mockStore.On("Delete", ctx, "documents/doc.pdf").Return(errors.New("minio down")).Once()

		err := svc.Delete(ctx, "doc-id")

		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(repoMocks.MockDocumentRepository)
		svc := NewDocumentService(new(storageMocks.MockStorage), mockRepo, nil)

		mockRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows).Once()

		err := svc.Delete(ctx, "missing")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentService_SetStatus(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(repoMocks.MockDocumentRepository)
	svc := NewDocumentService(nil, mockRepo, nil)

	t.Run("success", func(t *testing.T) {
		mockRepo.On("SetStatus", ctx, "doc-id", model.StatusProcessed).Return(nil).Once()

		err := svc.SetStatus(ctx, "doc-id", model.StatusProcessed)

		assert.NoError(t, err)
	})

	t.Run("repeat write is passed through unchanged", func(t *testing.T) {
		mockRepo.On("SetStatus", ctx, "doc-id", model.StatusProcessed).Return(nil).Twice()

		assert.NoError(t, svc.SetStatus(ctx, "doc-id", model.StatusProcessed))
		assert.NoError(t, svc.SetStatus(ctx, "doc-id", model.StatusProcessed))
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty id", func(t *testing.T) {
		err := svc.SetStatus(ctx, "", model.StatusProcessed)
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestDocumentService_TriggerIngestion(t *testing.T) {
	ctx := context.Background()

	t.Run("processed outcome updates status", func(t *testing.T) {
		mockRepo := new(repoMocks.MockDocumentRepository)
		mockIngest := new(ingestMocks.MockClient)
		svc := NewDocumentService(nil, mockRepo, mockIngest)

		mockIngest.On("Ingest", ctx, "documents/doc.pdf").Return("processed", nil).Once()
		mockRepo.On("SetStatus", ctx, "doc-id", model.StatusProcessed).Return(nil).Once()

		err := svc.TriggerIngestion(ctx, "doc-id", "documents/doc.pdf")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockIngest.AssertExpectations(t)
	})

	t.Run("other outcome leaves document pending", func(t *testing.T) {
		mockRepo := new(repoMocks.MockDocumentRepository)
		mockIngest := new(ingestMocks.MockClient)
		svc := NewDocumentService(nil, mockRepo, mockIngest)

		mockIngest.On("Ingest", ctx, "documents/doc.pdf").Return("queued", nil).Once()

		err := svc.TriggerIngestion(ctx, "doc-id", "documents/doc.pdf")

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ingestion failure leaves status untouched", func(t *testing.T) {
		mockRepo := new(repoMocks.MockDocumentRepository)
		mockIngest := new(ingestMocks.MockClient)
		svc := NewDocumentService(nil, mockRepo, mockIngest)

		mockIngest.On("Ingest", ctx, "documents/doc.pdf").Return("", errors.New("connection refused")).Once()

		err := svc.TriggerIngestion(ctx, "doc-id", "documents/doc.pdf")

		assert.ErrorIs(t, err, ErrIngestionFailed)
		mockRepo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
