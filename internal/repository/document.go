package repository

import (
	"context"

	"docvault/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row,
	// including values set by database defaults.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID with its uploader resolved.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a page of documents ordered by creation time descending
	// and the total row count for the same filter. PageQuery.OwnerID
	// restricts the result to one uploader when set.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Update persists the document's title, content and status.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Delete removes a document by ID permanently.
	Delete(ctx context.Context, id string) error

	// SetStatus updates only the status column, leaving other fields
	// untouched. Writing the current status again is a no-op.
	SetStatus(ctx context.Context, id string, status model.Status) error
}
