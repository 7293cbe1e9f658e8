package postgres

import (
	"context"
	"database/sql"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// The uploader join deliberately skips the users.deleted_at filter:
// documents keep displaying their original uploader after the account is
// soft-deleted.
const docColumns = `
	d.id, d.title, d.content, d.file_url, d.status, d.created_at,
	u.id, u.email, u.is_active, r.id, r.name`

const docJoins = `
	FROM documents d
	JOIN users u ON u.id = d.uploaded_by
	JOIN roles r ON r.id = u.role_id`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Content,
		&d.FileURL,
		&d.Status,
		&d.CreatedAt,
		&d.UploadedBy.ID,
		&d.UploadedBy.Email,
		&d.UploadedBy.IsActive,
		&d.UploadedBy.Role.ID,
		&d.UploadedBy.Role.Name,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
// The uploader fields come from the document passed in; only column
// values set by database defaults are read back.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, title, content, file_url, status, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, title, content, file_url, status, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Content,
		doc.FileURL,
		doc.Status,
		doc.UploadedBy.ID,
		doc.CreatedAt,
	)
	out := *doc
	if err := row.Scan(
		&out.ID,
		&out.Title,
		&out.Content,
		&out.FileURL,
		&out.Status,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single document with its uploader and role resolved.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT` + docColumns + docJoins + ` WHERE d.id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
// When pq.OwnerID is set both the count and the page are scoped to that
// uploader.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	var (
		total int
		err   error
	)
	if pq.OwnerID != "" {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE uploaded_by = $1`, pq.OwnerID).Scan(&total)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&total)
	}
	if err != nil {
		return nil, err
	}

	q := `SELECT` + docColumns + docJoins
	args := []any{}
	if pq.OwnerID != "" {
		q += ` WHERE d.uploaded_by = $3`
		args = append(args, pq.Limit, pq.Offset, pq.OwnerID)
	} else {
		args = append(args, pq.Limit, pq.Offset)
	}
	q += ` ORDER BY d.created_at DESC, d.id DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Update persists the mutable columns and returns the updated row.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET title = $2, content = $3, status = $4
		WHERE id = $1
		RETURNING id, title, content, file_url, status, created_at
	`
	row := r.db.QueryRowContext(ctx, q, doc.ID, doc.Title, doc.Content, doc.Status)
	out := *doc
	if err := row.Scan(
		&out.ID,
		&out.Title,
		&out.Content,
		&out.FileURL,
		&out.Status,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// SetStatus updates only the status column. Setting the same status twice
// leaves the row observably unchanged.
func (r *DocumentPostgres) SetStatus(ctx context.Context, id string, status model.Status) error {
	const q = `UPDATE documents SET status = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, status)
	return err
}
