package model

import (
	"fmt"
	"time"
)

// Status is a document's lifecycle state. A document starts as
// StatusPending and is moved to StatusProcessed by the ingestion
// coordinator. StatusFailed is a valid stored value but the coordinator
// never writes it; an ingestion error is surfaced to its caller instead.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// ParseStatus validates a raw status string from a request body.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessed, StatusFailed:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Document represents an uploaded file and its metadata.
// UploadedBy is fixed at creation; a document has exactly one uploader
// for its whole life. FileURL is set at creation and never empty.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	FileURL    string    `json:"file_url"`
	Status     Status    `json:"status"`
	UploadedBy User      `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}
