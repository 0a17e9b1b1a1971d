package model

import "time"

// JobStatus is the lifecycle state of an upload job.
type JobStatus string

const (
	// JobStatusPendingUpload is set when the upload slot is issued.
	JobStatusPendingUpload JobStatus = "PENDING_UPLOAD"
	// JobStatusUploaded is set once the object lands in storage. It is terminal.
	JobStatusUploaded JobStatus = "UPLOADED"
)

// DefaultContentType is used when the client does not supply one.
const DefaultContentType = "application/octet-stream"

// Job is the record tracked for every upload slot.
// Both record stores map it to their own column or attribute names.
type Job struct {
	ID          string    `json:"jobId"`
	Status      JobStatus `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
}
