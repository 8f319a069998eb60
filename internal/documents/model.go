package documents

import "time"

// Document represents an uploaded document owned by a user.
type Document struct {
	ID           string
	UserID       string
	FileName     string
	OriginalName string
	MimeType     string
	SizeBytes    int64
	UploadedFrom string
	StorageKey   string
	CreatedAt    time.Time
}

// Stats aggregates a user's document holdings.
type Stats struct {
	TotalDocuments int            `json:"totalDocuments"`
	TotalSizeBytes int64          `json:"totalSizeBytes"`
	ByMimeType     map[string]int `json:"byMimeType"`
}
