package models

import "github.com/nyakeriga/geoforensics-web-ui/internal/timex"

// ImageAsset is an uploaded image as stored by the backend.
type ImageAsset struct {
	ID                    int64            `json:"id"`
	Filename              string           `json:"filename"`
	OriginalFilename      string           `json:"original_filename"`
	FileSizeBytes         int64            `json:"file_size"`
	MimeType              string           `json:"mime_type"`
	UploadedAt            timex.Timestamp  `json:"uploaded_at"`
	IsProcessed           bool             `json:"is_processed"`
	ProcessingStartedAt   *timex.Timestamp `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *timex.Timestamp `json:"processing_completed_at,omitempty"`
}

// ImageUpload is an image file about to be sent to the backend.
type ImageUpload struct {
	Filename string
	MimeType string
	Data     []byte
}
