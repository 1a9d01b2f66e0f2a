package models

import "encoding/json"

// CallType is the direction of a logged call.
type CallType string

const (
	CallIncoming CallType = "incoming"
	CallOutgoing CallType = "outgoing"
	CallMissed   CallType = "missed"
	CallUnknown  CallType = "unknown"
)

// CallLogEntry is one call record. Timestamps are passed through as the
// server or the CSV import supplied them.
type CallLogEntry struct {
	ID               int64    `json:"id,omitempty"`
	PhoneNumber      string   `json:"phoneNumber"`
	CallType         CallType `json:"callType"`
	CallStart        string   `json:"callStart"`
	CallEnd          *string  `json:"callEnd"`
	DurationSeconds  *int     `json:"durationSeconds"`
	LocationLat      *float64 `json:"locationLat"`
	LocationLon      *float64 `json:"locationLon"`
	LocationAccuracy *float64 `json:"locationAccuracy"`
}

// HasLocation reports whether both coordinates are present.
func (c CallLogEntry) HasLocation() bool {
	return c.LocationLat != nil && c.LocationLon != nil
}

// CallLogUpload is the batch body of a call-log import.
type CallLogUpload struct {
	Entries []CallLogEntry `json:"entries"`
}

// UploadAck is the server-defined acknowledgement of a call-log import.
type UploadAck = json.RawMessage
