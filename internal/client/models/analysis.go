package models

import (
	"encoding/json"

	"github.com/nyakeriga/geoforensics-web-ui/internal/timex"
)

// JobStatus is the server-side lifecycle of an analysis run.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the job will not change any more.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// EvidenceType classifies an evidence item. The set is open-ended; the
// backend may send types this client does not know.
type EvidenceType string

const (
	EvidenceEXIF        EvidenceType = "exif"
	EvidenceVisual      EvidenceType = "visual"
	EvidenceAIDetect    EvidenceType = "ai_detect"
	EvidenceFingerprint EvidenceType = "fingerprint"
)

// Location is an inferred capture position.
type Location struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Confidence float64 `json:"confidence"`
}

// EvidenceItem is one signal contributing to a job's confidence.
// Details is kept opaque.
type EvidenceItem struct {
	Type        EvidenceType    `json:"type"`
	Source      string          `json:"source"`
	Confidence  float64         `json:"confidence"`
	Details     json.RawMessage `json:"details,omitempty"`
	Explanation string          `json:"explanation"`
}

// AnalysisJob is one forensic-analysis run over a single image.
type AnalysisJob struct {
	ID                       int64            `json:"id"`
	ImageID                  int64            `json:"image_id"`
	Status                   JobStatus        `json:"status"`
	StartedAt                timex.Timestamp  `json:"startedAt"`
	CompletedAt              *timex.Timestamp `json:"completedAt,omitempty"`
	ConfidenceScore          *float64         `json:"confidenceScore,omitempty"`
	EstimatedLocation        *Location        `json:"estimatedLocation,omitempty"`
	EvidenceItems            []EvidenceItem   `json:"evidenceItems"`
	HumanReadableExplanation *string          `json:"humanReadableExplanation,omitempty"`
	ProcessingTimeSeconds    *float64         `json:"processingTimeSeconds,omitempty"`
}

// AnalyzeRequest is the body of an analysis submission.
type AnalyzeRequest struct {
	ImageID       int64    `json:"image_id"`
	AnalysisTypes []string `json:"analysis_types"`
}

// AnalysisSummary holds server-computed aggregate counters.
type AnalysisSummary struct {
	TotalImages           int      `json:"totalImages"`
	ProcessedImages       int      `json:"processedImages"`
	PendingAnalyses       int      `json:"pendingAnalyses"`
	FailedAnalyses        int      `json:"failedAnalyses"`
	AverageProcessingTime *float64 `json:"averageProcessingTime,omitempty"`
	SuccessRate           float64  `json:"successRate"`
}
