package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/client"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/models"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/state"
	"github.com/nyakeriga/geoforensics-web-ui/internal/logging"
)

// FetchMode decides which of several racing responses for the current job
// ends up in the store.
type FetchMode int

const (
	// Faithful applies responses in the order they arrive.
	Faithful FetchMode = iota
	// Sequenced applies a response only if no newer request for the
	// current job was issued after it.
	Sequenced
)

const (
	DefaultMaxUploadBytes int64 = 50 << 20
	DefaultPollInterval         = 2 * time.Second

	currentJobKey = "current_job"

	msgUploadFailed        = "Upload failed"
	msgAnalysisFailed      = "Analysis failed"
	msgFetchAnalysisFailed = "Failed to fetch analysis"
	msgFetchSummaryFailed  = "Failed to fetch summary"
	msgFetchCallLogsFailed = "Failed to fetch call logs"
	msgCallLogUploadFailed = "Failed to upload call logs"
)

// AllowedImageTypes are the MIME types UploadImage accepts.
var AllowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/tiff", "image/bmp"}

// CallLogUploadResult describes a submitted call-log batch.
type CallLogUploadResult struct {
	Submitted int
	// Dropped counts entries without a phone number that were not sent.
	Dropped int
	Ack     models.UploadAck
}

// JobTracker follows images through upload and analysis and keeps the
// call-log and summary views.
//
// Operations block until the server answers. Run them on separate
// goroutines to overlap them; the in-flight flags stay true until the last
// overlapping call of their kind has returned.
type JobTracker struct {
	api   client.Client
	store *state.Store[JobState]
	seq   *state.Sequencer
	log   logging.Logger

	mode           FetchMode
	maxUploadBytes int64
	pollInterval   time.Duration
}

// JobOption configures a JobTracker built by NewJobTracker.
type JobOption func(*JobTracker)

// WithFetchMode selects how concurrent job fetches are ordered. The
// default is Faithful.
func WithFetchMode(m FetchMode) JobOption {
	return func(j *JobTracker) { j.mode = m }
}

// WithMaxUploadBytes sets the upload size ceiling. Non-positive values
// keep DefaultMaxUploadBytes.
func WithMaxUploadBytes(n int64) JobOption {
	return func(j *JobTracker) {
		if n > 0 {
			j.maxUploadBytes = n
		}
	}
}

// WithPollInterval sets the delay between fetches in WaitForCompletion.
func WithPollInterval(d time.Duration) JobOption {
	return func(j *JobTracker) {
		if d > 0 {
			j.pollInterval = d
		}
	}
}

func WithJobLogger(l logging.Logger) JobOption {
	return func(j *JobTracker) { j.log = l }
}

// NewJobTracker returns an idle tracker with no images, no current job
// and no call logs. Nothing is fetched until an operation is called.
func NewJobTracker(api client.Client, opts ...JobOption) *JobTracker {
	j := &JobTracker{
		api:            api,
		store:          state.NewStore(JobState{}),
		seq:            state.NewSequencer(),
		log:            logging.Discard(),
		maxUploadBytes: DefaultMaxUploadBytes,
		pollInterval:   DefaultPollInterval,
	}
	for _, o := range opts {
		o(j)
	}
	return j
}

// Snapshot returns a copy of the current state.
func (j *JobTracker) Snapshot() JobState { return j.store.Get().clone() }

// Subscribe registers fn for state changes. fn must not call JobTracker
// operations.
func (j *JobTracker) Subscribe(fn func(JobState)) func() {
	return j.store.Subscribe(func(st JobState) { fn(st.clone()) })
}

func (j *JobTracker) ClearError() { j.store.Dispatch(failedWith("")) }

// SetCurrent selects job as the current one. In Sequenced mode it also
// outdates every fetch still in flight.
func (j *JobTracker) SetCurrent(job models.AnalysisJob) {
	j.seq.Next(currentJobKey)
	j.store.Dispatch(currentReplaced(job))
}

func (j *JobTracker) reject(ctx context.Context, op string, err *client.ValidationError) error {
	j.log.Debug(ctx, "rejected", "op", op, "reason", err.Error())
	j.store.Dispatch(failedWith(err.Reason))
	return err
}

// UploadImage validates img locally, uploads it and puts the stored asset
// at the front of the image list.
func (j *JobTracker) UploadImage(ctx context.Context, img models.ImageUpload) (*models.ImageAsset, error) {
	if err := j.validateImage(img); err != nil {
		return nil, j.reject(ctx, "upload", err)
	}

	j.store.Dispatch(started(flagUploading))
	asset, err := j.api.UploadImage(ctx, img)
	if err != nil {
		j.store.Dispatch(finished(flagUploading, failedWith(describeAuthed(err, msgUploadFailed))))
		j.log.Warn(ctx, "image upload failed", "filename", img.Filename, "err", err)
		return nil, err
	}

	j.store.Dispatch(finished(flagUploading, imageUploaded(*asset)))
	j.log.Info(ctx, "image uploaded", "image_id", asset.ID, "filename", asset.OriginalFilename)
	return asset, nil
}

func (j *JobTracker) validateImage(img models.ImageUpload) *client.ValidationError {
	switch {
	case len(img.Data) == 0:
		return &client.ValidationError{Field: "file", Reason: "File is empty"}
	case int64(len(img.Data)) > j.maxUploadBytes:
		return &client.ValidationError{
			Field:  "file",
			Reason: fmt.Sprintf("File exceeds the %s upload limit", humanBytes(j.maxUploadBytes)),
		}
	}

	mt := strings.ToLower(strings.TrimSpace(img.MimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	for _, allowed := range AllowedImageTypes {
		if mt == allowed {
			return nil
		}
	}
	return &client.ValidationError{
		Field:  "file",
		Reason: fmt.Sprintf("Unsupported file type %q: use JPEG, PNG, TIFF or BMP", img.MimeType),
	}
}

// StartAnalysis submits a full analysis of a known image and makes the
// returned job current.
func (j *JobTracker) StartAnalysis(ctx context.Context, imageID int64) (*models.AnalysisJob, error) {
	if !j.store.Get().knowsImage(imageID) {
		return nil, j.reject(ctx, "analyze", &client.ValidationError{
			Field:  "image_id",
			Reason: fmt.Sprintf("Unknown image %d: upload it first", imageID),
		})
	}

	seq := j.seq.Next(currentJobKey)
	j.store.Dispatch(started(flagAnalyzing))

	job, err := j.api.Analyze(ctx, imageID)
	j.applyCurrent(ctx, flagAnalyzing, seq, job, err, msgAnalysisFailed)
	if err != nil {
		return nil, err
	}
	j.log.Info(ctx, "analysis started", "job_id", job.ID, "image_id", imageID)
	return job, nil
}

// FetchAnalysis reloads a job and makes it current. The returned job is
// the server's answer even when Sequenced mode kept it out of the store.
func (j *JobTracker) FetchAnalysis(ctx context.Context, jobID int64) (*models.AnalysisJob, error) {
	seq := j.seq.Next(currentJobKey)
	j.store.Dispatch(started(flagLoading))

	job, err := j.api.GetAnalysis(ctx, jobID)
	j.applyCurrent(ctx, flagLoading, seq, job, err, msgFetchAnalysisFailed)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (j *JobTracker) applyCurrent(ctx context.Context, f flag, seq uint64, job *models.AnalysisJob, err error, fallback string) {
	var then state.Reducer[JobState]
	switch {
	case err != nil:
		then = failedWith(describeAuthed(err, fallback))
	default:
		then = currentReplaced(*job)
	}

	stale := false
	j.store.Dispatch(finished(f, func(st JobState) JobState {
		if j.mode == Sequenced && !j.seq.Latest(currentJobKey, seq) {
			stale = true
			return st
		}
		return then(st)
	}))

	switch {
	case stale:
		j.log.Debug(ctx, "discarding outdated job response", "seq", seq)
	case err != nil:
		j.log.Warn(ctx, "job request failed", "err", err)
	}
}

// WaitForCompletion fetches jobID every poll interval until the job is
// completed or failed, or ctx ends.
func (j *JobTracker) WaitForCompletion(ctx context.Context, jobID int64) (*models.AnalysisJob, error) {
	ticker := time.NewTicker(j.pollInterval)
	defer ticker.Stop()

	for {
		job, err := j.FetchAnalysis(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job.Status.Terminal() {
			return job, nil
		}
		j.log.Debug(ctx, "job still running", "job_id", jobID, "status", job.Status)

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

// FetchSummary replaces the dashboard counters.
func (j *JobTracker) FetchSummary(ctx context.Context) (*models.AnalysisSummary, error) {
	j.store.Dispatch(started(flagNone))
	sum, err := j.api.GetSummary(ctx)
	if err != nil {
		j.store.Dispatch(finished(flagNone, failedWith(describeAuthed(err, msgFetchSummaryFailed))))
		j.log.Warn(ctx, "fetching summary failed", "err", err)
		return nil, err
	}
	j.store.Dispatch(finished(flagNone, summaryReplaced(*sum)))
	return sum, nil
}

// ListCallLogs replaces the call-log set with the server's.
func (j *JobTracker) ListCallLogs(ctx context.Context) ([]models.CallLogEntry, error) {
	j.store.Dispatch(started(flagLoading))
	entries, err := j.api.ListCallLogs(ctx)
	if err != nil {
		j.store.Dispatch(finished(flagLoading, failedWith(describeAuthed(err, msgFetchCallLogsFailed))))
		j.log.Warn(ctx, "fetching call logs failed", "err", err)
		return nil, err
	}
	st := j.store.Dispatch(finished(flagLoading, callLogsReplaced(entries)))
	return st.clone().CallLogs, nil
}

// UploadCallLogs submits entries in one batch. Entries without a phone
// number are not sent; their count is reported in the result. The stored
// call-log set is not refreshed: call ListCallLogs afterwards.
func (j *JobTracker) UploadCallLogs(ctx context.Context, entries []models.CallLogEntry) (CallLogUploadResult, error) {
	keep := make([]models.CallLogEntry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.PhoneNumber) != "" {
			keep = append(keep, e)
		}
	}
	res := CallLogUploadResult{Submitted: len(keep), Dropped: len(entries) - len(keep)}

	if len(keep) == 0 {
		return res, j.reject(ctx, "upload call logs", &client.ValidationError{
			Field:  "entries",
			Reason: "No call log entries with a phone number to upload",
		})
	}

	j.store.Dispatch(started(flagNone))
	ack, err := j.api.UploadCallLogs(ctx, keep)
	if err != nil {
		j.store.Dispatch(finished(flagNone, failedWith(describeAuthed(err, msgCallLogUploadFailed))))
		j.log.Warn(ctx, "call log upload failed", "entries", len(keep), "err", err)
		return res, err
	}
	j.store.Dispatch(finished(flagNone, nil))
	j.log.Info(ctx, "call logs uploaded", "entries", res.Submitted, "dropped", res.Dropped)

	res.Ack = ack
	return res, nil
}

func humanBytes(n int64) string {
	const mib = 1 << 20
	if n%mib == 0 {
		return fmt.Sprintf("%d MiB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
