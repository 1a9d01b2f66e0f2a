package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/client"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/models"
)

func pngUpload(name string, size int) models.ImageUpload {
	return models.ImageUpload{Filename: name, MimeType: "image/png", Data: bytes.Repeat([]byte{1}, size)}
}

func assetFor(id int64) func(context.Context, models.ImageUpload) (*models.ImageAsset, error) {
	return func(_ context.Context, img models.ImageUpload) (*models.ImageAsset, error) {
		return &models.ImageAsset{ID: id, OriginalFilename: img.Filename, MimeType: img.MimeType, FileSizeBytes: int64(len(img.Data))}, nil
	}
}

func job(id, imageID int64, status models.JobStatus) *models.AnalysisJob {
	return &models.AnalysisJob{ID: id, ImageID: imageID, Status: status}
}

func TestUploadImage_RejectedBeforeNetwork(t *testing.T) {
	tests := []struct {
		name string
		img  models.ImageUpload
	}{
		{"above ceiling", pngUpload("big.png", 1025)},
		{"empty", pngUpload("empty.png", 0)},
		{"not an image", models.ImageUpload{Filename: "doc.pdf", MimeType: "application/pdf", Data: []byte("%PDF")}},
		{"gif", models.ImageUpload{Filename: "a.gif", MimeType: "image/gif", Data: []byte("GIF89a")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeClient{}
			j := NewJobTracker(api, WithMaxUploadBytes(1024))

			asset, err := j.UploadImage(context.Background(), tt.img)
			require.ErrorIs(t, err, client.ErrValidation)
			assert.Nil(t, asset)
			assert.Zero(t, api.totalCalls())

			st := j.Snapshot()
			assert.NotEmpty(t, st.Err)
			assert.False(t, st.Uploading)
			assert.Empty(t, st.Images)
		})
	}
}

func TestUploadImage_DefaultCeilingIs50MiB(t *testing.T) {
	api := &fakeClient{uploadImage: assetFor(1)}
	j := NewJobTracker(api)

	_, err := j.UploadImage(context.Background(), pngUpload("huge.png", 50<<20+1))
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Contains(t, j.Snapshot().Err, "50 MiB")

	_, err = j.UploadImage(context.Background(), pngUpload("ok.png", 50<<20))
	require.NoError(t, err)
}

func TestUploadImage_PrependsMostRecentFirst(t *testing.T) {
	var next int64
	api := &fakeClient{uploadImage: func(ctx context.Context, img models.ImageUpload) (*models.ImageAsset, error) {
		next++
		return assetFor(next)(ctx, img)
	}}
	j := NewJobTracker(api)
	ctx := context.Background()

	_, err := j.UploadImage(ctx, pngUpload("A.png", 10))
	require.NoError(t, err)
	assert.Len(t, j.Snapshot().Images, 1)

	_, err = j.UploadImage(ctx, models.ImageUpload{Filename: "B.jpg", MimeType: "IMAGE/JPEG", Data: []byte{1}})
	require.NoError(t, err)

	st := j.Snapshot()
	require.Len(t, st.Images, 2)
	assert.Equal(t, "B.jpg", st.Images[0].OriginalFilename)
	assert.Equal(t, "A.png", st.Images[1].OriginalFilename)
	assert.False(t, st.Uploading)
}

func TestFlags_ResetOnSuccessAndFailure(t *testing.T) {
	for _, fail := range []bool{false, true} {
		api := &fakeClient{
			uploadImage: func(ctx context.Context, img models.ImageUpload) (*models.ImageAsset, error) {
				if fail {
					return nil, netErr()
				}
				return assetFor(1)(ctx, img)
			},
			analyze: func(_ context.Context, imageID int64) (*models.AnalysisJob, error) {
				if fail {
					return nil, httpErr(http.StatusInternalServerError, "")
				}
				return job(10, imageID, models.JobQueued), nil
			},
			getAnalysis: func(_ context.Context, id int64) (*models.AnalysisJob, error) {
				if fail {
					return nil, httpErr(http.StatusNotFound, "Analysis not found")
				}
				return job(id, 1, models.JobProcessing), nil
			},
			listCallLogs: func(context.Context) ([]models.CallLogEntry, error) {
				if fail {
					return nil, netErr()
				}
				return nil, nil
			},
		}
		j := NewJobTracker(api)
		ctx := context.Background()
		// analyze needs a known image even when the upload fails
		j.SetCurrent(*job(1, 1, models.JobCompleted))

		_, _ = j.UploadImage(ctx, pngUpload("a.png", 3))
		_, _ = j.StartAnalysis(ctx, 1)
		_, _ = j.FetchAnalysis(ctx, 10)
		_, _ = j.ListCallLogs(ctx)

		st := j.Snapshot()
		assert.False(t, st.Uploading, "fail=%v", fail)
		assert.False(t, st.Analyzing, "fail=%v", fail)
		assert.False(t, st.Loading, "fail=%v", fail)
		if fail {
			assert.Equal(t, "Failed to fetch call logs", st.Err)
		} else {
			assert.Empty(t, st.Err)
		}
	}
}

func TestFlags_OverlappingCallsKeepFlagUntilLast(t *testing.T) {
	release := map[int64]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	called := make(chan int64, 2)
	api := &fakeClient{getAnalysis: func(_ context.Context, id int64) (*models.AnalysisJob, error) {
		called <- id
		<-release[id]
		return job(id, 1, models.JobProcessing), nil
	}}
	j := NewJobTracker(api)
	ctx := context.Background()

	done := map[int64]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	for _, id := range []int64{1, 2} {
		go func(id int64) {
			defer close(done[id])
			_, _ = j.FetchAnalysis(ctx, id)
		}(id)
	}
	<-called
	<-called
	assert.True(t, j.Snapshot().Loading)

	close(release[1])
	<-done[1]
	assert.True(t, j.Snapshot().Loading)

	close(release[2])
	<-done[2]
	assert.False(t, j.Snapshot().Loading)
}

func TestStartAnalysis_UnknownImage(t *testing.T) {
	api := &fakeClient{}
	j := NewJobTracker(api)

	_, err := j.StartAnalysis(context.Background(), 42)
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Zero(t, api.totalCalls())
	assert.Contains(t, j.Snapshot().Err, "Unknown image 42")
}

func TestStartAnalysisThenFetch_FetchWins(t *testing.T) {
	for _, mode := range []FetchMode{Faithful, Sequenced} {
		api := &fakeClient{
			uploadImage: assetFor(5),
			analyze: func(_ context.Context, imageID int64) (*models.AnalysisJob, error) {
				return job(77, imageID, models.JobQueued), nil
			},
			getAnalysis: func(_ context.Context, id int64) (*models.AnalysisJob, error) {
				return job(id, 5, models.JobCompleted), nil
			},
		}
		j := NewJobTracker(api, WithFetchMode(mode))
		ctx := context.Background()

		_, err := j.UploadImage(ctx, pngUpload("scene.png", 8))
		require.NoError(t, err)
		started, err := j.StartAnalysis(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, models.JobQueued, started.Status)

		_, err = j.FetchAnalysis(ctx, started.ID)
		require.NoError(t, err)

		st := j.Snapshot()
		require.NotNil(t, st.Current)
		assert.Equal(t, models.JobCompleted, st.Current.Status)
		assert.False(t, st.Analyzing)
		assert.False(t, st.Loading)
	}
}

// raceFetches issues a fetch for job 1, then job 2, and lets job 2's
// response arrive first.
func raceFetches(t *testing.T, mode FetchMode) JobState {
	t.Helper()
	gates := map[int64]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	called := make(chan int64, 2)
	api := &fakeClient{getAnalysis: func(_ context.Context, id int64) (*models.AnalysisJob, error) {
		called <- id
		<-gates[id]
		return job(id, 1, models.JobCompleted), nil
	}}
	j := NewJobTracker(api, WithFetchMode(mode))
	ctx := context.Background()

	done := make(chan struct{}, 2)
	fetch := func(id int64) {
		_, err := j.FetchAnalysis(ctx, id)
		assert.NoError(t, err)
		done <- struct{}{}
	}

	go fetch(1)
	require.Equal(t, int64(1), <-called)
	go fetch(2)
	require.Equal(t, int64(2), <-called)

	close(gates[2])
	<-done
	close(gates[1])
	<-done

	return j.Snapshot()
}

func TestFetchAnalysis_FaithfulAppliesLastArrival(t *testing.T) {
	st := raceFetches(t, Faithful)
	require.NotNil(t, st.Current)
	assert.EqualValues(t, 1, st.Current.ID)
	assert.False(t, st.Loading)
}

func TestFetchAnalysis_SequencedAppliesLastIssued(t *testing.T) {
	st := raceFetches(t, Sequenced)
	require.NotNil(t, st.Current)
	assert.EqualValues(t, 2, st.Current.ID)
	assert.False(t, st.Loading)
}

func TestFetchAnalysis_SequencedDropsStaleError(t *testing.T) {
	gate := make(chan struct{})
	called := make(chan struct{}, 1)
	api := &fakeClient{getAnalysis: func(_ context.Context, id int64) (*models.AnalysisJob, error) {
		if id == 1 {
			called <- struct{}{}
			<-gate
			return nil, netErr()
		}
		return job(id, 1, models.JobCompleted), nil
	}}
	j := NewJobTracker(api, WithFetchMode(Sequenced))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := j.FetchAnalysis(ctx, 1)
		done <- err
	}()
	<-called

	_, err := j.FetchAnalysis(ctx, 2)
	require.NoError(t, err)
	close(gate)
	require.ErrorIs(t, <-done, client.ErrNetworkFailure)

	st := j.Snapshot()
	assert.Empty(t, st.Err)
	assert.EqualValues(t, 2, st.Current.ID)
}

func TestFetchAnalysis_LateResponseStillMutates(t *testing.T) {
	api := &fakeClient{getAnalysis: func(_ context.Context, id int64) (*models.AnalysisJob, error) {
		return job(id, 3, models.JobProcessing), nil
	}}
	j := NewJobTracker(api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := j.FetchAnalysis(ctx, 9)
	require.NoError(t, err)
	assert.EqualValues(t, 9, j.Snapshot().Current.ID)
}

func TestFetchAnalysis_ErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{httpErr(http.StatusNotFound, "Analysis not found"), "Analysis not found"},
		{httpErr(http.StatusUnauthorized, ""), "session expired, please log in again"},
		{httpErr(http.StatusUnauthorized, "Could not validate credentials"), "Could not validate credentials; session expired, please log in again"},
		{netErr(), "Failed to fetch analysis"},
	}
	for _, tt := range tests {
		api := &fakeClient{getAnalysis: func(context.Context, int64) (*models.AnalysisJob, error) { return nil, tt.err }}
		j := NewJobTracker(api)

		_, err := j.FetchAnalysis(context.Background(), 1)
		require.ErrorIs(t, err, tt.err)
		assert.Equal(t, tt.want, j.Snapshot().Err)
	}
}

func TestStartAnalysis_AllowsImageOfFetchedJob(t *testing.T) {
	api := &fakeClient{
		getAnalysis: func(_ context.Context, id int64) (*models.AnalysisJob, error) { return job(id, 8, models.JobFailed), nil },
		analyze:     func(_ context.Context, imageID int64) (*models.AnalysisJob, error) { return job(2, imageID, models.JobQueued), nil },
	}
	j := NewJobTracker(api)
	ctx := context.Background()

	_, err := j.FetchAnalysis(ctx, 1)
	require.NoError(t, err)
	_, err = j.StartAnalysis(ctx, 8)
	require.NoError(t, err)
	assert.EqualValues(t, 2, j.Snapshot().Current.ID)
}

func TestWaitForCompletion(t *testing.T) {
	statuses := []models.JobStatus{models.JobQueued, models.JobProcessing, models.JobCompleted}
	var n int
	api := &fakeClient{getAnalysis: func(_ context.Context, id int64) (*models.AnalysisJob, error) {
		s := statuses[min(n, len(statuses)-1)]
		n++
		return job(id, 1, s), nil
	}}
	j := NewJobTracker(api, WithPollInterval(time.Millisecond))

	got, err := j.WaitForCompletion(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, got.Status)
	assert.Equal(t, 3, api.callCount("GetAnalysis"))
	assert.Equal(t, models.JobCompleted, j.Snapshot().Current.Status)
}

func TestWaitForCompletion_ContextEnds(t *testing.T) {
	api := &fakeClient{getAnalysis: func(_ context.Context, id int64) (*models.AnalysisJob, error) {
		return job(id, 1, models.JobProcessing), nil
	}}
	j := NewJobTracker(api, WithPollInterval(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	got, err := j.WaitForCompletion(ctx, 4)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, models.JobProcessing, got.Status)
}

func TestFetchSummary(t *testing.T) {
	avg := 4.5
	api := &fakeClient{getSummary: func(context.Context) (*models.AnalysisSummary, error) {
		return &models.AnalysisSummary{TotalImages: 10, ProcessedImages: 8, AverageProcessingTime: &avg, SuccessRate: 80}, nil
	}}
	j := NewJobTracker(api)

	_, err := j.FetchSummary(context.Background())
	require.NoError(t, err)
	st := j.Snapshot()
	require.NotNil(t, st.Summary)
	assert.Equal(t, 10, st.Summary.TotalImages)

	api.getSummary = func(context.Context) (*models.AnalysisSummary, error) { return nil, netErr() }
	_, err = j.FetchSummary(context.Background())
	require.Error(t, err)
	st = j.Snapshot()
	assert.Equal(t, "Failed to fetch summary", st.Err)
	assert.Equal(t, 10, st.Summary.TotalImages)
}

func TestListCallLogs_ReplacesAndDedupes(t *testing.T) {
	first := true
	api := &fakeClient{listCallLogs: func(context.Context) ([]models.CallLogEntry, error) {
		if first {
			first = false
			return []models.CallLogEntry{{ID: 1, PhoneNumber: "a"}, {ID: 2, PhoneNumber: "b"}, {ID: 1, PhoneNumber: "a2"}}, nil
		}
		return []models.CallLogEntry{{ID: 3, PhoneNumber: "c"}}, nil
	}}
	j := NewJobTracker(api)
	ctx := context.Background()

	got, err := j.ListCallLogs(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].PhoneNumber)
	assert.Equal(t, "b", got[1].PhoneNumber)

	_, err = j.ListCallLogs(ctx)
	require.NoError(t, err)
	st := j.Snapshot()
	require.Len(t, st.CallLogs, 1)
	assert.EqualValues(t, 3, st.CallLogs[0].ID)
}

func TestUploadCallLogs_FiltersAndDoesNotRefresh(t *testing.T) {
	var sent []models.CallLogEntry
	api := &fakeClient{uploadCallLogs: func(_ context.Context, entries []models.CallLogEntry) (models.UploadAck, error) {
		sent = entries
		return json.RawMessage(`{"created":2}`), nil
	}}
	j := NewJobTracker(api)

	res, err := j.UploadCallLogs(context.Background(), []models.CallLogEntry{
		{PhoneNumber: "5551234"}, {PhoneNumber: "  "}, {PhoneNumber: "5559999"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Submitted)
	assert.Equal(t, 1, res.Dropped)
	assert.JSONEq(t, `{"created":2}`, string(res.Ack))
	require.Len(t, sent, 2)
	assert.Zero(t, api.callCount("ListCallLogs"))
	assert.Empty(t, j.Snapshot().CallLogs)
}

func TestUploadCallLogs_AllEmptyIsValidationError(t *testing.T) {
	api := &fakeClient{}
	j := NewJobTracker(api)

	res, err := j.UploadCallLogs(context.Background(), []models.CallLogEntry{{PhoneNumber: ""}})
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Equal(t, 1, res.Dropped)
	assert.Zero(t, api.totalCalls())
}

func TestSnapshot_IsACopy(t *testing.T) {
	api := &fakeClient{uploadImage: assetFor(1)}
	j := NewJobTracker(api)
	_, err := j.UploadImage(context.Background(), pngUpload("a.png", 1))
	require.NoError(t, err)

	st := j.Snapshot()
	st.Images[0].OriginalFilename = "mutated"
	assert.Equal(t, "a.png", j.Snapshot().Images[0].OriginalFilename)
}
