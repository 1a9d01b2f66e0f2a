package services

import (
	"slices"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/models"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/state"
)

// JobState is the analysis view model. Images are most recent first.
type JobState struct {
	Images    []models.ImageAsset
	Current   *models.AnalysisJob
	CallLogs  []models.CallLogEntry
	Summary   *models.AnalysisSummary
	Uploading bool
	Analyzing bool
	Loading   bool
	Err       string

	inflight   [flagCount]int
	jobImageID map[int64]struct{}
}

type flag int

const (
	flagNone flag = iota
	flagUploading
	flagAnalyzing
	flagLoading
	flagCount
)

// clone copies the slices and maps of st so callers cannot alias the
// store's internals.
func (st JobState) clone() JobState {
	st.Images = slices.Clone(st.Images)
	st.CallLogs = slices.Clone(st.CallLogs)
	if st.Current != nil {
		cur := *st.Current
		cur.EvidenceItems = slices.Clone(cur.EvidenceItems)
		st.Current = &cur
	}
	if st.Summary != nil {
		sum := *st.Summary
		st.Summary = &sum
	}
	st.jobImageID = nil
	return st
}

// knowsImage reports whether id is an uploaded image or the image of a
// job seen by this tracker.
func (st JobState) knowsImage(id int64) bool {
	if slices.ContainsFunc(st.Images, func(img models.ImageAsset) bool { return img.ID == id }) {
		return true
	}
	_, ok := st.jobImageID[id]
	return ok
}

func (st JobState) syncFlags() JobState {
	st.Uploading = st.inflight[flagUploading] > 0
	st.Analyzing = st.inflight[flagAnalyzing] > 0
	st.Loading = st.inflight[flagLoading] > 0
	return st
}

func started(f flag) state.Reducer[JobState] {
	return func(st JobState) JobState {
		st.Err = ""
		if f != flagNone {
			st.inflight[f]++
		}
		return st.syncFlags()
	}
}

// finished closes the in-flight window opened by started(f) and applies
// then, if any, in the same step.
func finished(f flag, then state.Reducer[JobState]) state.Reducer[JobState] {
	return func(st JobState) JobState {
		if f != flagNone && st.inflight[f] > 0 {
			st.inflight[f]--
		}
		if then != nil {
			st = then(st)
		}
		return st.syncFlags()
	}
}

func failedWith(msg string) state.Reducer[JobState] {
	return func(st JobState) JobState {
		st.Err = msg
		return st
	}
}

// imageUploaded puts img at the front, dropping an older copy with the
// same id.
func imageUploaded(img models.ImageAsset) state.Reducer[JobState] {
	return func(st JobState) JobState {
		images := make([]models.ImageAsset, 0, len(st.Images)+1)
		images = append(images, img)
		for _, old := range st.Images {
			if old.ID != img.ID {
				images = append(images, old)
			}
		}
		st.Images = images
		return st
	}
}

func currentReplaced(job models.AnalysisJob) state.Reducer[JobState] {
	return func(st JobState) JobState {
		st.Current = &job
		ids := make(map[int64]struct{}, len(st.jobImageID)+1)
		for id := range st.jobImageID {
			ids[id] = struct{}{}
		}
		ids[job.ImageID] = struct{}{}
		st.jobImageID = ids
		return st
	}
}

func summaryReplaced(sum models.AnalysisSummary) state.Reducer[JobState] {
	return func(st JobState) JobState {
		st.Summary = &sum
		return st
	}
}

// callLogsReplaced replaces the set wholesale. Entries sharing a non-zero
// id collapse to the last one received, kept at the first one's position.
func callLogsReplaced(entries []models.CallLogEntry) state.Reducer[JobState] {
	return func(st JobState) JobState {
		out := make([]models.CallLogEntry, 0, len(entries))
		pos := make(map[int64]int, len(entries))
		for _, e := range entries {
			if e.ID != 0 {
				if i, dup := pos[e.ID]; dup {
					out[i] = e
					continue
				}
				pos[e.ID] = len(out)
			}
			out = append(out, e)
		}
		st.CallLogs = out
		return st
	}
}
