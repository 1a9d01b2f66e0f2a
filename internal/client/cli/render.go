package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/calllog"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/models"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/services"
	"github.com/nyakeriga/geoforensics-web-ui/internal/timex"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func when(ts timex.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(time.DateTime)
}

func percent(f float64) string { return fmt.Sprintf("%.1f%%", f*100) }

func renderUser(w io.Writer, u *models.UserProfile) {
	fmt.Fprintf(w, "%s <%s>\n", u.DisplayName(), u.Email)
	fmt.Fprintf(w, "  username: %s\n  id: %d\n  active: %t\n", u.Username, u.ID, u.IsActive)
	if u.IsSuperuser {
		fmt.Fprintln(w, "  role: administrator")
	}
	fmt.Fprintf(w, "  member since: %s\n", when(u.CreatedAt))
}

func renderPreferences(w io.Writer, p services.NotificationPreferences) {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	tw := table(w)
	fmt.Fprintf(tw, "emailNotifications\t%s\n", onOff(p.EmailNotifications))
	fmt.Fprintf(tw, "analysisComplete\t%s\n", onOff(p.AnalysisComplete))
	fmt.Fprintf(tw, "securityAlerts\t%s\n", onOff(p.SecurityAlerts))
	fmt.Fprintf(tw, "weeklyReports\t%s\n", onOff(p.WeeklyReports))
	_ = tw.Flush()
}

func renderImages(w io.Writer, images []models.ImageAsset) {
	if len(images) == 0 {
		fmt.Fprintln(w, "No images uploaded in this session")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tFILE\tTYPE\tSIZE\tUPLOADED")
	for _, img := range images {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", img.ID, img.OriginalFilename, img.MimeType, img.FileSizeBytes, when(img.UploadedAt))
	}
	_ = tw.Flush()
}

func renderJob(w io.Writer, job *models.AnalysisJob) {
	fmt.Fprintf(w, "Analysis %d (image %d): %s\n", job.ID, job.ImageID, job.Status)
	fmt.Fprintf(w, "  started: %s\n", when(job.StartedAt))
	if job.CompletedAt != nil {
		fmt.Fprintf(w, "  completed: %s\n", when(*job.CompletedAt))
	}
	if job.ProcessingTimeSeconds != nil {
		fmt.Fprintf(w, "  processing time: %.1fs\n", *job.ProcessingTimeSeconds)
	}
	if job.ConfidenceScore != nil {
		fmt.Fprintf(w, "  confidence: %s\n", percent(*job.ConfidenceScore))
	}
	if loc := job.EstimatedLocation; loc != nil {
		fmt.Fprintf(w, "  estimated location: %.6f, %.6f (confidence %s)\n", loc.Latitude, loc.Longitude, percent(loc.Confidence))
	}
	if job.HumanReadableExplanation != nil && *job.HumanReadableExplanation != "" {
		fmt.Fprintf(w, "  summary: %s\n", *job.HumanReadableExplanation)
	}
	if len(job.EvidenceItems) == 0 {
		return
	}

	fmt.Fprintln(w, "  evidence:")
	tw := table(w)
	for _, ev := range job.EvidenceItems {
		fmt.Fprintf(tw, "    %s\t%s\t%s\t%s\n", strings.ToUpper(string(ev.Type)), ev.Source, percent(ev.Confidence), ev.Explanation)
	}
	_ = tw.Flush()
}

func renderSummary(w io.Writer, s *models.AnalysisSummary) {
	tw := table(w)
	fmt.Fprintf(tw, "Total images\t%d\n", s.TotalImages)
	fmt.Fprintf(tw, "Processed\t%d\n", s.ProcessedImages)
	fmt.Fprintf(tw, "Pending analyses\t%d\n", s.PendingAnalyses)
	fmt.Fprintf(tw, "Failed analyses\t%d\n", s.FailedAnalyses)
	if s.AverageProcessingTime != nil {
		fmt.Fprintf(tw, "Average processing time\t%.1fs\n", *s.AverageProcessingTime)
	}
	fmt.Fprintf(tw, "Success rate\t%.1f%%\n", s.SuccessRate)
	_ = tw.Flush()
}

func renderCallLogs(w io.Writer, entries []models.CallLogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No call logs found")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "PHONE\tTYPE\tSTART\tDURATION\tLOCATION")
	for _, e := range entries {
		loc := "-"
		if e.HasLocation() {
			loc = fmt.Sprintf("%.4f, %.4f", *e.LocationLat, *e.LocationLon)
		}
		start := e.CallStart
		if ts, err := timex.ParseTimestamp(e.CallStart); err == nil {
			start = when(ts)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.PhoneNumber, e.CallType, start, calllog.FormatDuration(e.DurationSeconds), loc)
	}
	_ = tw.Flush()
}
