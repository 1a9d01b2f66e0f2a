package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/models"
)

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
}

// detectImageType picks the MIME type from the extension and falls back
// to content sniffing.
func detectImageType(path string, data []byte) string {
	if mt, ok := imageTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return http.DetectContentType(data)
}

func parseID(args []string, what string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: <%s>", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", what, args[0])
	}
	return id, nil
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: upload <path>")
		return nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	asset, err := a.jobs.UploadImage(ctx, models.ImageUpload{
		Filename: filepath.Base(args[0]),
		MimeType: detectImageType(args[0], data),
		Data:     data,
	})
	if err != nil {
		fmt.Fprintln(a.out, "Error:", a.jobs.Snapshot().Err)
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s as image %d\n", asset.OriginalFilename, asset.ID)
	return nil
}

func (a *App) Images(_ context.Context, _ []string) error {
	renderImages(a.out, a.jobs.Snapshot().Images)
	return nil
}

func (a *App) Analyze(ctx context.Context, args []string) error {
	id, err := parseID(args, "imageID")
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	job, err := a.jobs.StartAnalysis(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", a.jobs.Snapshot().Err)
		return err
	}
	fmt.Fprintf(a.out, "Analysis %d %s (use 'wait %d' to follow it)\n", job.ID, job.Status, job.ID)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID(args, "jobID")
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	job, err := a.jobs.FetchAnalysis(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", a.jobs.Snapshot().Err)
		return err
	}
	renderJob(a.out, job)
	return nil
}

// Wait polls a job until it completes or fails.
func (a *App) Wait(ctx context.Context, args []string) error {
	id, err := parseID(args, "jobID")
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	fmt.Fprintf(a.out, "Waiting for analysis %d...\n", id)
	job, err := a.jobs.WaitForCompletion(ctx, id)
	if err != nil {
		if msg := a.jobs.Snapshot().Err; msg != "" {
			fmt.Fprintln(a.out, "Error:", msg)
		} else {
			fmt.Fprintln(a.out, "Error:", err)
		}
		return err
	}
	renderJob(a.out, job)
	return nil
}

func (a *App) Summary(ctx context.Context, _ []string) error {
	sum, err := a.jobs.FetchSummary(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", a.jobs.Snapshot().Err)
		return err
	}
	renderSummary(a.out, sum)
	return nil
}
