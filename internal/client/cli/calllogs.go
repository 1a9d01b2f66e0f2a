package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/calllog"
)

// CallLogs lists the call logs, optionally filtered by a search term.
func (a *App) CallLogs(ctx context.Context, args []string) error {
	entries, err := a.jobs.ListCallLogs(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", a.jobs.Snapshot().Err)
		return err
	}
	shown := calllog.Filter(entries, strings.Join(args, " "))
	fmt.Fprintf(a.out, "%d total, %d with location, %d shown\n", len(entries), calllog.WithLocation(entries), len(shown))
	renderCallLogs(a.out, shown)
	return nil
}

// ImportCSV parses a call-log export, uploads its rows and refreshes the
// list.
func (a *App) ImportCSV(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: importcsv <path>")
		return nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	defer f.Close()

	parsed, err := a.csv.Parse(f)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	res, err := a.jobs.UploadCallLogs(ctx, parsed.Entries)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", a.jobs.Snapshot().Err)
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %d call log entries (%d rows without a phone number skipped)\n",
		res.Submitted, parsed.Dropped+res.Dropped)

	if _, err := a.jobs.ListCallLogs(ctx); err != nil {
		fmt.Fprintln(a.out, "Error:", a.jobs.Snapshot().Err)
		return err
	}
	return nil
}
