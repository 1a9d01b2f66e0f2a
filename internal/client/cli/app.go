package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/calllog"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/client"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/config"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/services"
	"github.com/nyakeriga/geoforensics-web-ui/internal/logging"
)

// getSimpleText and getPassword point at the interactive input helpers and
// are swapped out in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	session *services.SessionStore
	jobs    *services.JobTracker
	prefs   *services.Preferences
	csv     calllog.Parser

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database and builds the stores on top of an HTTP
// client for c.APIBaseURL. Logs go to logw.
func NewApp(ctx context.Context, c *config.Config, logw io.Writer) (*App, error) {
	log := logging.New(c.LogLevel, logw)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "err", err)
		return nil, err
	}

	cred := &client.Credential{}
	gw := client.NewGateway(c.APIBaseURL, cred,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log.With("component", "gateway")),
	)
	api := client.NewHTTPClient(gw)

	mode := services.Faithful
	if c.SequencedFetches {
		mode = services.Sequenced
	}
	csvMode := calllog.ModeNaive
	if c.QuotedCSV {
		csvMode = calllog.ModeQuoted
	}

	return &App{
		config: c,
		log:    log,
		db:     db,
		session: services.NewSessionStore(api, cred, services.NewSQLiteTokenStore(db),
			services.WithSessionLogger(log.With("component", "session"))),
		jobs: services.NewJobTracker(api,
			services.WithFetchMode(mode),
			services.WithMaxUploadBytes(c.MaxUploadBytes),
			services.WithPollInterval(c.PollInterval),
			services.WithJobLogger(log.With("component", "jobs"))),
		prefs:  services.NewPreferences(db),
		csv:    calllog.Parser{Mode: csvMode},
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

// Run restores the previous session, asks for credentials if there is
// none, and serves commands until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to the geoforensics client (type 'help' for commands)")

	if err := a.session.Restore(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "err", err)
	}
	if a.isLoggedIn() {
		fmt.Fprintf(a.out, "Welcome back, %s\n", a.session.Snapshot().User.DisplayName())
	} else {
		_ = a.Login(ctx, nil)
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
	return nil
}

// Close waits for background server calls and closes the database.
func (a *App) Close() {
	a.session.Wait()
	if err := a.db.Close(); err != nil {
		a.log.Warn(context.Background(), "closing database failed", "err", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Status == services.Authenticated
}

func (a *App) status() string {
	st := a.session.Snapshot()
	if st.User == nil {
		return "guest"
	}
	return st.User.Username
}
