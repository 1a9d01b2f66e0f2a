package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/client"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/repositories/metadata"
	"github.com/nyakeriga/geoforensics-web-ui/internal/common"
	"github.com/nyakeriga/geoforensics-web-ui/internal/dbx"
)

// NotificationPreferences are the per-user notification switches. They are
// kept on this machine only.
type NotificationPreferences struct {
	EmailNotifications bool `json:"emailNotifications"`
	AnalysisComplete   bool `json:"analysisComplete"`
	SecurityAlerts     bool `json:"securityAlerts"`
	WeeklyReports      bool `json:"weeklyReports"`
}

func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		EmailNotifications: true,
		AnalysisComplete:   true,
		SecurityAlerts:     true,
		WeeklyReports:      false,
	}
}

// PreferenceNames lists the switch names accepted by Toggle.
var PreferenceNames = []string{"emailNotifications", "analysisComplete", "securityAlerts", "weeklyReports"}

func (p *NotificationPreferences) field(name string) *bool {
	switch strings.ToLower(name) {
	case "emailnotifications":
		return &p.EmailNotifications
	case "analysiscomplete":
		return &p.AnalysisComplete
	case "securityalerts":
		return &p.SecurityAlerts
	case "weeklyreports":
		return &p.WeeklyReports
	}
	return nil
}

type Preferences struct {
	db *sql.DB
}

func NewPreferences(db *sql.DB) *Preferences {
	return &Preferences{db: db}
}

// Load returns the stored preferences, or the defaults when none are stored.
func (p *Preferences) Load(ctx context.Context) (NotificationPreferences, error) {
	return loadPreferences(ctx, metadata.NewSQLiteRepository(p.db))
}

func (p *Preferences) Save(ctx context.Context, prefs NotificationPreferences) error {
	return savePreferences(ctx, metadata.NewSQLiteRepository(p.db), prefs)
}

// Toggle flips the named switch and returns the updated set. The read and
// the write happen in one transaction.
func (p *Preferences) Toggle(ctx context.Context, name string) (NotificationPreferences, error) {
	var out NotificationPreferences
	err := dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		prefs, err := loadPreferences(ctx, repo)
		if err != nil {
			return err
		}
		f := prefs.field(name)
		if f == nil {
			return &client.ValidationError{
				Field:  "preference",
				Reason: fmt.Sprintf("unknown preference %q (one of %s)", name, strings.Join(PreferenceNames, ", ")),
			}
		}
		*f = !*f
		out = prefs
		return savePreferences(ctx, repo, prefs)
	})
	return out, err
}

func loadPreferences(ctx context.Context, repo metadata.Repository) (NotificationPreferences, error) {
	prefs := DefaultNotificationPreferences()
	raw, err := repo.Get(ctx, common.PreferencesKey)
	if err != nil {
		return prefs, fmt.Errorf("load preferences: %w", err)
	}
	if len(raw) == 0 {
		return prefs, nil
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return DefaultNotificationPreferences(), fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}

func savePreferences(ctx context.Context, repo metadata.Repository, prefs NotificationPreferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := repo.Set(ctx, common.PreferencesKey, raw); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
