package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/models"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/services"
)

// Login prompts for a username and password and opens a session.
// The password is wiped before returning.
func (a *App) Login(ctx context.Context, _ []string) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := a.session.Login(ctx, username, string(password)); err != nil {
		fmt.Fprintln(a.out, "Login unsuccessful:", a.session.Snapshot().Err)
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", a.session.Snapshot().User.DisplayName())
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) WhoAmI(_ context.Context, _ []string) error {
	u := a.session.Snapshot().User
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	renderUser(a.out, u)
	return nil
}

// Profile asks for new profile values; an empty answer keeps the field.
func (a *App) Profile(ctx context.Context, _ []string) error {
	cur := a.session.Snapshot().User
	if cur == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	var patch models.ProfilePatch
	ask := func(label, current string, dst **string) error {
		v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", label, current), a.out)
		if err != nil {
			return err
		}
		if v != "" && v != current {
			*dst = &v
		}
		return nil
	}

	fullName := ""
	if cur.FullName != nil {
		fullName = *cur.FullName
	}
	if err := ask("Full name", fullName, &patch.FullName); err != nil {
		return err
	}
	if err := ask("Email", cur.Email, &patch.Email); err != nil {
		return err
	}
	if err := ask("Username", cur.Username, &patch.Username); err != nil {
		return err
	}

	if err := a.session.UpdateProfile(ctx, patch); err != nil {
		fmt.Fprintln(a.out, "Error:", a.session.Snapshot().Err)
		return err
	}
	fmt.Fprintln(a.out, "Profile updated")
	return nil
}

func (a *App) Passwd(_ context.Context, _ []string) error {
	current, err := getPassword("Current password", a.out)
	if err != nil {
		return err
	}
	defer wipe(current)
	next, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer wipe(next)
	confirm, err := getPassword("Confirm new password", a.out)
	if err != nil {
		return err
	}
	defer wipe(confirm)

	err = a.session.ValidatePasswordChange(next, confirm)
	switch {
	case errors.Is(err, services.ErrPasswordChangeUnsupported):
		fmt.Fprintln(a.out, "Password change is not available on this server")
	case err != nil:
		fmt.Fprintln(a.out, "Error:", a.session.Snapshot().Err)
	}
	return err
}

// Prefs shows the notification preferences, or flips one with
// "prefs toggle <name>".
func (a *App) Prefs(ctx context.Context, args []string) error {
	var (
		prefs services.NotificationPreferences
		err   error
	)
	switch {
	case len(args) == 0:
		prefs, err = a.prefs.Load(ctx)
	case len(args) == 2 && strings.EqualFold(args[0], "toggle"):
		prefs, err = a.prefs.Toggle(ctx, args[1])
	default:
		fmt.Fprintln(a.out, "Usage: prefs [toggle <"+strings.Join(services.PreferenceNames, "|")+">]")
		return nil
	}
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	renderPreferences(a.out, prefs)
	return nil
}
