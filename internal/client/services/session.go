package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/client"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/models"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/state"
	"github.com/nyakeriga/geoforensics-web-ui/internal/logging"
)

// SessionStatus is the authentication state of the client.
type SessionStatus int

const (
	// Restoring is the startup state before the persisted token was checked.
	Restoring SessionStatus = iota
	Unauthenticated
	Authenticating
	Authenticated
)

func (s SessionStatus) String() string {
	switch s {
	case Restoring:
		return "restoring"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// SessionState is a snapshot of the session. User is nil unless Status is
// Authenticated.
type SessionState struct {
	Status  SessionStatus
	User    *models.UserProfile
	Loading bool
	Err     string

	gen      uint64
	inflight int
}

const (
	msgLoginFailed         = "Login failed"
	msgProfileUpdateFailed = "Profile update failed"
	msgNotAuthenticated    = "Not authenticated"
	msgPasswordMismatch    = "New passwords do not match"

	serverLogoutTimeout = 10 * time.Second
)

// SessionStore owns the credential and the logged-in user.
//
// It is the only writer of the client.Credential it is given. Every login,
// logout and restore starts a new generation; results that come back for an
// older generation are dropped so a slow login can never override a newer
// login or a logout.
type SessionStore struct {
	api    client.Client
	cred   *client.Credential
	tokens TokenStore
	log    logging.Logger
	now    func() time.Time

	store *state.Store[SessionState]

	// persistMu is held for every generation bump and for every
	// credential or token-store write that depends on a generation check.
	persistMu sync.Mutex
	bg        sync.WaitGroup
}

// SessionOption configures a SessionStore built by NewSessionStore.
type SessionOption func(*SessionStore)

// WithSessionLogger sets the logger for session transitions. Tokens and
// passwords are never passed to it.
func WithSessionLogger(l logging.Logger) SessionOption {
	return func(s *SessionStore) { s.log = l }
}

// WithClock replaces time.Now in the token expiry check.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore returns a store in the Restoring state. cred is the
// holder the gateway reads tokens from; tokens persists it between runs.
// Call Restore once at startup to leave Restoring.
func NewSessionStore(api client.Client, cred *client.Credential, tokens TokenStore, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		api:    api,
		cred:   cred,
		tokens: tokens,
		log:    logging.Discard(),
		now:    time.Now,
		store:  state.NewStore(SessionState{Status: Restoring}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snapshot returns the current session state.
func (s *SessionStore) Snapshot() SessionState { return s.store.Get() }

// Subscribe registers fn for state changes. fn runs on the goroutine that
// caused the change and must not call SessionStore operations.
func (s *SessionStore) Subscribe(fn func(SessionState)) func() { return s.store.Subscribe(fn) }

func (s *SessionStore) ClearError() {
	s.store.Dispatch(func(st SessionState) SessionState {
		st.Err = ""
		return st
	})
}

// Wait blocks until background server calls started by Logout have ended.
func (s *SessionStore) Wait() { s.bg.Wait() }

// Login authenticates against the server. A call made while another login
// is in flight supersedes it; the earlier call then returns ErrSuperseded
// and leaves no trace besides its in-flight count.
func (s *SessionStore) Login(ctx context.Context, username, password string) error {
	var gen uint64
	s.persistMu.Lock()
	s.store.Dispatch(func(st SessionState) SessionState {
		st.gen++
		gen = st.gen
		st.Status = Authenticating
		st.User = nil
		st.Err = ""
		return begin(st)
	})
	s.persistMu.Unlock()

	res, err := s.api.Login(ctx, username, password)

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if s.store.Get().gen != gen {
		s.store.Dispatch(end)
		s.log.Debug(ctx, "discarding superseded login", "username", username)
		if err != nil {
			return err
		}
		return ErrSuperseded
	}

	if err != nil {
		s.cred.Clear()
		if derr := s.tokens.Delete(ctx); derr != nil {
			s.log.Warn(ctx, "deleting persisted token failed", "err", derr)
		}
		s.store.Dispatch(func(st SessionState) SessionState {
			st = end(st)
			st.Status = Unauthenticated
			st.Err = describe(err, msgLoginFailed)
			return st
		})
		s.log.Warn(ctx, "login failed", "username", username, "err", err)
		return err
	}

	s.cred.Set(res.AccessToken)
	if err := s.tokens.Save(ctx, res.AccessToken); err != nil {
		// the session stays usable for this run
		s.log.Warn(ctx, "persisting token failed", "err", err)
	}
	user := res.User
	s.store.Dispatch(func(st SessionState) SessionState {
		st = end(st)
		st.Status = Authenticated
		st.User = &user
		return st
	})
	s.log.Info(ctx, "logged in", "username", user.Username)
	return nil
}

// Logout ends the session locally before returning. The server is told to
// invalidate the token in the background and its answer is only logged.
func (s *SessionStore) Logout(ctx context.Context) {
	s.persistMu.Lock()
	token := s.cred.Token()
	s.store.Dispatch(func(st SessionState) SessionState {
		st.gen++
		st.Status = Unauthenticated
		st.User = nil
		st.Err = ""
		return st
	})
	s.cred.Clear()
	if err := s.tokens.Delete(ctx); err != nil {
		s.log.Warn(ctx, "deleting persisted token failed", "err", err)
	}
	s.persistMu.Unlock()

	if token == "" {
		return
	}

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverLogoutTimeout)
		defer cancel()
		if err := s.api.Logout(bctx, token); err != nil {
			s.log.Warn(bctx, "server logout failed", "err", err)
		}
	}()
}

// Restore resumes a session from the persisted token. It only acts while
// the store is still Restoring. Failures to validate the token end in
// Unauthenticated without a user-facing error.
func (s *SessionStore) Restore(ctx context.Context) error {
	var gen uint64
	s.persistMu.Lock()
	_, ok := s.store.DispatchIf(
		func(st SessionState) bool { return st.Status == Restoring },
		func(st SessionState) SessionState {
			st.gen++
			gen = st.gen
			return begin(st)
		},
	)
	s.persistMu.Unlock()
	if !ok {
		return nil
	}

	token, err := s.tokens.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "reading persisted token failed", "err", err)
		s.finishRestore(gen, nil)
		return err
	}
	if token == "" {
		s.finishRestore(gen, nil)
		return nil
	}

	if s.expired(token) {
		s.log.Info(ctx, "persisted token expired")
		s.dropToken(ctx, gen)
		return nil
	}

	s.persistMu.Lock()
	if s.store.Get().gen == gen {
		s.cred.Set(token)
	}
	s.persistMu.Unlock()

	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Info(ctx, "persisted token rejected", "err", err)
		s.dropToken(ctx, gen)
		return nil
	}

	s.finishRestore(gen, user)
	return nil
}

func (s *SessionStore) finishRestore(gen uint64, user *models.UserProfile) {
	s.store.Dispatch(func(st SessionState) SessionState {
		st = end(st)
		if st.gen != gen {
			return st
		}
		if user != nil {
			st.Status = Authenticated
			st.User = user
		} else {
			st.Status = Unauthenticated
			st.User = nil
		}
		return st
	})
}

func (s *SessionStore) dropToken(ctx context.Context, gen uint64) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if s.store.Get().gen == gen {
		s.cred.Clear()
		if err := s.tokens.Delete(ctx); err != nil {
			s.log.Warn(ctx, "deleting persisted token failed", "err", err)
		}
	}
	s.finishRestore(gen, nil)
}

// expired reports whether token is a JWT whose exp claim has passed.
// Tokens that are not JWTs are left for the server to judge.
func (s *SessionStore) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(s.now())
}

// UpdateProfile sends a partial profile update. On success the stored user
// is replaced by the server's copy; on failure it is left untouched.
func (s *SessionStore) UpdateProfile(ctx context.Context, patch models.ProfilePatch) error {
	cur := s.store.Get()
	if cur.Status != Authenticated {
		s.setErr(msgNotAuthenticated)
		return client.ErrUnauthorized
	}
	if patch.Empty() {
		err := &client.ValidationError{Field: "profile", Reason: "nothing to update"}
		s.setErr(err.Reason)
		return err
	}

	gen := cur.gen
	s.store.Dispatch(func(st SessionState) SessionState {
		st.Err = ""
		return begin(st)
	})

	user, err := s.api.UpdateMe(ctx, patch)

	s.store.Dispatch(func(st SessionState) SessionState {
		st = end(st)
		if st.gen != gen {
			return st
		}
		if err != nil {
			st.Err = describeAuthed(err, msgProfileUpdateFailed)
			return st
		}
		st.User = user
		return st
	})
	if err != nil {
		s.log.Warn(ctx, "profile update failed", "err", err)
	}
	return err
}

// ValidatePasswordChange checks a password-change form. A valid form still
// yields ErrPasswordChangeUnsupported.
func (s *SessionStore) ValidatePasswordChange(newPassword, confirm []byte) error {
	var err error
	switch {
	case len(newPassword) == 0:
		err = &client.ValidationError{Field: "password", Reason: "New password must not be empty"}
	case string(newPassword) != string(confirm):
		err = &client.ValidationError{Field: "password", Reason: msgPasswordMismatch}
	default:
		err = ErrPasswordChangeUnsupported
	}

	var ve *client.ValidationError
	if errors.As(err, &ve) {
		s.setErr(ve.Reason)
	}
	return err
}

func (s *SessionStore) setErr(msg string) {
	s.store.Dispatch(func(st SessionState) SessionState {
		st.Err = msg
		return st
	})
}

func begin(st SessionState) SessionState {
	st.inflight++
	st.Loading = true
	return st
}

func end(st SessionState) SessionState {
	if st.inflight > 0 {
		st.inflight--
	}
	st.Loading = st.inflight > 0
	return st
}
