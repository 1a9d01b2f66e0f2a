package services

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/client"
	"github.com/nyakeriga/geoforensics-web-ui/internal/client/models"
)

// fakeClient implements client.Client. Unset hooks fail the call with
// errNotStubbed; every call is counted.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	login          func(ctx context.Context, username, password string) (*client.LoginResult, error)
	logout         func(ctx context.Context, token string) error
	me             func(ctx context.Context) (*models.UserProfile, error)
	updateMe       func(ctx context.Context, patch models.ProfilePatch) (*models.UserProfile, error)
	uploadImage    func(ctx context.Context, img models.ImageUpload) (*models.ImageAsset, error)
	analyze        func(ctx context.Context, imageID int64) (*models.AnalysisJob, error)
	getAnalysis    func(ctx context.Context, jobID int64) (*models.AnalysisJob, error)
	getSummary     func(ctx context.Context) (*models.AnalysisSummary, error)
	listCallLogs   func(ctx context.Context) ([]models.CallLogEntry, error)
	uploadCallLogs func(ctx context.Context, entries []models.CallLogEntry) (models.UploadAck, error)
}

var errNotStubbed = errors.New("not stubbed")

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeClient) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (*client.LoginResult, error) {
	f.count("Login")
	if f.login == nil {
		return nil, errNotStubbed
	}
	return f.login(ctx, username, password)
}

func (f *fakeClient) Logout(ctx context.Context, token string) error {
	f.count("Logout")
	if f.logout == nil {
		return nil
	}
	return f.logout(ctx, token)
}

func (f *fakeClient) Me(ctx context.Context) (*models.UserProfile, error) {
	f.count("Me")
	if f.me == nil {
		return nil, errNotStubbed
	}
	return f.me(ctx)
}

func (f *fakeClient) UpdateMe(ctx context.Context, patch models.ProfilePatch) (*models.UserProfile, error) {
	f.count("UpdateMe")
	if f.updateMe == nil {
		return nil, errNotStubbed
	}
	return f.updateMe(ctx, patch)
}

func (f *fakeClient) UploadImage(ctx context.Context, img models.ImageUpload) (*models.ImageAsset, error) {
	f.count("UploadImage")
	if f.uploadImage == nil {
		return nil, errNotStubbed
	}
	return f.uploadImage(ctx, img)
}

func (f *fakeClient) Analyze(ctx context.Context, imageID int64) (*models.AnalysisJob, error) {
	f.count("Analyze")
	if f.analyze == nil {
		return nil, errNotStubbed
	}
	return f.analyze(ctx, imageID)
}

func (f *fakeClient) GetAnalysis(ctx context.Context, jobID int64) (*models.AnalysisJob, error) {
	f.count("GetAnalysis")
	if f.getAnalysis == nil {
		return nil, errNotStubbed
	}
	return f.getAnalysis(ctx, jobID)
}

func (f *fakeClient) GetSummary(ctx context.Context) (*models.AnalysisSummary, error) {
	f.count("GetSummary")
	if f.getSummary == nil {
		return nil, errNotStubbed
	}
	return f.getSummary(ctx)
}

func (f *fakeClient) ListCallLogs(ctx context.Context) ([]models.CallLogEntry, error) {
	f.count("ListCallLogs")
	if f.listCallLogs == nil {
		return nil, errNotStubbed
	}
	return f.listCallLogs(ctx)
}

func (f *fakeClient) UploadCallLogs(ctx context.Context, entries []models.CallLogEntry) (models.UploadAck, error) {
	f.count("UploadCallLogs")
	if f.uploadCallLogs == nil {
		return nil, errNotStubbed
	}
	return f.uploadCallLogs(ctx, entries)
}

// memTokens is an in-memory TokenStore.
type memTokens struct {
	mu      sync.Mutex
	token   string
	saves   int
	deletes int
	loadErr error
}

func (m *memTokens) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.loadErr
}

func (m *memTokens) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.saves++
	return nil
}

func (m *memTokens) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.deletes++
	return nil
}

func (m *memTokens) get() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func httpErr(status int, detail string) error {
	return &client.GatewayError{Kind: client.KindHTTP, Status: status, Detail: detail, Err: errors.New(http.StatusText(status))}
}

func netErr() error {
	return &client.GatewayError{Kind: client.KindNetwork, Err: errors.New("connection refused")}
}
