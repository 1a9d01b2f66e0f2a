package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/models"
)

const (
	pathLogin          = "/api/v1/auth/login"
	pathLogout         = "/api/v1/auth/logout"
	pathMe             = "/api/v1/auth/me"
	pathUsersMe        = "/api/v1/users/me"
	pathImageUpload    = "/api/v1/images/upload"
	pathAnalyze        = "/api/v1/analyses/analyze"
	pathAnalyses       = "/api/v1/analyses/"
	pathSummary        = "/api/v1/analyses/summary"
	pathCallLogs       = "/api/v1/call-logs"
	pathCallLogsUpload = "/api/v1/call-logs/upload"

	uploadField = "file"
)

// DefaultAnalysisTypes is what every analysis submission asks for.
var DefaultAnalysisTypes = []string{"full"}

// LoginResult is the body returned by a successful login.
type LoginResult struct {
	AccessToken string             `json:"access_token"`
	User        models.UserProfile `json:"user"`
}

// Client is the typed contract of the analysis backend.
//
// Every method returns a *GatewayError on transport, status or decoding
// failures; match with errors.Is against ErrUnauthorized,
// ErrNetworkFailure, ErrDecodeFailure or ErrServer.
type Client interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// Logout asks the server to invalidate token.
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context) (*models.UserProfile, error)
	UpdateMe(ctx context.Context, patch models.ProfilePatch) (*models.UserProfile, error)

	UploadImage(ctx context.Context, img models.ImageUpload) (*models.ImageAsset, error)
	Analyze(ctx context.Context, imageID int64) (*models.AnalysisJob, error)
	GetAnalysis(ctx context.Context, jobID int64) (*models.AnalysisJob, error)
	GetSummary(ctx context.Context) (*models.AnalysisSummary, error)

	ListCallLogs(ctx context.Context) ([]models.CallLogEntry, error)
	UploadCallLogs(ctx context.Context, entries []models.CallLogEntry) (models.UploadAck, error)
}

// HTTPClient implements Client on top of a Gateway.
type HTTPClient struct {
	gw *Gateway
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(gw *Gateway) *HTTPClient {
	return &HTTPClient{gw: gw}
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	raw, err := c.gw.Send(ctx, http.MethodPost, pathLogin, body)
	if err != nil {
		return nil, err
	}
	res, err := decode[LoginResult](raw)
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, &GatewayError{Kind: KindDecode, Err: fmt.Errorf("login response has no access_token")}
	}
	return res, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	_, err := c.gw.SendWithToken(ctx, http.MethodPost, pathLogout, nil, token)
	return err
}

func (c *HTTPClient) Me(ctx context.Context) (*models.UserProfile, error) {
	return fetch[models.UserProfile](ctx, c.gw, http.MethodGet, pathMe, nil)
}

func (c *HTTPClient) UpdateMe(ctx context.Context, patch models.ProfilePatch) (*models.UserProfile, error) {
	return fetch[models.UserProfile](ctx, c.gw, http.MethodPut, pathUsersMe, patch)
}

func (c *HTTPClient) UploadImage(ctx context.Context, img models.ImageUpload) (*models.ImageAsset, error) {
	raw, err := c.gw.Upload(ctx, pathImageUpload, uploadField, FilePart{
		Filename: img.Filename,
		MimeType: img.MimeType,
		Data:     img.Data,
	})
	if err != nil {
		return nil, err
	}
	return decode[models.ImageAsset](raw)
}

func (c *HTTPClient) Analyze(ctx context.Context, imageID int64) (*models.AnalysisJob, error) {
	return fetch[models.AnalysisJob](ctx, c.gw, http.MethodPost, pathAnalyze, models.AnalyzeRequest{
		ImageID:       imageID,
		AnalysisTypes: DefaultAnalysisTypes,
	})
}

func (c *HTTPClient) GetAnalysis(ctx context.Context, jobID int64) (*models.AnalysisJob, error) {
	return fetch[models.AnalysisJob](ctx, c.gw, http.MethodGet, pathAnalyses+strconv.FormatInt(jobID, 10), nil)
}

func (c *HTTPClient) GetSummary(ctx context.Context) (*models.AnalysisSummary, error) {
	return fetch[models.AnalysisSummary](ctx, c.gw, http.MethodGet, pathSummary, nil)
}

func (c *HTTPClient) ListCallLogs(ctx context.Context) ([]models.CallLogEntry, error) {
	raw, err := c.gw.Send(ctx, http.MethodGet, pathCallLogs, nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var entries []models.CallLogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &GatewayError{Kind: KindDecode, Err: err}
	}
	return entries, nil
}

func (c *HTTPClient) UploadCallLogs(ctx context.Context, entries []models.CallLogEntry) (models.UploadAck, error) {
	return c.gw.Send(ctx, http.MethodPost, pathCallLogsUpload, models.CallLogUpload{Entries: entries})
}

func fetch[T any](ctx context.Context, gw *Gateway, method, path string, body any) (*T, error) {
	raw, err := gw.Send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return decode[T](raw)
}

// decode treats an empty body as a decoding failure: every typed
// endpoint that uses it promises a record.
func decode[T any](raw json.RawMessage) (*T, error) {
	if raw == nil {
		return nil, &GatewayError{Kind: KindDecode, Err: fmt.Errorf("empty response body")}
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &GatewayError{Kind: KindDecode, Err: err}
	}
	return &v, nil
}
