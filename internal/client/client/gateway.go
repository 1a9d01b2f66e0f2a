package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nyakeriga/geoforensics-web-ui/internal/common"
	"github.com/nyakeriga/geoforensics-web-ui/internal/logging"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 16 << 20

// FilePart is the single file carried by a multipart upload.
type FilePart struct {
	Filename string
	MimeType string
	Data     []byte
}

// Gateway issues HTTP requests against the backend, attaching the bearer
// token held by the Credential at the moment each request is built.
// It performs no retries and keeps no state besides its configuration.
type Gateway struct {
	baseURL string
	http    *http.Client
	cred    *Credential
	log     logging.Logger
}

// GatewayOption configures a Gateway built by NewGateway.
type GatewayOption func(*Gateway)

// WithHTTPClient replaces the default http.Client, e.g. with one whose
// transport points at a test server.
func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) { g.http = c }
}

// WithLogger sets the logger used for per-request lines. Without it the
// gateway logs nothing.
func WithLogger(l logging.Logger) GatewayOption {
	return func(g *Gateway) { g.log = l }
}

// WithTimeout sets the per-request timeout. It applies to a copy of the
// http.Client, so a client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d <= 0 {
			return
		}
		c := *g.http
		c.Timeout = d
		g.http = &c
	}
}

// NewGateway returns a gateway for the backend at baseURL. Tokens are read
// from cred when each request is built. The default http.Client times out
// after 30 seconds.
func NewGateway(baseURL string, cred *Credential, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		cred:    cred,
		log:     logging.Discard(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Send issues a request with an optional JSON body. A nil body sends no
// payload. The returned raw JSON is nil for an empty 2xx body.
func (g *Gateway) Send(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	return g.send(ctx, method, path, body, g.cred.Token())
}

// SendWithToken is Send with an explicit bearer token in place of the
// Credential's. It is used to invalidate a token that has already been
// cleared locally.
func (g *Gateway) SendWithToken(ctx context.Context, method, path string, body any, token string) (json.RawMessage, error) {
	return g.send(ctx, method, path, body, token)
}

func (g *Gateway) send(ctx context.Context, method, path string, body any, token string) (json.RawMessage, error) {
	var (
		rdr         io.Reader
		contentType string
	)
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
		contentType = "application/json"
	}
	return g.do(ctx, method, path, rdr, contentType, token)
}

// Upload posts a multipart/form-data body with exactly one file field.
func (g *Gateway) Upload(ctx context.Context, path, field string, file FilePart) (json.RawMessage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(file.Filename)))
	h.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("write multipart part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	return g.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), g.cred.Token())
}

func (g *Gateway) do(ctx context.Context, method, path string, body io.Reader, contentType, token string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}

	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, "Bearer "+token)
	}

	log := g.log.With("method", method, "path", path, "request_id", reqID)
	start := time.Now()

	resp, err := g.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "err", err, "elapsed", time.Since(start))
		return nil, &GatewayError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Warn(ctx, "reading response failed", "status", resp.StatusCode, "err", err)
		return nil, &GatewayError{Kind: KindNetwork, Status: resp.StatusCode, Err: err}
	}
	log.Debug(ctx, "request completed", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &GatewayError{
			Kind:   KindHTTP,
			Status: resp.StatusCode,
			Detail: parseDetail(raw),
			Err:    fmt.Errorf("%s %s returned %d", method, path, resp.StatusCode),
		}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, &GatewayError{Kind: KindDecode, Status: resp.StatusCode, Err: fmt.Errorf("%s %s: body is not JSON", method, path)}
	}
	return json.RawMessage(raw), nil
}

// parseDetail extracts the "detail" member of an error body. It is either
// a string or a list of objects with a "msg" member.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
