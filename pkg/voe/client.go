package voe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/horacebramwell/voe-go/pkg/httpclient"
)

// Version of the library, reported in the User-Agent header.
const Version = "0.1.0"

const (
	// DefaultBaseURL is the JSON API root every operation except UploadFile
	// talks to.
	DefaultBaseURL = "https://voe.sx/api"

	defaultTimeout = 30 * time.Second
	userAgent      = "voe-go/" + Version
)

// Client talks to the VOE.sx file-hosting API. All JSON endpoints go through
// one shared HTTP client carrying the API key as a query parameter; uploads go
// through a bare transport because each upload targets a different host.
// Configuration is immutable after construction, so a Client is safe for
// concurrent use.
type Client struct {
	api    *resty.Client
	upload httpclient.Client

	baseURL string
	apiKey  string
	timeout time.Duration
	log     Logger
}

// Option customizes a Client during construction.
type Option func(*Client)

// WithBaseURL overrides the JSON API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout overrides the per-request timeout on both transports.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger injects the logging capability. Without it the client is silent.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithUploadClient overrides the upload transport.
func WithUploadClient(client httpclient.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.upload = client
		}
	}
}

// NewClient builds a client for the given API key. An empty key fails
// immediately with MISSING_API_KEY; no request is ever issued without one.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, &Error{Code: ErrCodeMissingAPIKey, Message: missingAPIKeyMessage}
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		timeout: defaultTimeout,
		log:     nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = ensureLogger(c.log)

	c.api = httpclient.NewRestyHTTPClient(c.timeout).
		SetBaseURL(c.baseURL).
		SetHeader("User-Agent", userAgent).
		SetQueryParam("key", c.apiKey)
	if c.upload == nil {
		c.upload = httpclient.NewRestyClient(c.timeout)
	}
	return c, nil
}

// GetAccountInfo returns the account profile for the configured API key.
func (c *Client) GetAccountInfo(ctx context.Context) (*Response, error) {
	return c.get(ctx, "/account/info", nil)
}

// GetAccountStats returns the account's reporting counters.
func (c *Client) GetAccountStats(ctx context.Context) (*Response, error) {
	return c.get(ctx, "/account/stats", nil)
}

// GetUploadServer returns the URL the next upload should be POSTed to. Each
// call may yield a different host; the client does not cache it, callers hand
// it straight to UploadFile.
func (c *Client) GetUploadServer(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, "/upload/server", nil)
	if err != nil {
		return "", err
	}

	var server string
	if err := json.Unmarshal(resp.Result, &server); err != nil || strings.TrimSpace(server) == "" {
		return "", classify(nil, fmt.Errorf("upload server url missing in response"))
	}
	return server, nil
}

// UploadFile posts data as a multipart body to an upload server previously
// obtained from GetUploadServer. The destination is a different host per call,
// so the request bypasses the shared API client and carries no API key; the
// upload server trusts the URL it handed out.
func (c *Client) UploadFile(ctx context.Context, serverURL, fileName string, data []byte) (*Response, error) {
	c.log.Infof("POST %s", serverURL)

	resp, err := c.upload.PostMultipart(ctx, serverURL, nil, "file", fileName, data)
	if err != nil {
		clientErr := classify(nil, err)
		c.log.Errorf("POST %s failed: %v", serverURL, clientErr)
		return nil, clientErr
	}

	c.log.Infof("POST %s -> %d", serverURL, resp.StatusCode())

	if resp.StatusCode() >= http.StatusBadRequest {
		clientErr := classify(&ErrorResponse{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       resp.Body(),
		}, nil)
		c.log.Errorf("POST %s failed: status %d body %s", serverURL, resp.StatusCode(), bodySnippet(resp.Body()))
		return nil, clientErr
	}

	return c.decodeResponse(resp.Body()), nil
}

// RemoteUpload asks the service to fetch and host a file from sourceURL.
func (c *Client) RemoteUpload(ctx context.Context, sourceURL string) (*Response, error) {
	return c.get(ctx, "/upload/url", map[string]string{"url": sourceURL})
}

// ListRemoteUploads lists remote-upload jobs; a non-nil id narrows the listing
// to that job.
func (c *Client) ListRemoteUploads(ctx context.Context, id *int64) (*Response, error) {
	params := make(map[string]string)
	if id != nil {
		params["id"] = strconv.FormatInt(*id, 10)
	}
	return c.get(ctx, "/upload/url/list", params)
}

// CloneFile copies an existing file into the given folder; folder 0 is the
// account root.
func (c *Client) CloneFile(ctx context.Context, fileCode string, folderID int64) (*Response, error) {
	return c.get(ctx, "/file/clone", map[string]string{
		"file_code": fileCode,
		"fld_id":    strconv.FormatInt(folderID, 10),
	})
}

// GetFileInfo looks up file details. Several codes can be queried at once by
// joining them with commas; the joining is the caller's job.
func (c *Client) GetFileInfo(ctx context.Context, fileCodes string) (*Response, error) {
	return c.get(ctx, "/file/info", map[string]string{"file_code": fileCodes})
}

// ListFiles pages through the account's files, narrowed by opts.
func (c *Client) ListFiles(ctx context.Context, opts ListFilesOptions) (*Response, error) {
	return c.get(ctx, "/file/list", opts.queryParams())
}

// RenameFile sets a new title on the file.
func (c *Client) RenameFile(ctx context.Context, fileCode, title string) (*Response, error) {
	return c.get(ctx, "/file/rename", map[string]string{
		"file_code": fileCode,
		"title":     title,
	})
}

// MoveFile moves the file into the given folder.
func (c *Client) MoveFile(ctx context.Context, fileCode string, folderID int64) (*Response, error) {
	return c.get(ctx, "/file/move", map[string]string{
		"file_code": fileCode,
		"fld_id":    strconv.FormatInt(folderID, 10),
	})
}

// DeleteFile removes the file from the account.
func (c *Client) DeleteFile(ctx context.Context, fileCode string) (*Response, error) {
	return c.get(ctx, "/file/delete", map[string]string{"file_code": fileCode})
}

// get is the single execution path shared by every JSON endpoint: build query
// parameters, issue the call through the shared client, classify failures, and
// hand back the decoded envelope.
func (c *Client) get(ctx context.Context, path string, params map[string]string) (*Response, error) {
	c.log.Infof("GET %s", path)

	req := c.api.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(path)
	if err != nil {
		clientErr := classify(nil, err)
		c.log.Errorf("GET %s failed: %v", path, clientErr)
		return nil, clientErr
	}

	c.log.Infof("GET %s -> %d", path, resp.StatusCode())

	if resp.IsError() {
		clientErr := classify(&ErrorResponse{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       resp.Body(),
		}, nil)
		c.log.Errorf("GET %s failed: status %d body %s", path, resp.StatusCode(), bodySnippet(resp.Body()))
		return nil, clientErr
	}

	return c.decodeResponse(resp.Body()), nil
}

// decodeResponse parses the envelope. Bodies that are not a JSON object are
// preserved in Raw only.
func (c *Client) decodeResponse(body []byte) *Response {
	resp := &Response{Raw: append([]byte(nil), body...)}
	if len(body) == 0 {
		return resp
	}
	if err := json.Unmarshal(body, resp); err != nil {
		c.log.Warnf("response body is not a JSON envelope: %v", err)
		return &Response{Raw: resp.Raw}
	}
	return resp
}

func bodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
