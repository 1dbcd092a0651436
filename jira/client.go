package jira

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Authentication schemes understood by the tracker.
const (
	AuthBasic    = "basic"
	AuthBearer   = "bearer"
	AuthAPIToken = "api_token"
)

const (
	defaultPageSize   = 100
	maxResponseBytes  = 8 << 20
	apiErrorBodyLimit = 300
)

// Client defines the tracker operations needed to build a timesheet.
type Client interface {
	Myself(ctx context.Context) (User, error)
	SearchIssues(ctx context.Context, jql string, fields []string) ([]Issue, error)
	IssueWorklogs(ctx context.Context, issueKey string) ([]Worklog, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL  string
	Login    string
	Token    string
	AuthType string
	// APIVersion is "3" for cloud and "2" for self-hosted installations.
	APIVersion string
	Insecure   bool
	UserAgent  string
	HTTPClient httpDoer
	Logger     zerolog.Logger
}

type HTTPClient struct {
	baseURL    string
	login      string
	token      string
	authType   string
	apiVersion string
	userAgent  string
	httpClient httpDoer
	logger     zerolog.Logger
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	authType := strings.ToLower(strings.TrimSpace(cfg.AuthType))
	switch authType {
	case "":
		authType = AuthBasic
	case AuthBasic, AuthBearer, AuthAPIToken:
	default:
		return nil, fmt.Errorf("unsupported auth type %q", cfg.AuthType)
	}

	apiVersion := strings.TrimSpace(cfg.APIVersion)
	if apiVersion == "" {
		apiVersion = "3"
	}

	doer := cfg.HTTPClient
	if doer == nil {
		client := &http.Client{Timeout: 30 * time.Second}
		if cfg.Insecure {
			client.Transport = &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in for self-signed servers
			}
		}
		doer = client
	}

	return &HTTPClient{
		baseURL:    baseURL,
		login:      strings.TrimSpace(cfg.Login),
		token:      strings.TrimSpace(cfg.Token),
		authType:   authType,
		apiVersion: apiVersion,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
		logger:     cfg.Logger,
	}, nil
}

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("jira api error: HTTP %d", e.StatusCode)
	}
	if len(body) > apiErrorBodyLimit {
		body = body[:apiErrorBodyLimit] + "..."
	}
	return fmt.Sprintf("jira api error: HTTP %d: %s", e.StatusCode, body)
}

type User struct {
	AccountID    string `json:"accountId"`
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

type IssueFields struct {
	Summary string `json:"summary"`
}

type Worklog struct {
	ID               string `json:"id"`
	Author           User   `json:"author"`
	TimeSpent        string `json:"timeSpent"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	// Comment is a plain string on API v2 and a rich text document on v3.
	Comment json.RawMessage `json:"comment"`
	Started string          `json:"started"`
	Created string          `json:"created"`
}

func (c *HTTPClient) apiPath(resource string) string {
	return "/rest/api/" + c.apiVersion + resource
}

// Myself returns the authenticated user and doubles as a connection test.
func (c *HTTPClient) Myself(ctx context.Context) (User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodGet, c.apiPath("/myself"), nil, nil, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// SearchIssues returns every issue matching jql. Cloud installations use the
// token-paginated search endpoint and fall back to the classic one when the
// server does not know it.
func (c *HTTPClient) SearchIssues(ctx context.Context, jql string, fields []string) ([]Issue, error) {
	if c.apiVersion == "2" {
		return c.searchIssuesLegacy(ctx, jql, fields)
	}

	issues, err := c.searchIssuesEnhanced(ctx, jql, fields)
	if err == nil {
		return issues, nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		c.logger.Debug().Msg("enhanced search endpoint not available, using classic search")
		return c.searchIssuesLegacy(ctx, jql, fields)
	}
	return nil, err
}

func (c *HTTPClient) searchIssuesEnhanced(ctx context.Context, jql string, fields []string) ([]Issue, error) {
	type request struct {
		JQL           string   `json:"jql"`
		MaxResults    int      `json:"maxResults"`
		NextPageToken string   `json:"nextPageToken,omitempty"`
		Fields        []string `json:"fields,omitempty"`
	}
	type response struct {
		IsLast        bool    `json:"isLast"`
		Issues        []Issue `json:"issues"`
		NextPageToken string  `json:"nextPageToken"`
	}

	var out []Issue
	next := ""
	for {
		body := request{JQL: jql, MaxResults: defaultPageSize, NextPageToken: next, Fields: fields}
		var page response
		if err := c.doJSON(ctx, http.MethodPost, c.apiPath("/search/jql"), nil, body, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Issues...)
		if page.IsLast || page.NextPageToken == "" || page.NextPageToken == next {
			break
		}
		next = page.NextPageToken
	}
	return out, nil
}

func (c *HTTPClient) searchIssuesLegacy(ctx context.Context, jql string, fields []string) ([]Issue, error) {
	type response struct {
		StartAt int     `json:"startAt"`
		Total   int     `json:"total"`
		Issues  []Issue `json:"issues"`
	}

	var out []Issue
	startAt := 0
	for {
		query := url.Values{}
		query.Set("jql", jql)
		query.Set("startAt", strconv.Itoa(startAt))
		query.Set("maxResults", strconv.Itoa(defaultPageSize))
		if len(fields) > 0 {
			query.Set("fields", strings.Join(fields, ","))
		}
		var page response
		if err := c.doJSON(ctx, http.MethodGet, c.apiPath("/search"), query, nil, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Issues...)
		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}
	return out, nil
}

// IssueWorklogs returns all worklogs recorded on issueKey.
func (c *HTTPClient) IssueWorklogs(ctx context.Context, issueKey string) ([]Worklog, error) {
	issueKey = strings.TrimSpace(issueKey)
	if issueKey == "" {
		return nil, errors.New("issue key is required")
	}

	type response struct {
		StartAt  int       `json:"startAt"`
		Total    int       `json:"total"`
		Worklogs []Worklog `json:"worklogs"`
	}

	path := c.apiPath("/issue/" + url.PathEscape(issueKey) + "/worklog")
	var out []Worklog
	startAt := 0
	for {
		query := url.Values{}
		query.Set("startAt", strconv.Itoa(startAt))
		query.Set("maxResults", strconv.Itoa(defaultPageSize))
		var page response
		if err := c.doJSON(ctx, http.MethodGet, path, query, nil, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Worklogs...)
		startAt += len(page.Worklogs)
		if len(page.Worklogs) == 0 || startAt >= page.Total {
			break
		}
	}
	return out, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, query url.Values, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	target := c.baseURL + endpointPath
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	switch c.authType {
	case AuthBearer:
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
	default:
		if c.login != "" || c.token != "" {
			req.SetBasicAuth(c.login, c.token)
		}
	}

	c.logger.Debug().Str("method", method).Str("path", endpointPath).Msg("jira request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response %s %s: %w", method, endpointPath, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(payload)}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response %s %s: %w", method, endpointPath, err)
	}
	return nil
}
