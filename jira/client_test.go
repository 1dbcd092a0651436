package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

type fakeDoer struct {
	fn func(*http.Request) (*http.Response, error)
}

func (f fakeDoer) Do(req *http.Request) (*http.Response, error) {
	return f.fn(req)
}

func jsonResponse(payload any) *http.Response {
	body, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(string(body))),
		Header:     make(http.Header),
	}
}

func statusResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(t *testing.T, cfg ClientConfig, fn func(*http.Request) (*http.Response, error)) *HTTPClient {
	t.Helper()
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://example.atlassian.net/"
	}
	cfg.HTTPClient = fakeDoer{fn: fn}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
	if _, err := NewClient(ClientConfig{BaseURL: "example.atlassian.net"}); err == nil {
		t.Fatalf("expected error for base URL without scheme")
	}
	if _, err := NewClient(ClientConfig{BaseURL: "https://example.atlassian.net", AuthType: "kerberos"}); err == nil {
		t.Fatalf("expected error for unsupported auth type")
	}
}

func TestHTTPClient_MyselfUsesBasicAuth(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, ClientConfig{
		Login:     "jane@example.com",
		Token:     "secret",
		AuthType:  AuthAPIToken,
		UserAgent: "timesheet-test",
	}, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodGet || r.URL.Path != "/rest/api/3/myself" {
			return nil, fmt.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		login, token, ok := r.BasicAuth()
		if !ok || login != "jane@example.com" || token != "secret" {
			t.Fatalf("unexpected basic auth: %q %q %v", login, token, ok)
		}
		if got := r.Header.Get("User-Agent"); got != "timesheet-test" {
			t.Fatalf("unexpected User-Agent: %q", got)
		}
		return jsonResponse(User{DisplayName: "Jane Doe", EmailAddress: "jane@example.com"}), nil
	})

	user, err := client.Myself(context.Background())
	if err != nil {
		t.Fatalf("myself: %v", err)
	}
	if user.DisplayName != "Jane Doe" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestHTTPClient_BearerAndLocalAPIVersion(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, ClientConfig{
		BaseURL:    "https://jira.internal",
		Token:      "pat-token",
		AuthType:   AuthBearer,
		APIVersion: "2",
	}, func(r *http.Request) (*http.Response, error) {
		if got := r.Header.Get("Authorization"); got != "Bearer pat-token" {
			t.Fatalf("unexpected Authorization header: %q", got)
		}
		if r.URL.Path != "/rest/api/2/myself" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		return jsonResponse(User{Name: "jdoe"}), nil
	})

	if _, err := client.Myself(context.Background()); err != nil {
		t.Fatalf("myself: %v", err)
	}
}

func TestHTTPClient_SearchIssuesEnhancedPagination(t *testing.T) {
	t.Parallel()

	calls := 0
	client := newTestClient(t, ClientConfig{}, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/api/3/search/jql" {
			return nil, fmt.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			JQL           string   `json:"jql"`
			NextPageToken string   `json:"nextPageToken"`
			Fields        []string `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode search body: %v", err)
		}
		if body.JQL != `project = "ABC"` {
			t.Fatalf("unexpected jql: %q", body.JQL)
		}
		if strings.Join(body.Fields, ",") != "key,summary" {
			t.Fatalf("unexpected fields: %v", body.Fields)
		}

		calls++
		switch body.NextPageToken {
		case "":
			return jsonResponse(map[string]any{
				"issues":        []Issue{{Key: "ABC-1"}, {Key: "ABC-2"}},
				"nextPageToken": "page-2",
			}), nil
		case "page-2":
			return jsonResponse(map[string]any{
				"issues": []Issue{{Key: "ABC-3", Fields: IssueFields{Summary: "Third"}}},
				"isLast": true,
			}), nil
		default:
			t.Fatalf("unexpected page token %q", body.NextPageToken)
			return nil, nil
		}
	})

	issues, err := client.SearchIssues(context.Background(), `project = "ABC"`, []string{"key", "summary"})
	if err != nil {
		t.Fatalf("search issues: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 search calls, got %d", calls)
	}
	if len(issues) != 3 || issues[2].Key != "ABC-3" || issues[2].Fields.Summary != "Third" {
		t.Fatalf("unexpected issues: %+v", issues)
	}
}

func TestHTTPClient_SearchIssuesFallsBackToClassicSearch(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, ClientConfig{}, func(r *http.Request) (*http.Response, error) {
		switch fmt.Sprintf("%s %s", r.Method, r.URL.Path) {
		case "POST /rest/api/3/search/jql":
			return statusResponse(http.StatusNotFound, `{"errorMessages":["not found"]}`), nil
		case "GET /rest/api/3/search":
			if got := r.URL.Query().Get("jql"); got != `project = "ABC"` {
				t.Fatalf("unexpected jql query: %q", got)
			}
			if got := r.URL.Query().Get("fields"); got != "key,summary" {
				t.Fatalf("unexpected fields query: %q", got)
			}
			return jsonResponse(map[string]any{
				"startAt": 0,
				"total":   1,
				"issues":  []Issue{{Key: "ABC-9"}},
			}), nil
		default:
			return nil, fmt.Errorf("unexpected request %s %s", r.Method, r.URL.String())
		}
	})

	issues, err := client.SearchIssues(context.Background(), `project = "ABC"`, []string{"key", "summary"})
	if err != nil {
		t.Fatalf("search issues: %v", err)
	}
	if len(issues) != 1 || issues[0].Key != "ABC-9" {
		t.Fatalf("unexpected issues: %+v", issues)
	}
}

func TestHTTPClient_IssueWorklogsPagination(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, ClientConfig{}, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/rest/api/3/issue/ABC-1/worklog" {
			return nil, fmt.Errorf("unexpected path %s", r.URL.Path)
		}
		switch r.URL.Query().Get("startAt") {
		case "0":
			return jsonResponse(map[string]any{
				"startAt":  0,
				"total":    3,
				"worklogs": []Worklog{{ID: "1"}, {ID: "2"}},
			}), nil
		case "2":
			return jsonResponse(map[string]any{
				"startAt":  2,
				"total":    3,
				"worklogs": []Worklog{{ID: "3", TimeSpentSeconds: 1800}},
			}), nil
		default:
			return nil, fmt.Errorf("unexpected startAt %q", r.URL.Query().Get("startAt"))
		}
	})

	worklogs, err := client.IssueWorklogs(context.Background(), "ABC-1")
	if err != nil {
		t.Fatalf("issue worklogs: %v", err)
	}
	if len(worklogs) != 3 || worklogs[2].TimeSpentSeconds != 1800 {
		t.Fatalf("unexpected worklogs: %+v", worklogs)
	}
}

func TestHTTPClient_APIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, ClientConfig{}, func(r *http.Request) (*http.Response, error) {
		return statusResponse(http.StatusUnauthorized, "Unauthorized"), nil
	})

	_, err := client.Myself(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", apiErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "HTTP 401: Unauthorized") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestAPIError_TruncatesLongBodies(t *testing.T) {
	t.Parallel()

	err := &APIError{StatusCode: http.StatusInternalServerError, Body: strings.Repeat("x", 500)}
	if got := err.Error(); !strings.HasSuffix(got, "...") || len(got) > 350 {
		t.Fatalf("unexpected message length %d: %q", len(got), got)
	}
	if got := (&APIError{StatusCode: http.StatusBadGateway}).Error(); got != "jira api error: HTTP 502" {
		t.Fatalf("unexpected message: %q", got)
	}
}
