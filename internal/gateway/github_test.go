package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/naka-gawa/orgscout/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
// The search limiter is unthrottled so tests run at full speed.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	// Use NewEnterpriseClient to point the GraphQL client to our mock server's URL.
	graphqlClient := githubv4.NewEnterpriseClient(server.URL, server.Client())

	gateway := &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		searchLimiter: rate.NewLimiter(rate.Inf, 1),
		logger:        log.New(io.Discard, "", 0),
	}
	return gateway, server
}

// repoPageJSON builds a listing page of count repositories named repo-<start>..
func repoPageJSON(start, count int) string {
	items := make([]string, 0, count)
	for i := range count {
		n := start + i
		items = append(items, fmt.Sprintf(`{"name":"repo-%d","id":%d,"fork":false,"language":"Go","stargazers_count":%d}`, n, n, n))
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestGitHubGateway_SearchOrganizations(t *testing.T) {
	testCases := []struct {
		name        string
		handlerFunc func(w http.ResponseWriter, r *http.Request)
		wantLogins  []string
		expectError bool
	}{
		{
			name: "happy path - returns logins in result order",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.Path, "/search/users")
				assert.Contains(t, r.URL.Query().Get("q"), "type:org")
				assert.Equal(t, "5", r.URL.Query().Get("per_page"))
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `{"total_count": 2, "items": [{"login": "google"}, {"login": "googlers"}]}`)
			},
			wantLogins: []string{"google", "googlers"},
		},
		{
			name: "error case - GitHub API keeps returning an error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
			},
			expectError: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()

			logins, err := gateway.SearchOrganizations(context.Background(), "Alphabet")

			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.wantLogins, logins)
			}
		})
	}
}

func TestGitHubGateway_OrganizationDetails(t *testing.T) {
	gateway, server := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orgs/google", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"login": "google", "id": 1342004, "name": "Google", "public_repos": 2000, "followers": 50000, "blog": "https://opensource.google/"}`)
	}))
	defer server.Close()

	org, err := gateway.OrganizationDetails(context.Background(), "google")

	require.NoError(t, err)
	assert.Equal(t, &domain.Organization{
		Login:       "google",
		ID:          1342004,
		Name:        "Google",
		PublicRepos: 2000,
		Followers:   50000,
		Website:     "https://opensource.google/",
	}, org)
}

func TestGitHubGateway_OrganizationDetails_FallsBackToHTMLURL(t *testing.T) {
	gateway, server := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"login": "acme", "id": 7, "html_url": "https://github.com/acme"}`)
	}))
	defer server.Close()

	org, err := gateway.OrganizationDetails(context.Background(), "acme")

	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme", org.Website)
}

func TestGitHubGateway_OrganizationDetails_DoesNotRetryNotFound(t *testing.T) {
	var calls int
	gateway, server := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	}))
	defer server.Close()

	_, err := gateway.OrganizationDetails(context.Background(), "no-such-org")

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGitHubGateway_ListRepositories(t *testing.T) {
	testCases := []struct {
		name      string
		total     int
		limit     int
		wantCalls int
		wantLen   int
	}{
		{
			// 100 + 50: the short second page terminates without an extra call.
			name:      "partial last page terminates pagination",
			total:     150,
			wantCalls: 2,
			wantLen:   150,
		},
		{
			// 100 + 100 + empty: an exact multiple needs one empty page to stop.
			name:      "exact page multiple needs a terminating empty page",
			total:     200,
			wantCalls: 3,
			wantLen:   200,
		},
		{
			name:      "limit truncates mid-enumeration",
			total:     300,
			limit:     120,
			wantCalls: 2,
			wantLen:   120,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int
			handler := func(w http.ResponseWriter, r *http.Request) {
				calls++
				assert.Equal(t, "/orgs/acme/repos", r.URL.Path)
				assert.Equal(t, "public", r.URL.Query().Get("type"))
				assert.Equal(t, "100", r.URL.Query().Get("per_page"))

				page, _ := strconv.Atoi(r.URL.Query().Get("page"))
				if page == 0 {
					page = 1
				}
				start := (page - 1) * listPageSize
				count := min(tc.total-start, listPageSize)
				if count < 0 {
					count = 0
				}
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, repoPageJSON(start, count))
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
			defer server.Close()

			repos, err := gateway.ListRepositories(context.Background(), "acme", tc.limit)

			require.NoError(t, err)
			assert.Equal(t, tc.wantCalls, calls)
			require.Len(t, repos, tc.wantLen)
			// Receipt order is preserved.
			assert.Equal(t, "repo-0", repos[0].Name)
			assert.Equal(t, fmt.Sprintf("repo-%d", tc.wantLen-1), repos[tc.wantLen-1].Name)
		})
	}
}

func TestGitHubGateway_ListRepositories_ReturnsPartialResultOnError(t *testing.T) {
	var calls int
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls++
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page <= 1 {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, repoPageJSON(0, listPageSize))
			return
		}
		// Not transient, so the retry wrapper gives up immediately.
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "Forbidden"}`)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	repos, err := gateway.ListRepositories(context.Background(), "acme", 0)

	// Best-effort policy: the accumulated prefix comes back without an error.
	require.NoError(t, err)
	assert.Len(t, repos, listPageSize)
	assert.Equal(t, 2, calls)
}

func TestGitHubGateway_PullRequestCount(t *testing.T) {
	gateway, server := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `repo:acme/widget is:pr`)

		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"data":{"search":{"issueCount":1234}}}`)
	}))
	defer server.Close()

	count, err := gateway.PullRequestCount(context.Background(), "acme", "widget")

	require.NoError(t, err)
	assert.Equal(t, 1234, count)
}

func TestGitHubGateway_PullRequestCount_Error(t *testing.T) {
	gateway, server := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"errors":[{"message":"Something went wrong"}]}`)
	}))
	defer server.Close()

	_, err := gateway.PullRequestCount(context.Background(), "acme", "widget")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count pull requests")
}

func TestGitHubGateway_CodeFrequency(t *testing.T) {
	gateway, server := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widget/stats/code_frequency", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `[[1696118400,100,-20],[1696723200,50,-10]]`)
	}))
	defer server.Close()

	series, err := gateway.CodeFrequency(context.Background(), "acme", "widget")

	require.NoError(t, err)
	assert.Equal(t, []domain.WeeklyChurn{
		{Week: 1696118400, Additions: 100, Deletions: -20},
		{Week: 1696723200, Additions: 50, Deletions: -10},
	}, series)
}
