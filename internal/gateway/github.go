// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/orgscout/internal/domain"
)

const (
	// searchPageSize bounds the organization search; only the top hits are
	// worth scoring.
	searchPageSize = 5
	// listPageSize is the page size for repository listing.
	listPageSize = 100
	// searchInterval paces calls to the search endpoint, which enforces a
	// stricter rate limit than the general REST endpoints.
	searchInterval = 500 * time.Millisecond

	retryAttempts     = 3
	initialRetryDelay = 200 * time.Millisecond
	maxRetryDelay     = 2 * time.Second
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// SearchOrganizations returns the logins of the top organization matches
	// for a free-text name, in result order.
	SearchOrganizations(ctx context.Context, name string) ([]string, error)
	// OrganizationDetails hydrates a login into a full organization snapshot.
	OrganizationDetails(ctx context.Context, login string) (*domain.Organization, error)
	// ListRepositories returns an organization's public repositories in
	// listing order. A limit <= 0 means no limit. Listing is best-effort: a
	// mid-pagination failure returns what was accumulated, not an error.
	ListRepositories(ctx context.Context, org string, limit int) ([]domain.RepositorySummary, error)
	// PullRequestCount returns the total number of pull requests ever opened
	// against owner/repo.
	PullRequestCount(ctx context.Context, owner, repo string) (int, error)
	// CodeFrequency returns the repository's weekly additions/deletions series.
	CodeFrequency(ctx context.Context, owner, repo string) ([]domain.WeeklyChurn, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	searchLimiter *rate.Limiter
	logger        *log.Logger
}

// prCountQuery reads only the total hit count of an issue search.
type prCountQuery struct {
	Search struct {
		IssueCount int
	} `graphql:"search(query: $query, type: ISSUE, first: 1)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The token is held by the oauth2 transport for the lifetime of the gateway;
// there is no package-level credential state.
func NewGitHubGateway(token string, logger *log.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		searchLimiter: rate.NewLimiter(rate.Every(searchInterval), 1),
		logger:        logger,
	}, nil
}

func (g *GitHubGateway) SearchOrganizations(ctx context.Context, name string) ([]string, error) {
	query := fmt.Sprintf("%s type:org", name)
	g.logger.Printf("  GitHub search query: %q", query)
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: searchPageSize}}

	var result *github.UsersSearchResult
	err := g.withRetry(ctx, "search organizations", func() error {
		var err error
		result, _, err = g.restClient.Search.Users(ctx, query, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search organizations for %q: %w", name, err)
	}

	logins := make([]string, 0, len(result.Users))
	for _, user := range result.Users {
		if login := user.GetLogin(); login != "" {
			logins = append(logins, login)
		}
	}
	return logins, nil
}

func (g *GitHubGateway) OrganizationDetails(ctx context.Context, login string) (*domain.Organization, error) {
	var org *github.Organization
	err := g.withRetry(ctx, "fetch organization "+login, func() error {
		var err error
		org, _, err = g.restClient.Organizations.Get(ctx, login)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch details for %s: %w", login, err)
	}

	website := org.GetBlog()
	if website == "" {
		website = org.GetHTMLURL()
	}
	return &domain.Organization{
		Login:       org.GetLogin(),
		ID:          org.GetID(),
		Name:        org.GetName(),
		PublicRepos: org.GetPublicRepos(),
		Followers:   org.GetFollowers(),
		Website:     website,
	}, nil
}

func (g *GitHubGateway) ListRepositories(ctx context.Context, org string, limit int) ([]domain.RepositorySummary, error) {
	g.logger.Printf("  Fetching repos for %s...", org)
	opts := &github.RepositoryListByOrgOptions{
		Type:        "public",
		ListOptions: github.ListOptions{PerPage: listPageSize, Page: 1},
	}

	var repos []domain.RepositorySummary
	for {
		var page []*github.Repository
		err := g.withRetry(ctx, "list repositories", func() error {
			var err error
			page, _, err = g.restClient.Repositories.ListByOrg(ctx, org, opts)
			return err
		})
		if err != nil {
			// Best-effort: keep whatever was accumulated before the failure.
			g.logger.Printf("  Listing for %s stopped at page %d with %d repos: %v", org, opts.Page, len(repos), err)
			return repos, nil
		}
		if len(page) == 0 {
			break
		}
		for _, r := range page {
			repos = append(repos, domain.RepositorySummary{
				Name:            r.GetName(),
				ID:              r.GetID(),
				Description:     r.GetDescription(),
				IsFork:          r.GetFork(),
				Language:        r.GetLanguage(),
				ForksCount:      r.GetForksCount(),
				StargazersCount: r.GetStargazersCount(),
				WatchersCount:   r.GetWatchersCount(),
				OpenIssuesCount: r.GetOpenIssuesCount(),
			})
		}
		if limit > 0 && len(repos) >= limit {
			return repos[:limit], nil
		}
		if len(page) < listPageSize {
			break
		}
		opts.Page++
		g.logger.Println("  Fetching next page of repositories...")
	}
	return repos, nil
}

func (g *GitHubGateway) PullRequestCount(ctx context.Context, owner, repo string) (int, error) {
	// The issue-search endpoint has its own, stricter rate limit; pace it
	// separately instead of throttling every call.
	if err := g.searchLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("waiting for search limiter: %w", err)
	}

	variables := map[string]interface{}{
		"query": githubv4.String(fmt.Sprintf("repo:%s/%s is:pr", owner, repo)),
	}
	var q prCountQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return 0, fmt.Errorf("failed to count pull requests for %s/%s: %w", owner, repo, err)
	}
	return q.Search.IssueCount, nil
}

func (g *GitHubGateway) CodeFrequency(ctx context.Context, owner, repo string) ([]domain.WeeklyChurn, error) {
	// No retry here: a 202 means GitHub is still computing the series, and
	// the caller treats any failure as zero churn anyway.
	weekly, _, err := g.restClient.Repositories.ListCodeFrequency(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch code frequency for %s/%s: %w", owner, repo, err)
	}

	series := make([]domain.WeeklyChurn, 0, len(weekly))
	for _, week := range weekly {
		series = append(series, domain.WeeklyChurn{
			Week:      week.GetWeek().Unix(),
			Additions: week.GetAdditions(),
			Deletions: week.GetDeletions(),
		})
	}
	return series, nil
}

// withRetry executes fn with exponential backoff for transient REST failures.
func (g *GitHubGateway) withRetry(ctx context.Context, operation string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(initialRetryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			g.logger.Printf("  %s: attempt %d/%d failed: %v", operation, n+1, retryAttempts, err)
		}),
		retry.LastErrorOnly(true),
	)
}

// isTransient reports whether a REST error is worth retrying. 4xx responses
// other than 429 are not; retrying them only burns quota.
func isTransient(err error) bool {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		code := errResp.Response.StatusCode
		return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
	}
	return true
}
