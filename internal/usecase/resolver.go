// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"log"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/orgscout/internal/domain"
	"github.com/naka-gawa/orgscout/internal/gateway"
)

const (
	// ScoreThreshold is the minimum authenticity score a candidate must reach
	// to be accepted. Genuine large organizations score in the thousands or
	// millions; noise accounts (name squatters, tiny unrelated orgs) score
	// well below this.
	ScoreThreshold = 500
	// followerWeight is the weight of followers relative to public
	// repositories in the authenticity score.
	followerWeight = 2
	// hydrateParallelism bounds concurrent candidate detail fetches. These
	// are plain REST reads with no special rate limit.
	hydrateParallelism = 4
)

// ScoredCandidate pairs an organization snapshot with its authenticity score.
type ScoredCandidate struct {
	Score int
	Org   domain.Organization
}

// Resolution is the outcome of resolving one company name. When Found is
// false, Org is the zero value.
type Resolution struct {
	Found bool
	Org   domain.Organization
}

// Resolver turns an ambiguous company name into a high-confidence
// organization match, or decides there is none.
type Resolver struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewResolver creates a new Resolver instance.
func NewResolver(fetcher gateway.Fetcher, logger *log.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Resolve searches for candidate organizations matching the query's clean
// name, scores them, and accepts the best candidate only if it clears
// ScoreThreshold. Every failure along the way degrades to "not found";
// Resolve never fails.
func (r *Resolver) Resolve(ctx context.Context, q domain.CompanyQuery) Resolution {
	r.logger.Printf("Scanning for: %s...", q.FullContext)

	logins, err := r.fetcher.SearchOrganizations(ctx, q.CleanName)
	if err != nil {
		r.logger.Printf("  Search failed: %v", err)
		return Resolution{}
	}

	candidates := r.hydrate(ctx, dedupeLogins(logins))
	if len(candidates) == 0 {
		r.logger.Println("  No organization found via API.")
		return Resolution{}
	}

	scored := make([]ScoredCandidate, 0, len(candidates))
	r.logger.Printf("  Validating %d candidates:", len(candidates))
	for _, org := range candidates {
		s := score(org)
		r.logger.Printf("    - %s: Repos=%d, Followers=%d (Score: %d)", org.Login, org.PublicRepos, org.Followers, s)
		scored = append(scored, ScoredCandidate{Score: s, Org: org})
	}

	// Stable sort keeps discovery order for equal scores, so resolution is
	// deterministic for a fixed candidate set.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	best := scored[0]
	if best.Score < ScoreThreshold {
		r.logger.Printf("  REJECTED: best match %s has score %d (threshold: %d)", best.Org.Login, best.Score, ScoreThreshold)
		return Resolution{}
	}
	return Resolution{Found: true, Org: best.Org}
}

// hydrate fetches full details for each login. Order is preserved by index;
// a failed fetch drops only that candidate.
func (r *Resolver) hydrate(ctx context.Context, logins []string) []domain.Organization {
	hydrated := make([]*domain.Organization, len(logins))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(hydrateParallelism)
	for i, login := range logins {
		eg.Go(func() error {
			org, err := r.fetcher.OrganizationDetails(egCtx, login)
			if err != nil {
				r.logger.Printf("  Dropping candidate %s: %v", login, err)
				return nil
			}
			hydrated[i] = org
			return nil
		})
	}
	_ = eg.Wait() // the goroutines never return an error

	candidates := make([]domain.Organization, 0, len(hydrated))
	for _, org := range hydrated {
		if org != nil {
			candidates = append(candidates, *org)
		}
	}
	return candidates
}

// score computes the authenticity heuristic for a candidate.
func score(org domain.Organization) int {
	return org.PublicRepos + followerWeight*org.Followers
}

// dedupeLogins removes case-insensitive duplicates, keeping first-seen order.
func dedupeLogins(logins []string) []string {
	seen := make(map[string]bool, len(logins))
	distinct := make([]string, 0, len(logins))
	for _, login := range logins {
		key := strings.ToLower(login)
		if seen[key] {
			continue
		}
		seen[key] = true
		distinct = append(distinct, login)
	}
	return distinct
}
