package usecase

import (
	"context"
	"log"

	"github.com/naka-gawa/orgscout/internal/domain"
	"github.com/naka-gawa/orgscout/internal/gateway"
)

// Enricher fetches the secondary metrics for a single repository. The two
// sub-fetches are independent: either one failing leaves the other's result
// intact, and any failure degrades to zero values. Enrich never fails.
type Enricher struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewEnricher creates a new Enricher instance.
func NewEnricher(fetcher gateway.Fetcher, logger *log.Logger) *Enricher {
	return &Enricher{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Enrich returns the PR count and aggregated weekly code churn for owner/repo.
func (e *Enricher) Enrich(ctx context.Context, owner, repo string) domain.RepositoryMetrics {
	var metrics domain.RepositoryMetrics

	count, err := e.fetcher.PullRequestCount(ctx, owner, repo)
	if err != nil {
		e.logger.Printf("    PR count for %s/%s unavailable: %v", owner, repo, err)
	} else {
		metrics.PRCount = count
	}

	series, err := e.fetcher.CodeFrequency(ctx, owner, repo)
	if err != nil {
		e.logger.Printf("    Code frequency for %s/%s unavailable: %v", owner, repo, err)
		return metrics
	}
	for _, week := range series {
		metrics.TotalAdditions += week.Additions
		// Deletions arrive negative; aggregate their magnitude.
		if week.Deletions < 0 {
			metrics.TotalDeletions -= week.Deletions
		} else {
			metrics.TotalDeletions += week.Deletions
		}
	}
	return metrics
}
