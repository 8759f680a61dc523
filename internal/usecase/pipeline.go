package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/orgscout/internal/domain"
	"github.com/naka-gawa/orgscout/internal/gateway"
)

// RecordWriter persists the output documents of one run. The company query is
// passed alongside each record because the writer derives the on-disk
// location from the company's clean name.
type RecordWriter interface {
	WriteCompany(q domain.CompanyQuery, rec domain.CompanyRecord) error
	WriteRepository(q domain.CompanyQuery, rec domain.RepositoryRecord) error
	WriteSummary(q domain.CompanyQuery, rec domain.OrgSummary) error
}

// Pipeline drives the whole flow for a list of raw company names: resolve,
// enumerate, enrich, emit. Companies and repositories are processed strictly
// one at a time; a failure in one unit never affects another. The only errors
// Run returns are writer failures.
type Pipeline struct {
	fetcher   gateway.Fetcher
	resolver  *Resolver
	enricher  *Enricher
	writer    RecordWriter
	logger    *log.Logger
	repoLimit int
	now       func() time.Time
}

// NewPipeline creates a new Pipeline instance. repoLimit caps the number of
// repositories processed per organization; <= 0 means no limit.
func NewPipeline(fetcher gateway.Fetcher, writer RecordWriter, repoLimit int, logger *log.Logger) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		resolver:  NewResolver(fetcher, logger),
		enricher:  NewEnricher(fetcher, logger),
		writer:    writer,
		logger:    logger,
		repoLimit: repoLimit,
		now:       time.Now,
	}
}

// Run processes each raw input line in order. Lines that clean down to an
// empty name are skipped.
func (p *Pipeline) Run(ctx context.Context, lines []string) error {
	for _, line := range lines {
		q := domain.NewCompanyQuery(line)
		if q.CleanName == "" {
			continue
		}
		if err := p.processCompany(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) processCompany(ctx context.Context, q domain.CompanyQuery) error {
	res := p.resolver.Resolve(ctx, q)

	rec := domain.CompanyRecord{
		CompanyInput:    q.FullContext,
		ScrapeTimestamp: float64(p.now().UnixMilli()) / 1000,
	}
	if res.Found {
		p.logger.Printf("  Selected Org: %s (%s)", res.Org.Login, res.Org.Name)
		rec.OrgFound = true
		rec.OrgName = res.Org.Name
		rec.OrgLogin = res.Org.Login
		rec.OrgID = res.Org.ID
		rec.OrgWebsite = res.Org.Website
		rec.OrgFollowers = res.Org.Followers
	} else {
		p.logger.Println("  Status: NOT FOUND")
	}
	if err := p.writer.WriteCompany(q, rec); err != nil {
		return fmt.Errorf("failed to write company record for %q: %w", q.FullContext, err)
	}
	if !res.Found {
		return nil
	}

	repos, err := p.fetcher.ListRepositories(ctx, res.Org.Login, p.repoLimit)
	if err != nil {
		// The gateway absorbs listing failures itself; treat a failure from
		// another Fetcher implementation the same way.
		p.logger.Printf("  Repository listing for %s failed: %v", res.Org.Login, err)
	}

	p.logger.Printf("    Processing %d repositories...", len(repos))
	records := make([]domain.RepositoryRecord, 0, len(repos))
	for _, repo := range repos {
		metrics := p.enricher.Enrich(ctx, res.Org.Login, repo.Name)
		record := domain.RepositoryRecord{
			CompanyInput:      q.FullContext,
			OrgLogin:          res.Org.Login,
			RepositorySummary: repo,
			TotalPRs:          metrics.PRCount,
			LinesAdded:        metrics.TotalAdditions,
			LinesDeleted:      metrics.TotalDeletions,
		}
		if err := p.writer.WriteRepository(q, record); err != nil {
			return fmt.Errorf("failed to write record for %s/%s: %w", res.Org.Login, repo.Name, err)
		}
		records = append(records, record)
	}

	summary := summarize(res.Org.Login, records)
	if err := p.writer.WriteSummary(q, summary); err != nil {
		return fmt.Errorf("failed to write summary for %s: %w", res.Org.Login, err)
	}
	return nil
}

// summarize aggregates an organization's repository records.
func summarize(orgLogin string, records []domain.RepositoryRecord) domain.OrgSummary {
	summary := domain.OrgSummary{
		OrgLogin:  orgLogin,
		RepoCount: len(records),
	}

	stars := make([]float64, 0, len(records))
	for _, r := range records {
		stars = append(stars, float64(r.StargazersCount))
		summary.TotalStars += r.StargazersCount
		if r.IsFork {
			summary.ForkCount++
		}
		summary.TotalPRs += r.TotalPRs
		summary.TotalLinesAdded += r.LinesAdded
		summary.TotalLinesDeleted += r.LinesDeleted
	}
	if len(stars) > 0 {
		// stats only errors on empty input, which is guarded above.
		summary.MeanStars, _ = stats.Mean(stars)
		summary.MedianStars, _ = stats.Median(stars)
	}
	return summary
}
