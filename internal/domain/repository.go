package domain

// RepositorySummary holds the attributes taken directly from the repository
// listing endpoint.
type RepositorySummary struct {
	Name            string `json:"name"`
	ID              int64  `json:"id"`
	Description     string `json:"description"`
	IsFork          bool   `json:"is_fork"`
	Language        string `json:"language"`
	ForksCount      int    `json:"forks_count"`
	StargazersCount int    `json:"stargazers_count"`
	WatchersCount   int    `json:"watchers_count"`
	OpenIssuesCount int    `json:"open_issues_count"`
}

// RepositoryMetrics holds the secondary metrics fetched per repository.
// A failed fetch leaves the corresponding fields at zero; a zero here is
// indistinguishable from a genuinely inactive repository.
type RepositoryMetrics struct {
	PRCount        int
	TotalAdditions int
	TotalDeletions int
}

// WeeklyChurn is one row of a repository's weekly code-frequency series.
// Deletions are reported negative by the API.
type WeeklyChurn struct {
	Week      int64
	Additions int
	Deletions int
}

// RepositoryRecord is the per-repository output document: the listing
// summary joined with its metrics and provenance.
type RepositoryRecord struct {
	CompanyInput string `json:"company_input"`
	OrgLogin     string `json:"org_login"`
	RepositorySummary
	TotalPRs     int `json:"total_prs"`
	LinesAdded   int `json:"lines_added"`
	LinesDeleted int `json:"lines_deleted"`
}

// OrgSummary aggregates the repository records of one resolved organization.
type OrgSummary struct {
	OrgLogin          string  `json:"org_login"`
	RepoCount         int     `json:"repo_count"`
	ForkCount         int     `json:"fork_count"`
	TotalStars        int     `json:"total_stars"`
	MeanStars         float64 `json:"mean_stars"`
	MedianStars       float64 `json:"median_stars"`
	TotalPRs          int     `json:"total_prs"`
	TotalLinesAdded   int     `json:"total_lines_added"`
	TotalLinesDeleted int     `json:"total_lines_deleted"`
}
