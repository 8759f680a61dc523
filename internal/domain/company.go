// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"regexp"
	"strings"
)

// parenthetical matches annotations like "(NAS: GOOGL)" that company lists
// often append to a name.
var parenthetical = regexp.MustCompile(`\(.*?\)`)

// CompanyQuery is the normalized form of one raw input line.
// CleanName is what we search for; FullContext is what we report back.
type CompanyQuery struct {
	CleanName   string
	FullContext string
}

// NewCompanyQuery derives a CompanyQuery from a raw input line.
// e.g. "Alphabet (NAS: GOOGL)" -> {CleanName: "Alphabet", FullContext: "Alphabet (NAS: GOOGL)"}
func NewCompanyQuery(raw string) CompanyQuery {
	return CompanyQuery{
		CleanName:   strings.TrimSpace(parenthetical.ReplaceAllString(raw, "")),
		FullContext: strings.TrimSpace(raw),
	}
}

// Organization is a snapshot of a GitHub organization's public attributes,
// taken while resolving a company name. It only lives for the duration of
// a resolution.
type Organization struct {
	Login       string
	ID          int64
	Name        string
	PublicRepos int
	Followers   int
	Website     string
}

// CompanyRecord is the per-company output document. It is written for every
// input line, whether or not an organization was found.
type CompanyRecord struct {
	CompanyInput    string  `json:"company_input"`
	OrgFound        bool    `json:"org_found"`
	OrgName         string  `json:"org_name"`
	OrgLogin        string  `json:"org_login"`
	OrgID           int64   `json:"org_id"`
	OrgWebsite      string  `json:"org_website"`
	OrgFollowers    int     `json:"org_followers"`
	ScrapeTimestamp float64 `json:"scrape_timestamp"`
}
