// Package storage persists run output as per-company directories of JSON
// documents.
package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/naka-gawa/orgscout/internal/domain"
)

const (
	companyInfoFile = "_company_info.json"
	summaryFile     = "_summary.json"
)

// Writer writes one subdirectory per company under a root directory:
// a company info document, one document per repository, and an org summary.
type Writer struct {
	root   string
	logger *log.Logger
}

// NewWriter creates a Writer rooted at dir. The directory is created lazily
// on first write.
func NewWriter(dir string, logger *log.Logger) *Writer {
	return &Writer{
		root:   dir,
		logger: logger,
	}
}

func (w *Writer) WriteCompany(q domain.CompanyQuery, rec domain.CompanyRecord) error {
	return w.writeJSON(q, companyInfoFile, rec)
}

func (w *Writer) WriteRepository(q domain.CompanyQuery, rec domain.RepositoryRecord) error {
	name := SanitizeFileName(rec.Name) + ".json"
	if err := w.writeJSON(q, name, rec); err != nil {
		return err
	}
	w.logger.Printf("    - Saved %s", name)
	return nil
}

func (w *Writer) WriteSummary(q domain.CompanyQuery, rec domain.OrgSummary) error {
	return w.writeJSON(q, summaryFile, rec)
}

func (w *Writer) writeJSON(q domain.CompanyQuery, name string, v any) error {
	dir := filepath.Join(w.root, SanitizeDirName(q.CleanName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create company directory %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SanitizeDirName maps a company name to a directory name: keep letters,
// digits, spaces, hyphens and underscores, trim, then lowercase with spaces
// as underscores.
func SanitizeDirName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	return strings.ToLower(strings.ReplaceAll(cleaned, " ", "_"))
}

// SanitizeFileName maps a repository name to a file name stem: keep letters,
// digits, hyphens, underscores and dots.
func SanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
