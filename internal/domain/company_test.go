package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCompanyQuery(t *testing.T) {
	testCases := []struct {
		name            string
		raw             string
		wantCleanName   string
		wantFullContext string
	}{
		{
			name:            "ticker annotation is stripped from the clean name",
			raw:             "Alphabet (NAS: GOOGL)",
			wantCleanName:   "Alphabet",
			wantFullContext: "Alphabet (NAS: GOOGL)",
		},
		{
			name:            "plain name is kept as-is",
			raw:             "Microsoft",
			wantCleanName:   "Microsoft",
			wantFullContext: "Microsoft",
		},
		{
			name:            "surrounding whitespace is trimmed from both fields",
			raw:             "  Tesla  \n",
			wantCleanName:   "Tesla",
			wantFullContext: "Tesla",
		},
		{
			name:            "multiple parentheticals are all removed",
			raw:             "Foo (a) Bar (b)",
			wantCleanName:   "Foo  Bar",
			wantFullContext: "Foo (a) Bar (b)",
		},
		{
			name:            "parenthetical-only input cleans to empty",
			raw:             "(NYSE: XYZ)",
			wantCleanName:   "",
			wantFullContext: "(NYSE: XYZ)",
		},
		{
			name:            "blank line cleans to empty",
			raw:             "   ",
			wantCleanName:   "",
			wantFullContext: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := NewCompanyQuery(tc.raw)

			assert.Equal(t, tc.wantCleanName, q.CleanName)
			assert.Equal(t, tc.wantFullContext, q.FullContext)
			// The clean name never carries parenthesized content and is
			// always contained in the full context.
			assert.NotContains(t, q.CleanName, "(")
			assert.NotContains(t, q.CleanName, ")")
			if q.CleanName != "" {
				assert.True(t, strings.HasPrefix(q.FullContext, strings.Fields(q.CleanName)[0]))
			}
		})
	}
}
