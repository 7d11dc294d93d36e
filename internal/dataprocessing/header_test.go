package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mpgamer75/code-altice/internal/errors"
)

func TestScanHeaderLines(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		policy MatchPolicy
		want   map[string]string
	}{
		{
			name:   "basic fields",
			lines:  []string{"Report Name : Login Failures", "Domain Name: corp.local", "Generated At :  2025-01-02 10:00  "},
			policy: MatchLast,
			want: map[string]string{
				"Report Name":  "Login Failures",
				"Domain Name":  "corp.local",
				"Generated At": "2025-01-02 10:00",
			},
		},
		{
			name:   "last match wins",
			lines:  []string{"Report Name : R", "Period : A", "", "Filter : none", "Period : B"},
			policy: MatchLast,
			want:   map[string]string{"Report Name": "R", "Period": "B", "Filter": "none"},
		},
		{
			name:   "first match wins",
			lines:  []string{"Period : A", "Period : B"},
			policy: MatchFirst,
			want:   map[string]string{"Period": "A"},
		},
		{
			name:   "object names matched literally",
			lines:  []string{"Object Name(s) : jdoe"},
			policy: MatchLast,
			want:   map[string]string{"Object Name(s)": "jdoe"},
		},
		{
			name:   "unanchored search with empty value",
			lines:  []string{"## Annotation:", "nothing here"},
			policy: MatchLast,
			want:   map[string]string{"Annotation": ""},
		},
		{
			name:   "no matches",
			lines:  []string{"Period - A", "random"},
			policy: MatchLast,
			want:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ScanHeaderLines(tt.lines, tt.policy)
			assert.Equal(t, len(tt.want), h.Len())
			for field, value := range tt.want {
				got, ok := h.Get(field)
				assert.True(t, ok, field)
				assert.Equal(t, value, got, field)
			}
		})
	}
}

func TestHeaderValuePlaceholder(t *testing.T) {
	h := ScanHeaderLines([]string{"Period : Q1"}, MatchLast)
	assert.Equal(t, "Q1", h.Value("Period"))
	assert.Equal(t, Placeholder, h.Value("Report Name"))

	fields := h.Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, [2]string{"Period", "Q1"}, fields[0])

	var zero HeaderMetadata
	assert.Equal(t, Placeholder, zero.Value("Filter"))
}

func TestParseMatchPolicy(t *testing.T) {
	assert.Equal(t, MatchFirst, ParseMatchPolicy("FIRST"))
	assert.Equal(t, MatchLast, ParseMatchPolicy("last"))
	assert.Equal(t, MatchLast, ParseMatchPolicy(""))
}

func TestExtractHeaderFromWorkbook(t *testing.T) {
	dir := t.TempDir()
	lines := []string{
		"Report Name : Login Failures",
		"Period : A",
		"Domain Name : corp.local",
		"",
		"Period : B",
		"", "", "",
		"Filter : all",
		"Annotation : below the block",
	}
	path := writeWorkbook(t, dir, "audit.xlsx", lines, nil)

	h, err := ExtractHeader(path, MatchLast)
	require.NoError(t, err)
	assert.Equal(t, "Login Failures", h.Value("Report Name"))
	assert.Equal(t, "B", h.Value("Period"))
	assert.Equal(t, "all", h.Value("Filter"))
	assert.Equal(t, Placeholder, h.Value("Annotation"), "row 10 is outside the block")
}

func TestExtractHeaderUnreadable(t *testing.T) {
	path := writeText(t, t.TempDir(), "broken.xlsx", "not a zip")

	h, err := ExtractHeader(path, MatchLast)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnreadableSource))
	assert.Equal(t, 0, h.Len())
}
