package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mchmarny/schedscore/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, ScoreDefault, c.Score)
	assert.Equal(t, FormatText, c.Format)
	assert.False(t, c.Debug)
	assert.Equal(t, data.DefaultColumns(), c.Columns)
}

func TestLoad_EmptyPath(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "score: 40\nformat: yml\ncolumns:\n  submission: team\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, c.Score)
	assert.Equal(t, FormatYAML, c.Format)
	assert.Equal(t, "team", c.Columns.Submission)
	assert.Equal(t, data.ColumnSchedule, c.Columns.Schedule)
	assert.Equal(t, data.ColumnAverage, c.Columns.Average)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		score   int
		format  string
	}{
		{"empty", "", false, ScoreDefault, FormatText},
		{"score only", "score: 10", false, 10, FormatText},
		{"json", "format: JSON", false, ScoreDefault, FormatJSON},
		{"debug", "debug: true", false, ScoreDefault, FormatText},
		{"negative score", "score: -1", true, 0, ""},
		{"bad format", "format: xml", true, 0, ""},
		{"unknown key", "scores: 10", true, 0, ""},
		{"bad yaml", "score: [", true, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Read(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.score, c.Score)
			assert.Equal(t, tt.format, c.Format)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	var c *Config
	assert.Error(t, c.Validate())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]string{
		"":      FormatText,
		"text":  FormatText,
		"TXT":   FormatText,
		"json":  FormatJSON,
		"yaml":  FormatYAML,
		" yml ": FormatYAML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("csv")
	assert.Error(t, err)
}
