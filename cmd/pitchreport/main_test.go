package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pitch.report/internal/httputil"
	"github.com/banshee-data/pitch.report/internal/testutil"
)

func importOuting(t *testing.T, dbPath string) string {
	t.Helper()
	csvPath := filepath.Join(t.TempDir(), "outing.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(testutil.OutingCSV(testutil.Outing())), 0o644))

	var out bytes.Buffer
	require.NoError(t, run("import", []string{"-db", dbPath, "-file", csvPath, "-pitcher", "Skenes", "-batter", "Judge"}, &out))
	id := strings.TrimSpace(out.String())
	require.NotEmpty(t, id)
	return id
}

func TestImportAndRender(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pitch.db")
	id := importOuting(t, dbPath)
	dir := t.TempDir()

	for _, tc := range []struct {
		name string
		args []string
	}{
		{"heatmap", []string{"-kind", "heatmap", "-types", "FF,SL"}},
		{"side trajectory", []string{"-kind", "trajectory", "-intervals", "12"}},
		{"top representative", []string{"-kind", "trajectory", "-view", "top", "-representative"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out := filepath.Join(dir, strings.ReplaceAll(tc.name, " ", "_")+".png")
			args := append([]string{"-db", dbPath, "-matchup", id, "-out", out}, tc.args...)
			require.NoError(t, run("render", args, &bytes.Buffer{}))

			f, err := os.Open(out)
			require.NoError(t, err)
			defer f.Close()
			_, err = png.Decode(f)
			assert.NoError(t, err)
		})
	}

	for _, kind := range []string{"velocity", "movement", "heatmap-html"} {
		t.Run(kind, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, run("render", []string{"-db", dbPath, "-matchup", id, "-kind", kind}, &out))
			assert.Contains(t, out.String(), "echarts")
			assert.Contains(t, out.String(), "Skenes vs Judge")
		})
	}
}

func TestRender_OutputDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pitch.db")
	id := importOuting(t, dbPath)
	dir := t.TempDir()

	var out bytes.Buffer
	require.NoError(t, run("render", []string{"-db", dbPath, "-matchup", id, "-kind", "velocity", "-dir", dir}, &out))
	want := filepath.Join(dir, "Skenes-Judge-velocity.html")
	assert.Equal(t, want, strings.TrimSpace(out.String()))
	assert.FileExists(t, want)

	assert.ErrorContains(t, run("render", []string{"-db", dbPath, "-matchup", id, "-out", "/proc/self/heat.png"}, &bytes.Buffer{}), "must be within")
}

func TestRender_Errors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pitch.db")
	id := importOuting(t, dbPath)

	assert.ErrorContains(t, run("render", []string{"-db", dbPath}, &bytes.Buffer{}), "-matchup is required")
	assert.ErrorContains(t, run("render", []string{"-db", dbPath, "-matchup", "nope"}, &bytes.Buffer{}), "not found")
	assert.ErrorContains(t, run("render", []string{"-db", dbPath, "-matchup", id, "-kind", "pie"}, &bytes.Buffer{}), "unknown render kind")
	assert.Error(t, run("render", []string{"-db", dbPath, "-matchup", id, "-kind", "trajectory", "-view", "front"}, &bytes.Buffer{}))
	assert.Error(t, run("render", []string{"-db", dbPath, "-matchup", id, "-kind", "trajectory", "-intervals", "-2"}, &bytes.Buffer{}))
}

func TestImport_AppendAndURL(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pitch.db")
	id := importOuting(t, dbPath)

	mock := httputil.NewMockHTTPClient().AddResponse(200, testutil.OutingCSV(testutil.Outing()[:2]))
	orig := httpClient
	httpClient = mock
	t.Cleanup(func() { httpClient = orig })

	var out bytes.Buffer
	require.NoError(t, run("import", []string{"-db", dbPath, "-url", "https://example.com/outing.csv", "-matchup", id}, &out))
	assert.Equal(t, id, strings.TrimSpace(out.String()))
	assert.Equal(t, 1, mock.RequestCount())

	mock.AddResponse(404, "")
	assert.ErrorContains(t, run("import", []string{"-db", dbPath, "-url", "https://example.com/missing.csv"}, &bytes.Buffer{}), "unexpected status")
}

func TestImport_Errors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pitch.db")

	assert.ErrorContains(t, run("import", []string{"-db", dbPath}, &bytes.Buffer{}), "exactly one of")
	assert.ErrorContains(t, run("import", []string{"-db", dbPath, "-file", "a.csv", "-url", "http://x"}, &bytes.Buffer{}), "exactly one of")
	assert.Error(t, run("import", []string{"-db", dbPath, "-file", filepath.Join(t.TempDir(), "missing.csv")}, &bytes.Buffer{}))
}

func TestRun_Misc(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("version", nil, &out))
	assert.Contains(t, out.String(), "pitch-report")

	out.Reset()
	require.NoError(t, run("help", nil, &out))
	assert.Contains(t, out.String(), "Usage: pitchreport")

	assert.ErrorContains(t, run("bogus", nil, &bytes.Buffer{}), "unknown command")

	dbPath := filepath.Join(t.TempDir(), "pitch.db")
	require.NoError(t, run("migrate", []string{"-db", dbPath, "up"}, &bytes.Buffer{}))
	assert.Error(t, run("migrate", []string{"-db", dbPath}, &bytes.Buffer{}))
}
