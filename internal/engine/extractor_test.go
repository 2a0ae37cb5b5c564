package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dossier/internal/service"
)

func TestParseSidecar(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  service.ExtractedText
	}{
		{
			name:  "plain text",
			input: "Leadership Summit 2024\nheld at the main hall\n",
			want:  service.ExtractedText{Text: "Leadership Summit 2024\nheld at the main hall"},
		},
		{
			name:  "confidence header",
			input: "confidence: 91.5\nLeadership Summit 2024",
			want:  service.ExtractedText{Text: "Leadership Summit 2024", Confidence: 91.5},
		},
		{
			name:  "header is case insensitive",
			input: "Confidence:40\nblurry scan",
			want:  service.ExtractedText{Text: "blurry scan", Confidence: 40},
		},
		{
			name:  "header only",
			input: "confidence: 12",
			want:  service.ExtractedText{Confidence: 12},
		},
		{
			name:  "out of range header is text",
			input: "confidence: 140\nbody",
			want:  service.ExtractedText{Text: "confidence: 140\nbody"},
		},
		{
			name:  "unparseable header is text",
			input: "confidence: high\nbody",
			want:  service.ExtractedText{Text: "confidence: high\nbody"},
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSidecar([]byte(tt.input)))
		})
	}
}

func TestSidecarExtractor_Extract(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	notes := write("notes.txt", "Study abroad fair notes")
	flyer := write("flyer.jpg", "\xff\xd8binary")
	write("flyer.jpg.txt", "confidence: 78\nASEAN Youth Summit")
	bare := write("poster.png", "\x89PNG")

	ctx := context.Background()
	x := SidecarExtractor{}

	got, err := x.Extract(ctx, notes)
	require.NoError(t, err)
	assert.Equal(t, service.ExtractedText{Text: "Study abroad fair notes"}, got)

	got, err = x.Extract(ctx, flyer)
	require.NoError(t, err)
	assert.Equal(t, service.ExtractedText{Text: "ASEAN Youth Summit", Confidence: 78}, got)

	got, err = x.Extract(ctx, bare)
	require.NoError(t, err)
	assert.Equal(t, service.ExtractedText{}, got)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = x.Extract(canceled, notes)
	require.ErrorIs(t, err, context.Canceled)
}

func TestIsSidecar(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"flyer.jpg", "Report.PDF", "report.v2.txt", "minutes.2024.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "scans"), 0o750))

	tests := []struct {
		name string
		want bool
	}{
		{"flyer.jpg.txt", true},
		{"Report.PDF.TXT", true},
		{"report.v2.txt", false},
		{"minutes.2024.txt", false},
		{"poster.png.txt", false},
		{"scans.txt", false},
		{"flyer.jpg", false},
		{".txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSidecar(filepath.Join(dir, tt.name)))
		})
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.jpg", "a.jpg.txt", ".hidden", "notes.txt", "minutes.2024.txt", "orphan.png.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o750))

	uploads, err := ScanDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(uploads))
	for _, u := range uploads {
		names = append(names, u.Name)
		assert.Equal(t, filepath.Join(dir, u.Name), u.Path)
	}
	assert.Equal(t, []string{"a.jpg", "b.pdf", "minutes.2024.txt", "notes.txt", "orphan.png.txt"}, names)

	_, err = ScanDir(filepath.Join(dir, "missing"))
	require.Error(t, err)
}
