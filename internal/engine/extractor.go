package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/dossier/internal/service"
)

// SidecarSuffix is appended to an upload's file name by the external OCR
// step when it writes the recognized text.
const SidecarSuffix = ".txt"

const confidencePrefix = "confidence:"

// SidecarExtractor reads text produced outside the process. Plain-text
// uploads are read directly; anything else is looked up as "<file>.txt".
// A missing sidecar yields empty text.
type SidecarExtractor struct{}

var _ service.TextExtractor = SidecarExtractor{}

// Extract implements service.TextExtractor.
func (SidecarExtractor) Extract(ctx context.Context, path string) (service.ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return service.ExtractedText{}, err
	}

	source := path
	if !strings.EqualFold(filepath.Ext(path), SidecarSuffix) {
		source = path + SidecarSuffix
	}

	data, err := os.ReadFile(source) //nolint:gosec // Paths come from the upload directory
	if errors.Is(err, fs.ErrNotExist) {
		return service.ExtractedText{}, nil
	}
	if err != nil {
		return service.ExtractedText{}, fmt.Errorf("failed to read %s: %w", source, err)
	}

	return parseSidecar(data), nil
}

// parseSidecar splits an optional "confidence: N" header from the text.
func parseSidecar(data []byte) service.ExtractedText {
	first, rest, found := bytes.Cut(data, []byte("\n"))
	line := strings.TrimSpace(string(first))

	if !strings.HasPrefix(strings.ToLower(line), confidencePrefix) {
		return service.ExtractedText{Text: strings.TrimSpace(string(data))}
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(line[len(confidencePrefix):]), 64)
	if err != nil || value < 0 || value > 100 {
		// Not a header we understand; keep it as text.
		return service.ExtractedText{Text: strings.TrimSpace(string(data))}
	}

	var text string
	if found {
		text = strings.TrimSpace(string(rest))
	}
	return service.ExtractedText{Text: text, Confidence: value}
}

// IsSidecar reports whether path is OCR output for another file, such as
// "flyer.jpg.txt" next to "flyer.jpg". A .txt upload with no companion file
// is an upload in its own right.
func IsSidecar(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), SidecarSuffix) {
		return false
	}
	info, err := os.Stat(path[:len(path)-len(SidecarSuffix)])
	return err == nil && !info.IsDir()
}

// ScanDir lists the ingestible files directly inside dir in lexical order.
// Hidden files and sidecars are skipped.
func ScanDir(dir string) ([]service.Upload, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	uploads := make([]service.Upload, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() || !ingestible(path) {
			continue
		}
		uploads = append(uploads, service.Upload{Path: path, Name: entry.Name()})
	}
	return uploads, nil
}

func ingestible(path string) bool {
	return !strings.HasPrefix(filepath.Base(path), ".") && !IsSidecar(path)
}
