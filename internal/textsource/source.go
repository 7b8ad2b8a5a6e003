// Package textsource discovers policy documents under a company directory
// and reduces each one to plain text for the extraction engine.
package textsource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// ErrUnsupported is returned for files whose extension has no reader.
var ErrUnsupported = errors.New("unsupported document type")

// extension priority when two files share a stem
var extensions = []string{".pdf", ".txt", ".html", ".htm"}

// Document is a discovered source file. ID is the file name without
// extension, as used in result records.
type Document struct {
	ID   string
	Path string
}

// Supported reports whether path has a readable extension.
func Supported(path string) bool {
	return extRank(path) >= 0
}

func extRank(path string) int {
	ext := strings.ToLower(filepath.Ext(path))
	for i, e := range extensions {
		if e == ext {
			return i
		}
	}
	return -1
}

// List returns the supported documents directly inside dir, sorted by ID.
// When two files share a stem the one with the higher priority extension
// (pdf, txt, html) wins.
func List(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	byID := map[string]Document{}
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		name := e.Name()
		id := strings.TrimSuffix(name, filepath.Ext(name))
		p := filepath.Join(dir, name)
		if prev, ok := byID[id]; ok && extRank(prev.Path) <= extRank(p) {
			continue
		}
		byID[id] = Document{ID: id, Path: p}
	}
	docs := make([]Document, 0, len(byID))
	for _, d := range byID {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Extractor names the reader used for path; it is part of the text cache key.
func Extractor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "pdf/ledongthuc/v1"
	case ".html", ".htm":
		return "html/v1"
	}
	return "txt/v1"
}

// Text converts raw document bytes to NFC-composed plain text using the
// reader for path's extension.
func Text(path string, content []byte) (string, error) {
	var text string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		text = string(content)
	case ".html", ".htm":
		text = FromHTML(content).Text
	case ".pdf":
		t, err := pdfText(content)
		if err != nil {
			return "", fmt.Errorf("pdf %s: %w", filepath.Base(path), err)
		}
		text = t
	default:
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}
	return norm.NFC.String(text), nil
}

func pdfText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
