package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"
)

// manifestEntry records the text one document contributed to a run.
type manifestEntry struct {
	Document string `json:"document"`
	SHA256   string `json:"sha256"`
	Chars    int    `json:"chars"`
}

// manifestMeta captures run details that aid reproducibility.
type manifestMeta struct {
	RunID         string    `json:"run_id"`
	Company       string    `json:"company"`
	FieldSpecs    string    `json:"field_specs"`
	FieldCount    int       `json:"field_count"`
	DocumentCount int       `json:"document_count"`
	Version       string    `json:"version"`
	GeneratedAt   time.Time `json:"generated_at"`
}

func computeSHA256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// buildManifestEntries returns one entry per document in ids order.
func buildManifestEntries(ids []string, docs map[string]string) []manifestEntry {
	out := make([]manifestEntry, 0, len(ids))
	for _, id := range ids {
		text := docs[id]
		out = append(out, manifestEntry{
			Document: id,
			SHA256:   computeSHA256Hex(text),
			Chars:    len([]rune(text)),
		})
	}
	return out
}

// marshalManifestJSON encodes the sidecar manifest.
func marshalManifestJSON(meta manifestMeta, entries []manifestEntry) ([]byte, error) {
	payload := struct {
		Meta      manifestMeta    `json:"meta"`
		Documents []manifestEntry `json:"documents"`
	}{Meta: meta, Documents: entries}
	return json.MarshalIndent(payload, "", "  ")
}

// deriveManifestSidecarPath returns the sidecar path next to an output file.
func deriveManifestSidecarPath(outputPath string) string {
	return outputPath + ".manifest.json"
}

func writeManifest(outputPath string, meta manifestMeta, entries []manifestEntry) error {
	b, err := marshalManifestJSON(meta, entries)
	if err != nil {
		return err
	}
	return os.WriteFile(deriveManifestSidecarPath(outputPath), b, 0o644)
}
