package triage

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Folder maps text to the comparable form used for trigger matching.
// Casers and transformers are stateful, so each call builds its own.
type Folder struct {
	// StripAccents removes combining marks so "nao respira" matches "não respira".
	StripAccents bool
}

// Fold normalizes s to NFC and applies Unicode case folding, plus accent
// removal when StripAccents is set.
func (f Folder) Fold(s string) string {
	if s == "" {
		return s
	}
	s = cases.Fold().String(norm.NFC.String(s))
	if !f.StripAccents {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func (f Folder) foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, f.Fold(s))
	}
	return out
}
