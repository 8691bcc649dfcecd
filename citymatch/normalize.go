package citymatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// This file contains the text normalization used for every name comparison.

// okina is the Hawaiian glottal stop letter (U+02BB). Datasets disagree on
// whether it is written as the letter itself or as a plain apostrophe.
const okina = 'ʻ'

// StringTransformer defines the contract for a function that can transform a string.
type StringTransformer interface {
	TransformString(t transform.Transformer, s string) (string, int, error)
}

// defaultTransformer is the production implementation of StringTransformer.
type defaultTransformer struct{}

// TransformString calls the actual transform.String function.
func (dt defaultTransformer) TransformString(t transform.Transformer, s string) (string, int, error) {
	return transform.String(t, s)
}

// transformer is the injection point used by Normalize.
var transformer StringTransformer = defaultTransformer{}

// Normalize returns the canonical comparable form of s:
// 1. It lowercases the string (locale independent).
// 2. It decomposes it (NFD) and removes every combining mark, so "Kaimukī"
// becomes "kaimuki". The result stays decomposed: Hangul syllables come out
// as their jamo.
// 3. It replaces the ʻokina with a plain apostrophe.
//
// Normalize never fails. If the transform chain reports an error the marks are
// left in place and only steps 1 and 3 apply.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	out := strings.ToLower(strings.ToValidUTF8(s, "�"))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.M)))
	if stripped, _, err := transformer.TransformString(t, out); err == nil {
		out = stripped
	}

	return strings.ReplaceAll(out, string(okina), "'")
}
