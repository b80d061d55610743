// Package language classifies query scripts and normalizes Pali diacritics.
package language

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/palitext/suttasearch/internal/domain"
)

// paliDiacritics are the romanized-Pali letters that do not occur in plain
// English text: macronized vowels and retroflex/nasal consonants.
const paliDiacritics = "āīūṅñṭḍṇḷṃṁĀĪŪṄÑṬḌṆḶṂṀ"

// Detect classifies the query script. Checks run in a fixed order because
// scripts can overlap in edge cases: CJK, then Cyrillic, then Pali
// diacritics, defaulting to English. Pure and total.
func Detect(query string) domain.Lang {
	if strings.ContainsFunc(query, isCJK) {
		return domain.LangZH
	}
	if strings.ContainsFunc(query, isCyrillic) {
		return domain.LangRU
	}
	if strings.ContainsAny(query, paliDiacritics) {
		return domain.LangPali
	}
	return domain.LangEN
}

// isCJK reports whether r is in the CJK Unified Ideographs block.
func isCJK(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// isCyrillic reports whether r is in the Cyrillic block.
func isCyrillic(r rune) bool {
	return r >= 0x0400 && r <= 0x04FF
}

// stripper decomposes to NFD, drops combining marks, and recomposes.
// transform.Transformer is stateful, so a fresh chain is built per call.
func stripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// StripDiacritics folds diacritic letters to their ASCII base forms
// (ā -> a, ṃ -> m). Returns the input unchanged if transformation fails.
func StripDiacritics(s string) string {
	out, _, err := transform.String(stripper(), s)
	if err != nil {
		return s
	}
	return out
}
