// Package textnorm normalises free text coming from bank statements and
// reference files.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Upper trims s and upper-cases it with Portuguese casing rules.
// "  pix recebido joão " -> "PIX RECEBIDO JOÃO"
func Upper(s string) string {
	// Casers keep state between calls, so build one per call.
	return cases.Upper(language.BrazilianPortuguese).String(strings.TrimSpace(s))
}

// Fold trims s, strips diacritics and lower-cases it. Used to compare header
// names such as "Descrição" and "DESCRICAO".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return cases.Fold().String(out)
}
