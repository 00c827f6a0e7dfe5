package fields

import (
	"strconv"
	"strings"

	"github.com/mfigueredo/comprobantes-tracker/constants"
)

// Fields holds everything the detector cascades recover from raw text.
// Absent fields are nil, never zero values.
type Fields struct {
	Tipo         constants.DocType
	Numero       *string
	FechaEmision *string
	Total        *float64
	Subtotal     *float64
	IVA          *float64
	CUITEmisor   *string
	RazonSocial  *string

	// TotalFromFallback marks a total that came from the last-resort
	// "last currency-like number in the text" heuristic rather than a
	// labeled match. It does not affect the confidence score.
	TotalFromFallback bool
}

// legal-entity markers for the issuer-name scan, lowercase.
var issuerMarkers = []string{"s.a.", "s.r.l.", "empresa", "compañía"}

// issuerScanLines bounds the issuer-name scan to the top of the document.
const issuerScanLines = 10

// Extract runs every detector cascade over the raw text. The original
// filename only feeds the document-type keyword lookup.
func Extract(text, filename string) Fields {
	f := Fields{Tipo: constants.DetectDocType(text, filename)}

	if v, ok := numeroCascade.matchFirst(text, acceptNumero); ok {
		f.Numero = &v
	}
	if v, ok := fechaCascade.matchFirst(text, nil); ok {
		iso := NormalizeDate(v)
		f.FechaEmision = &iso
	}
	if v, ok := totalCascade.matchFirst(text, acceptAmount); ok {
		f.Total = parseAmountPtr(v)
	} else if v, ok := fallbackTotal(text); ok {
		f.Total = parseAmountPtr(v)
		f.TotalFromFallback = true
	}
	if v, ok := subtotalCascade.matchFirst(text, acceptAmount); ok {
		f.Subtotal = parseAmountPtr(v)
	}
	if v, ok := ivaCascade.matchFirst(text, acceptAmount); ok {
		f.IVA = parseAmountPtr(v)
	}
	if v, ok := cuitCascade.matchFirst(text, acceptCUIT); ok {
		f.CUITEmisor = &v
	}
	if v, ok := issuerName(text); ok {
		f.RazonSocial = &v
	}
	return f
}

// acceptNumero drops whitespace the looser patterns tolerate around the
// dash, so "0001 - 00000042" comes out as "0001-00000042".
func acceptNumero(s string) (string, bool) {
	return strings.ReplaceAll(s, " ", ""), true
}

// acceptAmount normalizes and parses a matched number. Commas become dots
// unconditionally: Argentine formatting ("1234,56") is assumed, and a
// candidate that then fails to parse is rejected so the cascade continues.
func acceptAmount(s string) (string, bool) {
	norm := strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(norm, 64)
	if err != nil || v < 0 {
		return "", false
	}
	return norm, true
}

func parseAmountPtr(norm string) *float64 {
	v, err := strconv.ParseFloat(norm, 64)
	if err != nil {
		return nil
	}
	return &v
}

// acceptCUIT strips separators and keeps the candidate only if exactly 11
// digits remain; a syntactic match with the wrong length is no match at all.
func acceptCUIT(s string) (string, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 11 {
		return "", false
	}
	return digits, true
}

// fallbackTotal takes the last currency-like number anywhere in the text.
// Known to be a guess: page numbers and phone numbers can qualify. Candidates
// are tried from the end until one parses.
func fallbackTotal(text string) (string, bool) {
	matches := currencyLike.FindAllStringSubmatch(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		candidate := matches[i][1]
		if candidate == "" {
			candidate = matches[i][2]
		}
		if norm, ok := acceptAmount(candidate); ok {
			return norm, true
		}
	}
	return "", false
}

// issuerName scans the first lines for one carrying a legal-entity marker
// and falls back to the first non-empty line.
func issuerName(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) > issuerScanLines {
		lines = lines[:issuerScanLines]
	}

	firstNonEmpty := ""
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if firstNonEmpty == "" {
			firstNonEmpty = line
		}
		lower := strings.ToLower(line)
		for _, marker := range issuerMarkers {
			if strings.Contains(lower, marker) {
				return line, true
			}
		}
	}
	if firstNonEmpty != "" {
		return firstNonEmpty, true
	}
	return "", false
}
