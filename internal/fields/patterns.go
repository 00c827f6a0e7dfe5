package fields

import (
	"regexp"
	"strings"
)

// cascade is an ordered list of patterns for one field: the first pattern
// whose first capture group matches (and is accepted) wins.
type cascade []*regexp.Regexp

// matchFirst returns the first accepted capture in cascade order. A nil
// accept takes any match verbatim. A rejected candidate does not abort the
// field; the cascade simply moves on to the next pattern.
func (c cascade) matchFirst(text string, accept func(string) (string, bool)) (string, bool) {
	for _, re := range c {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if accept == nil {
			return candidate, true
		}
		if v, ok := accept(candidate); ok {
			return v, true
		}
	}
	return "", false
}

// amount captures a number that may carry Argentine separators; it must
// start and end with a digit so trailing punctuation stays out.
const amount = `(\d[\d.,]*\d|\d)`

var (
	numeroCascade = cascade{
		regexp.MustCompile(`(?i)n[úu]mero\s*:?\s*(\d{4}\s?-\s?\d{8})`),
		regexp.MustCompile(`(?i)(?:factura|comprobante|recibo)\s*(?:n[°º]|nro\.?|#)?\s*:?\s*(\d{4}-\d{6,8})`),
		regexp.MustCompile(`\b(\d{4}-\d{8})\b`),
		regexp.MustCompile(`(?i)n(?:[°º]|ro\.?)\s*:?\s*(\d{1,8}(?:-\d{1,8})?)`),
	}

	fechaCascade = cascade{
		regexp.MustCompile(`(?i)fecha\s+de\s+emisi[óo]n\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)fecha\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{4})\b`),
		regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2})\b`),
	}

	totalCascade = cascade{
		regexp.MustCompile(`(?i)total\s+a\s+pagar\s*:?\s*\$?\s*` + amount),
		regexp.MustCompile(`(?i)importe\s+total\s*:?\s*\$?\s*` + amount),
		regexp.MustCompile(`(?i)\btotal\b\s*:?\s*\$?\s*` + amount),
	}

	subtotalCascade = cascade{
		regexp.MustCompile(`(?i)subtotal\s*:?\s*\$?\s*` + amount),
		regexp.MustCompile(`(?i)importe\s+neto(?:\s+gravado)?\s*:?\s*\$?\s*` + amount),
	}

	ivaCascade = cascade{
		regexp.MustCompile(`(?i)\biva\b\s*\(?\s*\d{1,2}(?:[.,]\d+)?\s*%\s*\)?\s*:?\s*\$?\s*` + amount),
		regexp.MustCompile(`(?i)\biva\b\s*:?\s*\$?\s*` + amount),
		regexp.MustCompile(`(?i)\bi\.v\.a\.?\s*:?\s*\$?\s*` + amount),
	}

	cuitCascade = cascade{
		regexp.MustCompile(`(?i)c\.?u\.?i\.?t\.?\s*(?:n[°º]|nro\.?)?\s*:?\s*(\d{2}[-\s]?\d{8}[-\s]?\d)`),
		regexp.MustCompile(`\b(\d{2}-\d{8}-\d)\b`),
	}

	// currencyLike backs the total last-resort fallback: any $-prefixed
	// number or a bare number with two decimals, anywhere in the text.
	currencyLike = regexp.MustCompile(`\$\s*(\d[\d.,]*\d|\d)|\b(\d+[.,]\d{2})\b`)
)
