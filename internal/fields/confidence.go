package fields

import "math"

// Confidence weights. Additive and mutually independent; they sum to exactly
// 1.0, so the score is in [0,1] by construction.
const (
	weightTextLength = 0.20 // raw text longer than 100 chars
	weightNumero     = 0.25
	weightFecha      = 0.25
	weightTotal      = 0.20
	weightCUIT       = 0.10

	minUsefulTextLen = 100
)

// Score estimates extraction completeness from which fields were found,
// rounded to 2 decimals.
func Score(rawText string, f Fields) float64 {
	score := 0.0
	if len(rawText) > minUsefulTextLen {
		score += weightTextLength
	}
	if f.Numero != nil {
		score += weightNumero
	}
	if f.FechaEmision != nil {
		score += weightFecha
	}
	if f.Total != nil {
		score += weightTotal
	}
	if f.CUITEmisor != nil {
		score += weightCUIT
	}
	return math.Round(score*100) / 100
}
