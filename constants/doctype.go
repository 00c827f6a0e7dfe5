package constants

import "strings"

// DocType is a comprobante category tag.
type DocType string

const (
	FacturaA    DocType = "factura_a"
	FacturaB    DocType = "factura_b"
	FacturaC    DocType = "factura_c"
	NotaCredito DocType = "nota_credito"
	NotaDebito  DocType = "nota_debito"
	Recibo      DocType = "recibo"
	Presupuesto DocType = "presupuesto"
)

var allDocTypes = []DocType{
	FacturaA,
	FacturaB,
	FacturaC,
	NotaCredito,
	NotaDebito,
	Recibo,
	Presupuesto,
}

// docTypeKeywords maps each category to the substrings that identify it.
// Order matters: the more specific entries (lettered facturas, notas) are
// checked before the generic ones, so "nota de crédito" never lands on
// "recibo" just because both words appear somewhere.
var docTypeKeywords = []struct {
	Type     DocType
	Keywords []string
}{
	{FacturaA, []string{"factura a", "factura tipo a", "factura_a", "fact. a"}},
	{FacturaB, []string{"factura b", "factura tipo b", "factura_b", "fact. b"}},
	{FacturaC, []string{"factura c", "factura tipo c", "factura_c", "fact. c"}},
	{NotaCredito, []string{"nota de crédito", "nota de credito", "nota credito", "nota_credito"}},
	{NotaDebito, []string{"nota de débito", "nota de debito", "nota debito", "nota_debito"}},
	{Presupuesto, []string{"presupuesto"}},
	{Recibo, []string{"recibo"}},
}

// AllDocTypes returns the category tags as strings.
func AllDocTypes() []string {
	result := make([]string, len(allDocTypes))
	for i, t := range allDocTypes {
		result[i] = string(t)
	}
	return result
}

// DetectDocType classifies a comprobante from its text and original filename
// by keyword lookup. Defaults to Recibo when nothing matches.
func DetectDocType(text, filename string) DocType {
	haystack := strings.ToLower(text) + "\n" + strings.ToLower(filename)
	for _, entry := range docTypeKeywords {
		for _, kw := range entry.Keywords {
			if strings.Contains(haystack, kw) {
				return entry.Type
			}
		}
	}
	return Recibo
}
