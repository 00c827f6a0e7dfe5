package entity

import (
	"time"

	"github.com/google/uuid"
)

// Comprobante represents a processed comprobante for data transfer between layers.
type Comprobante struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Filename     string    `db:"filename" json:"filename"`
	FileFormat   string    `db:"file_format" json:"file_format"`
	Tipo         *string   `db:"tipo" json:"tipo"`
	Numero       *string   `db:"numero" json:"numero"`
	FechaEmision *string   `db:"fecha_emision" json:"fecha_emision"`
	Total        *float64  `db:"total" json:"total"`
	Subtotal     *float64  `db:"subtotal" json:"subtotal"`
	IVA          *float64  `db:"iva" json:"iva"`
	CUITEmisor   *string   `db:"cuit_emisor" json:"cuit_emisor"`
	RazonSocial  *string   `db:"razon_social" json:"razon_social"`
	Confidence   float64   `db:"confidence" json:"confidence"`
	RawText      string    `db:"raw_text" json:"raw_text"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
