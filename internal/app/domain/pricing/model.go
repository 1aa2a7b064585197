package pricing

import "time"

// DefaultTax is the VAT percentage applied when none is supplied.
const DefaultTax = 20.0

// Pricing attaches a unit price and VAT rate to a receipt.
type Pricing struct {
	ID         int64      `db:"id" json:"id"`
	ReceiptID  int64      `db:"receipt_id" json:"receipt_id"`
	Price      float64    `db:"price" json:"price"`
	Tax        float64    `db:"tax" json:"tax"`
	ObjectName *string    `db:"object_name" json:"object_name,omitempty"`
	CreatedAt  *time.Time `db:"created_at" json:"created_at,omitempty"`
}
