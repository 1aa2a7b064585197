package inventory

import "time"

// Object is a stock item tracked in the warehouse. Quantity is maintained by
// the storage stats refresh: receipts minus writeoffs.
type Object struct {
	ID         int64  `db:"id" json:"id"`
	ObjectName string `db:"objectname" json:"objectname"`
	Quantity   int64  `db:"quantity" json:"quantity"`
}

// Seller supplies objects.
type Seller struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	INN  string `db:"inn" json:"inn"`
	KPP  string `db:"kpp" json:"kpp"`
}

// Theme groups receipts and writeoffs under a project or budget line.
type Theme struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Receipt records objects arriving from a seller together with the bill,
// invoice and entry control documents that came with them.
type Receipt struct {
	ID               int64   `db:"id" json:"id"`
	ObjectID         int64   `db:"object_id" json:"object_id"`
	ObjectName       *string `db:"object_name" json:"object_name"`
	SellerObjectName *string `db:"seller_object_name" json:"seller_object_name"`
	SellerID         *int64  `db:"seller_id" json:"seller_id"`
	SellerName       *string `db:"seller_name" json:"seller_name"`
	ThemeID          *int64  `db:"theme_id" json:"theme_id"`
	ThemeName        *string `db:"theme_name" json:"theme_name"`

	BillID       *int64  `db:"bill_id" json:"bill_id"`
	BillNumber   *string `db:"bill_number" json:"bill_number"`
	BillDate     Date    `db:"bill_date" json:"bill_date"`
	BillFilename *string `db:"bill_filename" json:"bill_filename"`

	InvoiceID       *int64  `db:"invoice_id" json:"invoice_id"`
	InvoiceNumber   *string `db:"invoice_number" json:"invoice_number"`
	InvoiceDate     Date    `db:"invoice_date" json:"invoice_date"`
	InvoiceFilename *string `db:"invoice_filename" json:"invoice_filename"`

	EntryControlID       *int64  `db:"entry_control_id" json:"entry_control_id"`
	EntryControlNumber   *string `db:"entry_control_number" json:"entry_control_number"`
	EntryControlDate     Date    `db:"entry_control_date" json:"entry_control_date"`
	EntryControlFilename *string `db:"entry_control_filename" json:"entry_control_filename"`

	Location  *string    `db:"location" json:"location"`
	Quantity  int64      `db:"quantity" json:"quantity"`
	CreatedAt *time.Time `db:"created_at" json:"created_at"`
}

// WriteOff records objects leaving the warehouse.
type WriteOff struct {
	ID               int64      `db:"id" json:"id"`
	ObjectID         int64      `db:"object_id" json:"object_id"`
	ObjectName       *string    `db:"object_name" json:"object_name"`
	ThemeID          *int64     `db:"theme_id" json:"theme_id"`
	ThemeName        *string    `db:"theme_name" json:"theme_name"`
	Quantity         int64      `db:"quantity" json:"quantity"`
	WriteOffDate     Date       `db:"writeoff_date" json:"writeoff_date"`
	DocumentFilename *string    `db:"document_filename" json:"document_filename"`
	CreatedAt        *time.Time `db:"created_at" json:"created_at"`
}

// Details lists the movements of one object.
type Details struct {
	Receipts  []Receipt  `json:"receipts"`
	WriteOffs []WriteOff `json:"writeoffs"`
}

// Attachment is an uploaded document body.
type Attachment struct {
	Filename string
	Data     []byte
}

// Empty reports whether no file was supplied.
func (a Attachment) Empty() bool { return len(a.Data) == 0 }

// Document carries the header of a bill, invoice or entry control.
// SellerID and BillID are only used by the document kinds that reference
// them.
type Document struct {
	Number   string
	Date     Date
	SellerID *int64
	BillID   *int64
	File     Attachment
}

// NewReceipt is the row written by create_receipt once its documents exist.
type NewReceipt struct {
	ObjectID         int64
	SellerObjectName string
	SellerID         *int64
	BillID           int64
	ThemeID          *int64
	InvoiceID        int64
	EntryControlID   int64
	Location         string
	Quantity         int64
}

// ReceiptUpdate rewrites a receipt. A nil document leaves the stored one
// untouched.
type ReceiptUpdate struct {
	ID               int64
	ObjectID         int64
	SellerObjectName string
	SellerID         int64
	ThemeID          int64
	Location         string
	Quantity         int64
	Bill             *Document
	Invoice          *Document
	EntryControl     *Document
}

// WriteOffInput creates or rewrites a writeoff. An empty Document keeps the
// stored file on update.
type WriteOffInput struct {
	ID       int64
	ObjectID int64
	ThemeID  *int64
	Quantity int64
	Date     Date
	Document Attachment
}
