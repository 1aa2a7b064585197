package inventory

import "fmt"

// FileKind names the document table a stored file belongs to.
type FileKind string

const (
	FileBill         FileKind = "bill"
	FileInvoice      FileKind = "invoice"
	FileEntryControl FileKind = "entry_control"
	FileWriteOff     FileKind = "writeoff"
)

// ParseFileKind validates a kind taken from a request path.
func ParseFileKind(s string) (FileKind, error) {
	switch k := FileKind(s); k {
	case FileBill, FileInvoice, FileEntryControl, FileWriteOff:
		return k, nil
	default:
		return "", fmt.Errorf("unknown file kind %q", s)
	}
}

// StoredFile is a document body as returned by get_file.
type StoredFile struct {
	File     []byte  `db:"file"`
	Filename *string `db:"filename"`
}

// Name returns the stored filename or "".
func (f StoredFile) Name() string {
	if f.Filename == nil {
		return ""
	}
	return *f.Filename
}

// SearchField selects the object search routine.
type SearchField string

const (
	SearchByName       SearchField = "name"
	SearchBySellerName SearchField = "seller_name"
	SearchByTheme      SearchField = "theme"
	SearchByBill       SearchField = "bill"
	SearchByInvoice    SearchField = "invoice"
)

// SearchQuery is a parsed object search. ThemeID is set for SearchByTheme,
// Text for the other fields. An unrecognised field lists all objects.
type SearchQuery struct {
	Field   SearchField
	Text    string
	ThemeID int64
}
