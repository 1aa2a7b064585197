package postgres

import (
	"context"

	"github.com/wareledger/wareledger/internal/app/domain/inventory"
)

// --- ObjectStore ------------------------------------------------------------

func (s *Store) RefreshStorageStats(ctx context.Context) error {
	return s.exec(ctx, "update_objects_storage_stats")
}

func (s *Store) ListObjects(ctx context.Context) ([]inventory.Object, error) {
	var out []inventory.Object
	if err := s.selectRows(ctx, &out, "get_all_objects"); err != nil {
		return nil, err
	}
	return out, nil
}

var searchRoutines = map[inventory.SearchField]string{
	inventory.SearchByName:       "search_objects_by_name",
	inventory.SearchBySellerName: "search_objects_by_seller_name",
	inventory.SearchByTheme:      "search_objects_by_theme",
	inventory.SearchByBill:       "search_objects_by_bill",
	inventory.SearchByInvoice:    "search_objects_by_invoice",
}

func (s *Store) SearchObjects(ctx context.Context, q inventory.SearchQuery) ([]inventory.Object, error) {
	routine, ok := searchRoutines[q.Field]
	if !ok {
		return s.ListObjects(ctx)
	}
	var arg interface{} = q.Text
	if q.Field == inventory.SearchByTheme {
		arg = q.ThemeID
	}
	var out []inventory.Object
	if err := s.selectRows(ctx, &out, routine, arg); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetObject(ctx context.Context, id int64) (inventory.Object, error) {
	var obj inventory.Object
	if err := s.getRow(ctx, &obj, "get_object_by_id", id); err != nil {
		return inventory.Object{}, err
	}
	return obj, nil
}

func (s *Store) CreateObject(ctx context.Context, name string) (int64, error) {
	return s.createID(ctx, "create_object", name)
}

func (s *Store) UpdateObject(ctx context.Context, id int64, name string) error {
	return s.exec(ctx, "update_object", id, name)
}

func (s *Store) DeleteObject(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete_object", id)
}

// --- SellerStore ------------------------------------------------------------

func (s *Store) ListSellers(ctx context.Context) ([]inventory.Seller, error) {
	var out []inventory.Seller
	if err := s.selectRows(ctx, &out, "get_all_sellers"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetSeller(ctx context.Context, id int64) (inventory.Seller, error) {
	var seller inventory.Seller
	if err := s.getRow(ctx, &seller, "get_seller_by_id", id); err != nil {
		return inventory.Seller{}, err
	}
	return seller, nil
}

func (s *Store) CreateSeller(ctx context.Context, name, inn, kpp string) (int64, error) {
	return s.createID(ctx, "create_seller", name, inn, kpp)
}

func (s *Store) UpdateSeller(ctx context.Context, seller inventory.Seller) error {
	return s.exec(ctx, "update_seller", seller.ID, seller.Name, seller.INN, seller.KPP)
}

func (s *Store) DeleteSeller(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete_seller", id)
}

// --- ThemeStore -------------------------------------------------------------

func (s *Store) ListThemes(ctx context.Context) ([]inventory.Theme, error) {
	var out []inventory.Theme
	if err := s.selectRows(ctx, &out, "get_all_themes"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetTheme(ctx context.Context, id int64) (inventory.Theme, error) {
	var theme inventory.Theme
	if err := s.getRow(ctx, &theme, "get_theme_by_id", id); err != nil {
		return inventory.Theme{}, err
	}
	return theme, nil
}

func (s *Store) CreateTheme(ctx context.Context, name string) (int64, error) {
	return s.createID(ctx, "create_theme", name)
}

func (s *Store) UpdateTheme(ctx context.Context, id int64, name string) error {
	return s.exec(ctx, "update_theme", id, name)
}

func (s *Store) DeleteTheme(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete_theme", id)
}

// --- ReceiptStore -----------------------------------------------------------

func (s *Store) CreateBill(ctx context.Context, doc inventory.Document) (int64, error) {
	return s.createID(ctx, "create_bill",
		doc.Number, doc.Date, nullInt(doc.SellerID),
		nullBytes(doc.File.Data), nullString(doc.File.Filename))
}

func (s *Store) CreateInvoice(ctx context.Context, doc inventory.Document) (int64, error) {
	return s.createID(ctx, "create_invoice",
		doc.Number, doc.Date, nullInt(doc.SellerID), nullInt(doc.BillID),
		nullBytes(doc.File.Data), nullString(doc.File.Filename))
}

func (s *Store) CreateEntryControl(ctx context.Context, doc inventory.Document) (int64, error) {
	return s.createID(ctx, "create_entry_control",
		doc.Number, doc.Date,
		nullBytes(doc.File.Data), nullString(doc.File.Filename))
}

func (s *Store) CreateReceipt(ctx context.Context, r inventory.NewReceipt) (int64, error) {
	return s.createID(ctx, "create_receipt",
		r.ObjectID, r.SellerObjectName, nullInt(r.SellerID), r.BillID,
		nullInt(r.ThemeID), r.InvoiceID, r.EntryControlID, r.Location, r.Quantity)
}

// documentArgs expands an optional document into the number, date, file and
// filename parameters of update_receipt.
func documentArgs(doc *inventory.Document) []interface{} {
	if doc == nil {
		return []interface{}{nil, nil, nil, nil}
	}
	return []interface{}{
		nullString(doc.Number), doc.Date,
		nullBytes(doc.File.Data), nullString(doc.File.Filename),
	}
}

func (s *Store) UpdateReceipt(ctx context.Context, u inventory.ReceiptUpdate) error {
	args := []interface{}{
		u.ID, u.ObjectID, u.SellerObjectName,
		u.SellerID, u.ThemeID, u.Location, u.Quantity,
	}
	args = append(args, documentArgs(u.Bill)...)
	args = append(args, documentArgs(u.Invoice)...)
	args = append(args, documentArgs(u.EntryControl)...)
	return s.exec(ctx, "update_receipt", args...)
}

func (s *Store) DeleteReceipt(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete_receipt", id)
}

func (s *Store) GetReceipt(ctx context.Context, id int64) (inventory.Receipt, error) {
	var r inventory.Receipt
	if err := s.getRow(ctx, &r, "get_receipt_by_id", id); err != nil {
		return inventory.Receipt{}, err
	}
	return r, nil
}

func (s *Store) ListReceiptsByObject(ctx context.Context, objectID int64) ([]inventory.Receipt, error) {
	var out []inventory.Receipt
	if err := s.selectRows(ctx, &out, "get_receipts_by_object", objectID); err != nil {
		return nil, err
	}
	return out, nil
}

// --- WriteOffStore ----------------------------------------------------------

func (s *Store) CreateWriteOff(ctx context.Context, w inventory.WriteOffInput) (int64, error) {
	return s.createID(ctx, "create_writeoff",
		w.ObjectID, nullInt(w.ThemeID), w.Quantity, w.Date,
		nullBytes(w.Document.Data), nullString(w.Document.Filename))
}

func (s *Store) UpdateWriteOff(ctx context.Context, w inventory.WriteOffInput) error {
	return s.exec(ctx, "update_writeoff",
		w.ID, w.ObjectID, nullInt(w.ThemeID), w.Quantity, w.Date,
		nullBytes(w.Document.Data), nullString(w.Document.Filename))
}

func (s *Store) DeleteWriteOff(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete_writeoff", id)
}

func (s *Store) GetWriteOff(ctx context.Context, id int64) (inventory.WriteOff, error) {
	var w inventory.WriteOff
	if err := s.getRow(ctx, &w, "get_writeoff_by_id", id); err != nil {
		return inventory.WriteOff{}, err
	}
	return w, nil
}

func (s *Store) ListWriteOffsByObject(ctx context.Context, objectID int64) ([]inventory.WriteOff, error) {
	var out []inventory.WriteOff
	if err := s.selectRows(ctx, &out, "get_writeoffs_by_object", objectID); err != nil {
		return nil, err
	}
	return out, nil
}

// --- FileStore --------------------------------------------------------------

func (s *Store) GetFile(ctx context.Context, kind inventory.FileKind, id int64) (inventory.StoredFile, error) {
	var f inventory.StoredFile
	if err := s.getRow(ctx, &f, "get_file", string(kind), id); err != nil {
		return inventory.StoredFile{}, err
	}
	return f, nil
}
