package memory

import (
	"context"
	"fmt"

	"github.com/wareledger/wareledger/internal/app/domain/inventory"
	"github.com/wareledger/wareledger/internal/app/storage"
)

// ObjectStore implementation --------------------------------------------------

func (s *Store) RefreshStorageStats(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := make(map[int64]int64, len(s.st.objects))
	for _, r := range s.st.receipts {
		totals[r.ObjectID] += r.Quantity
	}
	for _, w := range s.st.writeOffs {
		totals[w.ObjectID] -= w.Quantity
	}
	for id, obj := range s.st.objects {
		obj.Quantity = totals[id]
		s.st.objects[id] = obj
	}
	return nil
}

func (s *Store) ListObjects(context.Context) ([]inventory.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.st.objects), nil
}

func (s *Store) SearchObjects(ctx context.Context, q inventory.SearchQuery) ([]inventory.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var match func(inventory.Object) bool
	switch q.Field {
	case inventory.SearchByName:
		match = func(o inventory.Object) bool { return containsFold(o.ObjectName, q.Text) }
	case inventory.SearchBySellerName:
		match = s.receiptMatcher(func(r receiptRow) bool {
			return r.SellerID != nil && containsFold(s.st.sellers[*r.SellerID].Name, q.Text)
		})
	case inventory.SearchByTheme:
		match = func(o inventory.Object) bool {
			for _, r := range s.st.receipts {
				if r.ObjectID == o.ID && r.ThemeID != nil && *r.ThemeID == q.ThemeID {
					return true
				}
			}
			for _, w := range s.st.writeOffs {
				if w.ObjectID == o.ID && w.ThemeID != nil && *w.ThemeID == q.ThemeID {
					return true
				}
			}
			return false
		}
	case inventory.SearchByBill:
		match = s.receiptMatcher(func(r receiptRow) bool {
			return containsFold(s.st.documents[inventory.FileBill][r.BillID].number, q.Text)
		})
	case inventory.SearchByInvoice:
		match = s.receiptMatcher(func(r receiptRow) bool {
			return containsFold(s.st.documents[inventory.FileInvoice][r.InvoiceID].number, q.Text)
		})
	default:
		return sortedValues(s.st.objects), nil
	}

	out := make([]inventory.Object, 0)
	for _, obj := range sortedValues(s.st.objects) {
		if match(obj) {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (s *Store) receiptMatcher(pred func(receiptRow) bool) func(inventory.Object) bool {
	return func(o inventory.Object) bool {
		for _, r := range s.st.receipts {
			if r.ObjectID == o.ID && pred(r) {
				return true
			}
		}
		return false
	}
}

func (s *Store) GetObject(_ context.Context, id int64) (inventory.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.st.objects[id]
	if !ok {
		return inventory.Object{}, storage.ErrNotFound
	}
	return obj, nil
}

func (s *Store) CreateObject(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextIDLocked()
	s.st.objects[id] = inventory.Object{ID: id, ObjectName: name}
	return id, nil
}

func (s *Store) UpdateObject(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.st.objects[id]
	if !ok {
		return storage.ErrNotFound
	}
	obj.ObjectName = name
	s.st.objects[id] = obj
	return nil
}

// DeleteObject removes the object with its receipts, writeoffs and prices.
func (s *Store) DeleteObject(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.objects[id]; !ok {
		return storage.ErrNotFound
	}
	for rid, r := range s.st.receipts {
		if r.ObjectID == id {
			s.deleteReceiptLocked(rid)
		}
	}
	for wid, w := range s.st.writeOffs {
		if w.ObjectID == id {
			delete(s.st.writeOffs, wid)
		}
	}
	delete(s.st.objects, id)
	return nil
}

// SellerStore implementation --------------------------------------------------

func (s *Store) ListSellers(context.Context) ([]inventory.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.st.sellers), nil
}

func (s *Store) GetSeller(_ context.Context, id int64) (inventory.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seller, ok := s.st.sellers[id]
	if !ok {
		return inventory.Seller{}, storage.ErrNotFound
	}
	return seller, nil
}

func (s *Store) CreateSeller(_ context.Context, name, inn, kpp string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextIDLocked()
	s.st.sellers[id] = inventory.Seller{ID: id, Name: name, INN: inn, KPP: kpp}
	return id, nil
}

func (s *Store) UpdateSeller(_ context.Context, seller inventory.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.sellers[seller.ID]; !ok {
		return storage.ErrNotFound
	}
	s.st.sellers[seller.ID] = seller
	return nil
}

func (s *Store) DeleteSeller(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.sellers[id]; !ok {
		return storage.ErrNotFound
	}
	for _, r := range s.st.receipts {
		if r.SellerID != nil && *r.SellerID == id {
			return fmt.Errorf("seller %d: %w", id, errReferenced)
		}
	}
	delete(s.st.sellers, id)
	return nil
}

// ThemeStore implementation ---------------------------------------------------

func (s *Store) ListThemes(context.Context) ([]inventory.Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.st.themes), nil
}

func (s *Store) GetTheme(_ context.Context, id int64) (inventory.Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	theme, ok := s.st.themes[id]
	if !ok {
		return inventory.Theme{}, storage.ErrNotFound
	}
	return theme, nil
}

func (s *Store) CreateTheme(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextIDLocked()
	s.st.themes[id] = inventory.Theme{ID: id, Name: name}
	return id, nil
}

func (s *Store) UpdateTheme(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.themes[id]; !ok {
		return storage.ErrNotFound
	}
	s.st.themes[id] = inventory.Theme{ID: id, Name: name}
	return nil
}

func (s *Store) DeleteTheme(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.themes[id]; !ok {
		return storage.ErrNotFound
	}
	for _, r := range s.st.receipts {
		if r.ThemeID != nil && *r.ThemeID == id {
			return fmt.Errorf("theme %d: %w", id, errReferenced)
		}
	}
	for _, w := range s.st.writeOffs {
		if w.ThemeID != nil && *w.ThemeID == id {
			return fmt.Errorf("theme %d: %w", id, errReferenced)
		}
	}
	delete(s.st.themes, id)
	return nil
}

// ReceiptStore implementation -------------------------------------------------

func (s *Store) createDocument(kind inventory.FileKind, doc inventory.Document) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextIDLocked()
	s.st.documents[kind][id] = document{
		number:   doc.Number,
		date:     doc.Date,
		sellerID: doc.SellerID,
		billID:   doc.BillID,
		file:     append([]byte(nil), doc.File.Data...),
		filename: doc.File.Filename,
	}
	return id
}

func (s *Store) CreateBill(_ context.Context, doc inventory.Document) (int64, error) {
	return s.createDocument(inventory.FileBill, doc), nil
}

func (s *Store) CreateInvoice(_ context.Context, doc inventory.Document) (int64, error) {
	return s.createDocument(inventory.FileInvoice, doc), nil
}

func (s *Store) CreateEntryControl(_ context.Context, doc inventory.Document) (int64, error) {
	return s.createDocument(inventory.FileEntryControl, doc), nil
}

func (s *Store) CreateReceipt(_ context.Context, r inventory.NewReceipt) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.objects[r.ObjectID]; !ok {
		return 0, fmt.Errorf("object %d does not exist", r.ObjectID)
	}
	id := s.nextIDLocked()
	s.st.receipts[id] = receiptRow{NewReceipt: r, id: id, createdAt: s.now()}
	return id, nil
}

// replaceDocument overwrites the non-empty parts of a stored document.
func (s *Store) replaceDocument(kind inventory.FileKind, id int64, doc *inventory.Document) {
	if doc == nil {
		return
	}
	current := s.st.documents[kind][id]
	if doc.Number != "" {
		current.number = doc.Number
	}
	if doc.Date.Valid {
		current.date = doc.Date
	}
	if !doc.File.Empty() {
		current.file = append([]byte(nil), doc.File.Data...)
		current.filename = doc.File.Filename
	}
	s.st.documents[kind][id] = current
}

func (s *Store) UpdateReceipt(_ context.Context, u inventory.ReceiptUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.st.receipts[u.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if _, ok := s.st.objects[u.ObjectID]; !ok {
		return fmt.Errorf("object %d does not exist", u.ObjectID)
	}
	row.ObjectID = u.ObjectID
	row.SellerObjectName = u.SellerObjectName
	row.SellerID = int64Ptr(u.SellerID)
	row.ThemeID = int64Ptr(u.ThemeID)
	row.Location = u.Location
	row.Quantity = u.Quantity
	s.st.receipts[u.ID] = row

	s.replaceDocument(inventory.FileBill, row.BillID, u.Bill)
	s.replaceDocument(inventory.FileInvoice, row.InvoiceID, u.Invoice)
	s.replaceDocument(inventory.FileEntryControl, row.EntryControlID, u.EntryControl)
	return nil
}

func (s *Store) deleteReceiptLocked(id int64) {
	row := s.st.receipts[id]
	delete(s.st.documents[inventory.FileBill], row.BillID)
	delete(s.st.documents[inventory.FileInvoice], row.InvoiceID)
	delete(s.st.documents[inventory.FileEntryControl], row.EntryControlID)
	for pid, p := range s.st.prices {
		if p.ReceiptID == id {
			delete(s.st.prices, pid)
		}
	}
	delete(s.st.receipts, id)
}

func (s *Store) DeleteReceipt(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.receipts[id]; !ok {
		return storage.ErrNotFound
	}
	s.deleteReceiptLocked(id)
	return nil
}

func (s *Store) receiptViewLocked(row receiptRow) inventory.Receipt {
	out := inventory.Receipt{
		ID:               row.id,
		ObjectID:         row.ObjectID,
		SellerObjectName: strPtr(row.SellerObjectName),
		SellerID:         row.SellerID,
		ThemeID:          row.ThemeID,
		Location:         strPtr(row.Location),
		Quantity:         row.Quantity,
		CreatedAt:        timePtr(row.createdAt),
	}
	if obj, ok := s.st.objects[row.ObjectID]; ok {
		out.ObjectName = strPtr(obj.ObjectName)
	}
	if row.SellerID != nil {
		if seller, ok := s.st.sellers[*row.SellerID]; ok {
			out.SellerName = strPtr(seller.Name)
		}
	}
	if row.ThemeID != nil {
		if theme, ok := s.st.themes[*row.ThemeID]; ok {
			out.ThemeName = strPtr(theme.Name)
		}
	}
	if doc, ok := s.st.documents[inventory.FileBill][row.BillID]; ok {
		out.BillID = int64Ptr(row.BillID)
		out.BillNumber = strPtr(doc.number)
		out.BillDate = doc.date
		out.BillFilename = strPtr(doc.filename)
	}
	if doc, ok := s.st.documents[inventory.FileInvoice][row.InvoiceID]; ok {
		out.InvoiceID = int64Ptr(row.InvoiceID)
		out.InvoiceNumber = strPtr(doc.number)
		out.InvoiceDate = doc.date
		out.InvoiceFilename = strPtr(doc.filename)
	}
	if doc, ok := s.st.documents[inventory.FileEntryControl][row.EntryControlID]; ok {
		out.EntryControlID = int64Ptr(row.EntryControlID)
		out.EntryControlNumber = strPtr(doc.number)
		out.EntryControlDate = doc.date
		out.EntryControlFilename = strPtr(doc.filename)
	}
	return out
}

func (s *Store) GetReceipt(_ context.Context, id int64) (inventory.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.st.receipts[id]
	if !ok {
		return inventory.Receipt{}, storage.ErrNotFound
	}
	return s.receiptViewLocked(row), nil
}

func (s *Store) ListReceiptsByObject(_ context.Context, objectID int64) ([]inventory.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]inventory.Receipt, 0)
	for _, row := range sortedValues(s.st.receipts) {
		if row.ObjectID == objectID {
			out = append(out, s.receiptViewLocked(row))
		}
	}
	return out, nil
}

// WriteOffStore implementation ------------------------------------------------

func (s *Store) CreateWriteOff(_ context.Context, w inventory.WriteOffInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.objects[w.ObjectID]; !ok {
		return 0, fmt.Errorf("object %d does not exist", w.ObjectID)
	}
	w.ID = s.nextIDLocked()
	w.Document.Data = append([]byte(nil), w.Document.Data...)
	s.st.writeOffs[w.ID] = writeOffRow{WriteOffInput: w, createdAt: s.now()}
	return w.ID, nil
}

// UpdateWriteOff keeps the stored document when w carries none.
func (s *Store) UpdateWriteOff(_ context.Context, w inventory.WriteOffInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.st.writeOffs[w.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if w.Document.Empty() {
		w.Document = row.Document
	} else {
		w.Document.Data = append([]byte(nil), w.Document.Data...)
	}
	row.WriteOffInput = w
	s.st.writeOffs[w.ID] = row
	return nil
}

func (s *Store) DeleteWriteOff(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.writeOffs[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.st.writeOffs, id)
	return nil
}

func (s *Store) writeOffViewLocked(row writeOffRow) inventory.WriteOff {
	out := inventory.WriteOff{
		ID:               row.ID,
		ObjectID:         row.ObjectID,
		ThemeID:          row.ThemeID,
		Quantity:         row.Quantity,
		WriteOffDate:     row.Date,
		DocumentFilename: strPtr(row.Document.Filename),
		CreatedAt:        timePtr(row.createdAt),
	}
	if obj, ok := s.st.objects[row.ObjectID]; ok {
		out.ObjectName = strPtr(obj.ObjectName)
	}
	if row.ThemeID != nil {
		if theme, ok := s.st.themes[*row.ThemeID]; ok {
			out.ThemeName = strPtr(theme.Name)
		}
	}
	return out
}

func (s *Store) GetWriteOff(_ context.Context, id int64) (inventory.WriteOff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.st.writeOffs[id]
	if !ok {
		return inventory.WriteOff{}, storage.ErrNotFound
	}
	return s.writeOffViewLocked(row), nil
}

func (s *Store) ListWriteOffsByObject(_ context.Context, objectID int64) ([]inventory.WriteOff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]inventory.WriteOff, 0)
	for _, row := range sortedValues(s.st.writeOffs) {
		if row.ObjectID == objectID {
			out = append(out, s.writeOffViewLocked(row))
		}
	}
	return out, nil
}

// FileStore implementation ----------------------------------------------------

func (s *Store) GetFile(_ context.Context, kind inventory.FileKind, id int64) (inventory.StoredFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if kind == inventory.FileWriteOff {
		row, ok := s.st.writeOffs[id]
		if !ok {
			return inventory.StoredFile{}, storage.ErrNotFound
		}
		return inventory.StoredFile{File: row.Document.Data, Filename: strPtr(row.Document.Filename)}, nil
	}
	docs, ok := s.st.documents[kind]
	if !ok {
		return inventory.StoredFile{}, storage.ErrNotFound
	}
	doc, ok := docs[id]
	if !ok {
		return inventory.StoredFile{}, storage.ErrNotFound
	}
	return inventory.StoredFile{File: doc.file, Filename: strPtr(doc.filename)}, nil
}
