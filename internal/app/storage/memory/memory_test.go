package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/wareledger/wareledger/internal/app/domain/audit"
	"github.com/wareledger/wareledger/internal/app/domain/inventory"
	"github.com/wareledger/wareledger/internal/app/storage"
)

func seedReceipt(t *testing.T, s *Store, quantity int64) (objectID, receiptID int64) {
	t.Helper()
	ctx := context.Background()
	objectID, _ = s.CreateObject(ctx, "Кабель ВВГ")
	sellerID, _ := s.CreateSeller(ctx, "ООО Электро", "7701", "7701001")
	themeID, _ := s.CreateTheme(ctx, "Ремонт")
	billID, _ := s.CreateBill(ctx, inventory.Document{Number: "С-15", SellerID: &sellerID,
		File: inventory.Attachment{Filename: "bill.pdf", Data: []byte("%PDF")}})
	invoiceID, _ := s.CreateInvoice(ctx, inventory.Document{Number: "Н-7", BillID: &billID})
	ecID, _ := s.CreateEntryControl(ctx, inventory.Document{Number: "ВК-1"})
	receiptID, err := s.CreateReceipt(ctx, inventory.NewReceipt{
		ObjectID: objectID, SellerID: &sellerID, ThemeID: &themeID,
		BillID: billID, InvoiceID: invoiceID, EntryControlID: ecID,
		Quantity: quantity, Location: "Склад 1",
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	return objectID, receiptID
}

func TestStorageStatsAndJoins(t *testing.T) {
	s := New()
	ctx := context.Background()
	objectID, receiptID := seedReceipt(t, s, 10)
	if _, err := s.CreateWriteOff(ctx, inventory.WriteOffInput{ObjectID: objectID, Quantity: 3}); err != nil {
		t.Fatalf("create writeoff: %v", err)
	}
	if err := s.RefreshStorageStats(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	obj, err := s.GetObject(ctx, objectID)
	if err != nil {
		t.Fatalf("get object: %v", err)
	}
	if obj.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", obj.Quantity)
	}

	r, err := s.GetReceipt(ctx, receiptID)
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if r.SellerName == nil || *r.SellerName != "ООО Электро" || r.BillNumber == nil || *r.BillNumber != "С-15" {
		t.Fatalf("receipt joins missing: %+v", r)
	}

	f, err := s.GetFile(ctx, inventory.FileBill, *r.BillID)
	if err != nil || string(f.File) != "%PDF" || f.Name() != "bill.pdf" {
		t.Fatalf("unexpected bill file %+v, %v", f, err)
	}
}

func TestDeleteObjectCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	objectID, receiptID := seedReceipt(t, s, 2)
	if _, err := s.CreatePricing(ctx, receiptID, 100, 20); err != nil {
		t.Fatalf("create pricing: %v", err)
	}
	if err := s.DeleteObject(ctx, objectID); err != nil {
		t.Fatalf("delete object: %v", err)
	}
	if _, err := s.GetReceipt(ctx, receiptID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("receipt should be gone, got %v", err)
	}
	if _, err := s.GetPricingByReceipt(ctx, receiptID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("pricing should be gone, got %v", err)
	}
}

func TestReferencedThemeCannotBeDeleted(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedReceipt(t, s, 1)
	themes, _ := s.ListThemes(ctx)
	if err := s.DeleteTheme(ctx, themes[0].ID); !errors.Is(err, errReferenced) {
		t.Fatalf("expected reference error, got %v", err)
	}
}

func TestAtomicRestoresOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Atomic(ctx, func(tx storage.InventoryStore) error {
		if _, err := tx.CreateObject(ctx, "Щит"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	objs, _ := s.ListObjects(ctx)
	if len(objs) != 0 {
		t.Fatalf("expected rollback, found %d objects", len(objs))
	}
}

func TestSearchObjects(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedReceipt(t, s, 1)
	_, _ = s.CreateObject(ctx, "Щит распределительный")

	cases := []struct {
		q    inventory.SearchQuery
		want int
	}{
		{inventory.SearchQuery{Field: inventory.SearchByName, Text: "кабель"}, 1},
		{inventory.SearchQuery{Field: inventory.SearchBySellerName, Text: "электро"}, 1},
		{inventory.SearchQuery{Field: inventory.SearchByBill, Text: "С-1"}, 1},
		{inventory.SearchQuery{Field: inventory.SearchByInvoice, Text: "Н-9"}, 0},
		{inventory.SearchQuery{Field: "other"}, 2},
	}
	for _, tc := range cases {
		got, err := s.SearchObjects(ctx, tc.q)
		if err != nil {
			t.Fatalf("search %+v: %v", tc.q, err)
		}
		if len(got) != tc.want {
			t.Fatalf("search %+v: expected %d, got %d", tc.q, tc.want, len(got))
		}
	}
}

func TestUpdateWriteOffKeepsDocument(t *testing.T) {
	s := New()
	ctx := context.Background()
	objectID, _ := s.CreateObject(ctx, "Щит")
	id, _ := s.CreateWriteOff(ctx, inventory.WriteOffInput{
		ObjectID: objectID, Quantity: 1,
		Document: inventory.Attachment{Filename: "act.pdf", Data: []byte("%PDF")},
	})
	if err := s.UpdateWriteOff(ctx, inventory.WriteOffInput{ID: id, ObjectID: objectID, Quantity: 2}); err != nil {
		t.Fatalf("update: %v", err)
	}
	w, _ := s.GetWriteOff(ctx, id)
	if w.Quantity != 2 || w.DocumentFilename == nil || *w.DocumentFilename != "act.pdf" {
		t.Fatalf("unexpected writeoff %+v", w)
	}
}

func TestUsersAndLogs(t *testing.T) {
	s := New()
	ctx := context.Background()
	id, err := s.CreateUser(ctx, "admin", "digest", true)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.CreateUser(ctx, "admin", "other", false); err == nil {
		t.Fatalf("expected duplicate username error")
	}
	u, err := s.Authenticate(ctx, "admin", "digest")
	if err != nil || u.ID != id || !u.Admin {
		t.Fatalf("authenticate: %+v, %v", u, err)
	}
	if _, err := s.Authenticate(ctx, "admin", "wrong"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	for _, name := range []string{"Кабель", "Щит", "Кабель КГ"} {
		n := name
		_ = s.AddLog(ctx, audit.Entry{Username: "admin", Action: audit.ActionEdit, EntityType: audit.EntityObject, EntityName: &n})
	}
	logs, _ := s.ListLogs(ctx, 2, 0)
	if len(logs) != 2 || *logs[0].EntityName != "Кабель КГ" {
		t.Fatalf("expected newest first, got %+v", logs)
	}
	found, _ := s.SearchLogs(ctx, "кабель", 10, 1)
	if len(found) != 1 || *found[0].EntityName != "Кабель" {
		t.Fatalf("unexpected search page %+v", found)
	}
	if n, _ := s.CountLogs(ctx); n != 3 {
		t.Fatalf("expected 3 logs, got %d", n)
	}
}
