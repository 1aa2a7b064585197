package inventory

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/wareledger/wareledger/internal/app/domain/audit"
	"github.com/wareledger/wareledger/internal/app/domain/inventory"
	auditsvc "github.com/wareledger/wareledger/internal/app/services/audit"
	"github.com/wareledger/wareledger/internal/app/storage/memory"
	apperrors "github.com/wareledger/wareledger/internal/errors"
)

func newService(t *testing.T) (*Service, *auditsvc.Service, context.Context) {
	t.Helper()
	store := memory.New()
	audits := auditsvc.New(store, nil)
	ctx := audit.WithActor(context.Background(), audit.Actor{ID: 1, Username: "admin"})
	return New(store, audits, nil), audits, ctx
}

func lastLog(t *testing.T, audits *auditsvc.Service) audit.Entry {
	t.Helper()
	page, err := audits.List(context.Background(), "", 1, 0)
	if err != nil || len(page.Logs) == 0 {
		t.Fatalf("expected audit entry, got %+v, %v", page, err)
	}
	return page.Logs[0]
}

func details(e audit.Entry) string {
	if e.Details == nil {
		return ""
	}
	return *e.Details
}

func TestObjectLifecycle(t *testing.T) {
	svc, audits, ctx := newService(t)

	if _, err := svc.CreateObject(ctx, ""); apperrors.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected validation error, got %v", err)
	}

	id, err := svc.CreateObject(ctx, "Кабель")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.UpdateObject(ctx, id, "Кабель ВВГ"); err != nil {
		t.Fatalf("update: %v", err)
	}
	entry := lastLog(t, audits)
	if entry.Action != audit.ActionEdit || details(entry) != "Было: Кабель" {
		t.Fatalf("unexpected audit entry %+v", entry)
	}

	if err := svc.DeleteObject(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	entry = lastLog(t, audits)
	if *entry.EntityName != "Кабель ВВГ" || details(entry) != "Удалено поступлений: 0, списаний: 0" {
		t.Fatalf("unexpected delete entry %+v", entry)
	}

	if _, err := svc.GetObject(ctx, id); apperrors.HTTPStatus(err) != http.StatusNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearchThemeRequiresInteger(t *testing.T) {
	svc, _, ctx := newService(t)
	_, err := svc.SearchObjects(ctx, "theme", "abc")
	if apperrors.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if _, err := svc.SearchObjects(ctx, "", "кабель"); err != nil {
		t.Fatalf("default search: %v", err)
	}
}

func TestSellerAuditDetails(t *testing.T) {
	svc, audits, ctx := newService(t)
	if _, err := svc.CreateSeller(ctx, "ООО Ромашка", "", "1"); apperrors.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected validation error, got %v", err)
	}
	id, err := svc.CreateSeller(ctx, "ООО Ромашка", "7701", "7701001")
	if err != nil {
		t.Fatalf("create seller: %v", err)
	}

	err = svc.UpdateSeller(ctx, inventory.Seller{ID: id, Name: "АО Ромашка", INN: "7701", KPP: "7701002"})
	if err != nil {
		t.Fatalf("update seller: %v", err)
	}
	if got := details(lastLog(t, audits)); got != "Было: ООО Ромашка, ИНН: 7701, КПП: 7701002" {
		t.Fatalf("unexpected details %q", got)
	}

	if err := svc.DeleteSeller(ctx, id); err != nil {
		t.Fatalf("delete seller: %v", err)
	}
	if got := details(lastLog(t, audits)); got != "ИНН: 7701, КПП: 7701002" {
		t.Fatalf("unexpected details %q", got)
	}
}

func TestCreateReceiptComposite(t *testing.T) {
	svc, _, ctx := newService(t)
	id, err := svc.CreateReceipt(ctx, ReceiptRequest{
		NewObjectName:    "Щит ЩРН-12",
		NewSeller:        &NewSeller{Name: "ООО Электро", INN: "7701", KPP: "7701001"},
		NewThemeName:     "Ремонт",
		SellerObjectName: "Щит распределительный",
		Location:         "Склад 2",
		Quantity:         4,
		Bill:             inventory.Document{Number: "С-15", File: inventory.Attachment{Filename: "bill.pdf", Data: []byte("%PDF-1.4")}},
		Invoice:          inventory.Document{Number: "Н-7"},
		EntryControl:     inventory.Document{Number: "ВК-1"},
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	r, err := svc.GetReceipt(ctx, id)
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if *r.ObjectName != "Щит ЩРН-12" || *r.SellerName != "ООО Электро" || *r.ThemeName != "Ремонт" {
		t.Fatalf("unexpected joins %+v", r)
	}

	f, err := svc.File(ctx, inventory.FileBill, *r.BillID)
	if err != nil || f.Name() != "bill.pdf" {
		t.Fatalf("bill file: %+v, %v", f, err)
	}
	if _, err := svc.File(ctx, inventory.FileInvoice, *r.InvoiceID); apperrors.HTTPStatus(err) != http.StatusNotFound {
		t.Fatalf("empty invoice body should be not found, got %v", err)
	}

	objs, err := svc.ListObjects(ctx)
	if err != nil || len(objs) != 1 || objs[0].Quantity != 4 {
		t.Fatalf("unexpected objects %+v, %v", objs, err)
	}
}

func TestCreateReceiptRollsBackOnFailure(t *testing.T) {
	svc, _, ctx := newService(t)
	missing := int64(999)
	_, err := svc.CreateReceipt(ctx, ReceiptRequest{
		ObjectID:     &missing,
		NewThemeName: "Ремонт",
		Quantity:     1,
	})
	if err == nil {
		t.Fatalf("expected failure for unknown object")
	}
	themes, _ := svc.ListThemes(ctx)
	if len(themes) != 0 {
		t.Fatalf("inline theme should have been rolled back, found %+v", themes)
	}
}

func TestWriteOffAuditDetails(t *testing.T) {
	svc, audits, ctx := newService(t)
	objectID, _ := svc.CreateObject(ctx, "Кабель")
	date, _ := inventory.ParseDate("2024-05-01")

	id, err := svc.CreateWriteOff(ctx, WriteOffRequest{
		WriteOffInput: inventory.WriteOffInput{
			ObjectID: objectID, Quantity: 2, Date: date,
			Document: inventory.Attachment{Filename: "act.pdf", Data: []byte("%PDF")},
		},
		NewThemeName: "Монтаж",
	})
	if err != nil {
		t.Fatalf("create writeoff: %v", err)
	}

	w, _ := svc.GetWriteOff(ctx, id)
	err = svc.UpdateWriteOff(ctx, inventory.WriteOffInput{ID: id, ObjectID: objectID, ThemeID: w.ThemeID, Quantity: 3})
	if err != nil {
		t.Fatalf("update writeoff: %v", err)
	}
	if got := details(lastLog(t, audits)); got != "Кол-во: 3, Документ: act.pdf" {
		t.Fatalf("unexpected details %q", got)
	}

	if err := svc.DeleteWriteOff(ctx, id); err != nil {
		t.Fatalf("delete writeoff: %v", err)
	}
	entry := lastLog(t, audits)
	if *entry.EntityName != "Кабель" || !strings.Contains(details(entry), "Тема: Монтаж") {
		t.Fatalf("unexpected delete entry %+v", entry)
	}
}

func TestUpdateReceiptAudit(t *testing.T) {
	svc, audits, ctx := newService(t)
	id, err := svc.CreateReceipt(ctx, ReceiptRequest{
		NewObjectName: "Щит",
		NewThemeName:  "Ремонт",
		NewSeller:     &NewSeller{Name: "ООО Электро"},
		Quantity:      1,
		Bill:          inventory.Document{Number: "С-1"},
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	r, _ := svc.GetReceipt(ctx, id)

	err = svc.UpdateReceipt(ctx, inventory.ReceiptUpdate{
		ID: id, ObjectID: r.ObjectID, SellerID: *r.SellerID, ThemeID: *r.ThemeID,
		SellerObjectName: "Щит ЩРН", Quantity: 5,
		Invoice: &inventory.Document{Number: "Н-2"},
	})
	if err != nil {
		t.Fatalf("update receipt: %v", err)
	}
	if got := details(lastLog(t, audits)); got != "Наименование: Щит ЩРН, Кол-во: 5, Счёт: С-1, Накладная: Н-2" {
		t.Fatalf("unexpected details %q", got)
	}
}
