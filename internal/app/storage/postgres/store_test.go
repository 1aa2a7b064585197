package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/wareledger/wareledger/internal/app/domain/audit"
	"github.com/wareledger/wareledger/internal/app/domain/inventory"
	"github.com/wareledger/wareledger/internal/app/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "postgres"), nil), mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateObjectCallsScalarRoutine(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT create_object($1)").
		WithArgs("Кабель ВВГ").
		WillReturnRows(sqlmock.NewRows([]string{"create_object"}).AddRow(7))
	mock.ExpectCommit()

	id, err := store.CreateObject(context.Background(), "Кабель ВВГ")
	if err != nil {
		t.Fatalf("create object: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected id 7, got %d", id)
	}
	expectationsMet(t, mock)
}

func TestListObjectsIgnoresExtraColumns(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT * FROM get_all_objects()").
		WillReturnRows(sqlmock.NewRows([]string{"id", "objectname", "quantity", "last_receipt"}).
			AddRow(1, "Кабель", 10, nil).
			AddRow(2, "Щит", 0, nil))
	mock.ExpectCommit()

	objs, err := store.ListObjects(context.Background())
	if err != nil {
		t.Fatalf("list objects: %v", err)
	}
	if len(objs) != 2 || objs[0].ObjectName != "Кабель" || objs[0].Quantity != 10 {
		t.Fatalf("unexpected objects %+v", objs)
	}
	expectationsMet(t, mock)
}

func TestGetObjectMissingRowIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT * FROM get_object_by_id($1)").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "objectname", "quantity"}))
	mock.ExpectRollback()

	_, err := store.GetObject(context.Background(), 3)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestRoutineFailureRollsBack(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("SELECT update_object($1, $2)").
		WithArgs(int64(4), "Щит").
		WillReturnError(errors.New("object not found\nCONTEXT: PL/pgSQL function update_object"))
	mock.ExpectRollback()

	err := store.UpdateObject(context.Background(), 4, "Щит")
	if err == nil {
		t.Fatalf("expected error")
	}
	expectationsMet(t, mock)
}

func TestRollbackFailureIsSwallowed(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("SELECT delete_theme($1)").
		WithArgs(int64(2)).
		WillReturnError(errors.New("theme is referenced"))
	mock.ExpectRollback().WillReturnError(errors.New("connection already closed"))

	err := store.DeleteTheme(context.Background(), 2)
	if err == nil || err.Error() != "theme is referenced" {
		t.Fatalf("expected routine error to surface, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestSearchByThemePassesInteger(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT * FROM search_objects_by_theme($1)").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "objectname", "quantity"}).AddRow(1, "Кабель", 3))
	mock.ExpectCommit()

	objs, err := store.SearchObjects(context.Background(), inventory.SearchQuery{Field: inventory.SearchByTheme, ThemeID: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(objs) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objs))
	}
	expectationsMet(t, mock)
}

func TestUnknownSearchFieldListsAll(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT * FROM get_all_objects()").
		WillReturnRows(sqlmock.NewRows([]string{"id", "objectname", "quantity"}))
	mock.ExpectCommit()

	if _, err := store.SearchObjects(context.Background(), inventory.SearchQuery{Field: "colour", Text: "red"}); err != nil {
		t.Fatalf("search: %v", err)
	}
	expectationsMet(t, mock)
}

func TestReceiptsScanDatesAndNulls(t *testing.T) {
	store, mock := newMockStore(t)
	billDate := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT * FROM get_receipts_by_object($1)").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "object_id", "bill_number", "bill_date", "invoice_date", "quantity"}).
			AddRow(11, 1, "С-15", billDate, nil, 4))
	mock.ExpectCommit()

	receipts, err := store.ListReceiptsByObject(context.Background(), 1)
	if err != nil {
		t.Fatalf("list receipts: %v", err)
	}
	if len(receipts) != 1 {
		t.Fatalf("expected one receipt, got %d", len(receipts))
	}
	r := receipts[0]
	if r.BillNumber == nil || *r.BillNumber != "С-15" {
		t.Fatalf("unexpected bill number %v", r.BillNumber)
	}
	if r.BillDate.String() != "2024-02-29" || r.InvoiceDate.Valid {
		t.Fatalf("unexpected dates %v / %v", r.BillDate, r.InvoiceDate)
	}
	expectationsMet(t, mock)
}

func TestAtomicSharesOneTransaction(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT create_theme($1)").
		WithArgs("Ремонт").
		WillReturnRows(sqlmock.NewRows([]string{"create_theme"}).AddRow(3))
	mock.ExpectQuery("SELECT create_bill($1, $2, $3, $4, $5)").
		WithArgs("С-1", nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"create_bill"}).AddRow(9))
	mock.ExpectCommit()

	err := store.Atomic(context.Background(), func(tx storage.InventoryStore) error {
		if _, err := tx.CreateTheme(context.Background(), "Ремонт"); err != nil {
			return err
		}
		_, err := tx.CreateBill(context.Background(), inventory.Document{Number: "С-1"})
		return err
	})
	if err != nil {
		t.Fatalf("atomic: %v", err)
	}
	expectationsMet(t, mock)
}

func TestAtomicRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT create_bill($1, $2, $3, $4, $5)").
		WillReturnRows(sqlmock.NewRows([]string{"create_bill"}).AddRow(9))
	mock.ExpectQuery("SELECT create_invoice($1, $2, $3, $4, $5, $6)").
		WillReturnError(errors.New("invoice number required"))
	mock.ExpectRollback()

	err := store.Atomic(context.Background(), func(tx storage.InventoryStore) error {
		billID, err := tx.CreateBill(context.Background(), inventory.Document{Number: "С-1"})
		if err != nil {
			return err
		}
		_, err = tx.CreateInvoice(context.Background(), inventory.Document{BillID: &billID})
		return err
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	expectationsMet(t, mock)
}

func TestUpdateReceiptPassesNineteenParameters(t *testing.T) {
	store, mock := newMockStore(t)
	args := make([]sqlmock.Argument, 19)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	mock.ExpectBegin()
	mock.ExpectExec("SELECT update_receipt($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)").
		WithArgs(toDriverArgs(args)...).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.UpdateReceipt(context.Background(), inventory.ReceiptUpdate{
		ID: 1, ObjectID: 2, SellerID: 3, ThemeID: 4, Quantity: 5,
		Bill: &inventory.Document{Number: "С-2"},
	})
	if err != nil {
		t.Fatalf("update receipt: %v", err)
	}
	expectationsMet(t, mock)
}

func TestAuditRoutines(t *testing.T) {
	store, mock := newMockStore(t)
	uid := int64(1)
	eid := int64(8)
	name := "Кабель"

	mock.ExpectBegin()
	mock.ExpectExec("SELECT add_log($1, $2, $3, $4, $5, $6, $7)").
		WithArgs(uid, "admin", audit.ActionDelete, audit.EntityObject, eid, name, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT get_logs_count()").
		WillReturnRows(sqlmock.NewRows([]string{"get_logs_count"}).AddRow(12))
	mock.ExpectCommit()

	ctx := context.Background()
	err := store.AddLog(ctx, audit.Entry{
		UserID: &uid, Username: "admin", Action: audit.ActionDelete,
		EntityType: audit.EntityObject, EntityID: &eid, EntityName: &name,
	})
	if err != nil {
		t.Fatalf("add log: %v", err)
	}
	n, err := store.CountLogs(ctx)
	if err != nil || n != 12 {
		t.Fatalf("count logs = %d, %v", n, err)
	}
	expectationsMet(t, mock)
}

func toDriverArgs(args []sqlmock.Argument) []driver.Value {
	out := make([]driver.Value, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

func TestPlaceholders(t *testing.T) {
	if got := rowsQuery("get_all_users", 0); got != "SELECT * FROM get_all_users()" {
		t.Fatalf("unexpected query %q", got)
	}
	if got := scalarQuery("create_seller", 3); got != "SELECT create_seller($1, $2, $3)" {
		t.Fatalf("unexpected query %q", got)
	}
}
