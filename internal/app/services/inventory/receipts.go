package inventory

import (
	"context"
	"strconv"

	"github.com/wareledger/wareledger/internal/app/domain/audit"
	"github.com/wareledger/wareledger/internal/app/domain/inventory"
	auditsvc "github.com/wareledger/wareledger/internal/app/services/audit"
	"github.com/wareledger/wareledger/internal/app/storage"
	apperrors "github.com/wareledger/wareledger/internal/errors"
)

// NewSeller describes a seller created inline with a receipt.
type NewSeller struct {
	Name string
	INN  string
	KPP  string
}

// ReceiptRequest registers a delivery. Any of the seller, theme and object
// may be created on the fly; the documents are always created.
type ReceiptRequest struct {
	ObjectID      *int64
	NewObjectName string
	SellerID      *int64
	NewSeller     *NewSeller
	ThemeID       *int64
	NewThemeName  string

	SellerObjectName string
	Location         string
	Quantity         int64

	Bill         inventory.Document
	Invoice      inventory.Document
	EntryControl inventory.Document
}

// CreateReceipt writes the receipt, its documents and any inline seller,
// theme or object in one transaction.
func (s *Service) CreateReceipt(ctx context.Context, req ReceiptRequest) (int64, error) {
	if req.ObjectID == nil && req.NewObjectName == "" {
		return 0, apperrors.Validation("Missing objectId")
	}

	var receiptID int64
	err := s.store.Atomic(ctx, func(tx storage.InventoryStore) error {
		sellerID := req.SellerID
		if req.NewSeller != nil && req.NewSeller.Name != "" {
			id, err := tx.CreateSeller(ctx, req.NewSeller.Name, req.NewSeller.INN, req.NewSeller.KPP)
			if err != nil {
				return err
			}
			sellerID = &id
		}

		themeID := req.ThemeID
		if req.NewThemeName != "" {
			id, err := tx.CreateTheme(ctx, req.NewThemeName)
			if err != nil {
				return err
			}
			themeID = &id
		}

		objectID := req.ObjectID
		if req.NewObjectName != "" {
			id, err := tx.CreateObject(ctx, req.NewObjectName)
			if err != nil {
				return err
			}
			objectID = &id
		}

		bill := req.Bill
		bill.SellerID = sellerID
		billID, err := tx.CreateBill(ctx, bill)
		if err != nil {
			return err
		}

		invoice := req.Invoice
		invoice.SellerID = sellerID
		invoice.BillID = &billID
		invoiceID, err := tx.CreateInvoice(ctx, invoice)
		if err != nil {
			return err
		}

		entryControlID, err := tx.CreateEntryControl(ctx, req.EntryControl)
		if err != nil {
			return err
		}

		receiptID, err = tx.CreateReceipt(ctx, inventory.NewReceipt{
			ObjectID:         *objectID,
			SellerObjectName: req.SellerObjectName,
			SellerID:         sellerID,
			BillID:           billID,
			ThemeID:          themeID,
			InvoiceID:        invoiceID,
			EntryControlID:   entryControlID,
			Location:         req.Location,
			Quantity:         req.Quantity,
		})
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.WithField("receipt_id", receiptID).
		WithField("quantity", req.Quantity).
		Info("receipt registered")
	return receiptID, nil
}

func (s *Service) GetReceipt(ctx context.Context, id int64) (inventory.Receipt, error) {
	r, err := s.store.GetReceipt(ctx, id)
	if err != nil {
		return inventory.Receipt{}, notFound(err, "Receipt not found")
	}
	return r, nil
}

// UpdateReceipt rewrites a receipt and records the new quantity and document
// numbers.
func (s *Service) UpdateReceipt(ctx context.Context, u inventory.ReceiptUpdate) error {
	objectName := strconv.FormatInt(u.ObjectID, 10)
	if obj, err := s.store.GetObject(ctx, u.ObjectID); err == nil {
		objectName = obj.ObjectName
	}
	if err := s.store.UpdateReceipt(ctx, u); err != nil {
		return notFound(err, "Receipt not found")
	}

	parts := []string{
		"Наименование: " + u.SellerObjectName,
		"Кол-во: " + strconv.FormatInt(u.Quantity, 10),
	}
	if r, err := s.store.GetReceipt(ctx, u.ID); err == nil {
		parts = append(parts, labelled("Счёт: ", r.BillNumber), labelled("Накладная: ", r.InvoiceNumber))
	}
	s.record(ctx, auditsvc.Change{
		Action: audit.ActionEdit, EntityType: audit.EntityReceipt,
		EntityID: u.ID, EntityName: objectName, Details: auditsvc.JoinDetails(parts...),
	})
	s.log.WithField("receipt_id", u.ID).Info("receipt updated")
	return nil
}

func (s *Service) DeleteReceipt(ctx context.Context, id int64) error {
	name := strconv.FormatInt(id, 10)
	var details string
	if r, err := s.store.GetReceipt(ctx, id); err == nil {
		if obj, err := s.store.GetObject(ctx, r.ObjectID); err == nil {
			name = obj.ObjectName
		}
		var quantity string
		if r.Quantity != 0 {
			quantity = "Кол-во: " + strconv.FormatInt(r.Quantity, 10)
		}
		details = auditsvc.JoinDetails(
			labelled("Наименование: ", r.SellerObjectName),
			labelled("Счёт: ", r.BillNumber),
			labelled("Накладная: ", r.InvoiceNumber),
			quantity,
		)
	}
	if err := s.store.DeleteReceipt(ctx, id); err != nil {
		return notFound(err, "Receipt not found")
	}

	s.record(ctx, auditsvc.Change{
		Action: audit.ActionDelete, EntityType: audit.EntityReceipt,
		EntityID: id, EntityName: name, Details: details,
	})
	s.log.WithField("receipt_id", id).Info("receipt deleted")
	return nil
}

// labelled returns label+*v, or "" when v is nil or empty.
func labelled(label string, v *string) string {
	if v == nil || *v == "" {
		return ""
	}
	return label + *v
}
