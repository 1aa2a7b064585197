package pricing

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/wareledger/wareledger/internal/app/domain/audit"
	"github.com/wareledger/wareledger/internal/app/domain/pricing"
	auditsvc "github.com/wareledger/wareledger/internal/app/services/audit"
	"github.com/wareledger/wareledger/internal/app/storage"
	apperrors "github.com/wareledger/wareledger/internal/errors"
	"github.com/wareledger/wareledger/internal/logging"
)

// ErrDuplicate is the message returned when a receipt already has a price.
const ErrDuplicate = "Цена для этого поступления уже существует"

// Service manages receipt prices.
type Service struct {
	store     storage.PricingStore
	inventory storage.InventoryStore
	audit     *auditsvc.Service
	log       *logging.Logger
}

// New constructs a pricing service. The inventory store is used to name the
// priced object in audit records and may be nil.
func New(store storage.PricingStore, inv storage.InventoryStore, audits *auditsvc.Service, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("pricing")
	}
	return &Service{store: store, inventory: inv, audit: audits, log: log}
}

func (s *Service) List(ctx context.Context) ([]pricing.Pricing, error) {
	return s.store.ListPricing(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (pricing.Pricing, error) {
	p, err := s.store.GetPricing(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return pricing.Pricing{}, apperrors.NotFound("Pricing not found")
	}
	return p, err
}

// ByReceipt returns the price of a receipt, or false when it has none.
func (s *Service) ByReceipt(ctx context.Context, receiptID int64) (pricing.Pricing, bool, error) {
	p, err := s.store.GetPricingByReceipt(ctx, receiptID)
	if errors.Is(err, storage.ErrNotFound) {
		return pricing.Pricing{}, false, nil
	}
	if err != nil {
		return pricing.Pricing{}, false, err
	}
	return p, true, nil
}

// Create prices a receipt. A receipt can be priced once.
func (s *Service) Create(ctx context.Context, receiptID int64, price, tax float64) (int64, error) {
	if _, exists, err := s.ByReceipt(ctx, receiptID); err != nil {
		return 0, err
	} else if exists {
		return 0, apperrors.Validation(ErrDuplicate)
	}
	id, err := s.store.CreatePricing(ctx, receiptID, price, tax)
	if err != nil {
		return 0, err
	}
	s.log.WithField("pricing_id", id).
		WithField("receipt_id", receiptID).
		Info("pricing created")
	return id, nil
}

func (s *Service) Update(ctx context.Context, id int64, price, tax float64) error {
	name := s.objectName(ctx, id)
	if err := s.store.UpdatePricing(ctx, id, price, tax); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("Pricing not found")
		}
		return err
	}
	s.record(ctx, auditsvc.Change{
		Action: audit.ActionEdit, EntityType: audit.EntityPricing,
		EntityID: id, EntityName: name, Details: describe(price, tax),
	})
	s.log.WithField("pricing_id", id).Info("pricing updated")
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	name := s.objectName(ctx, id)
	var details string
	if p, err := s.store.GetPricing(ctx, id); err == nil {
		details = describe(p.Price, p.Tax)
	}
	if err := s.store.DeletePricing(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("Pricing not found")
		}
		return err
	}
	s.record(ctx, auditsvc.Change{
		Action: audit.ActionDelete, EntityType: audit.EntityPricing,
		EntityID: id, EntityName: name, Details: details,
	})
	s.log.WithField("pricing_id", id).Info("pricing deleted")
	return nil
}

// objectName names the object behind a price, falling back to "Цена #id".
func (s *Service) objectName(ctx context.Context, id int64) string {
	fallback := "Цена #" + strconv.FormatInt(id, 10)
	if s.inventory == nil {
		return fallback
	}
	p, err := s.store.GetPricing(ctx, id)
	if err != nil {
		return fallback
	}
	r, err := s.inventory.GetReceipt(ctx, p.ReceiptID)
	if err != nil {
		return fallback
	}
	obj, err := s.inventory.GetObject(ctx, r.ObjectID)
	if err != nil {
		return fallback
	}
	return obj.ObjectName
}

func (s *Service) record(ctx context.Context, c auditsvc.Change) {
	if s.audit != nil {
		s.audit.Record(ctx, c)
	}
}

func describe(price, tax float64) string {
	return fmt.Sprintf("Цена: %s, НДС: %s%%", formatNumber(price), formatNumber(tax))
}

// formatNumber prints whole numbers with one decimal place, as 20.0.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == float64(int64(v)) {
		s += ".0"
	}
	return s
}
