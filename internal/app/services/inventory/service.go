package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wareledger/wareledger/internal/app/domain/audit"
	"github.com/wareledger/wareledger/internal/app/domain/inventory"
	auditsvc "github.com/wareledger/wareledger/internal/app/services/audit"
	"github.com/wareledger/wareledger/internal/app/storage"
	apperrors "github.com/wareledger/wareledger/internal/errors"
	"github.com/wareledger/wareledger/internal/logging"
)

// Service manages objects, sellers, themes, receipts and writeoffs.
type Service struct {
	store storage.InventoryStore
	audit *auditsvc.Service
	log   *logging.Logger
}

// New constructs an inventory service. A nil audit service disables audit
// records.
func New(store storage.InventoryStore, audit *auditsvc.Service, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("inventory")
	}
	return &Service{store: store, audit: audit, log: log}
}

func (s *Service) record(ctx context.Context, c auditsvc.Change) {
	if s.audit != nil {
		s.audit.Record(ctx, c)
	}
}

// notFound maps a storage miss to a NotFound error with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NotFound(msg)
	}
	return err
}

// --- objects ----------------------------------------------------------------

// ListObjects refreshes the storage stats and lists every object.
func (s *Service) ListObjects(ctx context.Context) ([]inventory.Object, error) {
	if err := s.store.RefreshStorageStats(ctx); err != nil {
		return nil, err
	}
	return s.store.ListObjects(ctx)
}

// SearchObjects refreshes the storage stats and searches by field. The theme
// field takes a numeric theme id; an unknown field lists everything.
func (s *Service) SearchObjects(ctx context.Context, field, value string) ([]inventory.Object, error) {
	if field == "" {
		field = string(inventory.SearchByName)
	}
	q := inventory.SearchQuery{Field: inventory.SearchField(field), Text: value}
	if q.Field == inventory.SearchByTheme {
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, apperrors.Validationf("invalid theme id %q", value)
		}
		q.ThemeID = id
	}
	if err := s.store.RefreshStorageStats(ctx); err != nil {
		return nil, err
	}
	return s.store.SearchObjects(ctx, q)
}

func (s *Service) GetObject(ctx context.Context, id int64) (inventory.Object, error) {
	obj, err := s.store.GetObject(ctx, id)
	if err != nil {
		return inventory.Object{}, notFound(err, "Object not found")
	}
	return obj, nil
}

// ObjectDetails lists the receipts and writeoffs of an object.
func (s *Service) ObjectDetails(ctx context.Context, id int64) (inventory.Details, error) {
	receipts, err := s.store.ListReceiptsByObject(ctx, id)
	if err != nil {
		return inventory.Details{}, err
	}
	writeOffs, err := s.store.ListWriteOffsByObject(ctx, id)
	if err != nil {
		return inventory.Details{}, err
	}
	if receipts == nil {
		receipts = []inventory.Receipt{}
	}
	if writeOffs == nil {
		writeOffs = []inventory.WriteOff{}
	}
	return inventory.Details{Receipts: receipts, WriteOffs: writeOffs}, nil
}

func (s *Service) CreateObject(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, apperrors.Validation("Missing objectName")
	}
	id, err := s.store.CreateObject(ctx, name)
	if err != nil {
		return 0, err
	}
	s.log.WithField("object_id", id).Info("object created")
	return id, nil
}

func (s *Service) UpdateObject(ctx context.Context, id int64, name string) error {
	if name == "" {
		return apperrors.Validation("Missing objectName")
	}
	var oldName string
	if old, err := s.store.GetObject(ctx, id); err == nil {
		oldName = old.ObjectName
	}
	if err := s.store.UpdateObject(ctx, id, name); err != nil {
		return notFound(err, "Object not found")
	}

	var details string
	if oldName != "" && oldName != name {
		details = "Было: " + oldName
	}
	s.record(ctx, auditsvc.Change{
		Action: audit.ActionEdit, EntityType: audit.EntityObject,
		EntityID: id, EntityName: name, Details: details,
	})
	s.log.WithField("object_id", id).Info("object updated")
	return nil
}

// DeleteObject removes an object together with its movements.
func (s *Service) DeleteObject(ctx context.Context, id int64) error {
	name := strconv.FormatInt(id, 10)
	if obj, err := s.store.GetObject(ctx, id); err == nil {
		name = obj.ObjectName
	}
	receipts, err := s.store.ListReceiptsByObject(ctx, id)
	if err != nil {
		return err
	}
	writeOffs, err := s.store.ListWriteOffsByObject(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteObject(ctx, id); err != nil {
		return notFound(err, "Object not found")
	}

	s.record(ctx, auditsvc.Change{
		Action: audit.ActionDelete, EntityType: audit.EntityObject,
		EntityID: id, EntityName: name,
		Details: fmt.Sprintf("Удалено поступлений: %d, списаний: %d", len(receipts), len(writeOffs)),
	})
	s.log.WithField("object_id", id).Info("object deleted")
	return nil
}

// --- sellers ----------------------------------------------------------------

func (s *Service) ListSellers(ctx context.Context) ([]inventory.Seller, error) {
	return s.store.ListSellers(ctx)
}

func (s *Service) GetSeller(ctx context.Context, id int64) (inventory.Seller, error) {
	seller, err := s.store.GetSeller(ctx, id)
	if err != nil {
		return inventory.Seller{}, notFound(err, "Seller not found")
	}
	return seller, nil
}

func (s *Service) CreateSeller(ctx context.Context, name, inn, kpp string) (int64, error) {
	if name == "" || inn == "" || kpp == "" {
		return 0, apperrors.Validation("Missing required fields")
	}
	id, err := s.store.CreateSeller(ctx, name, inn, kpp)
	if err != nil {
		return 0, err
	}
	s.log.WithField("seller_id", id).Info("seller created")
	return id, nil
}

func (s *Service) UpdateSeller(ctx context.Context, seller inventory.Seller) error {
	if seller.Name == "" {
		return apperrors.Validation("Missing name")
	}
	old, oldErr := s.store.GetSeller(ctx, seller.ID)
	if err := s.store.UpdateSeller(ctx, seller); err != nil {
		return notFound(err, "Seller not found")
	}

	details := fmt.Sprintf("ИНН: %s, КПП: %s", seller.INN, seller.KPP)
	if oldErr == nil && old.Name != seller.Name {
		details = "Было: " + old.Name + ", " + details
	}
	s.record(ctx, auditsvc.Change{
		Action: audit.ActionEdit, EntityType: audit.EntitySeller,
		EntityID: seller.ID, EntityName: seller.Name, Details: details,
	})
	s.log.WithField("seller_id", seller.ID).Info("seller updated")
	return nil
}

func (s *Service) DeleteSeller(ctx context.Context, id int64) error {
	name := strconv.FormatInt(id, 10)
	var details string
	if seller, err := s.store.GetSeller(ctx, id); err == nil {
		name = seller.Name
		details = fmt.Sprintf("ИНН: %s, КПП: %s", seller.INN, seller.KPP)
	}
	if err := s.store.DeleteSeller(ctx, id); err != nil {
		return notFound(err, "Seller not found")
	}

	s.record(ctx, auditsvc.Change{
		Action: audit.ActionDelete, EntityType: audit.EntitySeller,
		EntityID: id, EntityName: name, Details: details,
	})
	s.log.WithField("seller_id", id).Info("seller deleted")
	return nil
}

// --- themes -----------------------------------------------------------------

func (s *Service) ListThemes(ctx context.Context) ([]inventory.Theme, error) {
	return s.store.ListThemes(ctx)
}

func (s *Service) GetTheme(ctx context.Context, id int64) (inventory.Theme, error) {
	theme, err := s.store.GetTheme(ctx, id)
	if err != nil {
		return inventory.Theme{}, notFound(err, "Theme not found")
	}
	return theme, nil
}

func (s *Service) CreateTheme(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, apperrors.Validation("Missing name")
	}
	id, err := s.store.CreateTheme(ctx, name)
	if err != nil {
		return 0, err
	}
	s.log.WithField("theme_id", id).Info("theme created")
	return id, nil
}

func (s *Service) UpdateTheme(ctx context.Context, id int64, name string) error {
	if name == "" {
		return apperrors.Validation("Missing name")
	}
	old, oldErr := s.store.GetTheme(ctx, id)
	if err := s.store.UpdateTheme(ctx, id, name); err != nil {
		return notFound(err, "Theme not found")
	}

	var details string
	if oldErr == nil && old.Name != name {
		details = "Было: " + old.Name
	}
	s.record(ctx, auditsvc.Change{
		Action: audit.ActionEdit, EntityType: audit.EntityTheme,
		EntityID: id, EntityName: name, Details: details,
	})
	s.log.WithField("theme_id", id).Info("theme updated")
	return nil
}

func (s *Service) DeleteTheme(ctx context.Context, id int64) error {
	name := strconv.FormatInt(id, 10)
	if theme, err := s.store.GetTheme(ctx, id); err == nil {
		name = theme.Name
	}
	if err := s.store.DeleteTheme(ctx, id); err != nil {
		return notFound(err, "Theme not found")
	}

	s.record(ctx, auditsvc.Change{
		Action: audit.ActionDelete, EntityType: audit.EntityTheme,
		EntityID: id, EntityName: name,
	})
	s.log.WithField("theme_id", id).Info("theme deleted")
	return nil
}

// --- files ------------------------------------------------------------------

// File returns a stored document body. A missing row and an empty body are
// both reported as not found.
func (s *Service) File(ctx context.Context, kind inventory.FileKind, id int64) (inventory.StoredFile, error) {
	f, err := s.store.GetFile(ctx, kind, id)
	if err != nil {
		return inventory.StoredFile{}, notFound(err, "File not found")
	}
	if len(f.File) == 0 {
		return inventory.StoredFile{}, apperrors.NotFound("File not found")
	}
	return f, nil
}
