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

// WriteOffRequest registers objects leaving the warehouse. NewThemeName,
// when set, creates the theme in the same transaction.
type WriteOffRequest struct {
	inventory.WriteOffInput
	NewThemeName string
}

func (s *Service) CreateWriteOff(ctx context.Context, req WriteOffRequest) (int64, error) {
	if req.ObjectID == 0 {
		return 0, apperrors.Validation("Missing objectId")
	}

	var id int64
	err := s.store.Atomic(ctx, func(tx storage.InventoryStore) error {
		in := req.WriteOffInput
		if req.NewThemeName != "" {
			themeID, err := tx.CreateTheme(ctx, req.NewThemeName)
			if err != nil {
				return err
			}
			in.ThemeID = &themeID
		}
		var err error
		id, err = tx.CreateWriteOff(ctx, in)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.WithField("writeoff_id", id).
		WithField("quantity", req.Quantity).
		Info("writeoff registered")
	return id, nil
}

func (s *Service) GetWriteOff(ctx context.Context, id int64) (inventory.WriteOff, error) {
	w, err := s.store.GetWriteOff(ctx, id)
	if err != nil {
		return inventory.WriteOff{}, notFound(err, "Writeoff not found")
	}
	return w, nil
}

// UpdateWriteOff rewrites a writeoff. Without a new document the stored one
// is kept and named in the audit record.
func (s *Service) UpdateWriteOff(ctx context.Context, in inventory.WriteOffInput) error {
	objectName := strconv.FormatInt(in.ObjectID, 10)
	if obj, err := s.store.GetObject(ctx, in.ObjectID); err == nil {
		objectName = obj.ObjectName
	}
	old, oldErr := s.store.GetWriteOff(ctx, in.ID)

	if err := s.store.UpdateWriteOff(ctx, in); err != nil {
		return notFound(err, "Writeoff not found")
	}

	parts := []string{"Кол-во: " + strconv.FormatInt(in.Quantity, 10)}
	if in.Date.Valid {
		parts = append(parts, "Дата: "+in.Date.String())
	}
	switch {
	case in.Document.Filename != "":
		parts = append(parts, "Документ: "+in.Document.Filename)
	case oldErr == nil:
		parts = append(parts, labelled("Документ: ", old.DocumentFilename))
	}
	s.record(ctx, auditsvc.Change{
		Action: audit.ActionEdit, EntityType: audit.EntityWriteOff,
		EntityID: in.ID, EntityName: objectName, Details: auditsvc.JoinDetails(parts...),
	})
	s.log.WithField("writeoff_id", in.ID).Info("writeoff updated")
	return nil
}

func (s *Service) DeleteWriteOff(ctx context.Context, id int64) error {
	name := strconv.FormatInt(id, 10)
	var details string
	if w, err := s.store.GetWriteOff(ctx, id); err == nil {
		if w.ObjectName != nil && *w.ObjectName != "" {
			name = *w.ObjectName
		}
		var date, quantity string
		if w.WriteOffDate.Valid {
			date = "Дата: " + w.WriteOffDate.String()
		}
		if w.Quantity != 0 {
			quantity = "Кол-во: " + strconv.FormatInt(w.Quantity, 10)
		}
		details = auditsvc.JoinDetails(
			date,
			labelled("Документ: ", w.DocumentFilename),
			quantity,
			labelled("Тема: ", w.ThemeName),
		)
	}
	if err := s.store.DeleteWriteOff(ctx, id); err != nil {
		return notFound(err, "Writeoff not found")
	}

	s.record(ctx, auditsvc.Change{
		Action: audit.ActionDelete, EntityType: audit.EntityWriteOff,
		EntityID: id, EntityName: name, Details: details,
	})
	s.log.WithField("writeoff_id", id).Info("writeoff deleted")
	return nil
}
