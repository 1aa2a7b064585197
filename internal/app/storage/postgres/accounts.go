package postgres

import (
	"context"

	"github.com/wareledger/wareledger/internal/app/domain/account"
	"github.com/wareledger/wareledger/internal/app/domain/audit"
	"github.com/wareledger/wareledger/internal/app/domain/pricing"
)

// --- UserStore --------------------------------------------------------------

func (s *Store) Authenticate(ctx context.Context, username, digest string) (account.User, error) {
	var u account.User
	if err := s.getRow(ctx, &u, "authenticate_user", username, digest); err != nil {
		return account.User{}, err
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]account.User, error) {
	var out []account.User
	if err := s.selectRows(ctx, &out, "get_all_users"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (account.User, error) {
	var u account.User
	if err := s.getRow(ctx, &u, "get_user_by_id", id); err != nil {
		return account.User{}, err
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, username, digest string, admin bool) (int64, error) {
	return s.createID(ctx, "create_user", username, digest, admin)
}

func (s *Store) UpdateUser(ctx context.Context, id int64, username string, admin bool) error {
	return s.exec(ctx, "update_user", id, username, admin)
}

func (s *Store) UpdateUserPassword(ctx context.Context, id int64, digest string) error {
	return s.exec(ctx, "update_user_password", id, digest)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete_user", id)
}

// --- PricingStore -----------------------------------------------------------

func (s *Store) ListPricing(ctx context.Context) ([]pricing.Pricing, error) {
	var out []pricing.Pricing
	if err := s.selectRows(ctx, &out, "get_all_pricing"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetPricing(ctx context.Context, id int64) (pricing.Pricing, error) {
	var p pricing.Pricing
	if err := s.getRow(ctx, &p, "get_pricing_by_id", id); err != nil {
		return pricing.Pricing{}, err
	}
	return p, nil
}

func (s *Store) GetPricingByReceipt(ctx context.Context, receiptID int64) (pricing.Pricing, error) {
	var p pricing.Pricing
	if err := s.getRow(ctx, &p, "get_pricing_by_receipt", receiptID); err != nil {
		return pricing.Pricing{}, err
	}
	return p, nil
}

func (s *Store) CreatePricing(ctx context.Context, receiptID int64, price, tax float64) (int64, error) {
	return s.createID(ctx, "create_pricing", receiptID, price, tax)
}

func (s *Store) UpdatePricing(ctx context.Context, id int64, price, tax float64) error {
	return s.exec(ctx, "update_pricing", id, price, tax)
}

func (s *Store) DeletePricing(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete_pricing", id)
}

// --- AuditStore -------------------------------------------------------------

func (s *Store) AddLog(ctx context.Context, e audit.Entry) error {
	return s.exec(ctx, "add_log",
		nullInt(e.UserID), e.Username, e.Action, e.EntityType,
		nullInt(e.EntityID), derefString(e.EntityName), derefString(e.Details))
}

func (s *Store) ListLogs(ctx context.Context, limit, offset int) ([]audit.Entry, error) {
	var out []audit.Entry
	if err := s.selectRows(ctx, &out, "get_all_logs", limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) SearchLogs(ctx context.Context, text string, limit, offset int) ([]audit.Entry, error) {
	var out []audit.Entry
	if err := s.selectRows(ctx, &out, "search_logs", text, limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountLogs(ctx context.Context) (int64, error) {
	var n int64
	if err := s.scalar(ctx, &n, "get_logs_count"); err != nil {
		return 0, err
	}
	return n, nil
}

func derefString(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
