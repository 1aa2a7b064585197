package memory

import (
	"context"
	"fmt"

	"github.com/wareledger/wareledger/internal/app/domain/account"
	"github.com/wareledger/wareledger/internal/app/domain/audit"
	"github.com/wareledger/wareledger/internal/app/domain/pricing"
	"github.com/wareledger/wareledger/internal/app/storage"
)

// UserStore implementation ----------------------------------------------------

func (s *Store) Authenticate(_ context.Context, username, digest string) (account.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.st.users {
		if u.Username == username && u.digest == digest {
			return u.User, nil
		}
	}
	return account.User{}, storage.ErrNotFound
}

func (s *Store) ListUsers(context.Context) ([]account.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := sortedValues(s.st.users)
	out := make([]account.User, 0, len(rows))
	for _, u := range rows {
		out = append(out, u.User)
	}
	return out, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (account.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.st.users[id]
	if !ok {
		return account.User{}, storage.ErrNotFound
	}
	return u.User, nil
}

func (s *Store) usernameTakenLocked(username string, except int64) bool {
	for id, u := range s.st.users {
		if id != except && u.Username == username {
			return true
		}
	}
	return false
}

func (s *Store) CreateUser(_ context.Context, username, digest string, admin bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usernameTakenLocked(username, 0) {
		return 0, fmt.Errorf("user %q already exists", username)
	}
	id := s.nextIDLocked()
	s.st.users[id] = userRow{
		User:   account.User{ID: id, Username: username, Admin: admin, CreatedAt: timePtr(s.now())},
		digest: digest,
	}
	return id, nil
}

func (s *Store) UpdateUser(_ context.Context, id int64, username string, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.st.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	if s.usernameTakenLocked(username, id) {
		return fmt.Errorf("user %q already exists", username)
	}
	u.Username = username
	u.Admin = admin
	s.st.users[id] = u
	return nil
}

func (s *Store) UpdateUserPassword(_ context.Context, id int64, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.st.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.digest = digest
	s.st.users[id] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.st.users, id)
	return nil
}

// PricingStore implementation -------------------------------------------------

func (s *Store) pricingViewLocked(p pricing.Pricing) pricing.Pricing {
	if r, ok := s.st.receipts[p.ReceiptID]; ok {
		if obj, ok := s.st.objects[r.ObjectID]; ok {
			p.ObjectName = strPtr(obj.ObjectName)
		}
	}
	return p
}

func (s *Store) ListPricing(context.Context) ([]pricing.Pricing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := sortedValues(s.st.prices)
	out := make([]pricing.Pricing, 0, len(rows))
	for _, p := range rows {
		out = append(out, s.pricingViewLocked(p))
	}
	return out, nil
}

func (s *Store) GetPricing(_ context.Context, id int64) (pricing.Pricing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.st.prices[id]
	if !ok {
		return pricing.Pricing{}, storage.ErrNotFound
	}
	return s.pricingViewLocked(p), nil
}

func (s *Store) GetPricingByReceipt(_ context.Context, receiptID int64) (pricing.Pricing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.st.prices {
		if p.ReceiptID == receiptID {
			return s.pricingViewLocked(p), nil
		}
	}
	return pricing.Pricing{}, storage.ErrNotFound
}

func (s *Store) CreatePricing(_ context.Context, receiptID int64, price, tax float64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.receipts[receiptID]; !ok {
		return 0, fmt.Errorf("receipt %d does not exist", receiptID)
	}
	id := s.nextIDLocked()
	s.st.prices[id] = pricing.Pricing{
		ID:        id,
		ReceiptID: receiptID,
		Price:     price,
		Tax:       tax,
		CreatedAt: timePtr(s.now()),
	}
	return id, nil
}

func (s *Store) UpdatePricing(_ context.Context, id int64, price, tax float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.st.prices[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Price = price
	p.Tax = tax
	s.st.prices[id] = p
	return nil
}

func (s *Store) DeletePricing(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.prices[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.st.prices, id)
	return nil
}

// AuditStore implementation ---------------------------------------------------

func (s *Store) AddLog(_ context.Context, e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextIDLocked()
	e.CreatedAt = timePtr(s.now())
	s.st.logs = append(s.st.logs, e)
	return nil
}

// newestFirst pages entries matching keep, most recent first.
func (s *Store) newestFirst(keep func(audit.Entry) bool, limit, offset int) []audit.Entry {
	out := make([]audit.Entry, 0)
	skipped := 0
	for i := len(s.st.logs) - 1; i >= 0; i-- {
		e := s.st.logs[i]
		if !keep(e) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, e)
	}
	return out
}

func (s *Store) ListLogs(_ context.Context, limit, offset int) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newestFirst(func(audit.Entry) bool { return true }, limit, offset), nil
}

func (s *Store) SearchLogs(_ context.Context, text string, limit, offset int) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	match := func(e audit.Entry) bool {
		fields := []string{e.Username, e.Action, e.EntityType}
		if e.EntityName != nil {
			fields = append(fields, *e.EntityName)
		}
		if e.Details != nil {
			fields = append(fields, *e.Details)
		}
		for _, f := range fields {
			if containsFold(f, text) {
				return true
			}
		}
		return false
	}
	return s.newestFirst(match, limit, offset), nil
}

func (s *Store) CountLogs(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.st.logs)), nil
}
