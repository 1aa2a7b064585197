package audit

import (
	"context"
	"strings"

	"github.com/wareledger/wareledger/internal/app/domain/audit"
	"github.com/wareledger/wareledger/internal/app/storage"
	"github.com/wareledger/wareledger/internal/logging"
)

// DefaultLimit caps a log page when the caller does not.
const DefaultLimit = 500

// Service records and lists audit log entries.
type Service struct {
	store storage.AuditStore
	log   *logging.Logger
}

// New constructs an audit service.
func New(store storage.AuditStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("audit")
	}
	return &Service{store: store, log: log}
}

// Change describes a mutation to record.
type Change struct {
	Action     string
	EntityType string
	EntityID   int64
	EntityName string
	Details    string
}

// Record attributes c to the actor carried by ctx. Without an actor nothing
// is written. A failed write is logged and otherwise ignored: the mutation it
// describes has already been committed.
func (s *Service) Record(ctx context.Context, c Change) {
	actor, ok := audit.ActorFrom(ctx)
	if !ok {
		return
	}

	entry := audit.Entry{
		UserID:     &actor.ID,
		Username:   actor.Username,
		Action:     c.Action,
		EntityType: c.EntityType,
		EntityID:   &c.EntityID,
		EntityName: optional(c.EntityName),
		Details:    optional(c.Details),
	}
	if err := s.store.AddLog(ctx, entry); err != nil {
		s.log.WithContext(ctx).
			WithError(err).
			WithField("entity_type", c.EntityType).
			WithField("entity_id", c.EntityID).
			Warn("audit write failed")
	}
}

// Page is one page of the audit log.
type Page struct {
	Logs  []audit.Entry `json:"logs"`
	Total int64         `json:"total"`
}

// List returns a page of entries, newest first. A non-blank search filters
// the page; Total always counts the whole log.
func (s *Service) List(ctx context.Context, search string, limit, offset int) (Page, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	var (
		logs []audit.Entry
		err  error
	)
	if search = strings.TrimSpace(search); search != "" {
		logs, err = s.store.SearchLogs(ctx, search, limit, offset)
	} else {
		logs, err = s.store.ListLogs(ctx, limit, offset)
	}
	if err != nil {
		return Page{}, err
	}
	total, err := s.store.CountLogs(ctx)
	if err != nil {
		return Page{}, err
	}
	if logs == nil {
		logs = []audit.Entry{}
	}
	return Page{Logs: logs, Total: total}, nil
}

// JoinDetails joins the non-empty parts with ", ".
func JoinDetails(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
