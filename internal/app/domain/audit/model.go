package audit

import (
	"context"
	"time"
)

// Actions recorded in the audit log.
const (
	ActionEdit   = "Редактирование"
	ActionDelete = "Удаление"
)

// Entity types recorded in the audit log.
const (
	EntityObject   = "Объект"
	EntitySeller   = "Поставщик"
	EntityTheme    = "Тема"
	EntityReceipt  = "Поступление"
	EntityWriteOff = "Списание"
	EntityPricing  = "Цена"
	EntityUser     = "Пользователь"
)

// Entry is one audit log row.
type Entry struct {
	ID         int64      `db:"id" json:"id"`
	UserID     *int64     `db:"user_id" json:"user_id"`
	Username   string     `db:"username" json:"username"`
	Action     string     `db:"action" json:"action"`
	EntityType string     `db:"entity_type" json:"entity_type"`
	EntityID   *int64     `db:"entity_id" json:"entity_id"`
	EntityName *string    `db:"entity_name" json:"entity_name"`
	Details    *string    `db:"details" json:"details"`
	CreatedAt  *time.Time `db:"created_at" json:"created_at"`
}

// Actor is the user a mutation is attributed to.
type Actor struct {
	ID       int64
	Username string
}

type actorKey struct{}

// WithActor attaches the acting user to ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the acting user, if any.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
