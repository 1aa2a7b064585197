package storage

import (
	"context"
	"errors"

	"github.com/wareledger/wareledger/internal/app/domain/account"
	"github.com/wareledger/wareledger/internal/app/domain/audit"
	"github.com/wareledger/wareledger/internal/app/domain/inventory"
	"github.com/wareledger/wareledger/internal/app/domain/pricing"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("storage: not found")

// ObjectStore persists stock objects.
type ObjectStore interface {
	RefreshStorageStats(ctx context.Context) error
	ListObjects(ctx context.Context) ([]inventory.Object, error)
	SearchObjects(ctx context.Context, q inventory.SearchQuery) ([]inventory.Object, error)
	GetObject(ctx context.Context, id int64) (inventory.Object, error)
	CreateObject(ctx context.Context, name string) (int64, error)
	UpdateObject(ctx context.Context, id int64, name string) error
	DeleteObject(ctx context.Context, id int64) error
}

// SellerStore persists sellers.
type SellerStore interface {
	ListSellers(ctx context.Context) ([]inventory.Seller, error)
	GetSeller(ctx context.Context, id int64) (inventory.Seller, error)
	CreateSeller(ctx context.Context, name, inn, kpp string) (int64, error)
	UpdateSeller(ctx context.Context, s inventory.Seller) error
	DeleteSeller(ctx context.Context, id int64) error
}

// ThemeStore persists themes.
type ThemeStore interface {
	ListThemes(ctx context.Context) ([]inventory.Theme, error)
	GetTheme(ctx context.Context, id int64) (inventory.Theme, error)
	CreateTheme(ctx context.Context, name string) (int64, error)
	UpdateTheme(ctx context.Context, id int64, name string) error
	DeleteTheme(ctx context.Context, id int64) error
}

// ReceiptStore persists receipts and the documents they reference.
type ReceiptStore interface {
	CreateBill(ctx context.Context, doc inventory.Document) (int64, error)
	CreateInvoice(ctx context.Context, doc inventory.Document) (int64, error)
	CreateEntryControl(ctx context.Context, doc inventory.Document) (int64, error)

	CreateReceipt(ctx context.Context, r inventory.NewReceipt) (int64, error)
	UpdateReceipt(ctx context.Context, u inventory.ReceiptUpdate) error
	DeleteReceipt(ctx context.Context, id int64) error
	GetReceipt(ctx context.Context, id int64) (inventory.Receipt, error)
	ListReceiptsByObject(ctx context.Context, objectID int64) ([]inventory.Receipt, error)
}

// WriteOffStore persists writeoffs.
type WriteOffStore interface {
	CreateWriteOff(ctx context.Context, w inventory.WriteOffInput) (int64, error)
	UpdateWriteOff(ctx context.Context, w inventory.WriteOffInput) error
	DeleteWriteOff(ctx context.Context, id int64) error
	GetWriteOff(ctx context.Context, id int64) (inventory.WriteOff, error)
	ListWriteOffsByObject(ctx context.Context, objectID int64) ([]inventory.WriteOff, error)
}

// FileStore serves stored document bodies.
type FileStore interface {
	GetFile(ctx context.Context, kind inventory.FileKind, id int64) (inventory.StoredFile, error)
}

// InventoryStore groups the inventory stores. Atomic runs fn against a store
// bound to a single transaction; fn's error rolls everything back.
type InventoryStore interface {
	ObjectStore
	SellerStore
	ThemeStore
	ReceiptStore
	WriteOffStore
	FileStore

	Atomic(ctx context.Context, fn func(InventoryStore) error) error
}

// UserStore persists users. Passwords only cross this boundary as digests.
type UserStore interface {
	Authenticate(ctx context.Context, username, digest string) (account.User, error)
	ListUsers(ctx context.Context) ([]account.User, error)
	GetUser(ctx context.Context, id int64) (account.User, error)
	CreateUser(ctx context.Context, username, digest string, admin bool) (int64, error)
	UpdateUser(ctx context.Context, id int64, username string, admin bool) error
	UpdateUserPassword(ctx context.Context, id int64, digest string) error
	DeleteUser(ctx context.Context, id int64) error
}

// PricingStore persists receipt prices.
type PricingStore interface {
	ListPricing(ctx context.Context) ([]pricing.Pricing, error)
	GetPricing(ctx context.Context, id int64) (pricing.Pricing, error)
	GetPricingByReceipt(ctx context.Context, receiptID int64) (pricing.Pricing, error)
	CreatePricing(ctx context.Context, receiptID int64, price, tax float64) (int64, error)
	UpdatePricing(ctx context.Context, id int64, price, tax float64) error
	DeletePricing(ctx context.Context, id int64) error
}

// AuditStore persists the audit log.
type AuditStore interface {
	AddLog(ctx context.Context, e audit.Entry) error
	ListLogs(ctx context.Context, limit, offset int) ([]audit.Entry, error)
	SearchLogs(ctx context.Context, text string, limit, offset int) ([]audit.Entry, error)
	CountLogs(ctx context.Context) (int64, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
