package app

import (
	"context"
	"fmt"

	"github.com/wareledger/wareledger/internal/app/services/accounts"
	auditsvc "github.com/wareledger/wareledger/internal/app/services/audit"
	"github.com/wareledger/wareledger/internal/app/services/health"
	"github.com/wareledger/wareledger/internal/app/services/inventory"
	"github.com/wareledger/wareledger/internal/app/services/pricing"
	"github.com/wareledger/wareledger/internal/app/storage"
	"github.com/wareledger/wareledger/internal/app/storage/memory"
	"github.com/wareledger/wareledger/internal/app/system"
	"github.com/wareledger/wareledger/internal/logging"
	"github.com/wareledger/wareledger/internal/session"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Inventory storage.InventoryStore
	Users     storage.UserStore
	Pricing   storage.PricingStore
	Audit     storage.AuditStore
	// Database is pinged by the health check. Nil reports "none".
	Database storage.Pinger
	// Sessions defaults to an in-process store.
	Sessions session.Store
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logging.Logger

	Sessions  session.Store
	Audit     *auditsvc.Service
	Inventory *inventory.Service
	Pricing   *pricing.Service
	Accounts  *accounts.Service
	Health    *health.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logging.Logger) (*Application, error) {
	if log == nil {
		log = logging.NewDefault("app")
	}

	if stores.Inventory == nil || stores.Users == nil || stores.Pricing == nil || stores.Audit == nil {
		mem := memory.New()
		if stores.Inventory == nil {
			stores.Inventory = mem
		}
		if stores.Users == nil {
			stores.Users = mem
		}
		if stores.Pricing == nil {
			stores.Pricing = mem
		}
		if stores.Audit == nil {
			stores.Audit = mem
		}
	}
	if stores.Sessions == nil {
		stores.Sessions = session.NewMemoryStore()
	}

	audits := auditsvc.New(stores.Audit, log)
	application := &Application{
		manager:   system.NewManager(),
		log:       log,
		Sessions:  stores.Sessions,
		Audit:     audits,
		Inventory: inventory.New(stores.Inventory, audits, log),
		Pricing:   pricing.New(stores.Pricing, stores.Inventory, audits, log),
		Accounts:  accounts.New(stores.Users, stores.Sessions, audits, log),
		Health:    health.New(stores.Database, log),
	}
	return application, nil
}

// Attach registers an additional lifecycle-managed service.
func (a *Application) Attach(service system.Service) error {
	if err := a.manager.Register(service); err != nil {
		return fmt.Errorf("register %s: %w", service.Name(), err)
	}
	return nil
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	a.log.Info("starting application services")
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	a.log.Info("stopping application services")
	return a.manager.Stop(ctx)
}

// Services lists the names of attached services.
func (a *Application) Services() []string {
	return a.manager.Names()
}
