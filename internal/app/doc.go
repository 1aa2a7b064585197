// Package app composes the warehouse ledger from its storage backends and
// domain services.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring and lifecycle
//	├── domain/             # Records exchanged between layers
//	│   ├── inventory/      # Objects, sellers, themes, receipts, write-offs
//	│   ├── pricing/        # Per-receipt prices
//	│   ├── account/        # Users
//	│   └── audit/          # Change log entries and the acting user
//	├── storage/            # Store interfaces
//	│   ├── memory/         # In-process implementation used by tests
//	│   └── postgres/       # Stored-routine calls through sqlx
//	├── services/           # Validation, atomic multi-step writes, audit
//	├── httpapi/            # Route table, dispatcher and handlers
//	├── metrics/            # Prometheus collectors
//	├── runtime/            # Process bootstrap and HTTP server
//	└── system/             # Background service lifecycle
//
// # Data Flow
//
// A request is matched against the route table, authorised against the
// session cookie, decoded into fields and files, and handed to one service
// operation. Services talk to storage only through the interfaces in
// storage, so the same code runs against memory or PostgreSQL.
//
// Mutations that change an existing record write one audit entry naming the
// acting user, which handlers place on the request context.
package app
