// Package app composes the POS services into a running application.
//
// Layout:
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── domain/             # Domain models (pure data structures)
//	├── storage/            # Store interfaces, in-memory and Postgres backends
//	├── services/           # Business logic (menu, layout, orders, drivers, ...)
//	├── httpapi/            # gorilla/mux handlers
//	└── system/             # Lifecycle manager for background services
//
// Services depend on the storage interfaces, never on a concrete backend;
// Application.New defaults any nil store to a shared in-memory implementation
// so tests and DSN-less deployments work without Postgres.
package app
