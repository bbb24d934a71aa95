// Package mymarket is a meta-package that re-exports the storefront's public
// surface from its submodules.
// Users can import the specific packages directly:
//   - github.com/itsneelabh/mymarket/core - catalog, customers, orders, config
//   - github.com/itsneelabh/mymarket/pkg/codec - the text artifact format
//   - github.com/itsneelabh/mymarket/pkg/storage - file, Redis and memory backends
package mymarket

import (
	"context"
	"errors"

	"github.com/itsneelabh/mymarket/core"
)

// Re-export core types
type (
	// Domain types
	Catalog         = core.Catalog
	Product         = core.Product
	ProductUpdate   = core.ProductUpdate
	MeasurementUnit = core.MeasurementUnit
	Customer        = core.Customer
	Order           = core.Order
	OrderStatus     = core.OrderStatus
	Session         = core.Session
	Role            = core.Role
	Stats           = core.Stats
	ProductCount    = core.ProductCount

	// Configuration types
	Config          = core.Config
	Option          = core.Option
	StorageConfig   = core.StorageConfig
	LoggingConfig   = core.LoggingConfig
	TelemetryConfig = core.TelemetryConfig
	AdminAccount    = core.AdminAccount

	// Errors
	MarketError = core.MarketError
)

// Re-export constants
const (
	UnitKilograms   = core.UnitKilograms
	UnitPieces      = core.UnitPieces
	StatusPending   = core.StatusPending
	StatusCompleted = core.StatusCompleted
	RoleAdmin       = core.RoleAdmin
	RoleCustomer    = core.RoleCustomer
)

// Re-export core functions
var (
	Open          = core.Open
	NewCatalog    = core.NewCatalog
	Shared        = core.Shared
	ResetShared   = core.ResetShared
	NewProduct    = core.NewProduct
	NewCustomer   = core.NewCustomer
	NewConfig     = core.NewConfig
	DefaultConfig = core.DefaultConfig
	Categories    = core.Categories
	SubCategories = core.SubCategories
	FormatCost    = core.FormatCost

	// Configuration options
	WithName              = core.WithName
	WithDataDir           = core.WithDataDir
	WithRedis             = core.WithRedis
	WithMemoryStorage     = core.WithMemoryStorage
	WithBackend           = core.WithBackend
	WithLogLevel          = core.WithLogLevel
	WithLogFormat         = core.WithLogFormat
	WithLogger            = core.WithLogger
	WithTelemetry         = core.WithTelemetry
	WithTelemetryProvider = core.WithTelemetryProvider
	WithAdmins            = core.WithAdmins
	WithTopProducts       = core.WithTopProducts
	WithClock             = core.WithClock
	WithConfigFile        = core.WithConfigFile
)

// RunSession opens a catalog, hands it to fn and, when fn succeeds, persists
// every artifact once before closing. A failing fn leaves storage untouched.
func RunSession(ctx context.Context, fn func(context.Context, *Catalog) error, opts ...Option) error {
	cat, err := core.Open(ctx, opts...)
	if err != nil {
		return err
	}

	if err := fn(ctx, cat); err != nil {
		return errors.Join(err, cat.Close(ctx))
	}
	return errors.Join(cat.Persist(ctx), cat.Close(ctx))
}
