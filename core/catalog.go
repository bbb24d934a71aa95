package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/itsneelabh/mymarket/pkg/logger"
	"github.com/itsneelabh/mymarket/pkg/storage"
	"github.com/itsneelabh/mymarket/pkg/telemetry"
)

// Catalog owns every product and customer of a storefront together with the
// fixed taxonomy. It is the one place that reads from and writes to storage.
//
// A Catalog is not safe for concurrent use; it serves one session at a time.
type Catalog struct {
	cfg       *Config
	backend   storage.Backend
	logger    logger.Logger
	telemetry telemetry.Telemetry
	closers   []func(context.Context) error
	now       func() time.Time

	products  []*Product
	customers []*Customer
}

// NewCatalog creates an empty catalog wired to the storage, logging and
// telemetry described by cfg. Call Load to read persisted state.
func NewCatalog(ctx context.Context, cfg *Config) (*Catalog, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cat := &Catalog{
		cfg:    cfg,
		logger: cfg.Logger().With(map[string]interface{}{"component": "catalog"}),
		now:    cfg.clock,
	}
	if cat.now == nil {
		cat.now = time.Now
	}

	backend, err := cat.buildBackend(ctx)
	if err != nil {
		return nil, err
	}
	cat.backend = backend

	if err := cat.buildTelemetry(ctx); err != nil {
		_ = cat.Close(ctx)
		return nil, err
	}

	return cat, nil
}

// Open builds a configuration from opts, creates the catalog and loads it.
func Open(ctx context.Context, opts ...Option) (*Catalog, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	cat, err := NewCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := cat.Load(ctx); err != nil {
		_ = cat.Close(ctx)
		return nil, err
	}
	return cat, nil
}

func (cat *Catalog) buildBackend(ctx context.Context) (storage.Backend, error) {
	if cat.cfg.backend != nil {
		return cat.cfg.backend, nil
	}
	storageLog := cat.cfg.Logger().With(map[string]interface{}{"component": "storage"})

	switch cat.cfg.Storage.Backend {
	case BackendRedis:
		rb, err := storage.DialRedis(ctx, cat.cfg.Storage.RedisURL, cat.cfg.Storage.Namespace)
		if err != nil {
			return nil, opError("NewCatalog", "storage", cat.cfg.Storage.RedisURL, err)
		}
		rb.SetLogger(storageLog)
		cat.closers = append(cat.closers, func(context.Context) error { return rb.Close() })
		return rb, nil
	case BackendMemory:
		return storage.NewMemoryBackend(), nil
	default:
		fb := storage.NewFileBackend(cat.cfg.Storage.DataDir)
		fb.SetLogger(storageLog)
		return fb, nil
	}
}

func (cat *Catalog) buildTelemetry(ctx context.Context) error {
	switch {
	case cat.cfg.telemetry != nil:
		cat.telemetry = cat.cfg.telemetry
	case cat.cfg.Telemetry.Enabled:
		tel, err := telemetry.NewOTEL(ctx, cat.cfg.Name, cat.cfg.Telemetry.Endpoint)
		if err != nil {
			return opError("NewCatalog", "telemetry", cat.cfg.Telemetry.Endpoint, err)
		}
		cat.telemetry = tel
		cat.closers = append(cat.closers, tel.Shutdown)
	default:
		cat.telemetry = &telemetry.NoOpTelemetry{}
	}
	return nil
}

// Close releases the storage connection and flushes telemetry. It does not
// persist anything.
func (cat *Catalog) Close(ctx context.Context) error {
	var firstErr error
	for i := len(cat.closers) - 1; i >= 0; i-- {
		if err := cat.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	cat.closers = nil
	return firstErr
}

// Config returns the configuration the catalog was built with.
func (cat *Catalog) Config() *Config { return cat.cfg }

// Backend returns the storage backend.
func (cat *Catalog) Backend() storage.Backend { return cat.backend }

// Products returns every catalog product in insertion order. The pointers are
// the catalog's own records.
func (cat *Catalog) Products() []*Product {
	return append([]*Product(nil), cat.products...)
}

// Product returns the catalog record with the given title.
func (cat *Catalog) Product(title string) (*Product, bool) {
	for _, p := range cat.products {
		if p.title == title {
			return p, true
		}
	}
	return nil, false
}

// ProductExists reports whether a product with the given title exists.
func (cat *Catalog) ProductExists(title string) bool {
	_, ok := cat.Product(title)
	return ok
}

// ProductsByCategory returns the products of a category.
func (cat *Catalog) ProductsByCategory(category string) []*Product {
	return cat.filter(func(p *Product) bool { return p.category == category })
}

// ProductsBySubcategory returns the products of a subcategory.
func (cat *Catalog) ProductsBySubcategory(sub string) []*Product {
	return cat.filter(func(p *Product) bool { return p.subcategory == sub })
}

// SearchProducts matches query case-insensitively against title, category
// and subcategory. An empty query matches everything.
func (cat *Catalog) SearchProducts(query string) []*Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return cat.Products()
	}
	return cat.filter(func(p *Product) bool {
		return strings.Contains(strings.ToLower(p.title), q) ||
			strings.Contains(strings.ToLower(p.category), q) ||
			strings.Contains(strings.ToLower(p.subcategory), q)
	})
}

// UnavailableProducts returns products whose stock is zero.
func (cat *Catalog) UnavailableProducts() []*Product {
	return cat.filter(func(p *Product) bool { return p.quantity == 0 })
}

func (cat *Catalog) filter(keep func(*Product) bool) []*Product {
	out := []*Product{}
	for _, p := range cat.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the fixed category list.
func (cat *Catalog) Categories() []string { return Categories() }

// SubCategories returns the subcategories of category, empty when unknown.
func (cat *Catalog) SubCategories(category string) []string { return SubCategories(category) }

// AddNewProduct validates p and appends it. The catalog takes ownership of p.
func (cat *Catalog) AddNewProduct(p *Product) error {
	const op = "Catalog.AddNewProduct"
	if p == nil {
		return opError(op, "catalog", "", ErrMissingField)
	}
	if err := cat.validateProduct(p, ""); err != nil {
		cat.logger.Debug("Product rejected", map[string]interface{}{
			"title": p.title,
			"error": err.Error(),
		})
		return opError(op, "catalog", p.title, err)
	}
	cat.products = append(cat.products, p)
	cat.logger.Info("Product added", map[string]interface{}{
		"title":    p.title,
		"category": p.category,
	})
	return nil
}

// ProductUpdate lists the fields to change. Nil fields are left as they are.
type ProductUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Subcategory *string
	Price       *float64
	Quantity    *int
	Unit        *MeasurementUnit
}

// UpdateProduct applies an admin edit. Either every field changes or, on a
// validation failure, none does. A rename is followed by every cart holding
// the product; order history keeps the old title.
func (cat *Catalog) UpdateProduct(title string, u ProductUpdate) error {
	const op = "Catalog.UpdateProduct"
	p, ok := cat.Product(title)
	if !ok {
		return opError(op, "catalog", title, ErrProductNotFound)
	}

	next := p.Copy()
	if u.Title != nil {
		next.setTitle(strings.TrimSpace(*u.Title))
	}
	if u.Description != nil {
		next.SetDescription(*u.Description)
	}
	if u.Category != nil {
		next.SetCategory(*u.Category)
	}
	if u.Subcategory != nil {
		next.SetSubcategory(*u.Subcategory)
	}
	if u.Price != nil {
		next.price = *u.Price
	}
	if u.Quantity != nil {
		next.quantity = *u.Quantity
	}
	if u.Unit != nil {
		next.unit = *u.Unit
	}

	if err := cat.validateProduct(next, title); err != nil {
		cat.logger.Debug("Product update rejected", map[string]interface{}{
			"title": title,
			"error": err.Error(),
		})
		return opError(op, "catalog", title, err)
	}

	*p = *next
	if p.title != title {
		for _, c := range cat.customers {
			c.renameLine(title, p.title)
		}
	}
	cat.logger.Info("Product updated", map[string]interface{}{
		"title": p.title,
	})
	return nil
}

// validateProduct checks p against the taxonomy and the field invariants.
// self is the current title of the product being edited, empty for a new one.
func (cat *Catalog) validateProduct(p *Product, self string) error {
	if strings.TrimSpace(p.title) == "" {
		return ErrMissingField
	}
	if padded(p.title) || strings.ContainsAny(p.title, "|\r\n") {
		return ErrInvalidTitle
	}
	if p.title != self && cat.ProductExists(p.title) {
		return ErrDuplicateProduct
	}
	if err := validateTaxonomy(p.category, p.subcategory); err != nil {
		return err
	}
	if p.price < 0 {
		return ErrInvalidPrice
	}
	if p.quantity < 0 {
		return ErrInvalidQuantity
	}
	if !p.unit.Valid() {
		return ErrInvalidUnit
	}
	return nil
}

// AddCustomer inserts c into the directory. A customer with the same username
// is replaced in place.
func (cat *Catalog) AddCustomer(c *Customer) error {
	if c == nil || c.username == "" {
		return opError("Catalog.AddCustomer", "customer", "", ErrMissingField)
	}
	if err := validateCredentials(c.username, c.password); err != nil {
		return opError("Catalog.AddCustomer", "customer", c.username, err)
	}
	c.inv = cat
	c.now = cat.now

	for i, existing := range cat.customers {
		if existing.username == c.username {
			existing.inv = nil
			cat.customers[i] = c
			return nil
		}
	}
	cat.customers = append(cat.customers, c)
	return nil
}

// validateCredentials rejects values the stored format cannot reproduce: a
// username that is not a valid storage owner, or surrounding whitespace.
func validateCredentials(username, password string) error {
	if padded(username) || storage.CartKey(username).Validate() != nil {
		return ErrInvalidUsername
	}
	if padded(password) {
		return ErrInvalidPassword
	}
	return nil
}

// padded reports leading or trailing whitespace, which records drop on reload.
func padded(s string) bool { return s != strings.TrimSpace(s) }

// Customers returns the directory in insertion order.
func (cat *Catalog) Customers() []*Customer {
	return append([]*Customer(nil), cat.customers...)
}

// Customer returns the customer with the given username.
func (cat *Catalog) Customer(username string) (*Customer, bool) {
	for _, c := range cat.customers {
		if c.username == username {
			return c, true
		}
	}
	return nil, false
}

// orderCompleted is called by Customer.CompleteOrder after stock has been
// taken.
func (cat *Catalog) orderCompleted(c *Customer, o Order) {
	cat.logger.Info("Order completed", map[string]interface{}{
		"username": c.username,
		"products": len(o.products),
		"total":    o.totalCost,
	})
	cat.telemetry.RecordMetric("mymarket.checkouts", 1, nil)
	cat.telemetry.RecordMetric("mymarket.checkout.lines", float64(len(o.products)), nil)
}

// String summarises the catalog for logs.
func (cat *Catalog) String() string {
	return fmt.Sprintf("catalog(%s: %d products, %d customers)", cat.backend.Name(), len(cat.products), len(cat.customers))
}
