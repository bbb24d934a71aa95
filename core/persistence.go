package core

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/itsneelabh/mymarket/pkg/codec"
	"github.com/itsneelabh/mymarket/pkg/storage"
	"github.com/itsneelabh/mymarket/pkg/telemetry"
)

// Load replaces the in-memory state with what the backend holds. Missing
// artifacts count as empty. A corrupt artifact aborts the load and leaves the
// current state untouched. On success the previous customers are detached, so
// a stale *Customer can no longer shop against the reloaded stock.
func (cat *Catalog) Load(ctx context.Context) error {
	ctx, _ = telemetry.WithCorrelationID(ctx)
	ctx, span := cat.telemetry.StartSpan(ctx, "catalog.load")
	defer span.End()
	span.SetAttribute("storage.backend", cat.backend.Name())

	products, err := cat.loadProducts(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	customers, err := cat.loadCustomers(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	for _, c := range cat.customers {
		c.inv = nil
	}
	for _, c := range customers {
		c.inv = cat
		c.now = cat.now
	}
	cat.products = products
	cat.customers = customers

	span.SetAttribute("products", len(products))
	span.SetAttribute("customers", len(customers))
	cat.logger.Info("Catalog loaded", telemetry.EnrichLogFields(ctx, map[string]interface{}{
		"backend":   cat.backend.Name(),
		"products":  len(products),
		"customers": len(customers),
	}))
	return nil
}

// Reset discards every in-memory change and reloads from the backend. On
// failure the current state is kept.
func (cat *Catalog) Reset(ctx context.Context) error {
	return cat.Load(ctx)
}

func (cat *Catalog) loadProducts(ctx context.Context) ([]*Product, error) {
	records, err := readArtifact(ctx, cat.backend, storage.ProductsKey(), codec.ReadProducts)
	if err != nil {
		return nil, err
	}
	products := make([]*Product, 0, len(records))
	for _, r := range records {
		products = append(products, productFromRecord(r))
	}
	return products, nil
}

func (cat *Catalog) loadCustomers(ctx context.Context) ([]*Customer, error) {
	records, err := readArtifact(ctx, cat.backend, storage.CustomersKey(), codec.ReadCustomers)
	if err != nil {
		return nil, err
	}

	customers := make([]*Customer, 0, len(records))
	seen := make(map[string]int, len(records))
	for _, r := range records {
		c := NewCustomer(r.Username, r.Password, r.FirstName, r.Surname)

		lines, err := readArtifact(ctx, cat.backend, storage.CartKey(r.Username), codec.ReadCart)
		if err != nil {
			return nil, err
		}
		orders, err := readArtifact(ctx, cat.backend, storage.HistoryKey(r.Username), codec.ReadOrders)
		if err != nil {
			return nil, err
		}

		cart := make([]*Product, len(lines))
		for i, l := range lines {
			cart[i] = productFromRecord(l)
		}
		history := make([]Order, len(orders))
		for i, o := range orders {
			history[i] = orderFromRecord(o)
		}
		c.restoreState(cart, history)

		// A repeated username keeps its first position and its last record.
		if i, dup := seen[r.Username]; dup {
			customers[i] = c
			continue
		}
		seen[r.Username] = len(customers)
		customers = append(customers, c)
	}
	return customers, nil
}

// readArtifact fetches key and decodes it. A missing artifact decodes to the
// zero value.
func readArtifact[T any](ctx context.Context, b storage.Backend, key storage.Key, decode func(io.Reader) ([]T, error)) ([]T, error) {
	data, err := b.Read(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, opError("Catalog.Load", "storage", key.String(), err)
	}

	out, err := decode(bytes.NewReader(data))
	if err != nil {
		if cre, ok := codec.AsCorruptRecord(err); ok {
			cre.Artifact = key.String()
		}
		return nil, opError("Catalog.Load", "storage", key.String(), err)
	}
	return out, nil
}

// Persist writes every artifact in order: the customer directory, the product
// catalog, each customer's cart, then the new orders of each history.
//
// History is append-only. Orders not yet stored are appended with status
// completed and then marked completed in memory, so a second Persist appends
// nothing. Every writer runs even when an earlier one fails; all failures are
// returned joined.
func (cat *Catalog) Persist(ctx context.Context) error {
	ctx, _ = telemetry.WithCorrelationID(ctx)
	ctx, span := cat.telemetry.StartSpan(ctx, "catalog.persist")
	defer span.End()
	span.SetAttribute("storage.backend", cat.backend.Name())

	var errs []error
	written := 0
	write := func(key storage.Key, encode func(io.Writer) error, appendOnly bool) bool {
		var buf bytes.Buffer
		err := encode(&buf)
		if err == nil {
			if appendOnly {
				err = cat.backend.Append(ctx, key, buf.Bytes())
			} else {
				err = cat.backend.Write(ctx, key, buf.Bytes())
			}
		}
		if err != nil {
			cat.logger.Error("Failed to persist artifact", telemetry.EnrichLogFields(ctx, map[string]interface{}{
				"artifact": key.String(),
				"error":    err.Error(),
			}))
			errs = append(errs, opError("Catalog.Persist", "storage", key.String(), err))
			return false
		}
		written++
		return true
	}

	customers := make([]codec.CustomerRecord, len(cat.customers))
	for i, c := range cat.customers {
		customers[i] = c.record()
	}
	write(storage.CustomersKey(), func(w io.Writer) error {
		return codec.WriteCustomers(w, customers)
	}, false)

	products := make([]codec.ProductRecord, len(cat.products))
	for i, p := range cat.products {
		products[i] = p.record()
	}
	write(storage.ProductsKey(), func(w io.Writer) error {
		return codec.WriteProducts(w, products)
	}, false)

	for _, c := range cat.customers {
		lines := c.cartRecords()
		write(storage.CartKey(c.username), func(w io.Writer) error {
			return codec.WriteCart(w, lines)
		}, false)
	}

	appended := 0
	for _, c := range cat.customers {
		var fresh []int
		var records []codec.OrderRecord
		for i, o := range c.history {
			if !o.persisted {
				fresh = append(fresh, i)
				records = append(records, o.Completed().record())
			}
		}
		if len(fresh) == 0 {
			continue
		}
		ok := write(storage.HistoryKey(c.username), func(w io.Writer) error {
			return codec.WriteOrders(w, records)
		}, true)
		if !ok {
			continue
		}
		for _, i := range fresh {
			done := c.history[i].Completed()
			done.persisted = true
			c.history[i] = done
		}
		appended += len(fresh)
	}

	span.SetAttribute("artifacts.written", written)
	span.SetAttribute("artifacts.failed", len(errs))
	span.SetAttribute("orders.appended", appended)
	cat.telemetry.RecordMetric("mymarket.artifacts.persisted", float64(written), map[string]string{
		"backend": cat.backend.Name(),
	})

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		cat.logger.Error("Catalog persisted with failures", telemetry.EnrichLogFields(ctx, map[string]interface{}{
			"written": written,
			"failed":  len(errs),
		}))
		return err
	}
	cat.logger.Info("Catalog persisted", telemetry.EnrichLogFields(ctx, map[string]interface{}{
		"written": written,
		"orders":  appended,
	}))
	return nil
}
