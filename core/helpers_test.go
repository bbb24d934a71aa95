package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/mymarket/pkg/logger"
	"github.com/itsneelabh/mymarket/pkg/storage"
	"github.com/itsneelabh/mymarket/pkg/telemetry"
)

const (
	tsipouroTitle = "Τσίπουρο Χωρίς Γλυκάνισο 200ml"
	colaTitle     = "Coca Cola"
	waterTitle    = "Νερό Μεταλλικό 1,5lt"
)

var fixedNow = time.Date(2026, 10, 14, 18, 30, 0, 0, time.Local)

func fixedClock() time.Time { return fixedNow }

func tsipouro() *Product {
	return NewProduct(tsipouroTitle, "Τσίπουρο χωρίς γλυκάνισο", "Αλκοολούχα ποτά", "Τσίπουρο", 6.5, 97, UnitPieces)
}

func cola() *Product {
	return NewProduct(colaTitle, "Αναψυκτικό τύπου cola", "Μη αλκοολούχα ποτά", "Αναψυκτικά", 1.3, 298, UnitPieces)
}

func water() *Product {
	return NewProduct(waterTitle, "Φυσικό μεταλλικό νερό", "Μη αλκοολούχα ποτά", "Νερό", 0.5, 498, UnitPieces)
}

func sakis() *Customer {
	return NewCustomer("Sakis", "sakis123", "Athanasios", "Giarlopoylos")
}

// newTestCatalog opens an empty catalog on a fresh in-memory backend.
func newTestCatalog(t *testing.T, opts ...Option) *Catalog {
	t.Helper()
	return openOn(t, storage.NewMemoryBackend(), opts...)
}

func openOn(t *testing.T, b storage.Backend, opts ...Option) *Catalog {
	t.Helper()
	base := []Option{
		WithBackend(b),
		WithLogger(&logger.NoOpLogger{}),
		WithClock(fixedClock),
	}
	cat, err := Open(context.Background(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close(context.Background()) })
	return cat
}

// seededCatalog holds the three sample products and an attached Sakis.
func seededCatalog(t *testing.T, opts ...Option) (*Catalog, *Customer) {
	t.Helper()
	cat := newTestCatalog(t, opts...)
	for _, p := range []*Product{tsipouro(), cola(), water()} {
		require.NoError(t, cat.AddNewProduct(p))
	}
	c := sakis()
	require.NoError(t, cat.AddCustomer(c))
	return cat, c
}

func mustProduct(t *testing.T, cat *Catalog, title string) *Product {
	t.Helper()
	p, ok := cat.Product(title)
	require.True(t, ok, title)
	return p
}

// recordingTelemetry keeps span names and metric sums.
type recordingTelemetry struct {
	spans   []string
	metrics map[string]float64
}

func newRecordingTelemetry() *recordingTelemetry {
	return &recordingTelemetry{metrics: make(map[string]float64)}
}

func (r *recordingTelemetry) StartSpan(ctx context.Context, name string) (context.Context, telemetry.Span) {
	r.spans = append(r.spans, name)
	return ctx, &telemetry.NoOpSpan{}
}

func (r *recordingTelemetry) RecordMetric(name string, value float64, labels map[string]string) {
	r.metrics[name] += value
}
