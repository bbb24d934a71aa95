package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/mymarket/pkg/codec"
	"github.com/itsneelabh/mymarket/pkg/logger"
	"github.com/itsneelabh/mymarket/pkg/storage"
)

var errBoom = errors.New("disk on fire")

// failingBackend fails every write or append of one artifact kind.
type failingBackend struct {
	storage.Backend
	kind storage.Kind
}

func (f *failingBackend) Write(ctx context.Context, key storage.Key, data []byte) error {
	if key.Kind == f.kind {
		return errBoom
	}
	return f.Backend.Write(ctx, key, data)
}

func (f *failingBackend) Append(ctx context.Context, key storage.Key, data []byte) error {
	if key.Kind == f.kind {
		return errBoom
	}
	return f.Backend.Append(ctx, key, data)
}

// shopAndPersist builds a session with one completed checkout and one open
// cart line, then persists it to b.
func shopAndPersist(t *testing.T, b storage.Backend) {
	t.Helper()
	cat := openOn(t, b)
	for _, p := range []*Product{tsipouro(), cola(), water()} {
		require.NoError(t, cat.AddNewProduct(p))
	}
	require.NoError(t, cat.AddNewProduct(NewProduct("Μήλα Στάρκιν", "", "Φρέσκα τρόφιμα", "Φρούτα", 1.99, 40, UnitKilograms)))
	c := sakis()
	require.NoError(t, cat.AddCustomer(c))

	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, tsipouroTitle), 2))
	_, err := c.CompleteOrder()
	require.NoError(t, err)
	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, colaTitle), 3))
	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, "Μήλα Στάρκιν"), 2))

	require.NoError(t, cat.Persist(context.Background()))
}

func TestPersist_RoundTrip(t *testing.T) {
	mb := storage.NewMemoryBackend()
	shopAndPersist(t, mb)

	cat := openOn(t, mb)
	require.Len(t, cat.Products(), 4)

	ts := mustProduct(t, cat, tsipouroTitle)
	assert.Equal(t, "Τσίπουρο χωρίς γλυκάνισο", ts.Description())
	assert.Equal(t, "Αλκοολούχα ποτά", ts.Category())
	assert.Equal(t, "Τσίπουρο", ts.Subcategory())
	assert.Equal(t, 6.5, ts.Price())
	assert.Equal(t, 95, ts.Quantity())
	assert.Equal(t, UnitPieces, ts.Unit())

	apples := mustProduct(t, cat, "Μήλα Στάρκιν")
	assert.Equal(t, UnitKilograms, apples.Unit())
	assert.Equal(t, 1.99, apples.Price())

	c, ok := cat.Customer("Sakis")
	require.True(t, ok)
	assert.True(t, c.CheckPassword("sakis123"))
	assert.Equal(t, "Giarlopoylos", c.Surname())

	assert.Equal(t, 2, c.CartLen())
	line, ok := c.CartLine(colaTitle)
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity())
	assert.InDelta(t, 3*1.3+2*1.99, c.TotalCartCost(), 1e-9)

	history := c.OrderHistory()
	require.Len(t, history, 1)
	assert.Equal(t, StatusCompleted, history[0].Status())
	assert.Equal(t, "14/10/2026 18:30:00", history[0].Date())
	assert.Equal(t, []string{tsipouroTitle}, history[0].Products())
	assert.Equal(t, "13,00€", history[0].TotalCost())

	// The reloaded customer can keep shopping against reloaded stock.
	_, err := c.CompleteOrder()
	require.NoError(t, err)
	assert.Equal(t, 295, mustProduct(t, cat, colaTitle).Quantity())
}

func TestPersist_FlipsPendingInMemory(t *testing.T) {
	mb := storage.NewMemoryBackend()
	cat, c := seededCatalog(t, WithBackend(mb))
	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, colaTitle), 1))
	_, err := c.CompleteOrder()
	require.NoError(t, err)
	assert.True(t, c.OrderHistory()[0].IsPending())

	require.NoError(t, cat.Persist(context.Background()))
	assert.Equal(t, StatusCompleted, c.OrderHistory()[0].Status())

	require.NoError(t, cat.Persist(context.Background()))
	data, err := mb.Read(context.Background(), storage.HistoryKey("Sakis"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "Status:"), "a second persist appends nothing")
	assert.Contains(t, string(data), "Status: Ολοκληρωμένη")
}

func TestPersist_HistoryIsAppendOnly(t *testing.T) {
	mb := storage.NewMemoryBackend()
	shopAndPersist(t, mb)

	cat := openOn(t, mb)
	c, _ := cat.Customer("Sakis")
	_, err := c.CompleteOrder()
	require.NoError(t, err)
	require.NoError(t, cat.Persist(context.Background()))

	reloaded := openOn(t, mb)
	c, _ = reloaded.Customer("Sakis")
	history := c.OrderHistory()
	require.Len(t, history, 2)
	assert.Equal(t, []string{tsipouroTitle}, history[0].Products())
	assert.Equal(t, []string{colaTitle, "Μήλα Στάρκιν"}, history[1].Products())
	assert.Zero(t, c.CartLen(), "checked-out cart is persisted empty")
}

func TestPersist_CollectsFailures(t *testing.T) {
	mb := storage.NewMemoryBackend()
	fb := &failingBackend{Backend: mb, kind: storage.KindCart}
	cat, c := seededCatalog(t, WithBackend(fb))
	maria := NewCustomer("maria", "m", "Μαρία", "Παπαδοπούλου")
	require.NoError(t, cat.AddCustomer(maria))
	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, colaTitle), 1))
	_, err := c.CompleteOrder()
	require.NoError(t, err)

	err = cat.Persist(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "cart/Sakis")
	assert.Contains(t, err.Error(), "cart/maria")

	// Writers after the failing ones still ran.
	_, err = mb.Read(context.Background(), storage.ProductsKey())
	assert.NoError(t, err)
	_, err = mb.Read(context.Background(), storage.HistoryKey("Sakis"))
	assert.NoError(t, err)
}

func TestPersist_FailedHistoryStaysPending(t *testing.T) {
	mb := storage.NewMemoryBackend()
	fb := &failingBackend{Backend: mb, kind: storage.KindHistory}
	cat, c := seededCatalog(t, WithBackend(fb))
	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, colaTitle), 1))
	_, err := c.CompleteOrder()
	require.NoError(t, err)

	require.ErrorIs(t, cat.Persist(context.Background()), errBoom)
	assert.True(t, c.OrderHistory()[0].IsPending())

	fb.kind = ""
	require.NoError(t, cat.Persist(context.Background()))
	assert.False(t, c.OrderHistory()[0].IsPending())
}

func TestLoad_EmptyBackend(t *testing.T) {
	cat := newTestCatalog(t)
	assert.Empty(t, cat.Products())
	assert.Empty(t, cat.Customers())
}

func TestLoad_MissingCartAndHistory(t *testing.T) {
	mb := storage.NewMemoryBackend()
	require.NoError(t, mb.Write(context.Background(), storage.CustomersKey(),
		[]byte("username: Sakis\npassword: sakis123\nfirstName: Athanasios\nsurname: Giarlopoylos\n")))

	cat := openOn(t, mb)
	c, ok := cat.Customer("Sakis")
	require.True(t, ok)
	assert.Zero(t, c.CartLen())
	assert.Empty(t, c.OrderHistory())
}

func TestLoad_CorruptArtifact(t *testing.T) {
	ctx := context.Background()
	mb := storage.NewMemoryBackend()
	shopAndPersist(t, mb)
	cat := openOn(t, mb)

	require.NoError(t, mb.Write(ctx, storage.CartKey("Sakis"), []byte("Title: x\nDescription: y\nbroken\n")))

	_, err := Open(ctx, WithBackend(mb), WithLogger(&logger.NoOpLogger{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrCorruptRecord)
	cre, ok := codec.AsCorruptRecord(err)
	require.True(t, ok)
	assert.Equal(t, "cart/Sakis", cre.Artifact)
	assert.Equal(t, 3, cre.Line)

	// Reset on a live catalog fails the same way and keeps the current state.
	assert.ErrorIs(t, cat.Reset(ctx), codec.ErrCorruptRecord)
	assert.Len(t, cat.Products(), 4)
	c, _ := cat.Customer("Sakis")
	assert.Equal(t, 2, c.CartLen())
}

func TestReset_DiscardsUnsavedChanges(t *testing.T) {
	mb := storage.NewMemoryBackend()
	shopAndPersist(t, mb)
	cat := openOn(t, mb)

	require.NoError(t, cat.AddNewProduct(NewProduct("Πατατάκια Lay's", "", "Σνακ", "Πατατάκια", 1.5, 10, UnitPieces)))
	require.Len(t, cat.Products(), 5)

	require.NoError(t, cat.Reset(context.Background()))
	assert.Len(t, cat.Products(), 4)
	c, _ := cat.Customer("Sakis")
	require.NoError(t, c.AdjustProductQuantityInCart(mustProduct(t, cat, colaTitle), 1), "reloaded customers are attached")
}

func TestPersist_FileLayout(t *testing.T) {
	dir := t.TempDir()
	fb := storage.NewFileBackend(dir)
	shopAndPersist(t, fb)

	products, err := os.ReadFile(filepath.Join(dir, "products.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(products), "Title: "+tsipouroTitle+"\n")
	assert.Contains(t, string(products), "Price: 6,50€\nQuantity: 95 τεμάχια\n\n")
	assert.Contains(t, string(products), "Quantity: 40kg\n")

	customers, err := os.ReadFile(filepath.Join(dir, "customers.txt"))
	require.NoError(t, err)
	assert.Equal(t, "username: Sakis\npassword: sakis123\nfirstName: Athanasios\nsurname: Giarlopoylos\n", string(customers))

	cart, err := os.ReadFile(filepath.Join(dir, "CustomersActiveCarts", "Sakis_activeCart.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(cart), "Quantity: 3 τεμάχια\nTitle: Μήλα Στάρκιν\n")

	history, err := os.ReadFile(filepath.Join(dir, "CustomersOrderHistory", "Sakis.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Status: Ολοκληρωμένη\nDate: 14/10/2026 18:30:00\nboughtProducts: "+tsipouroTitle+"|\ntotalOrderCost: 13,00€\n", string(history))

	cat := openOn(t, storage.NewFileBackend(dir))
	assert.Len(t, cat.Products(), 4)
}

func TestOpen_FileBackendFromConfig(t *testing.T) {
	dir := t.TempDir()
	cat, err := Open(context.Background(), WithDataDir(dir), WithLogger(&logger.NoOpLogger{}))
	require.NoError(t, err)
	defer cat.Close(context.Background())

	assert.Equal(t, "file", cat.Backend().Name())
	assert.Empty(t, cat.Products(), "an empty data directory is an empty catalog")
}

func TestOpen_RedisBackendFromConfig(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	cat, err := Open(ctx, WithRedis("redis://"+mr.Addr(), "shop"), WithLogger(&logger.NoOpLogger{}), WithClock(fixedClock))
	require.NoError(t, err)
	require.NoError(t, cat.AddNewProduct(cola()))
	_, err = cat.SignUp("Sakis", "sakis123", "Athanasios", "Giarlopoylos")
	require.NoError(t, err)
	require.NoError(t, cat.Persist(ctx))
	require.NoError(t, cat.Close(ctx))

	assert.True(t, mr.Exists("shop:products"))
	assert.True(t, mr.Exists("shop:customers"))
	assert.True(t, mr.Exists("shop:cart:Sakis"))

	again, err := Open(ctx, WithRedis("redis://"+mr.Addr(), "shop"), WithLogger(&logger.NoOpLogger{}))
	require.NoError(t, err)
	defer again.Close(ctx)
	assert.True(t, again.ProductExists(colaTitle))
}

func TestOpen_RedisUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = Open(context.Background(), WithRedis("redis://"+addr, ""), WithLogger(&logger.NoOpLogger{}))
	assert.Error(t, err)
}

func TestPersist_Spans(t *testing.T) {
	rec := newRecordingTelemetry()
	cat, _ := seededCatalog(t, WithTelemetryProvider(rec))
	require.NoError(t, cat.Persist(context.Background()))

	assert.Equal(t, []string{"catalog.load", "catalog.persist"}, rec.spans)
	// customers, products and one cart
	assert.Equal(t, 3.0, rec.metrics["mymarket.artifacts.persisted"])
}

func TestPersist_SignUpSurvivesReload(t *testing.T) {
	mb := storage.NewMemoryBackend()
	cat := openOn(t, mb)
	require.NoError(t, cat.AddNewProduct(tsipouro()))

	_, err := cat.SignUp(" bob", "pw ", "Bob", "Smith")
	require.ErrorIs(t, err, ErrInvalidUsername)

	c, err := cat.SignUp("bob", "pw", "  Bob ", " Smith")
	require.NoError(t, err)
	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, tsipouroTitle), 2))

	p := NewProduct("Γάλα Φρέσκο 1lt", "  Πλήρες  ", "Προϊόντα ψυγείου", "Γάλα", 1.2, 30, UnitPieces)
	require.NoError(t, cat.AddNewProduct(p))
	require.NoError(t, cat.Persist(context.Background()))

	reloaded := openOn(t, mb)
	milk := mustProduct(t, reloaded, "Γάλα Φρέσκο 1lt")
	assert.Equal(t, "Πλήρες", milk.Description())

	s, err := reloaded.Authenticate("bob", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Bob", s.Customer.FirstName())
	assert.Equal(t, "Smith", s.Customer.Surname())
	require.Equal(t, 1, s.Customer.CartLen())
	line, ok := s.Customer.CartLine(tsipouroTitle)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity())
}

func TestReset_DetachesStaleCustomers(t *testing.T) {
	mb := storage.NewMemoryBackend()
	shopAndPersist(t, mb)
	cat := openOn(t, mb)

	stale, ok := cat.Customer("Sakis")
	require.True(t, ok)
	require.NoError(t, cat.Reset(context.Background()))

	before := mustProduct(t, cat, colaTitle).Quantity()
	_, err := stale.CompleteOrder()
	assert.ErrorIs(t, err, ErrDetachedCustomer)
	assert.Equal(t, before, mustProduct(t, cat, colaTitle).Quantity())

	fresh, ok := cat.Customer("Sakis")
	require.True(t, ok)
	assert.NotSame(t, stale, fresh)
	_, err = fresh.CompleteOrder()
	assert.NoError(t, err)
}
