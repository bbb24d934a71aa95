package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/mymarket/pkg/logger"
)

func strPtr(s string) *string { return &s }

func TestCatalog_ProductLookup(t *testing.T) {
	cat, _ := seededCatalog(t)

	p, ok := cat.Product(colaTitle)
	require.True(t, ok)
	assert.Equal(t, 1.3, p.Price())
	assert.True(t, cat.ProductExists(waterTitle))

	_, ok = cat.Product("Ούζο 700ml")
	assert.False(t, ok)
	assert.False(t, cat.ProductExists("Ούζο 700ml"))

	titles := []string{}
	for _, p := range cat.Products() {
		titles = append(titles, p.Title())
	}
	assert.Equal(t, []string{tsipouroTitle, colaTitle, waterTitle}, titles)
}

func TestCatalog_Filters(t *testing.T) {
	cat, _ := seededCatalog(t)

	assert.Len(t, cat.ProductsByCategory("Μη αλκοολούχα ποτά"), 2)
	assert.Len(t, cat.ProductsBySubcategory("Τσίπουρο"), 1)
	assert.Empty(t, cat.ProductsByCategory("Χαρτικά"))
	assert.NotNil(t, cat.ProductsByCategory("Χαρτικά"))

	assert.Len(t, cat.SearchProducts("coca"), 1)
	assert.Len(t, cat.SearchProducts("ΑΝΑΨΥΚΤΙΚΆ"), 1, "subcategory match, case-insensitive")
	assert.Len(t, cat.SearchProducts("  "), 3)
	assert.Empty(t, cat.SearchProducts("pizza"))
}

func TestCatalog_AddNewProductValidation(t *testing.T) {
	tests := []struct {
		name    string
		product *Product
		wantErr error
	}{
		{"duplicate title", cola(), ErrDuplicateProduct},
		{"empty title", NewProduct(" ", "", "Σνακ", "Κράκερς", 1, 1, UnitPieces), ErrMissingField},
		{"pipe in title", NewProduct("a|b", "", "Σνακ", "Κράκερς", 1, 1, UnitPieces), ErrInvalidTitle},
		{"leading space in title", NewProduct(" Milk", "", "Σνακ", "Κράκερς", 1, 1, UnitPieces), ErrInvalidTitle},
		{"trailing space in title", NewProduct("Milk ", "", "Σνακ", "Κράκερς", 1, 1, UnitPieces), ErrInvalidTitle},
		{"unknown category", NewProduct("x", "", "Ηλεκτρονικά", "Κράκερς", 1, 1, UnitPieces), ErrUnknownCategory},
		{"subcategory of another category", NewProduct("x", "", "Σνακ", "Τσίπουρο", 1, 1, UnitPieces), ErrUnknownSubcategory},
		{"negative price", NewProduct("x", "", "Σνακ", "Κράκερς", -1, 1, UnitPieces), ErrInvalidPrice},
		{"negative quantity", NewProduct("x", "", "Σνακ", "Κράκερς", 1, -1, UnitPieces), ErrInvalidQuantity},
		{"bad unit", NewProduct("x", "", "Σνακ", "Κράκερς", 1, 1, "lt"), ErrInvalidUnit},
		{"nil", nil, ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, _ := seededCatalog(t)
			err := cat.AddNewProduct(tt.product)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, cat.Products(), 3)
		})
	}
}

func TestCatalog_UpdateProduct(t *testing.T) {
	cat, _ := seededCatalog(t)

	price := 7.2
	qty := 50
	require.NoError(t, cat.UpdateProduct(tsipouroTitle, ProductUpdate{
		Description: strPtr("Με γλυκάνισο"),
		Price:       &price,
		Quantity:    &qty,
	}))
	p := mustProduct(t, cat, tsipouroTitle)
	assert.Equal(t, "Με γλυκάνισο", p.Description())
	assert.Equal(t, 7.2, p.Price())
	assert.Equal(t, 50, p.Quantity())
}

func TestCatalog_UpdateProductIsAtomic(t *testing.T) {
	cat, _ := seededCatalog(t)

	bad := -1.0
	err := cat.UpdateProduct(colaTitle, ProductUpdate{
		Description: strPtr("changed"),
		Price:       &bad,
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	p := mustProduct(t, cat, colaTitle)
	assert.NotEqual(t, "changed", p.Description())
	assert.Equal(t, 1.3, p.Price())

	err = cat.UpdateProduct(colaTitle, ProductUpdate{Category: strPtr("Σνακ")})
	assert.ErrorIs(t, err, ErrUnknownSubcategory, "category and subcategory are validated together")

	require.NoError(t, cat.UpdateProduct(colaTitle, ProductUpdate{
		Category:    strPtr("Σνακ"),
		Subcategory: strPtr("Κράκερς"),
	}))

	err = cat.UpdateProduct(colaTitle, ProductUpdate{Title: strPtr(waterTitle)})
	assert.ErrorIs(t, err, ErrDuplicateProduct)

	err = cat.UpdateProduct("missing", ProductUpdate{})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalog_RenameFollowsCarts(t *testing.T) {
	cat, c := seededCatalog(t)
	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, colaTitle), 2))
	_, err := c.CompleteOrder()
	require.NoError(t, err)
	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, colaTitle), 1))

	require.NoError(t, cat.UpdateProduct(colaTitle, ProductUpdate{Title: strPtr("Coca Cola 330ml")}))

	assert.False(t, cat.ProductExists(colaTitle))
	_, ok := c.CartLine("Coca Cola 330ml")
	assert.True(t, ok)
	assert.Equal(t, []string{colaTitle}, c.OrderHistory()[0].Products(), "history keeps the old title")

	_, err = c.CompleteOrder()
	require.NoError(t, err)
	assert.Equal(t, 295, mustProduct(t, cat, "Coca Cola 330ml").Quantity())
}

func TestCatalog_AddCustomerReplaces(t *testing.T) {
	cat := newTestCatalog(t)
	first := sakis()
	second := NewCustomer("Sakis", "other", "Θανάσης", "Γιαρλόπουλος")
	maria := NewCustomer("maria", "m", "Μαρία", "Παπαδοπούλου")

	require.NoError(t, cat.AddCustomer(first))
	require.NoError(t, cat.AddCustomer(maria))
	require.NoError(t, cat.AddCustomer(second))

	assert.Len(t, cat.Customers(), 2)
	got, ok := cat.Customer("Sakis")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Same(t, second, cat.Customers()[0], "replacement keeps the original position")

	_, ok = cat.Customer("nobody")
	assert.False(t, ok)

	assert.ErrorIs(t, cat.AddCustomer(nil), ErrMissingField)
	assert.ErrorIs(t, cat.AddCustomer(NewCustomer("a/b", "x", "y", "z")), ErrInvalidUsername)
}

func TestCatalog_Categories(t *testing.T) {
	cat := newTestCatalog(t)
	assert.Len(t, cat.Categories(), 17)
	assert.Equal(t, []string{"Χαρτί υγείας", "Χαρτοπετσέτες", "Χαρτομάντηλα"}, cat.SubCategories("Χαρτικά"))
	assert.Empty(t, cat.SubCategories("unknown"))
}

func TestCatalog_UnavailableProducts(t *testing.T) {
	cat, _ := seededCatalog(t)
	assert.Empty(t, cat.UnavailableProducts())

	for _, p := range []struct{ title, sub string }{
		{"Ούζο 12 200ml", "Ούζο"},
		{"Μπύρα Fix 500ml", "Μπύρα"},
		{"Κρασί Ρετσίνα 500ml", "Κρασί"},
	} {
		require.NoError(t, cat.AddNewProduct(NewProduct(p.title, "", "Αλκοολούχα ποτά", p.sub, 3, 0, UnitPieces)))
	}
	assert.Len(t, cat.UnavailableProducts(), 3)
}

func TestCatalog_FrequentlyBoughtProducts(t *testing.T) {
	cat, c := seededCatalog(t)
	assert.Nil(t, cat.FrequentlyBoughtProducts(3), "no purchases anywhere")

	maria := NewCustomer("maria", "m", "Μαρία", "Παπαδοπούλου")
	require.NoError(t, cat.AddCustomer(maria))

	buy := func(cust *Customer, titles ...string) {
		for _, title := range titles {
			require.NoError(t, cust.AddProductToCart(mustProduct(t, cat, title), 1))
		}
		_, err := cust.CompleteOrder()
		require.NoError(t, err)
	}
	buy(c, colaTitle, waterTitle)
	buy(c, colaTitle)
	buy(maria, tsipouroTitle, colaTitle)
	buy(maria, waterTitle)

	assert.Equal(t, []string{colaTitle, waterTitle}, cat.FrequentlyBoughtProducts(2))
	assert.Equal(t, []string{colaTitle, waterTitle, tsipouroTitle}, cat.FrequentlyBoughtProducts(10))
	assert.Nil(t, cat.FrequentlyBoughtProducts(0))
	assert.Nil(t, cat.FrequentlyBoughtProducts(-1))
}

func TestCatalog_FrequentlyBoughtTieBreak(t *testing.T) {
	cat, c := seededCatalog(t)
	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, waterTitle), 1))
	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, colaTitle), 1))
	_, err := c.CompleteOrder()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.Equal(t, []string{colaTitle, waterTitle}, cat.FrequentlyBoughtProducts(2))
	}
}

func TestCatalog_Stats(t *testing.T) {
	cat, c := seededCatalog(t, WithTopProducts(1))
	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, colaTitle), 1))
	_, err := c.CompleteOrder()
	require.NoError(t, err)
	require.True(t, mustProduct(t, cat, waterTitle).SetQuantity(0))

	s := cat.Stats()
	assert.Equal(t, 3, s.TotalProducts)
	assert.Equal(t, 1, s.TotalCustomers)
	assert.Equal(t, 1, s.TotalOrders)
	assert.Equal(t, 1, s.OrdersByStatus[StatusPending])
	assert.Equal(t, 1, s.UnavailableProducts)
	assert.Equal(t, []ProductCount{{Title: colaTitle, Count: 1}}, s.ProductOrderCounts)
	assert.Equal(t, []string{colaTitle}, cat.TopProducts())
}

func TestCatalog_SignUp(t *testing.T) {
	cat := newTestCatalog(t)

	c, err := cat.SignUp("Sakis", "sakis123", "Athanasios", "Giarlopoylos")
	require.NoError(t, err)
	assert.Equal(t, "Sakis", c.Username())

	_, err = cat.SignUp("Sakis", "x", "y", "z")
	assert.ErrorIs(t, err, ErrCustomerExists)

	_, err = cat.SignUp("admin1", "x", "y", "z")
	assert.ErrorIs(t, err, ErrCustomerExists)

	_, err = cat.SignUp("maria", "", "Μαρία", "Παπαδοπούλου")
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = cat.SignUp("../maria", "p", "Μαρία", "Παπαδοπούλου")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = cat.SignUp(" bob", "pw", "Bob", "Smith")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = cat.SignUp("bob", "pw ", "Bob", "Smith")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.True(t, IsValidationError(err))

	assert.Len(t, cat.Customers(), 1)
}

func TestCatalog_AddCustomerRejectsPaddedCredentials(t *testing.T) {
	cat := newTestCatalog(t)

	err := cat.AddCustomer(NewCustomer("bob ", "pw", "Bob", "Smith"))
	assert.ErrorIs(t, err, ErrInvalidUsername)

	err = cat.AddCustomer(NewCustomer("bob", " pw", "Bob", "Smith"))
	assert.ErrorIs(t, err, ErrInvalidPassword)

	assert.Empty(t, cat.Customers())
}

func TestCatalog_Authenticate(t *testing.T) {
	cat := newTestCatalog(t, WithAdmins(AdminAccount{Username: "boss", Password: "secret"}))
	_, err := cat.SignUp("Sakis", "sakis123", "Athanasios", "Giarlopoylos")
	require.NoError(t, err)

	s, err := cat.Authenticate("boss", "secret")
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())
	assert.Nil(t, s.Customer)

	s, err = cat.Authenticate("Sakis", "sakis123")
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, s.Role)
	require.NotNil(t, s.Customer)
	assert.Equal(t, "Athanasios", s.Customer.FirstName())

	_, err = cat.Authenticate("Sakis", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = cat.Authenticate("admin1", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "default admins are replaced")
}

func TestCatalog_DefaultAdmins(t *testing.T) {
	cat := newTestCatalog(t)
	for _, a := range []AdminAccount{{"admin1", "password1"}, {"admin2", "password2"}} {
		s, err := cat.Authenticate(a.Username, a.Password)
		require.NoError(t, err)
		assert.True(t, s.IsAdmin())
	}
}

func TestCatalog_PasswordsNeverLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewSimpleLogger(logger.WithOutput(&buf), logger.WithLevel("debug"), logger.WithFormat("json"))
	cat := newTestCatalog(t, WithLogger(log))

	_, err := cat.SignUp("Sakis", "sakis123", "Athanasios", "Giarlopoylos")
	require.NoError(t, err)
	_, _ = cat.Authenticate("Sakis", "sakis123")
	_, _ = cat.Authenticate("Sakis", "hunter2")

	assert.Contains(t, buf.String(), "Customer signed up")
	assert.NotContains(t, buf.String(), "sakis123")
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestCatalog_CheckoutMetrics(t *testing.T) {
	rec := newRecordingTelemetry()
	cat, c := seededCatalog(t, WithTelemetryProvider(rec))
	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, colaTitle), 1))
	require.NoError(t, c.AddProductToCart(mustProduct(t, cat, waterTitle), 1))
	_, err := c.CompleteOrder()
	require.NoError(t, err)

	assert.Equal(t, 1.0, rec.metrics["mymarket.checkouts"])
	assert.Equal(t, 2.0, rec.metrics["mymarket.checkout.lines"])
	assert.Contains(t, rec.spans, "catalog.load")
}
