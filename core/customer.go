package core

import (
	"math"
	"strings"
	"time"

	"github.com/itsneelabh/mymarket/pkg/codec"
)

// inventory is the part of the catalog a customer needs: stock lookups by
// title and a checkout notification. Catalog implements it.
type inventory interface {
	Product(title string) (*Product, bool)
	orderCompleted(c *Customer, o Order)
}

// cartLine owns its product copy. sourceTitle is the catalog key the copy was
// taken from and is only used to look the catalog record up again.
type cartLine struct {
	product     *Product
	sourceTitle string
}

func (l cartLine) cost() float64 {
	return l.product.price * float64(l.product.quantity)
}

// Customer holds an identity, an active cart and an order history.
// The cart total is maintained incrementally by every cart mutation.
type Customer struct {
	username  string
	password  string
	firstName string
	surname   string

	cart    []cartLine
	total   float64
	history []Order

	inv inventory
	now func() time.Time
}

// NewCustomer creates a customer with an empty cart and history. Names are
// trimmed. The customer can shop once it has been added to a Catalog.
func NewCustomer(username, password, firstName, surname string) *Customer {
	return &Customer{
		username:  username,
		password:  password,
		firstName: strings.TrimSpace(firstName),
		surname:   strings.TrimSpace(surname),
		now:       time.Now,
	}
}

func (c *Customer) Username() string  { return c.username }
func (c *Customer) FirstName() string { return c.firstName }
func (c *Customer) Surname() string   { return c.surname }

// CheckPassword compares against the stored password.
func (c *Customer) CheckPassword(password string) bool {
	return c.password == password
}

// Cart returns copies of the cart lines in insertion order.
func (c *Customer) Cart() []*Product {
	out := make([]*Product, len(c.cart))
	for i, l := range c.cart {
		out[i] = l.product.Copy()
	}
	return out
}

// CartLen returns the number of distinct products in the cart.
func (c *Customer) CartLen() int { return len(c.cart) }

// CartLine returns a copy of the line for title.
func (c *Customer) CartLine(title string) (*Product, bool) {
	i := c.lineIndex(title)
	if i < 0 {
		return nil, false
	}
	return c.cart[i].product.Copy(), true
}

// OrderHistory returns the orders oldest first.
func (c *Customer) OrderHistory() []Order {
	return append([]Order(nil), c.history...)
}

// TotalCartCost returns the running total rounded to two decimals.
func (c *Customer) TotalCartCost() float64 {
	return math.Round(c.total*100) / 100
}

// AddProductToCart puts a copy of the catalog record for p's title into the
// cart with the requested quantity.
func (c *Customer) AddProductToCart(p *Product, quantity int) error {
	const op = "Customer.AddProductToCart"
	if p == nil {
		return opError(op, "cart", "", ErrProductNotFound)
	}
	title := p.Title()
	if c.lineIndex(title) >= 0 {
		return opError(op, "cart", title, ErrDuplicateCartLine)
	}
	if quantity <= 0 {
		return opError(op, "cart", title, ErrInvalidQuantity)
	}
	stock, err := c.stock(op, title)
	if err != nil {
		return err
	}
	if quantity > stock.Quantity() {
		return opError(op, "cart", title, ErrInsufficientStock)
	}

	line := cartLine{product: stock.Copy(), sourceTitle: title}
	line.product.quantity = quantity
	c.cart = append(c.cart, line)
	c.total += line.cost()
	return nil
}

// RemoveProductFromCart drops the line for p's title. It reports false when
// there is no such line.
func (c *Customer) RemoveProductFromCart(p *Product) bool {
	if p == nil {
		return false
	}
	i := c.lineIndex(p.Title())
	if i < 0 {
		return false
	}
	c.removeLine(i)
	return true
}

// AdjustProductQuantityInCart sets the quantity of an existing line. Zero
// removes the line.
func (c *Customer) AdjustProductQuantityInCart(p *Product, quantity int) error {
	const op = "Customer.AdjustProductQuantityInCart"
	if p == nil {
		return opError(op, "cart", "", ErrProductNotFound)
	}
	title := p.Title()
	if quantity < 0 {
		return opError(op, "cart", title, ErrInvalidQuantity)
	}
	i := c.lineIndex(title)
	if i < 0 {
		return opError(op, "cart", title, ErrNotInCart)
	}
	stock, err := c.stock(op, c.cart[i].sourceTitle)
	if err != nil {
		return err
	}
	if quantity > stock.Quantity() {
		return opError(op, "cart", title, ErrInsufficientStock)
	}

	line := c.cart[i]
	switch {
	case quantity == 0:
		c.removeLine(i)
		line.product.quantity = 0
	case quantity != line.product.quantity:
		c.total += line.product.price * float64(quantity-line.product.quantity)
		line.product.quantity = quantity
	}
	return nil
}

// ClearCart empties the cart without touching stock.
func (c *Customer) ClearCart() {
	c.cart = nil
	c.total = 0
}

// CompleteOrder turns the cart into a pending order, appends it to the
// history and takes the purchased quantities out of catalog stock.
//
// Every line is checked against current stock first; on any shortage nothing
// is changed.
func (c *Customer) CompleteOrder() (Order, error) {
	const op = "Customer.CompleteOrder"
	if len(c.cart) == 0 {
		return Order{}, opError(op, "cart", c.username, ErrEmptyCart)
	}

	stocks := make([]*Product, len(c.cart))
	for i, l := range c.cart {
		stock, err := c.stock(op, l.sourceTitle)
		if err != nil {
			return Order{}, err
		}
		if l.product.quantity > stock.Quantity() {
			return Order{}, opError(op, "cart", l.sourceTitle, ErrInsufficientStock)
		}
		stocks[i] = stock
	}

	titles := make([]string, len(c.cart))
	for i, l := range c.cart {
		titles[i] = l.product.title
	}
	order := NewOrder(StatusPending, c.now().Format(OrderDateLayout), titles, FormatCost(c.TotalCartCost()))
	c.history = append(c.history, order)

	for i, l := range c.cart {
		stocks[i].quantity -= l.product.quantity
	}
	c.ClearCart()

	c.inv.orderCompleted(c, order)
	return order, nil
}

// MaxProductsBought returns the largest number of titles in any one order.
func (c *Customer) MaxProductsBought() int {
	maxCount := 0
	for _, o := range c.history {
		if n := len(o.products); n > maxCount {
			maxCount = n
		}
	}
	return maxCount
}

func (c *Customer) stock(op, title string) (*Product, error) {
	if c.inv == nil {
		return nil, opError(op, "cart", c.username, ErrDetachedCustomer)
	}
	stock, ok := c.inv.Product(title)
	if !ok {
		return nil, opError(op, "cart", title, ErrProductNotFound)
	}
	return stock, nil
}

func (c *Customer) lineIndex(title string) int {
	for i, l := range c.cart {
		if l.product.title == title {
			return i
		}
	}
	return -1
}

func (c *Customer) removeLine(i int) {
	c.total -= c.cart[i].cost()
	c.cart = append(c.cart[:i], c.cart[i+1:]...)
	if len(c.cart) == 0 {
		c.total = 0
	}
}

// renameLine follows a catalog rename. Order history is left untouched.
func (c *Customer) renameLine(oldTitle, newTitle string) {
	for i := range c.cart {
		if c.cart[i].sourceTitle == oldTitle {
			c.cart[i].sourceTitle = newTitle
			c.cart[i].product.title = newTitle
		}
	}
}

func (c *Customer) record() codec.CustomerRecord {
	return codec.CustomerRecord{
		Username:  c.username,
		Password:  c.password,
		FirstName: c.firstName,
		Surname:   c.surname,
	}
}

func (c *Customer) cartRecords() []codec.ProductRecord {
	out := make([]codec.ProductRecord, len(c.cart))
	for i, l := range c.cart {
		out[i] = l.product.record()
	}
	return out
}

// restoreState installs a persisted cart and history. The total is derived
// from the restored lines.
func (c *Customer) restoreState(cart []*Product, history []Order) {
	c.cart = make([]cartLine, 0, len(cart))
	c.total = 0
	for _, p := range cart {
		line := cartLine{product: p, sourceTitle: p.title}
		c.cart = append(c.cart, line)
		c.total += line.cost()
	}
	c.history = history
}
