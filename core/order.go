package core

import (
	"time"

	"github.com/itsneelabh/mymarket/pkg/codec"
)

// OrderStatus is pending until the order has been written to the customer's
// history, completed afterwards.
type OrderStatus string

const (
	StatusPending   OrderStatus = OrderStatus(codec.StatusPending)
	StatusCompleted OrderStatus = OrderStatus(codec.StatusCompleted)
)

// OrderDateLayout formats order timestamps as DD/MM/YYYY HH:MM:SS.
const OrderDateLayout = codec.DateLayout

// Order is an immutable purchase record. Products are kept by title only, so
// history survives later catalog edits.
type Order struct {
	status    OrderStatus
	date      string
	products  []string
	totalCost string

	// persisted is set once the order is present in the history artifact.
	persisted bool
}

// NewOrder creates an order. products is copied.
func NewOrder(status OrderStatus, date string, products []string, totalCost string) Order {
	return Order{
		status:    status,
		date:      date,
		products:  append([]string(nil), products...),
		totalCost: totalCost,
	}
}

func (o Order) Status() OrderStatus { return o.status }
func (o Order) Date() string        { return o.date }
func (o Order) TotalCost() string   { return o.totalCost }

// Products returns a copy of the purchased titles.
func (o Order) Products() []string {
	return append([]string(nil), o.products...)
}

// Time parses the order date in local time.
func (o Order) Time() (time.Time, error) {
	return time.ParseInLocation(OrderDateLayout, o.date, time.Local)
}

// IsPending reports whether the order has not been completed yet.
func (o Order) IsPending() bool { return o.status == StatusPending }

// Completed returns a copy of o with status completed.
func (o Order) Completed() Order {
	cp := NewOrder(StatusCompleted, o.date, o.products, o.totalCost)
	cp.persisted = o.persisted
	return cp
}

func (o Order) record() codec.OrderRecord {
	return codec.OrderRecord{
		Status:    codec.Status(o.status),
		Date:      o.date,
		Products:  o.Products(),
		TotalCost: o.totalCost,
	}
}

func orderFromRecord(r codec.OrderRecord) Order {
	o := NewOrder(OrderStatus(r.Status), r.Date, r.Products, r.TotalCost)
	o.persisted = true
	return o
}

// FormatCost renders an amount the way order totals are recorded, e.g. 13,00€.
func FormatCost(amount float64) string {
	return codec.FormatPrice(amount)
}
