package core

import (
	"strings"

	"github.com/itsneelabh/mymarket/pkg/codec"
)

// MeasurementUnit is how a product's stock is counted.
type MeasurementUnit string

const (
	UnitKilograms MeasurementUnit = codec.UnitKilograms
	UnitPieces    MeasurementUnit = codec.UnitPieces
)

// Valid reports whether u is a supported unit.
func (u MeasurementUnit) Valid() bool {
	return u == UnitKilograms || u == UnitPieces
}

// Product is one catalog item. The title is its natural key.
//
// The constructor stores whatever it is given; the setters reject invalid
// values and report it through their boolean result.
type Product struct {
	title       string
	description string
	category    string
	subcategory string
	price       float64
	quantity    int
	unit        MeasurementUnit
}

// NewProduct creates a product.
func NewProduct(title, description, category, subcategory string, price float64, quantity int, unit MeasurementUnit) *Product {
	return &Product{
		title:       title,
		description: strings.TrimSpace(description),
		category:    category,
		subcategory: subcategory,
		price:       price,
		quantity:    quantity,
		unit:        unit,
	}
}

// Copy returns an independent product with the same fields.
func (p *Product) Copy() *Product {
	cp := *p
	return &cp
}

func (p *Product) Title() string         { return p.title }
func (p *Product) Description() string   { return p.description }
func (p *Product) Category() string      { return p.category }
func (p *Product) Subcategory() string   { return p.subcategory }
func (p *Product) Price() float64        { return p.price }
func (p *Product) Quantity() int         { return p.quantity }
func (p *Product) Unit() MeasurementUnit { return p.unit }

// Available reports whether any stock is left.
func (p *Product) Available() bool { return p.quantity > 0 }

func (p *Product) SetDescription(d string) { p.description = strings.TrimSpace(d) }
func (p *Product) SetCategory(c string)    { p.category = c }
func (p *Product) SetSubcategory(s string) { p.subcategory = s }

// setTitle is unexported: renames go through Catalog.UpdateProduct so that
// title uniqueness and cart back-references stay consistent.
func (p *Product) setTitle(t string) { p.title = t }

// SetPrice rejects negative prices.
func (p *Product) SetPrice(price float64) bool {
	if price < 0 {
		return false
	}
	p.price = price
	return true
}

// SetQuantity rejects negative quantities.
func (p *Product) SetQuantity(q int) bool {
	if q < 0 {
		return false
	}
	p.quantity = q
	return true
}

// SetMeasurementUnit accepts only kg and τεμάχια.
func (p *Product) SetMeasurementUnit(u MeasurementUnit) bool {
	if !u.Valid() {
		return false
	}
	p.unit = u
	return true
}

func (p *Product) record() codec.ProductRecord {
	return codec.ProductRecord{
		Title:       p.title,
		Description: p.description,
		Category:    p.category,
		Subcategory: p.subcategory,
		Price:       p.price,
		Quantity:    p.quantity,
		Unit:        string(p.unit),
	}
}

func productFromRecord(r codec.ProductRecord) *Product {
	return NewProduct(r.Title, r.Description, r.Category, r.Subcategory, r.Price, r.Quantity, MeasurementUnit(r.Unit))
}
