package codec

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Measurement units as they appear on disk.
const (
	UnitKilograms = "kg"
	UnitPieces    = "τεμάχια"
)

const currencySymbol = "€"

// ProductRecord is the on-disk shape of a catalog product or cart line.
type ProductRecord struct {
	Title       string
	Description string
	Category    string
	Subcategory string
	Price       float64
	Quantity    int
	Unit        string
}

var productLayout = []field{
	{label: "Title", aliases: []string{"Τίτλος"}},
	{label: "Description", aliases: []string{"Περιγραφή"}},
	{label: "Category", aliases: []string{"Κατηγορία"}},
	{label: "Subcategory", aliases: []string{"Υποκατηγορία"}},
	{label: "Price", aliases: []string{"Τιμή"}},
	{label: "Quantity", aliases: []string{"Ποσότητα"}},
}

// ReadProducts parses the catalog file.
func ReadProducts(r io.Reader) ([]ProductRecord, error) {
	return readProducts(r, "products")
}

// ReadCart parses a customer's active cart snapshot.
func ReadCart(r io.Reader) ([]ProductRecord, error) {
	return readProducts(r, "cart")
}

// WriteProducts writes the catalog file, one blank line after every record.
func WriteProducts(w io.Writer, products []ProductRecord) error {
	return writeProducts(w, "products", products, true)
}

// WriteCart writes a cart snapshot with records packed back to back.
func WriteCart(w io.Writer, lines []ProductRecord) error {
	return writeProducts(w, "cart", lines, false)
}

func readProducts(r io.Reader, artifact string) ([]ProductRecord, error) {
	s := newRecordScanner(r, layout{artifact: artifact, fields: productLayout})

	var out []ProductRecord
	for {
		vals, err := s.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		price, err := ParsePrice(vals[4].text)
		if err != nil {
			return nil, s.corrupt(vals[4].line, "Price", err.Error())
		}
		qty, unit, err := parseQuantity(vals[5].text)
		if err != nil {
			return nil, s.corrupt(vals[5].line, "Quantity", err.Error())
		}

		out = append(out, ProductRecord{
			Title:       vals[0].text,
			Description: vals[1].text,
			Category:    vals[2].text,
			Subcategory: vals[3].text,
			Price:       price,
			Quantity:    qty,
			Unit:        unit,
		})
	}
}

func writeProducts(w io.Writer, artifact string, products []ProductRecord, separated bool) error {
	lw := newLineWriter(w, artifact)
	for _, p := range products {
		lw.field("Title", p.Title)
		lw.field("Description", p.Description)
		lw.field("Category", p.Category)
		lw.field("Subcategory", p.Subcategory)
		lw.field("Price", FormatPrice(p.Price))
		lw.field("Quantity", FormatQuantity(p.Quantity, p.Unit))
		if separated {
			lw.blank()
		}
	}
	return lw.flush()
}

// FormatPrice renders a price with two decimals, a decimal comma and the
// currency suffix, e.g. 6,50€.
func FormatPrice(price float64) string {
	s := strconv.FormatFloat(math.Round(price*100)/100, 'f', 2, 64)
	return strings.Replace(s, ".", ",", 1) + currencySymbol
}

// ParsePrice accepts either a decimal comma or point, with or without the
// currency suffix.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), currencySymbol))
	s = strings.Replace(s, ",", ".", 1)
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("price %q out of range", s)
	}
	return price, nil
}

// FormatQuantity joins "kg" directly to the number and separates any other
// unit by one space: 5kg, 97 τεμάχια.
func FormatQuantity(qty int, unit string) string {
	if unit == UnitKilograms {
		return strconv.Itoa(qty) + UnitKilograms
	}
	if unit == "" {
		unit = UnitPieces
	}
	return strconv.Itoa(qty) + " " + unit
}

func parseQuantity(s string) (int, string, error) {
	unit := UnitPieces
	var num string
	if strings.Contains(s, UnitKilograms) {
		unit = UnitKilograms
		num = strings.Replace(s, UnitKilograms, "", 1)
	} else {
		num = strings.Replace(s, UnitPieces, "", 1)
	}
	qty, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0, "", fmt.Errorf("invalid quantity %q", s)
	}
	if qty < 0 {
		return 0, "", fmt.Errorf("negative quantity %q", s)
	}
	return qty, unit, nil
}
