package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Status is an order status as written on disk.
type Status string

const (
	StatusPending   Status = "Εκκρεμής"
	StatusCompleted Status = "Ολοκληρωμένη"
)

// DateLayout is the order timestamp format, DD/MM/YYYY HH:MM:SS.
const DateLayout = "02/01/2006 15:04:05"

const titleTerminator = "|"

// OrderRecord is one entry of a customer's order history.
type OrderRecord struct {
	Status    Status
	Date      string
	Products  []string
	TotalCost string
}

var orderLayout = []field{
	{label: "Status"},
	{label: "Date"},
	{label: "boughtProducts"},
	{label: "totalOrderCost"},
}

// ParseStatus accepts the on-disk labels and their English names.
func ParseStatus(s string) (Status, error) {
	switch {
	case s == string(StatusPending) || strings.EqualFold(s, "pending"):
		return StatusPending, nil
	case s == string(StatusCompleted) || strings.EqualFold(s, "completed"):
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// ReadOrders parses an order history file, oldest order first.
func ReadOrders(r io.Reader) ([]OrderRecord, error) {
	s := newRecordScanner(r, layout{artifact: "history", fields: orderLayout})

	var out []OrderRecord
	for {
		vals, err := s.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		status, err := ParseStatus(vals[0].text)
		if err != nil {
			return nil, s.corrupt(vals[0].line, "Status", err.Error())
		}
		if _, err := time.Parse(DateLayout, vals[1].text); err != nil {
			return nil, s.corrupt(vals[1].line, "Date", fmt.Sprintf("invalid timestamp %q", vals[1].text))
		}
		if _, err := ParsePrice(vals[3].text); err != nil {
			return nil, s.corrupt(vals[3].line, "totalOrderCost", err.Error())
		}

		out = append(out, OrderRecord{
			Status:    status,
			Date:      vals[1].text,
			Products:  splitTitles(vals[2].text),
			TotalCost: vals[3].text,
		})
	}
}

// WriteOrders writes orders back to back with no separator.
func WriteOrders(w io.Writer, orders []OrderRecord) error {
	lw := newLineWriter(w, "history")
	for _, o := range orders {
		var titles strings.Builder
		for _, t := range o.Products {
			if strings.Contains(t, titleTerminator) {
				return fmt.Errorf("write history: product title %q contains %q", t, titleTerminator)
			}
			titles.WriteString(t)
			titles.WriteString(titleTerminator)
		}
		lw.field("Status", string(o.Status))
		lw.field("Date", o.Date)
		lw.field("boughtProducts", titles.String())
		lw.field("totalOrderCost", o.TotalCost)
	}
	return lw.flush()
}

// splitTitles cuts at each pipe in turn. Text after the last pipe is not a
// title.
func splitTitles(s string) []string {
	titles := []string{}
	for {
		before, after, found := strings.Cut(s, titleTerminator)
		if !found {
			return titles
		}
		titles = append(titles, strings.TrimSpace(before))
		s = after
	}
}
