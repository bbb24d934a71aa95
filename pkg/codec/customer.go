package codec

import (
	"errors"
	"io"
)

// CustomerRecord is one entry of the customer directory.
type CustomerRecord struct {
	Username  string
	Password  string
	FirstName string
	Surname   string
}

var customerLayout = []field{
	{label: "username"},
	{label: "password"},
	{label: "firstName"},
	{label: "surname"},
}

// ReadCustomers parses the customer directory.
func ReadCustomers(r io.Reader) ([]CustomerRecord, error) {
	s := newRecordScanner(r, layout{artifact: "customers", fields: customerLayout})

	var out []CustomerRecord
	for {
		vals, err := s.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if vals[0].text == "" {
			return nil, s.corrupt(vals[0].line, "username", "empty username")
		}
		out = append(out, CustomerRecord{
			Username:  vals[0].text,
			Password:  vals[1].text,
			FirstName: vals[2].text,
			Surname:   vals[3].text,
		})
	}
}

// WriteCustomers writes the customer directory with no record separator.
func WriteCustomers(w io.Writer, customers []CustomerRecord) error {
	lw := newLineWriter(w, "customers")
	for _, c := range customers {
		lw.field("username", c.Username)
		lw.field("password", c.Password)
		lw.field("firstName", c.FirstName)
		lw.field("surname", c.Surname)
	}
	return lw.flush()
}
