package core

import "strings"

// Role distinguishes administrators from shoppers.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Session is the outcome of a successful login. Customer is nil for admins.
type Session struct {
	Role     Role
	Username string
	Customer *Customer
}

// IsAdmin reports whether the session belongs to an administrator.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// Authenticate checks the configured admin accounts first, then the customer
// directory.
func (cat *Catalog) Authenticate(username, password string) (Session, error) {
	for _, a := range cat.cfg.Admins {
		if a.Username == username && a.Password == password {
			cat.logger.Info("Admin logged in", map[string]interface{}{"username": username})
			return Session{Role: RoleAdmin, Username: username}, nil
		}
	}
	if c, ok := cat.Customer(username); ok && c.CheckPassword(password) {
		cat.logger.Info("Customer logged in", map[string]interface{}{"username": username})
		return Session{Role: RoleCustomer, Username: username, Customer: c}, nil
	}

	cat.logger.Debug("Login rejected", map[string]interface{}{"username": username})
	return Session{}, opError("Catalog.Authenticate", "customer", username, ErrInvalidCredentials)
}

// SignUp registers a new customer. Every field is required, the username
// must not be taken by a customer or an admin, and neither the username nor
// the password may carry surrounding whitespace.
func (cat *Catalog) SignUp(username, password, firstName, surname string) (*Customer, error) {
	const op = "Catalog.SignUp"
	for _, f := range []string{username, password, firstName, surname} {
		if strings.TrimSpace(f) == "" {
			return nil, opError(op, "customer", username, ErrMissingField)
		}
	}
	if err := validateCredentials(username, password); err != nil {
		return nil, opError(op, "customer", username, err)
	}
	if cat.isAdmin(username) {
		return nil, opError(op, "customer", username, ErrCustomerExists)
	}
	if _, exists := cat.Customer(username); exists {
		return nil, opError(op, "customer", username, ErrCustomerExists)
	}

	c := NewCustomer(username, password, firstName, surname)
	if err := cat.AddCustomer(c); err != nil {
		return nil, err
	}
	cat.logger.Info("Customer signed up", map[string]interface{}{"username": username})
	return c, nil
}

func (cat *Catalog) isAdmin(username string) bool {
	for _, a := range cat.cfg.Admins {
		if a.Username == username {
			return true
		}
	}
	return false
}
