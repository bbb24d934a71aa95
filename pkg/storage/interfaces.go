package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Read when an artifact has never been written.
var ErrNotFound = errors.New("artifact not found")

// Kind names one family of persisted artifacts.
type Kind string

const (
	KindProducts  Kind = "products"
	KindCustomers Kind = "customers"
	KindCart      Kind = "cart"
	KindHistory   Kind = "history"
)

// Key addresses one artifact. Owner is the username for per-customer kinds
// and empty for the catalog-wide ones.
type Key struct {
	Kind  Kind
	Owner string
}

// ProductsKey addresses the product catalog.
func ProductsKey() Key { return Key{Kind: KindProducts} }

// CustomersKey addresses the customer directory.
func CustomersKey() Key { return Key{Kind: KindCustomers} }

// CartKey addresses the active cart of username.
func CartKey(username string) Key { return Key{Kind: KindCart, Owner: username} }

// HistoryKey addresses the order history of username.
func HistoryKey(username string) Key { return Key{Kind: KindHistory, Owner: username} }

// String renders the key as kind or kind/owner.
func (k Key) String() string {
	if k.Owner == "" {
		return string(k.Kind)
	}
	return fmt.Sprintf("%s/%s", k.Kind, k.Owner)
}

// Validate rejects unknown kinds and owners that could escape a namespace.
func (k Key) Validate() error {
	switch k.Kind {
	case KindProducts, KindCustomers:
		if k.Owner != "" {
			return fmt.Errorf("storage key %s: %s artifacts have no owner", k, k.Kind)
		}
	case KindCart, KindHistory:
		if k.Owner == "" {
			return fmt.Errorf("storage key %s: owner is required", k)
		}
		if !validOwner(k.Owner) {
			return fmt.Errorf("storage key %s: invalid owner %q", k, k.Owner)
		}
	default:
		return fmt.Errorf("storage key %s: unknown kind %q", k, k.Kind)
	}
	return nil
}

// Backend persists whole artifacts as opaque text blobs.
type Backend interface {
	// Read returns the artifact, or ErrNotFound when it does not exist.
	Read(ctx context.Context, key Key) ([]byte, error)
	// Write replaces the artifact.
	Write(ctx context.Context, key Key, data []byte) error
	// Append adds data to the end of the artifact, creating it when absent.
	Append(ctx context.Context, key Key, data []byte) error
	// Name identifies the backend in logs and spans.
	Name() string
}

func validOwner(owner string) bool {
	if owner == "." || owner == ".." {
		return false
	}
	for _, r := range owner {
		switch r {
		case '/', '\\', ':', 0:
			return false
		}
	}
	return true
}
