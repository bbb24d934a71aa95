package core

import (
	"context"
	"sync"
)

var (
	sharedMu      sync.Mutex
	sharedCatalog *Catalog
)

// Shared returns the process-wide catalog, opening and loading it with opts on
// the first call. Later calls ignore opts.
//
// Code that can take a *Catalog explicitly should; Shared exists for entry
// points that need one instance for the whole process.
func Shared(ctx context.Context, opts ...Option) (*Catalog, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedCatalog != nil {
		return sharedCatalog, nil
	}
	cat, err := Open(ctx, opts...)
	if err != nil {
		return nil, err
	}
	sharedCatalog = cat
	return cat, nil
}

// ResetShared closes and drops the process-wide catalog without persisting
// it. The next Shared call builds a fresh one.
func ResetShared(ctx context.Context) error {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedCatalog == nil {
		return nil
	}
	err := sharedCatalog.Close(ctx)
	sharedCatalog = nil
	return err
}
