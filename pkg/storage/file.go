package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/itsneelabh/mymarket/pkg/logger"
)

const (
	productsFile    = "products.txt"
	customersFile   = "customers.txt"
	cartsDir        = "CustomersActiveCarts"
	historyDir      = "CustomersOrderHistory"
	cartFileSuffix  = "_activeCart.txt"
	historyFileExt  = ".txt"
	filePermissions = 0o644
	dirPermissions  = 0o755
)

// FileBackend stores each artifact as one flat text file under a root directory.
//
//	<root>/products.txt
//	<root>/customers.txt
//	<root>/CustomersActiveCarts/<username>_activeCart.txt
//	<root>/CustomersOrderHistory/<username>.txt
type FileBackend struct {
	root   string
	logger logger.Logger
}

// NewFileBackend creates a backend rooted at dir. The directory is created on
// first write.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{
		root:   filepath.Clean(dir),
		logger: &logger.NoOpLogger{},
	}
}

// SetLogger configures the logger for this backend
func (f *FileBackend) SetLogger(l logger.Logger) {
	if l != nil {
		f.logger = l
	}
}

// Name identifies the backend.
func (f *FileBackend) Name() string { return "file" }

// Root returns the data directory.
func (f *FileBackend) Root() string { return f.root }

// Path returns the file that holds key.
func (f *FileBackend) Path(key Key) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	switch key.Kind {
	case KindProducts:
		return filepath.Join(f.root, productsFile), nil
	case KindCustomers:
		return filepath.Join(f.root, customersFile), nil
	case KindCart:
		return filepath.Join(f.root, cartsDir, key.Owner+cartFileSuffix), nil
	default:
		return filepath.Join(f.root, historyDir, key.Owner+historyFileExt), nil
	}
}

// Read returns the file contents or ErrNotFound.
func (f *FileBackend) Read(ctx context.Context, key Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.Path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is built from a validated key
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.logger.Debug("Artifact file absent", map[string]interface{}{
				"key":  key.String(),
				"path": path,
			})
			return nil, fmt.Errorf("read %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Write replaces the file through a temp file and rename, so a failed write
// leaves the previous snapshot intact.
func (f *FileBackend) Write(ctx context.Context, key Key, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.Path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Chmod(tmpName, filePermissions); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	f.logger.Debug("Artifact file written", map[string]interface{}{
		"key":   key.String(),
		"path":  path,
		"bytes": len(data),
	})
	return nil
}

// Append adds data to the end of the file, creating it when absent.
func (f *FileBackend) Append(ctx context.Context, key Key, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.Path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("append %s: %w", key, err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermissions) // #nosec G304
	if err != nil {
		return fmt.Errorf("append %s: %w", key, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("append %s: %w", key, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("append %s: %w", key, err)
	}

	f.logger.Debug("Artifact file appended", map[string]interface{}{
		"key":   key.String(),
		"path":  path,
		"bytes": len(data),
	})
	return nil
}
