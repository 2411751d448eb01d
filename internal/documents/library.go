package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fdv-chatbot-platform/internal/logger"
	"fdv-chatbot-platform/models"
)

var (
	// ErrVendorNotFound means the vendor has no document collection.
	ErrVendorNotFound = errors.New("vendor not found")
	// ErrInvalidName rejects vendor or file names that are not a single path element.
	ErrInvalidName = errors.New("invalid name")
	// ErrFileTooLarge rejects documents above the configured size limit.
	ErrFileTooLarge = errors.New("document too large")
)

// Library is the on-disk document collection: one directory per vendor,
// one file per source document.
type Library struct {
	root        string
	maxFileSize int64
}

func NewLibrary(root string, maxFileSize int64) *Library {
	return &Library{root: root, maxFileSize: maxFileSize}
}

// Root returns the directory holding all vendor collections.
func (l *Library) Root() string { return l.root }

// ValidateName accepts a single, non-hidden path element.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") ||
		filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (l *Library) vendorDir(vendor string) (string, error) {
	if err := ValidateName(vendor); err != nil {
		return "", err
	}
	return filepath.Join(l.root, vendor), nil
}

// Vendors lists the vendor collections, sorted.
func (l *Library) Vendors() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	vendors := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && ValidateName(e.Name()) == nil {
			vendors = append(vendors, e.Name())
		}
	}
	sort.Strings(vendors)
	return vendors, nil
}

// List returns the supported document filenames of a vendor, sorted.
func (l *Library) List(vendor string) ([]string, error) {
	dir, err := l.vendorDir(vendor)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrVendorNotFound, vendor)
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && ValidateName(e.Name()) == nil && Supported(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Describe returns file metadata for every supported document of a vendor.
func (l *Library) Describe(vendor string) ([]models.DocumentInfo, error) {
	names, err := l.List(vendor)
	if err != nil {
		return nil, err
	}
	infos := make([]models.DocumentInfo, 0, len(names))
	for _, name := range names {
		fi, err := os.Stat(filepath.Join(l.root, vendor, name))
		if err != nil {
			continue
		}
		infos = append(infos, models.DocumentInfo{
			Vendor:     vendor,
			Name:       name,
			Size:       fi.Size(),
			ModifiedAt: fi.ModTime(),
		})
	}
	return infos, nil
}

// ReadText extracts the text of one document.
func (l *Library) ReadText(ctx context.Context, vendor, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	dir, err := l.vendorDir(vendor)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if l.maxFileSize > 0 && fi.Size() > l.maxFileSize {
		return "", fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, name, fi.Size())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Extract(ctx, name, content)
}

// Documents extracts every document of a vendor. Any failure aborts the
// whole call so a rebuild never works from a partial collection.
func (l *Library) Documents(ctx context.Context, vendor string) ([]models.RawDocument, error) {
	names, err := l.List(vendor)
	if err != nil {
		return nil, err
	}
	docs := make([]models.RawDocument, 0, len(names))
	for _, name := range names {
		text, err := l.ReadText(ctx, vendor, name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, models.RawDocument{Vendor: vendor, Name: name, Text: text})
	}
	logger.Debug("Extracted vendor documents", "vendor", vendor, "documents", len(docs))
	return docs, nil
}

// Save stores an uploaded document, creating the vendor collection when
// needed. The file is written under a temporary name and renamed into place.
func (l *Library) Save(vendor, name string, r io.Reader) (models.DocumentInfo, error) {
	if err := ValidateName(name); err != nil {
		return models.DocumentInfo{}, err
	}
	if !Supported(name) {
		return models.DocumentInfo{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
	dir, err := l.vendorDir(vendor)
	if err != nil {
		return models.DocumentInfo{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return models.DocumentInfo{}, fmt.Errorf("create vendor dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return models.DocumentInfo{}, err
	}
	defer os.Remove(tmp.Name())

	src := r
	if l.maxFileSize > 0 {
		src = io.LimitReader(r, l.maxFileSize+1)
	}
	n, err := io.Copy(tmp, src)
	if err != nil {
		tmp.Close()
		return models.DocumentInfo{}, fmt.Errorf("write upload: %w", err)
	}
	if l.maxFileSize > 0 && n > l.maxFileSize {
		tmp.Close()
		return models.DocumentInfo{}, fmt.Errorf("%w: %s", ErrFileTooLarge, name)
	}
	if err := tmp.Close(); err != nil {
		return models.DocumentInfo{}, err
	}

	dst := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return models.DocumentInfo{}, fmt.Errorf("publish upload: %w", err)
	}
	fi, err := os.Stat(dst)
	if err != nil {
		return models.DocumentInfo{}, err
	}
	logger.Info("Document stored", "vendor", vendor, "name", name, "size", n)
	return models.DocumentInfo{Vendor: vendor, Name: name, Size: fi.Size(), ModifiedAt: fi.ModTime()}, nil
}
