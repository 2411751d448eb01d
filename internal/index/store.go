package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fdv-chatbot-platform/internal/documents"
	"fdv-chatbot-platform/internal/logger"
	"fdv-chatbot-platform/models"
)

const indexExt = ".json"

var (
	// ErrVendorNotFound is returned when a rebuild targets an unknown vendor.
	ErrVendorNotFound = documents.ErrVendorNotFound
	// ErrInvalidName rejects vendor or source names that could escape the index dir.
	ErrInvalidName = documents.ErrInvalidName
	// ErrIndexNotFound is returned by Load for a source that has no index.
	ErrIndexNotFound = errors.New("index not found")
)

// FileStore persists one JSON record per source under <root>/<vendor>/.
// Writes go to a temporary file in the same directory and are published by
// rename, so readers see either the old or the new record, never a mix.
type FileStore struct {
	root   string
	onSkip func(vendor, file string, err error)
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// OnCorrupt registers a callback for index files skipped during LoadAll.
func (s *FileStore) OnCorrupt(fn func(vendor, file string, err error)) {
	s.onSkip = fn
}

func (s *FileStore) Root() string { return s.root }

func (s *FileStore) vendorDir(vendor string) (string, error) {
	if err := documents.ValidateName(vendor); err != nil {
		return "", err
	}
	return filepath.Join(s.root, vendor), nil
}

func (s *FileStore) path(vendor, source string) (string, error) {
	dir, err := s.vendorDir(vendor)
	if err != nil {
		return "", err
	}
	if err := documents.ValidateName(source); err != nil {
		return "", err
	}
	return filepath.Join(dir, source+indexExt), nil
}

// Save writes the record atomically, replacing any previous index of the source.
func (s *FileStore) Save(idx models.DocumentIndex) error {
	dst, err := s.path(idx.Vendor, idx.Source)
	if err != nil {
		return err
	}
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	if idx.Chunks == nil {
		idx.Chunks = []string{}
	}

	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encode index %s/%s: %w", idx.Vendor, idx.Source, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write index %s/%s: %w", idx.Vendor, idx.Source, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("publish index %s/%s: %w", idx.Vendor, idx.Source, err)
	}
	return nil
}

// Load reads the index of a single source.
func (s *FileStore) Load(_ context.Context, vendor, source string) (models.DocumentIndex, error) {
	p, err := s.path(vendor, source)
	if err != nil {
		return models.DocumentIndex{}, err
	}
	idx, err := readIndex(p)
	if errors.Is(err, os.ErrNotExist) {
		return models.DocumentIndex{}, fmt.Errorf("%w: %s/%s", ErrIndexNotFound, vendor, source)
	}
	return idx, err
}

// LoadAll returns every readable index of a vendor in filename order.
// Unreadable or malformed files are skipped. A vendor without an index
// directory yields an empty slice.
func (s *FileStore) LoadAll(ctx context.Context, vendor string) ([]models.DocumentIndex, error) {
	dir, err := s.vendorDir(vendor)
	if err != nil {
		return nil, err
	}
	files, err := s.indexFiles(dir)
	if err != nil {
		return nil, err
	}

	out := make([]models.DocumentIndex, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx, err := readIndex(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("Skipping unreadable index", "vendor", vendor, "file", name, "error", err)
			if s.onSkip != nil {
				s.onSkip(vendor, name, err)
			}
			continue
		}
		out = append(out, idx)
	}
	return out, nil
}

// Sources lists the sources that currently have an index.
func (s *FileStore) Sources(vendor string) ([]string, error) {
	dir, err := s.vendorDir(vendor)
	if err != nil {
		return nil, err
	}
	files, err := s.indexFiles(dir)
	if err != nil {
		return nil, err
	}
	sources := make([]string, 0, len(files))
	for _, f := range files {
		sources = append(sources, strings.TrimSuffix(f, indexExt))
	}
	return sources, nil
}

// Remove deletes the index of a source. Missing indexes are not an error.
func (s *FileStore) Remove(vendor, source string) error {
	p, err := s.path(vendor, source)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Version fingerprints the vendor's index directory from its modification
// time and the name, size and modification time of every index file, so a
// publish is seen even where directory timestamps are coarse. A vendor
// without an index directory has the empty version.
func (s *FileStore) Version(vendor string) (string, error) {
	dir, err := s.vendorDir(vendor)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	files, err := s.indexFiles(dir)
	if err != nil {
		return "", err
	}

	h := fnv.New64a()
	fmt.Fprintf(h, "%d", fi.ModTime().UnixNano())
	for _, name := range files {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", err
		}
		fmt.Fprintf(h, "|%s:%d:%d", name, info.Size(), info.ModTime().UnixNano())
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}

// indexFiles returns the published index filenames, sorted.
func (s *FileStore) indexFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, indexExt) {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

func readIndex(path string) (models.DocumentIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.DocumentIndex{}, err
	}
	var idx models.DocumentIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return models.DocumentIndex{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if idx.Source == "" {
		return models.DocumentIndex{}, fmt.Errorf("decode %s: missing source", filepath.Base(path))
	}
	return idx, nil
}
