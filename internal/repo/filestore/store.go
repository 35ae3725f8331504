package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/geocoder89/reviewhub/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

const (
	usersFile   = "users.json"
	reviewsFile = "reviews.json"
)

// Store persists the users and reviews collections as whole JSON documents
// inside one data directory.
type Store struct {
	dir  string
	log  *slog.Logger
	prom *observability.Prom
	now  func() time.Time

	// reviewsMu serializes every read-modify-write of reviews.json within the process.
	reviewsMu sync.Mutex
}

func New(dir string, log *slog.Logger, prom *observability.Prom) *Store {
	if log == nil {
		log = slog.Default()
	}

	return &Store{
		dir:  dir,
		log:  log,
		prom: prom,
		now:  time.Now,
	}
}

// observe wraps one file operation in a span and, when configured, the
// store metrics.
func (s *Store) observe(ctx context.Context, op string, fn func() error) error {
	_, span := observability.StartSpan(ctx, "filestore."+op, attribute.String("store.dir", s.dir))

	var err error
	if s.prom != nil {
		err = s.prom.ObserveStore(op, fn)
	} else {
		err = fn()
	}

	observability.EndSpan(span, err)
	return err
}

func (s *Store) UsersPath() string   { return filepath.Join(s.dir, usersFile) }
func (s *Store) ReviewsPath() string { return filepath.Join(s.dir, reviewsFile) }

// EnsureDataDir creates the data directory. Callers treat a failure as fatal.
func (s *Store) EnsureDataDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", s.dir, err)
	}
	return nil
}

// Ping reports whether the data directory is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("data path %s is not a directory", s.dir)
	}
	return nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	return writeFileAtomic(path, data)
}

// writeFileAtomic writes to a temp file next to path and renames it over
// path, so readers see either the old or the new document.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
