// Package storage persists collections and environments as one JSON file
// per record under the striko storage directory.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const recordExt = ".json"

// recordStore is a directory of <id>.json files holding values of type T.
type recordStore[T any] struct {
	dir    string
	kind   string
	schema *gojsonschema.Schema
	id     func(T) string
	name   func(T) string
	logger *slog.Logger
}

func (s *recordStore[T]) path(id string) string {
	return filepath.Join(s.dir, id+recordExt)
}

func checkID(id string) error {
	if id == "" {
		return ErrMissingID
	}
	// A leading dot is reserved for temp files, which list skips.
	if strings.HasPrefix(id, ".") || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// save overwrites the record file. The write goes to a temp file in the same
// directory and is renamed into place so readers never see a partial file.
func (s *recordStore[T]) save(ctx context.Context, rec T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := s.id(rec)
	if err := checkID(id); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.kind, err)
	}
	if err := validate(s.schema, data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+id+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", s.kind, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", s.kind, err)
	}
	if err := os.Rename(tmpName, s.path(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to save %s: %w", s.kind, err)
	}

	s.logger.Debug("record saved", "kind", s.kind, "id", id)
	return nil
}

// get reads one record. A missing file is reported as found=false with a nil
// error; anything unusable in an existing file is a *CorruptRecordError.
func (s *recordStore[T]) get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if err := checkID(id); err != nil {
		return zero, false, err
	}

	path := s.path(id)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, &CorruptRecordError{Path: path, Err: err}
	}

	rec, err := s.decode(data)
	if err != nil {
		return zero, false, &CorruptRecordError{Path: path, Err: err}
	}
	return rec, true, nil
}

func (s *recordStore[T]) decode(data []byte) (T, error) {
	var rec T
	if err := validate(s.schema, data); err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode %s: %w", s.kind, err)
	}
	return rec, nil
}

// list returns every readable record sorted by name then id. Entries that
// fail to load are logged and skipped. An unreadable directory yields an
// empty list.
func (s *recordStore[T]) list(ctx context.Context) ([]T, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read storage directory", "kind", s.kind, "dir", s.dir, "error", err)
		}
		return []T{}, nil
	}

	out := make([]T, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, recordExt) || strings.HasPrefix(name, ".") {
			continue
		}

		rec, found, err := s.get(ctx, strings.TrimSuffix(name, recordExt))
		if err != nil {
			s.logger.Warn("skipping unreadable record", "kind", s.kind, "file", filepath.Join(s.dir, name), "error", err)
			continue
		}
		if found {
			out = append(out, rec)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ni, nj := strings.ToLower(s.name(out[i])), strings.ToLower(s.name(out[j]))
		if ni != nj {
			return ni < nj
		}
		return s.id(out[i]) < s.id(out[j])
	})
	return out, nil
}

// CollectionsDir returns the collections directory under baseDir.
func CollectionsDir(baseDir string) string {
	return filepath.Join(baseDir, "collections")
}

// EnvironmentsDir returns the environments directory under baseDir.
func EnvironmentsDir(baseDir string) string {
	return filepath.Join(baseDir, "environments")
}
