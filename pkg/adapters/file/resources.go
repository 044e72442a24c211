// Package file serves scripts from a directory on the local filesystem.
// Identifiers are slash-separated paths relative to the root directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/tendril/pkg/ports"
	"github.com/fsnotify/fsnotify"
)

// DefaultExtensions are the file extensions List reports as scripts.
var DefaultExtensions = []string{".xml", ".jelly"}

// ErrOutsideRoot is returned for identifiers that escape the root directory.
var ErrOutsideRoot = errors.New("path escapes resource root")

// Resources implements ports.ResourceResolver, ports.ResourceLister and
// ports.Watchable using the local filesystem.
type Resources struct {
	BasePath   string
	Extensions []string
}

// New creates a new Resources rooted at basePath.
// If basePath is empty, it defaults to the working directory.
func New(basePath string) *Resources {
	if basePath == "" {
		basePath = "."
	}
	return &Resources{BasePath: basePath, Extensions: DefaultExtensions}
}

func (r *Resources) path(id, base string) (string, string, error) {
	key := ports.Join(base, id)
	key = strings.TrimPrefix(key, "/")
	if key == ".." || strings.HasPrefix(key, "../") {
		return "", key, fmt.Errorf("%w: %s", ErrOutsideRoot, key)
	}
	return filepath.Join(r.BasePath, filepath.FromSlash(key)), key, nil
}

// Resolve opens the file id, relative to base.
func (r *Resources) Resolve(ctx context.Context, id, base string) (io.ReadCloser, error) {
	p, key, err := r.path(id, base)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ports.ErrResourceNotFound, key)
		}
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	if info, err := f.Stat(); err == nil && info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ports.ErrResourceNotFound, key)
	}
	return f, nil
}

// Put writes a script atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (r *Resources) Put(ctx context.Context, id, content string) error {
	destPath, _, err := r.path(id, "")
	if err != nil {
		return err
	}
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure script directory: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-*"+filepath.Ext(destPath))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.WriteString(content); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing script for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (r *Resources) isScript(name string) bool {
	if strings.HasPrefix(name, "tmp-") {
		return false
	}
	ext := filepath.Ext(name)
	for _, e := range r.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// List returns every script below the root in lexical order.
func (r *Resources) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := filepath.WalkDir(r.BasePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != r.BasePath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !r.isScript(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(r.BasePath, p)
		if err != nil {
			return err
		}
		ids = append(ids, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Watch reports changed scripts until ctx is done.
// Directories that exist when Watch is called are observed; new directories are added as they appear.
func (r *Resources) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	root, err := filepath.Abs(r.BasePath)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", r.BasePath, err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Has(fsnotify.Create) {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						_ = watcher.Add(evt.Name)
						continue
					}
				}
				if !r.isScript(filepath.Base(evt.Name)) {
					continue
				}
				rel, err := filepath.Rel(root, evt.Name)
				if err != nil {
					continue
				}
				select {
				case ch <- path.Clean(filepath.ToSlash(rel)):
				case <-ctx.Done():
					return
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return ch, nil
}
