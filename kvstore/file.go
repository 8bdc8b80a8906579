/*
Copyright 2026 The statekit authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// FileBackend is a Backend that persists every key as a file below a
// root directory, with slashes in keys mapping to subdirectories.
// Committed values live under root/data. A value is first written to a
// scratch file under root/tmp and then renamed into place, so a crash
// while writing never leaves a half-written value behind, and scratch
// files never shadow a key: any file name, ".tmp" suffixes included,
// is a valid key. Keys are securely joined against the data directory,
// so a key cannot escape it.
type FileBackend struct {
	dataDir string
	tmpDir  string
	mu      sync.Mutex
}

var _ Backend = &FileBackend{}

// NewFileBackend creates a FileBackend rooted at the given directory,
// creating the directory if necessary.
func NewFileBackend(root string) (*FileBackend, error) {
	if root == "" {
		return nil, errors.New("no root directory provided")
	}
	root = filepath.Clean(root)
	b := &FileBackend{
		dataDir: filepath.Join(root, "data"),
		tmpDir:  filepath.Join(root, "tmp"),
	}
	for _, dir := range []string{b.dataDir, b.tmpDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create root directory: %w", err)
		}
	}
	return b, nil
}

func (b *FileBackend) path(key string) (string, error) {
	return securejoin.SecureJoin(b.dataDir, key)
}

func (b *FileBackend) Save(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	path, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	file, err := os.CreateTemp(b.tmpDir, "save-*")
	if err != nil {
		return err
	}
	tmp := file.Name()
	_, err = file.WriteString(value)
	if err == nil {
		// sync the file to disk straight away
		err = file.Sync()
	}
	if errc := file.Close(); err == nil {
		err = errc
	}
	if err != nil {
		errf := os.Remove(tmp)
		return errors.Join(err, errf)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

func (b *FileBackend) Load(_ context.Context, key string) (string, error) {
	path, err := b.path(key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrKeyMissing
		}
		return "", err
	}
	return string(data), nil
}

func (b *FileBackend) LoadPrefix(_ context.Context, prefix string) (map[string]string, error) {
	out := make(map[string]string)
	err := filepath.WalkDir(b.dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == b.dataDir {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.dataDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[key] = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *FileBackend) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	path, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (b *FileBackend) RemovePrefix(_ context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A prefix ending in a slash names a whole directory.
	if trimmed, ok := strings.CutSuffix(prefix, "/"); ok {
		dir, err := b.path(trimmed)
		if err != nil {
			return err
		}
		if dir == b.dataDir {
			return errors.New("refusing to remove the backend root")
		}
		return os.RemoveAll(dir)
	}

	var doomed []string
	err := filepath.WalkDir(b.dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == b.dataDir {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.dataDir, path)
		if err != nil {
			return err
		}
		if strings.HasPrefix(filepath.ToSlash(rel), prefix) {
			doomed = append(doomed, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, path := range doomed {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}
