package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"bundler/internal/source"
)

// Disk stores payloads as msgpack files under dir. Safe for concurrent use.
type Disk struct {
	mu  sync.RWMutex
	dir string
}

// OpenDisk uses dir, creating it if needed.
func OpenDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir}, nil
}

// OpenUserDisk opens the cache under $XDG_CACHE_HOME/app or ~/.cache/app.
func OpenUserDisk(app string) (*Disk, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDisk(filepath.Join(base, app))
}

// Dir returns the cache directory.
func (c *Disk) Dir() string { return c.dir }

func (c *Disk) pathFor(key source.Digest) string {
	hexKey := key.String()
	return filepath.Join(c.dir, "mods", hexKey[:2], hexKey+".mp")
}

// Put writes p atomically.
func (c *Disk) Put(key source.Digest, p *Payload) (err error) {
	if c == nil || p == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(p); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Get reads the payload stored under key. A payload written by another
// schema version is reported as a miss.
func (c *Disk) Get(key source.Digest) (*Payload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var p Payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return nil, false, err
	}
	if !p.valid() {
		return nil, false, nil
	}
	return &p, true, nil
}

// DropAll removes every stored payload.
func (c *Disk) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "mods"))
}
