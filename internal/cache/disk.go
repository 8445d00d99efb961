package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"estcheck/internal/diag"
)

// Current schema version - increment when Payload format or diagnostic
// codes change.
const SchemaVersion uint16 = 1

// Disk хранит результаты проверки файлов на диске по Digest.
// Thread-safe for concurrent access.
type Disk struct {
	mu  sync.RWMutex
	dir string
}

// Payload is one cached validation result.
type Payload struct {
	Schema      uint16
	Path        string
	ContentHash uint64
	Mode        string
	Diagnostics []diag.Diagnostic
	CheckedAt   time.Time
}

// Open initializes a disk cache at the standard location for app
// ($XDG_CACHE_HOME/app or ~/.cache/app).
func Open(app string) (*Disk, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt initializes a disk cache rooted at dir.
func OpenAt(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Disk) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Disk) pathFor(key Digest) string {
	hexKey := key.String()
	// подкаталог по первым двум символам, чтобы не плодить огромные каталоги
	return filepath.Join(c.dir, "results", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload. The file is replaced atomically.
func (c *Disk) Put(key Digest, payload *Payload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = SchemaVersion
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err = enc.Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. Entries written by another schema version are
// reported as misses.
func (c *Disk) Get(key Digest, out *Payload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return false, err
	}
	if payload.Schema != SchemaVersion {
		return false, nil
	}
	*out = payload
	return true, nil
}

// DropAll invalidates the cache.
func (c *Disk) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	results := filepath.Join(c.dir, "results")
	old := results + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(results, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
