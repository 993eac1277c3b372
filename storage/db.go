package storage

import (
	"errors"
	"sort"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// Database is a generic interface for a key-value store.
// This allows the contract host to use any database backend (in-memory or persistent).
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	Close() // A way to gracefully shut down the database connection.
}

// batchWriter is implemented by backends able to apply a set of writes
// atomically.
type batchWriter interface {
	writeBatch(puts map[string][]byte, deletes []string) error
}

// --- In-Memory DB (for testing) ---

type MemDB struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemDB() *MemDB {
	return &MemDB{
		data: make(map[string][]byte),
	}
}

func (db *MemDB) Put(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (db *MemDB) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	value, ok := db.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (db *MemDB) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.data, string(key))
	return nil
}

func (db *MemDB) Has(key []byte) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.data[string(key)]
	return ok, nil
}

// Len reports the number of stored keys.
func (db *MemDB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.data)
}

func (db *MemDB) writeBatch(puts map[string][]byte, deletes []string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, key := range deletes {
		delete(db.data, key)
	}
	for key, value := range puts {
		db.data[key] = value
	}
	return nil
}

// Close satisfies the Database interface for MemDB.
func (db *MemDB) Close() {
	// Nothing to close for an in-memory database.
}

// --- Persistent DB ---

// LevelDB is a persistent key-value store using LevelDB.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB creates or opens a LevelDB database at the specified path.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

// Put inserts or updates a key-value pair.
func (ldb *LevelDB) Put(key []byte, value []byte) error {
	return ldb.db.Put(key, value, nil)
}

// Get retrieves a value for a given key.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	value, err := ldb.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, nil)
}

func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, nil)
}

func (ldb *LevelDB) writeBatch(puts map[string][]byte, deletes []string) error {
	batch := new(leveldb.Batch)
	for _, key := range deletes {
		batch.Delete([]byte(key))
	}
	for _, key := range sortedKeys(puts) {
		batch.Put([]byte(key), puts[key])
	}
	return ldb.db.Write(batch, nil)
}

// Close closes the database connection.
func (ldb *LevelDB) Close() {
	ldb.db.Close()
}

// --- Prefixed view ---

// PrefixDB scopes every key of the parent database under a fixed prefix.
type PrefixDB struct {
	parent Database
	prefix []byte
}

func NewPrefixDB(parent Database, prefix []byte) *PrefixDB {
	return &PrefixDB{parent: parent, prefix: append([]byte(nil), prefix...)}
}

func (p *PrefixDB) key(key []byte) []byte {
	out := make([]byte, len(p.prefix)+len(key))
	copy(out, p.prefix)
	copy(out[len(p.prefix):], key)
	return out
}

func (p *PrefixDB) Put(key []byte, value []byte) error { return p.parent.Put(p.key(key), value) }
func (p *PrefixDB) Get(key []byte) ([]byte, error)     { return p.parent.Get(p.key(key)) }
func (p *PrefixDB) Delete(key []byte) error            { return p.parent.Delete(p.key(key)) }
func (p *PrefixDB) Has(key []byte) (bool, error)       { return p.parent.Has(p.key(key)) }

// Close is a no-op; the parent owns the connection.
func (p *PrefixDB) Close() {}

// --- Write-buffering cache ---

// CacheDB buffers writes on top of a parent database. Reads fall through to
// the parent for keys the cache has not touched. Nothing reaches the parent
// until Write is called; dropping the cache discards every buffered change.
type CacheDB struct {
	mu      sync.Mutex
	parent  Database
	puts    map[string][]byte
	deletes map[string]struct{}
}

func NewCacheDB(parent Database) *CacheDB {
	return &CacheDB{
		parent:  parent,
		puts:    make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

func (c *CacheDB) Put(key []byte, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := string(key)
	delete(c.deletes, k)
	c.puts[k] = append([]byte(nil), value...)
	return nil
}

func (c *CacheDB) Get(key []byte) ([]byte, error) {
	c.mu.Lock()
	k := string(key)
	if value, ok := c.puts[k]; ok {
		c.mu.Unlock()
		return append([]byte(nil), value...), nil
	}
	if _, ok := c.deletes[k]; ok {
		c.mu.Unlock()
		return nil, ErrNotFound
	}
	c.mu.Unlock()
	return c.parent.Get(key)
}

func (c *CacheDB) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := string(key)
	delete(c.puts, k)
	c.deletes[k] = struct{}{}
	return nil
}

func (c *CacheDB) Has(key []byte) (bool, error) {
	c.mu.Lock()
	k := string(key)
	if _, ok := c.puts[k]; ok {
		c.mu.Unlock()
		return true, nil
	}
	if _, ok := c.deletes[k]; ok {
		c.mu.Unlock()
		return false, nil
	}
	c.mu.Unlock()
	return c.parent.Has(key)
}

// Dirty reports the number of buffered writes and deletes.
func (c *CacheDB) Dirty() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.puts) + len(c.deletes)
}

// Write flushes the buffered changes into the parent and resets the cache.
// Backends supporting batches receive the whole change set atomically.
func (c *CacheDB) Write() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	deletes := make([]string, 0, len(c.deletes))
	for key := range c.deletes {
		deletes = append(deletes, key)
	}
	sort.Strings(deletes)
	if bw, ok := c.parent.(batchWriter); ok {
		if err := bw.writeBatch(c.puts, deletes); err != nil {
			return err
		}
	} else {
		for _, key := range deletes {
			if err := c.parent.Delete([]byte(key)); err != nil {
				return err
			}
		}
		for _, key := range sortedKeys(c.puts) {
			if err := c.parent.Put([]byte(key), c.puts[key]); err != nil {
				return err
			}
		}
	}
	c.puts = make(map[string][]byte)
	c.deletes = make(map[string]struct{})
	return nil
}

// Discard drops all buffered changes.
func (c *CacheDB) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts = make(map[string][]byte)
	c.deletes = make(map[string]struct{})
}

// Close is a no-op; the parent owns the connection.
func (c *CacheDB) Close() {}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
