// Package cache persists compiled units and once-latch results across
// process restarts, the way a runtime persistence layer
// persists instances: a flat SQLite table keyed by content hash,
// opened once and driven through database/sql.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"
	"go.uber.org/zap"

	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/wire"
)

// Hash is the content address of a unit: the SHA-256 of its wire bytes
// (pre-compression), so two units that serialize identically share a
// cache row regardless of which compile produced them.
type Hash [32]byte

func (h Hash) String() string { return fmt.Sprintf("%x", h[:]) }

// HashOf computes the content address of unit's wire encoding.
func HashOf(unit iseq.ISeq) (Hash, []byte, error) {
	data, err := wire.Marshal(unit)
	if err != nil {
		return Hash{}, nil, err
	}
	return sha256.Sum256(data), data, nil
}

// Store is a SQLite-backed content-addressed iseq cache plus a durable
// once-latch table.
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open creates (or reopens) the cache database at path.
func Open(path string, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening %s: %w", path, err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: setting busy timeout: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS units (
		hash TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		blob BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating units table: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS once_latches (
		cache_id TEXT PRIMARY KEY,
		blob BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating once_latches table: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating zstd decoder: %w", err)
	}

	return &Store{db: db, log: log, enc: enc, dec: dec}, nil
}

// Close releases the database handle and the zstd decoder's goroutines.
func (s *Store) Close() error {
	s.dec.Close()
	return s.db.Close()
}

// Put compresses and stores unit under its own content hash, returning
// the hash so the caller can reference it later (e.g. embed it in a
// manifest, or pass it back to Get).
func (s *Store) Put(unit iseq.ISeq) (Hash, error) {
	h, data, err := HashOf(unit)
	if err != nil {
		return Hash{}, err
	}
	blob := s.enc.EncodeAll(data, nil)
	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO units (hash, id, name, blob) VALUES (?, ?, ?, ?)`,
		h.String(), id, unit.Name(), blob,
	)
	if err != nil {
		return Hash{}, fmt.Errorf("cache: storing %s: %w", h, err)
	}
	s.log.Infow("cache: stored unit", "hash", h.String(), "name", unit.Name(), "bytes", len(blob))
	return h, nil
}

// Get loads and decompresses the unit stored under hash, or
// ErrNotFound if no row matches.
func (s *Store) Get(h Hash) (*iseq.Unit, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT blob FROM units WHERE hash = ?`, h.String()).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: loading %s: %w", h, err)
	}
	data, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		s.log.Warnw("cache: corrupt blob", "hash", h.String(), "error", err)
		return nil, fmt.Errorf("cache: decompressing %s: %w", h, err)
	}
	unit, err := wire.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("cache: decoding %s: %w", h, err)
	}
	return unit, nil
}

// Has reports whether hash is already stored, without paying for a
// decompress.
func (s *Store) Has(h Hash) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM units WHERE hash = ?`, h.String()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("cache: checking %s: %w", h, err)
	}
	return count > 0, nil
}

// PutOnceResult durably records that the once latch identified by
// cacheID has fired, with val as its serialized result, so the record
// outlives the process. pkg/vm's once latch is in-process only and
// does not read or write this table.
func (s *Store) PutOnceResult(cacheID string, val []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO once_latches (cache_id, blob) VALUES (?, ?)`,
		cacheID, s.enc.EncodeAll(val, nil),
	)
	if err != nil {
		return fmt.Errorf("cache: storing once latch %s: %w", cacheID, err)
	}
	return nil
}

// GetOnceResult returns the durable result for cacheID, or ErrNotFound
// if the latch has never fired in any process sharing this database.
func (s *Store) GetOnceResult(cacheID string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT blob FROM once_latches WHERE cache_id = ?`, cacheID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: loading once latch %s: %w", cacheID, err)
	}
	return s.dec.DecodeAll(blob, nil)
}

// ErrNotFound is returned by Get/GetOnceResult for a missing key.
var ErrNotFound = fmt.Errorf("cache: not found")
