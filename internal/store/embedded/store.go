// Package embedded implements store.Store on BadgerDB.
package embedded

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/imyousuf/codegauge/internal/store"
)

// Key prefixes for the BadgerDB key scheme.
const (
	prefixRecord  = "rec:"
	prefixIdxName = "idx:name:"
)

// Store implements store.Store using BadgerDB. Records are JSON values under
// rec:<id>; idx:name:<fileName> holds the owning record ID and enforces
// file name uniqueness.
type Store struct {
	db *badger.DB
}

// NewStore opens (or creates) a BadgerDB-backed record store at dbPath.
func NewStore(dbPath string) (*Store, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // suppress badger logs
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &Store{db: db}, nil
}

// recordKey returns the primary key for a record.
func recordKey(id string) []byte { return []byte(prefixRecord + id) }

// nameKey returns the unique secondary index key for a file name.
func nameKey(fileName string) []byte { return []byte(prefixIdxName + fileName) }

func (s *Store) Create(_ context.Context, rec *store.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(nameKey(rec.FileName)); err == nil {
			return fmt.Errorf("create %s: %w", rec.FileName, store.ErrDuplicateFileName)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if _, err := txn.Get(recordKey(rec.ID)); err == nil {
			return fmt.Errorf("create: record %s already exists", rec.ID)
		}
		if err := txn.Set(recordKey(rec.ID), data); err != nil {
			return err
		}
		return txn.Set(nameKey(rec.FileName), []byte(rec.ID))
	})
}

func (s *Store) Get(_ context.Context, id string) (*store.Record, error) {
	var rec *store.Record
	err := s.db.View(func(txn *badger.Txn) error {
		r, err := getRecordInTxn(txn, id)
		rec = r
		return err
	})
	return rec, err
}

func (s *Store) GetByFileName(_ context.Context, fileName string) (*store.Record, error) {
	var rec *store.Record
	err := s.db.View(func(txn *badger.Txn) error {
		id, err := lookupName(txn, fileName)
		if err != nil {
			return err
		}
		r, err := getRecordInTxn(txn, id)
		rec = r
		return err
	})
	return rec, err
}

func (s *Store) List(_ context.Context) ([]*store.Record, error) {
	var recs []*store.Record
	err := s.db.View(func(txn *badger.Txn) error {
		return scanRecords(txn, func(rec *store.Record) {
			recs = append(recs, rec)
		})
	})
	if err != nil {
		return nil, err
	}
	store.SortRecords(recs)
	return recs, nil
}

func (s *Store) Update(_ context.Context, rec *store.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		// Read existing record to clean up the old name index if it changed.
		old, err := getRecordInTxn(txn, rec.ID)
		if err != nil {
			return err
		}
		if old.FileName != rec.FileName {
			owner, err := lookupName(txn, rec.FileName)
			switch {
			case err == nil && owner != rec.ID:
				return fmt.Errorf("rename to %s: %w", rec.FileName, store.ErrDuplicateFileName)
			case err != nil && !errors.Is(err, store.ErrNotFound):
				return err
			}
			if err := txn.Delete(nameKey(old.FileName)); err != nil {
				return err
			}
		}
		if err := txn.Set(recordKey(rec.ID), data); err != nil {
			return err
		}
		return txn.Set(nameKey(rec.FileName), []byte(rec.ID))
	})
}

func (s *Store) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		rec, err := getRecordInTxn(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(nameKey(rec.FileName)); err != nil {
			return err
		}
		return txn.Delete(recordKey(id))
	})
}

func (s *Store) Stats(_ context.Context) (*store.Stats, error) {
	stats := &store.Stats{ByStatus: make(map[store.Status]int64)}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanRecords(txn, func(rec *store.Record) {
			stats.Total++
			stats.ByStatus[rec.Status]++
		})
	})
	return stats, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func getRecordInTxn(txn *badger.Txn, id string) (*store.Record, error) {
	item, err := txn.Get(recordKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("get %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	var rec store.Record
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal record %s: %w", id, err)
	}
	return &rec, nil
}

func lookupName(txn *badger.Txn, fileName string) (string, error) {
	item, err := txn.Get(nameKey(fileName))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", fmt.Errorf("lookup %s: %w", fileName, store.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// scanRecords iterates every record, skipping values that fail to decode.
func scanRecords(txn *badger.Txn, fn func(*store.Record)) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	prefix := []byte(prefixRecord)
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Seek(prefix); it.Valid(); it.Next() {
		var rec store.Record
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
		if err != nil {
			continue
		}
		fn(&rec)
	}
	return nil
}
