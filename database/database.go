package database

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// ErrNotFound is returned when a key has no record.
var ErrNotFound = errors.New("record not found")

// DBPutGetDeleter represents a database engine.
type DBPutGetDeleter interface {
	Get(key []byte, ro *opt.ReadOptions) (value []byte, err error)
	Put(key, value []byte, wo *opt.WriteOptions) error
	Close() error
	Write(batch *leveldb.Batch, wo *opt.WriteOptions) error
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
	Delete(key []byte, wo *opt.WriteOptions) error
}

// Database represents the database functionalities.
type Database interface {
	Put(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	WriteBatch(batch *leveldb.Batch) error
	IteratePrefix(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}

// DB is a Database over a leveldb engine.
type DB struct {
	engine DBPutGetDeleter
}

// New creates a new instance of a database.
func New(engine DBPutGetDeleter) (*DB, error) {
	if engine == nil {
		return nil, errors.New("engine is nil")
	}
	return &DB{
		engine: engine,
	}, nil
}

// Open opens or creates a leveldb database in path.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("path is empty")
	}
	engine, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return New(engine)
}

// Put a record into the db.
func (d *DB) Put(key, value []byte) error {
	return d.engine.Put(key, value, nil)
}

// Delete a record from the db.
func (d *DB) Delete(key []byte) error {
	return d.engine.Delete(key, nil)
}

// Get a record based on key.
func (d *DB) Get(key []byte) ([]byte, error) {
	data, err := d.engine.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, string(key))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get value: %w", err)
	}
	return data, nil
}

// WriteBatch applies all the operations of a batch atomically.
func (d *DB) WriteBatch(batch *leveldb.Batch) error {
	if batch == nil {
		return errors.New("batch is nil")
	}
	return d.engine.Write(batch, nil)
}

// IteratePrefix calls fn in key order for every record whose key starts with prefix.
// The slices passed to fn are only valid during the call.
func (d *DB) IteratePrefix(prefix []byte, fn func(key, value []byte) error) error {
	iter := d.engine.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("failed to iterate records: %w", err)
	}
	return nil
}

// Close the database engine.
func (d *DB) Close() error {
	return d.engine.Close()
}
