package journal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/filefilego/txsign/database"
	"github.com/filefilego/txsign/transaction"
	"github.com/syndtr/goleveldb/leveldb"
)

var (
	txPrefix  = []byte("tx:")
	seqPrefix = []byte("seq:")
)

// Record is a submitted transaction.
type Record struct {
	Hash        ethcommon.Hash     `json:"hash"`
	From        ethcommon.Address  `json:"from"`
	To          *ethcommon.Address `json:"to"`
	Nonce       hexutil.Uint64     `json:"nonce"`
	GasPrice    *hexutil.Big       `json:"gas_price"`
	GasLimit    hexutil.Uint64     `json:"gas_limit"`
	Value       *hexutil.Big       `json:"value"`
	ChainID     *hexutil.Big       `json:"chain_id,omitempty"`
	Raw         hexutil.Bytes      `json:"raw"`
	SubmittedAt int64              `json:"submitted_at"`
}

// NewRecord builds the journal record of a signed transaction.
func NewRecord(tx *transaction.SignedTx, from ethcommon.Address, submittedAt time.Time) (Record, error) {
	if tx == nil {
		return Record{}, errors.New("transaction is nil")
	}
	raw, err := tx.Encode()
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode transaction: %w", err)
	}
	hash, err := tx.Hash()
	if err != nil {
		return Record{}, fmt.Errorf("failed to get transaction hash: %w", err)
	}

	rec := Record{
		Hash:        hash,
		From:        from,
		To:          tx.To,
		Nonce:       hexutil.Uint64(tx.Nonce),
		GasLimit:    hexutil.Uint64(tx.GasLimit),
		Raw:         raw,
		SubmittedAt: submittedAt.Unix(),
	}
	if tx.GasPrice != nil {
		rec.GasPrice = (*hexutil.Big)(tx.GasPrice)
	}
	if tx.Value != nil {
		rec.Value = (*hexutil.Big)(tx.Value)
	}
	if tx.ChainID != nil {
		rec.ChainID = (*hexutil.Big)(tx.ChainID)
	}
	return rec, nil
}

// Journal stores submitted transactions.
type Journal struct {
	db database.Database
}

// New creates a journal over a database.
func New(db database.Database) (*Journal, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	return &Journal{db: db}, nil
}

// Add stores a record. Adding a hash that is already stored does nothing.
func (j *Journal) Add(rec Record) error {
	if rec.Hash == (ethcommon.Hash{}) {
		return errors.New("record hash is empty")
	}
	key := txKey(rec.Hash)
	_, err := j.db.Get(key)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	batch := new(leveldb.Batch)
	batch.Put(key, data)
	batch.Put(seqKey(rec.SubmittedAt, rec.Hash), rec.Hash.Bytes())
	if err := j.db.WriteBatch(batch); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Get returns the record of a transaction hash.
func (j *Journal) Get(hash ethcommon.Hash) (Record, error) {
	data, err := j.db.Get(txKey(hash))
	if err != nil {
		return Record{}, err
	}
	rec := Record{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}

// List returns all records, oldest first.
func (j *Journal) List() ([]Record, error) {
	hashes := make([]ethcommon.Hash, 0)
	err := j.db.IteratePrefix(seqPrefix, func(_, value []byte) error {
		hashes = append(hashes, ethcommon.BytesToHash(value))
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(hashes))
	for _, h := range hashes {
		rec, err := j.Get(h)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func txKey(hash ethcommon.Hash) []byte {
	return append(append([]byte{}, txPrefix...), hash.Bytes()...)
}

// seqKey orders records by submission time, then hash.
func seqKey(submittedAt int64, hash ethcommon.Hash) []byte {
	key := make([]byte, 0, len(seqPrefix)+8+ethcommon.HashLength)
	key = append(key, seqPrefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(submittedAt))
	return append(key, hash.Bytes()...)
}
