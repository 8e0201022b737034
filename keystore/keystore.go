package keystore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/filefilego/txsign/common"
	"github.com/filefilego/txsign/crypto"
)

// KeyCreateLister creates and lists keys of a keystore directory.
type KeyCreateLister interface {
	CreateKey(password []byte, opts EncryptOptions) (string, ethcommon.Address, error)
	ListKeys() ([]ethcommon.Address, error)
	FindKeyFile(address ethcommon.Address) (string, error)
}

// Store handles encrypted key files in a directory.
type Store struct {
	keysDir string
}

// New creates a new keystore.
func New(keysDir string) (*Store, error) {
	if keysDir == "" {
		return nil, errors.New("keysDir is empty")
	}

	return &Store{
		keysDir: keysDir,
	}, nil
}

// CreateKey generates a new key, stores it encrypted and returns the file path and address.
func (ks *Store) CreateKey(password []byte, opts EncryptOptions) (string, ethcommon.Address, error) {
	if len(password) == 0 {
		return "", ethcommon.Address{}, errors.New("passphrase is empty")
	}
	key, err := crypto.GenerateSecretKey()
	if err != nil {
		return "", ethcommon.Address{}, fmt.Errorf("failed to create key: %w", err)
	}
	defer key.Zero()

	fileName, err := ks.SaveKey(&key, password, opts)
	if err != nil {
		return "", ethcommon.Address{}, err
	}

	return fileName, key.Address(), nil
}

// SaveKey saves a key given the passphrase.
func (ks *Store) SaveKey(key *crypto.SecretKey, password []byte, opts EncryptOptions) (string, error) {
	keyDataJSON, err := Encrypt(key, password, opts)
	if err != nil {
		return "", fmt.Errorf("failed to marshal key: %w", err)
	}

	fileName, err := common.WriteToFile(keyDataJSON, filepath.Join(ks.keysDir, generateFilename(key.Address())))
	if err != nil {
		return "", fmt.Errorf("failed to write key to file: %w", err)
	}

	return fileName, nil
}

// ListKeys lists the addresses of the key files in the keysDir.
func (ks *Store) ListKeys() ([]ethcommon.Address, error) {
	entries, err := os.ReadDir(ks.keysDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read keys directory content: %w", err)
	}

	addresses := make([]ethcommon.Address, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		addr, ok := addressFromFilename(entry.Name())
		if !ok {
			continue
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}

// FindKeyFile returns the path of the key file which holds the address.
func (ks *Store) FindKeyFile(address ethcommon.Address) (string, error) {
	entries, err := os.ReadDir(ks.keysDir)
	if err != nil {
		return "", fmt.Errorf("failed to read keystore directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		addr, ok := addressFromFilename(entry.Name())
		if ok && addr == address {
			return filepath.Join(ks.keysDir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("key for address %s not found", address.Hex())
}

func addressFromFilename(name string) (ethcommon.Address, bool) {
	if !strings.HasPrefix(name, "UTC--") || !strings.HasSuffix(name, ".json") {
		return ethcommon.Address{}, false
	}
	prts := strings.Split(strings.TrimSuffix(name, ".json"), "--")
	if len(prts) != 3 || !ethcommon.IsHexAddress(prts[2]) {
		return ethcommon.Address{}, false
	}
	return ethcommon.HexToAddress(prts[2]), true
}

func generateFilename(address ethcommon.Address) string {
	ts := time.Now().UTC()
	return fmt.Sprintf("UTC--%s--%s.json", toISO8601(ts), strings.ToLower(strings.TrimPrefix(address.Hex(), "0x")))
}

func toISO8601(t time.Time) string {
	var tz string
	name, offset := t.Zone()
	if name == "UTC" {
		tz = "Z"
	} else {
		tz = fmt.Sprintf("%03d00", offset/3600)
	}
	return fmt.Sprintf("%04d-%02d-%02dT%02d-%02d-%02d.%09d%s", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), tz)
}
