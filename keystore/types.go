package keystore

type cipherparamsJSON struct {
	IV string `json:"iv"`
}

// kdfParamsJSON holds the union of the pbkdf2 and scrypt parameters.
// Pointers tell a missing field apart from a zero value.
type kdfParamsJSON struct {
	C     *int   `json:"c,omitempty"`
	PRF   string `json:"prf,omitempty"`
	N     *int   `json:"n,omitempty"`
	R     *int   `json:"r,omitempty"`
	P     *int   `json:"p,omitempty"`
	DKLen *int   `json:"dklen"`
	Salt  string `json:"salt"`
}

type cryptoJSON struct {
	Cipher       string           `json:"cipher"`
	CipherText   string           `json:"ciphertext"`
	CipherParams cipherparamsJSON `json:"cipherparams"`
	KDF          string           `json:"kdf"`
	KDFParams    kdfParamsJSON    `json:"kdfparams"`
	MAC          string           `json:"mac"`
}

// encryptedKeyJSON is a version 3 web3 secret storage record.
// encoding/json matches keys case-insensitively, so the "Crypto" spelling
// written by some older wallets decodes into Crypto as well.
type encryptedKeyJSON struct {
	Address string      `json:"address,omitempty"`
	Crypto  *cryptoJSON `json:"crypto"`
	ID      string      `json:"id,omitempty"`
	Version *int        `json:"version"`
}

type plaintextKeyTOML struct {
	Secret  string `toml:"secret"`
	Address string `toml:"address,omitempty"`
}
