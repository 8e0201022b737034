package keystore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// web3 secret storage test vectors, password "testpassword".
const (
	pbkdf2TestVector = `{
  "crypto" : {
    "cipher" : "aes-128-ctr",
    "cipherparams" : { "iv" : "6087dab2f9fdbbfaddc31a909735c1e6" },
    "ciphertext" : "5318b4d5bcd28de64ee5559e671353e16f075ecae9f99c7a79a38af5f869aa46",
    "kdf" : "pbkdf2",
    "kdfparams" : {
      "c" : 262144,
      "dklen" : 32,
      "prf" : "hmac-sha256",
      "salt" : "ae3cd4e7013836a3df6bd7241b12db061dbe2c6785853cce422d148a624ce0bd"
    },
    "mac" : "517ead924a9d0dc3124507e3393d175ce3ff7c1e96529c6c555ce9e51205e9b2"
  },
  "id" : "3198bc9c-6672-5ab3-d995-4942343ae5b6",
  "version" : 3
}`

	scryptTestVector = `{
  "Crypto" : {
    "cipher" : "aes-128-ctr",
    "cipherparams" : { "iv" : "83dbcc02d8ccb40e466191a123791e0e" },
    "ciphertext" : "d172bf743a674da9cdad04534d56926ef8358534d458fffccd4e6ad2fbde479c",
    "kdf" : "scrypt",
    "kdfparams" : {
      "dklen" : 32,
      "n" : 262144,
      "p" : 8,
      "r" : 1,
      "salt" : "ab0c7876052600dd703518d6fc3fe8984592145b591fc8fb5c6d43190334ba19"
    },
    "mac" : "2103ac29920d71da29f15d75b4a16dbe95cfd7ff8faea1056c33131d846e3097"
  },
  "id" : "3198bc9c-6672-5ab3-d995-4942343ae5b6",
  "version" : 3
}`

	testVectorPassword = "testpassword"
	testVectorKey      = "7a28b5ba57c53603b0b07b56bba752f7784bf506fa95edc395f5cf6c7514fe9d"
)

func TestDecodeTestVectors(t *testing.T) {
	w, err := Decode([]byte(pbkdf2TestVector))
	require.NoError(t, err)
	assert.Equal(t, KDFPBKDF2, w.KDF)
	assert.Equal(t, 262144, w.KDFParams.Iterations)
	assert.Equal(t, "hmac-sha256", w.KDFParams.PRF)
	assert.Equal(t, 32, w.KDFParams.DKLen)
	assert.Len(t, w.KDFParams.Salt, 32)
	assert.Len(t, w.CipherIV, 16)
	assert.Len(t, w.CipherText, 32)
	assert.Equal(t, "3198bc9c-6672-5ab3-d995-4942343ae5b6", w.ID.String())
	assert.Nil(t, w.Address)

	// capitalised crypto key
	w, err = Decode([]byte(scryptTestVector))
	require.NoError(t, err)
	assert.Equal(t, KDFScrypt, w.KDF)
	assert.Equal(t, 262144, w.KDFParams.N)
	assert.Equal(t, 1, w.KDFParams.R)
	assert.Equal(t, 8, w.KDFParams.P)
}

func TestDecode(t *testing.T) {
	t.Parallel()
	const (
		iv   = `"cipherparams":{"iv":"6087dab2f9fdbbfaddc31a909735c1e6"}`
		ct   = `"ciphertext":"5318b4d5bcd28de64ee5559e671353e16f075ecae9f99c7a79a38af5f869aa46"`
		mac  = `"mac":"517ead924a9d0dc3124507e3393d175ce3ff7c1e96529c6c555ce9e51205e9b2"`
		kdfp = `"kdf":"pbkdf2","kdfparams":{"c":10,"dklen":32,"prf":"hmac-sha256","salt":"ae3c"}`
	)
	cases := map[string]struct {
		keyData string
		expErr  string
		isErr   error
	}{
		"empty key": {
			expErr: "malformed keystore record: failed to unmarshal key data: unexpected end of JSON input",
			isErr:  ErrMalformed,
		},
		"missing version": {
			keyData: `{}`,
			expErr:  "malformed keystore record: version is missing",
			isErr:   ErrMalformed,
		},
		"mistyped version": {
			keyData: `{"version":"3"}`,
			isErr:   ErrMalformed,
		},
		"invalid version": {
			keyData: `{"version":1}`,
			expErr:  "malformed keystore record: version 1 is not supported",
			isErr:   ErrMalformed,
		},
		"missing crypto": {
			keyData: `{"version":3}`,
			expErr:  "malformed keystore record: crypto section is missing",
			isErr:   ErrMalformed,
		},
		"missing cipher": {
			keyData: `{"version":3,"crypto":{}}`,
			expErr:  "malformed keystore record: cipher is missing",
			isErr:   ErrMalformed,
		},
		"unsupported cipher": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-256-gcm"}}`,
			expErr:  `unsupported keystore algorithm: cipher "aes-256-gcm"`,
			isErr:   ErrUnsupportedAlgorithm,
		},
		"invalid uuid": {
			keyData: `{"version":3,"id":"252841d8-390cb32d3","crypto":{"cipher":"aes-128-ctr"}}`,
			expErr:  "malformed keystore record: failed to parse the uuid: invalid UUID length: 18",
			isErr:   ErrMalformed,
		},
		"invalid address": {
			keyData: `{"version":3,"address":"1234","crypto":{"cipher":"aes-128-ctr"}}`,
			expErr:  "malformed keystore record: address is not a valid hex address",
			isErr:   ErrMalformed,
		},
		"missing dklen": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"pbkdf2","kdfparams":{}}}`,
			expErr:  "malformed keystore record: kdfparams dklen is missing",
			isErr:   ErrMalformed,
		},
		"wrong dklen": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"pbkdf2","kdfparams":{"dklen":64}}}`,
			expErr:  "malformed keystore record: kdfparams dklen must be 32 but got 64",
			isErr:   ErrMalformed,
		},
		"missing kdf": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdfparams":{"dklen":32}}}`,
			expErr:  "malformed keystore record: kdf is missing",
			isErr:   ErrMalformed,
		},
		"unsupported kdf": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"argon2id","kdfparams":{"dklen":32}}}`,
			expErr:  `unsupported keystore algorithm: kdf "argon2id"`,
			isErr:   ErrUnsupportedAlgorithm,
		},
		"unsupported prf": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"pbkdf2","kdfparams":{"dklen":32,"c":10,"prf":"hmac-sha512"}}}`,
			expErr:  `unsupported keystore algorithm: pbkdf2 prf "hmac-sha512"`,
			isErr:   ErrUnsupportedAlgorithm,
		},
		"pbkdf2 without iterations": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"pbkdf2","kdfparams":{"dklen":32,"prf":"hmac-sha256"}}}`,
			expErr:  "malformed keystore record: kdfparams c must be a positive integer",
			isErr:   ErrMalformed,
		},
		"scrypt n not a power of two": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"scrypt","kdfparams":{"dklen":32,"n":1000,"r":8,"p":1}}}`,
			expErr:  "malformed keystore record: kdfparams n must be a power of 2 greater than 1",
			isErr:   ErrMalformed,
		},
		"scrypt without r": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"scrypt","kdfparams":{"dklen":32,"n":1024,"p":1}}}`,
			expErr:  "malformed keystore record: kdfparams r must be a positive integer",
			isErr:   ErrMalformed,
		},
		"scrypt without p": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"scrypt","kdfparams":{"dklen":32,"n":1024,"r":8}}}`,
			expErr:  "malformed keystore record: kdfparams p must be a positive integer",
			isErr:   ErrMalformed,
		},
		"scrypt memory above the limit": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"scrypt","kdfparams":{"dklen":32,"n":1073741824,"r":8,"p":1,"salt":"ae3c"}}}`,
			expErr:  "malformed keystore record: kdfparams n=1073741824 r=8 p=1 exceed the 1073741824 byte scrypt memory limit",
			isErr:   ErrMalformed,
		},
		"scrypt r above the limit": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"scrypt","kdfparams":{"dklen":32,"n":2,"r":9223372036854775807,"p":1,"salt":"ae3c"}}}`,
			expErr:  "malformed keystore record: kdfparams n=2 r=9223372036854775807 p=1 exceed the 1073741824 byte scrypt memory limit",
			isErr:   ErrMalformed,
		},
		"scrypt p above the limit": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"scrypt","kdfparams":{"dklen":32,"n":1024,"r":8,"p":1048576,"salt":"ae3c"}}}`,
			expErr:  "malformed keystore record: kdfparams n=1024 r=8 p=1048576 exceed the 1073741824 byte scrypt memory limit",
			isErr:   ErrMalformed,
		},
		"pbkdf2 iterations above the limit": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"pbkdf2","kdfparams":{"c":10000001,"dklen":32,"prf":"hmac-sha256","salt":"ae3c"}}}`,
			expErr:  "malformed keystore record: kdfparams c=10000001 exceeds the limit of 10000000 iterations",
			isErr:   ErrMalformed,
		},
		"missing salt": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"pbkdf2","kdfparams":{"c":10,"dklen":32,"prf":"hmac-sha256"}}}`,
			expErr:  "malformed keystore record: salt is missing",
			isErr:   ErrMalformed,
		},
		"invalid salt": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr","kdf":"pbkdf2","kdfparams":{"c":10,"dklen":32,"prf":"hmac-sha256","salt":"0"}}}`,
			expErr:  "malformed keystore record: failed to decode salt: encoding/hex: odd length hex string",
			isErr:   ErrMalformed,
		},
		"missing iv": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr",` + kdfp + `}}`,
			expErr:  "malformed keystore record: cipherparams iv is missing",
			isErr:   ErrMalformed,
		},
		"short iv": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr",` + kdfp + `,"cipherparams":{"iv":"1232"}}}`,
			expErr:  "malformed keystore record: cipherparams iv must be 16 bytes but got 2",
			isErr:   ErrMalformed,
		},
		"invalid cipherText": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr",` + kdfp + `,` + iv + `,"ciphertext":"0"}}`,
			expErr:  "malformed keystore record: failed to decode ciphertext: encoding/hex: odd length hex string",
			isErr:   ErrMalformed,
		},
		"short cipherText": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr",` + kdfp + `,` + iv + `,"ciphertext":"1232"}}`,
			expErr:  "malformed keystore record: ciphertext must be 32 bytes but got 2",
			isErr:   ErrMalformed,
		},
		"missing mac": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr",` + kdfp + `,` + iv + `,` + ct + `}}`,
			expErr:  "malformed keystore record: mac is missing",
			isErr:   ErrMalformed,
		},
		"short mac": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr",` + kdfp + `,` + iv + `,` + ct + `,"mac":"1232"}}`,
			expErr:  "malformed keystore record: mac must be 32 bytes but got 2",
			isErr:   ErrMalformed,
		},
		"prefixed hex and address": {
			keyData: `{"version":3,"address":"96233bcc823159c3c08eb76a24e98f20ce7d48de","crypto":{"cipher":"aes-128-ctr",` + kdfp + `,` + iv + `,` + ct + `,"mac":"0x517ead924a9d0dc3124507e3393d175ce3ff7c1e96529c6c555ce9e51205e9b2"}}`,
		},
		"success": {
			keyData: `{"version":3,"crypto":{"cipher":"aes-128-ctr",` + kdfp + `,` + iv + `,` + ct + `,` + mac + `}}`,
		},
	}

	for name, tt := range cases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			w, err := Decode([]byte(tt.keyData))
			if tt.isErr != nil {
				assert.Nil(t, w)
				assert.True(t, errors.Is(err, tt.isErr), "unexpected error: %v", err)
				if tt.expErr != "" {
					assert.EqualError(t, err, tt.expErr)
				}
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, w)
			}
		})
	}
}

func TestDecodeAddress(t *testing.T) {
	data := `{"version":3,"address":"96233bcc823159c3c08eb76a24e98f20ce7d48de","crypto":{"cipher":"aes-128-ctr","kdf":"pbkdf2","kdfparams":{"c":10,"dklen":32,"prf":"hmac-sha256","salt":"ae3c"},"cipherparams":{"iv":"6087dab2f9fdbbfaddc31a909735c1e6"},"ciphertext":"5318b4d5bcd28de64ee5559e671353e16f075ecae9f99c7a79a38af5f869aa46","mac":"517ead924a9d0dc3124507e3393d175ce3ff7c1e96529c6c555ce9e51205e9b2"}}`
	w, err := Decode([]byte(data))
	require.NoError(t, err)
	require.NotNil(t, w.Address)
	assert.Equal(t, "0x96233bcC823159C3c08EB76a24E98F20CE7d48DE", w.Address.Hex())
}
