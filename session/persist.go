package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

// FilePersister writes the session to a single AES-GCM encrypted file.
// Tokens are credentials, so they never touch disk in the clear.
type FilePersister struct {
	path string
	key  []byte
}

// NewFilePersister builds a persister for the given path. masterKeyHex
// must decode to 32 bytes; the AEAD key is derived from it so the raw
// master key is never used directly.
func NewFilePersister(path, masterKeyHex string) (*FilePersister, error) {
	raw, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, errors.Wrap(err, "[NewFilePersister] master key hex decode")
	}
	if len(raw) != 32 {
		return nil, errors.New("[NewFilePersister] master key must be 32 bytes (hex 64 chars)")
	}

	h := hkdf.New(sha256.New, raw, nil, []byte("session-at-rest"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, errors.Wrap(err, "[NewFilePersister] key derivation")
	}

	return &FilePersister{path: path, key: key}, nil
}

// Save encrypts and writes the session, creating the parent directory
// if needed.
func (p *FilePersister) Save(s *Session) error {
	plain, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "[FilePersister.Save] marshal")
	}

	sealed, err := p.seal(plain)
	if err != nil {
		return errors.Wrap(err, "[FilePersister.Save] seal")
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return errors.Wrap(err, "[FilePersister.Save] mkdir")
	}
	if err := os.WriteFile(p.path, sealed, 0600); err != nil {
		return errors.Wrap(err, "[FilePersister.Save] write")
	}
	return nil
}

// Load reads and decrypts the persisted session. A missing file is not
// an error; it just means no session survived. An undecryptable file
// is treated the same way - the tokens are unrecoverable, so the user
// re-authenticates.
func (p *FilePersister) Load() (*Session, error) {
	sealed, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "[FilePersister.Load] read")
	}

	plain, err := p.open(sealed)
	if err != nil {
		return nil, nil
	}

	s := &Session{}
	if err := json.Unmarshal(plain, s); err != nil {
		return nil, nil
	}
	return s, nil
}

// Delete removes the persisted session file.
func (p *FilePersister) Delete() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FilePersister.Delete] remove")
	}
	return nil
}

func (p *FilePersister) seal(plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(p.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func (p *FilePersister) open(sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(p.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
