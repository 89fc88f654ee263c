package kv

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/jrsteele09/go-employee-console/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// encryptedPrefix marks an encrypted file (format: ENC:base64(salt|nonce|ciphertext|tag))
	encryptedPrefix = "ENC:"

	saltSize = 16
	keySize  = 32

	// DefaultKDFIterations is the PBKDF2-SHA-256 iteration count for the file key
	DefaultKDFIterations = 600_000
)

var (
	_ KeyValueStore = (*File)(nil)
	_ Watcher       = (*File)(nil)
	_ BatchWriter   = (*File)(nil)
)

// File keeps all values in one JSON document on disk so the session
// survives a restart of the console. With a passphrase the document is
// sealed with AES-256-GCM under a PBKDF2 derived key.
type File struct {
	path       string
	passphrase string
	iterations int

	lock sync.Mutex
	salt []byte // salt the cached key was derived with
	key  []byte
}

type FileOption func(*File)

// WithPassphrase encrypts the file at rest
func WithPassphrase(passphrase string) FileOption {
	return func(f *File) {
		f.passphrase = passphrase
	}
}

// WithKDFIterations overrides the PBKDF2 iteration count
func WithKDFIterations(n int) FileOption {
	return func(f *File) {
		if n > 0 {
			f.iterations = n
		}
	}
}

func NewFile(path string, opts ...FileOption) *File {
	f := &File{
		path:       path,
		iterations: DefaultKDFIterations,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *File) Get(_ context.Context, key string) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

// SetAll writes every value with a single replacement of the file
func (f *File) SetAll(_ context.Context, values map[string]string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	current, err := f.load()
	if err != nil {
		return err
	}
	for key, value := range values {
		current[key] = value
	}
	return f.save(current)
}

func (f *File) Del(_ context.Context, key string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil {
		// An unreadable file still gets removed; clearing must not get stuck
		// on a corrupt document.
		if rmErr := os.Remove(f.path); rmErr != nil && !os.IsNotExist(rmErr) {
			return errors.Join(err, rmErr)
		}
		return nil
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove session file: %w", err)
		}
		return nil
	}
	return f.save(values)
}

// Watch reports writes to the session file made by any process. The
// directory is watched rather than the file, because saves replace the
// file by renaming a temp file over it.
func (f *File) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(f.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || event.Op == fsnotify.Chmod {
					continue
				}
				onChange()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Str("path", f.path).Msg("session file watcher error")
			}
		}
	}()
	return nil
}

func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	if strings.HasPrefix(string(data), encryptedPrefix) {
		if data, err = f.open(data); err != nil {
			return nil, err
		}
	} else if f.passphrase != "" {
		return nil, fmt.Errorf("%w: file is not encrypted", errors.ErrDecryptionFailed)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return values, nil
}

func (f *File) save(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	if f.passphrase != "" {
		if data, err = f.seal(data); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (f *File) deriveKey(salt []byte) []byte {
	if f.key != nil && string(f.salt) == string(salt) {
		return f.key
	}
	f.salt = append([]byte(nil), salt...)
	f.key = pbkdf2.Key([]byte(f.passphrase), salt, f.iterations, keySize, sha256.New)
	return f.key
}

func (f *File) aead(salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(f.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}

func (f *File) seal(plaintext []byte) ([]byte, error) {
	salt := f.salt
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
	}
	gcm, err := f.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := append(append([]byte(nil), salt...), nonce...)
	out = gcm.Seal(out, nonce, plaintext, nil)
	return []byte(encryptedPrefix + base64.StdEncoding.EncodeToString(out)), nil
}

func (f *File) open(data []byte) ([]byte, error) {
	if f.passphrase == "" {
		return nil, fmt.Errorf("%w: no passphrase configured", errors.ErrDecryptionFailed)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(strings.TrimPrefix(string(data), encryptedPrefix)))
	if err != nil || len(raw) < saltSize {
		return nil, fmt.Errorf("%w: invalid ciphertext format", errors.ErrDecryptionFailed)
	}

	salt := raw[:saltSize]
	gcm, err := f.aead(salt)
	if err != nil {
		return nil, err
	}
	if len(raw) < saltSize+gcm.NonceSize() {
		return nil, fmt.Errorf("%w: invalid ciphertext format", errors.ErrDecryptionFailed)
	}

	nonce := raw[saltSize : saltSize+gcm.NonceSize()]
	plaintext, err := gcm.Open(nil, nonce, raw[saltSize+gcm.NonceSize():], nil)
	if err != nil {
		return nil, errors.ErrDecryptionFailed
	}
	return plaintext, nil
}
