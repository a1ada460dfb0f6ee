package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	minSecretLength = 32
	flashPrefix     = "_flash_"
)

var encoding = base64.RawURLEncoding

type Manager struct {
	keys     [][]byte
	defaults Options
}

// New returns a Manager. Empty secrets are ignored; the remaining ones must all be long enough.
func New(secrets []string, opts ...Option) (*Manager, error) {
	keys := make([][]byte, 0, len(secrets))
	for i, s := range secrets {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret #%d has %d chars, want at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
		keys = append(keys, []byte(s))
	}
	if len(keys) == 0 {
		return nil, ErrNoSecret
	}

	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{keys: keys, defaults: defaults.with(opts)}, nil
}

func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	http.SetCookie(w, m.defaults.with(opts).cookie(name, value))
}

func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrCookieNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Delete expires the cookie using the manager's default attributes.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	c := m.defaults.cookie(name, "")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) {
	m.Set(w, name, m.sign(name, value), opts...)
}

func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.verify(name, raw)
}

func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, opts ...Option) error {
	sealed, err := m.seal([]byte(value))
	if err != nil {
		return err
	}
	m.Set(w, name, sealed, opts...)
	return nil
}

func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	plain, err := m.open(raw)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// SetFlash stores value as a sealed JSON cookie that lives until the next read.
func (m *Manager) SetFlash(w http.ResponseWriter, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal flash: %w", err)
	}
	return m.SetEncrypted(w, flashPrefix+key, string(data), WithMaxAge(0))
}

// GetFlash decodes the flash cookie into dest and deletes it, whether or not decoding succeeds.
func (m *Manager) GetFlash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	name := flashPrefix + key
	data, err := m.GetEncrypted(r, name)
	if errors.Is(err, ErrCookieNotFound) {
		return err
	}
	m.Delete(w, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("unmarshal flash: %w", err)
	}
	return nil
}

// mac binds the signature to the cookie name so a signed value cannot be replayed under another name.
func mac(key []byte, name, value string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(value))
	return h.Sum(nil)
}

func (m *Manager) sign(name, value string) string {
	return encoding.EncodeToString([]byte(value)) + "." + encoding.EncodeToString(mac(m.keys[0], name, value))
}

func (m *Manager) verify(name, raw string) (string, error) {
	encValue, encSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrInvalidFormat
	}
	value, err := encoding.DecodeString(encValue)
	if err != nil {
		return "", ErrInvalidFormat
	}
	sig, err := encoding.DecodeString(encSig)
	if err != nil {
		return "", ErrInvalidFormat
	}
	for _, key := range m.keys {
		if hmac.Equal(sig, mac(key, name, string(value))) {
			return string(value), nil
		}
	}
	return "", ErrInvalidSignature
}

func aead(key []byte) (cipher.AEAD, error) {
	sum := sha256.Sum256(key)
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (m *Manager) seal(plain []byte) (string, error) {
	gcm, err := aead(m.keys[0])
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	return encoding.EncodeToString(gcm.Seal(nonce, nonce, plain, nil)), nil
}

func (m *Manager) open(raw string) ([]byte, error) {
	data, err := encoding.DecodeString(raw)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	for _, key := range m.keys {
		gcm, err := aead(key)
		if err != nil {
			return nil, err
		}
		if len(data) < gcm.NonceSize() {
			return nil, ErrInvalidFormat
		}
		nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
		if plain, err := gcm.Open(nil, nonce, ciphertext, nil); err == nil {
			return plain, nil
		}
	}
	return nil, ErrDecryptionFailed
}
