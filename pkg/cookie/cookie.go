// Package cookie provides plain, signed, and encrypted cookies plus the
// one-shot flash message queues consumed by the next rendered page.
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
	"io"
	"net/http"
	"strings"
)

// Errors.
var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: secret required")
	ErrBadSecret = errors.New("cookie: secret must be 32+ bytes")
	ErrBadSig    = errors.New("cookie: invalid signature")
	ErrDecrypt   = errors.New("cookie: decryption failed")
)

// flashCookie holds the pending flash queues between two requests.
const flashCookie = "__flash"

// Manager handles cookie operations with shared attribute defaults.
type Manager struct {
	secret   []byte // nil = plain cookies only
	domain   string
	path     string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a cookie Manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret sets the secret used for signing and encryption.
// Secrets shorter than 32 bytes are ignored.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= 32 {
			m.secret = []byte(secret)
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) { m.domain = domain }
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(m *Manager) { m.path = path }
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) { m.httpOnly = httpOnly }
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) { m.sameSite = ss }
}

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set sets a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.build(name, value, maxAge))
}

// Delete removes a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.build(name, "", -1))
}

// SetSigned sets an HMAC-SHA256 signed cookie.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.secret == nil {
		return ErrNoSecret
	}

	sig := m.sign([]byte(value))
	encoded := base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(sig)

	http.SetCookie(w, m.build(name, encoded, maxAge))
	return nil
}

// GetSigned returns a signed cookie value after verifying its signature.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}

	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	// Format: base64(value).base64(signature)
	value, sig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", ErrBadSig
	}
	decodedSig, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", ErrBadSig
	}

	if !hmac.Equal(decodedSig, m.sign(decoded)) {
		return "", ErrBadSig
	}

	return string(decoded), nil
}

// SetEncrypted sets an AES-GCM encrypted cookie.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.secret == nil {
		return ErrNoSecret
	}

	ciphertext, err := m.encrypt([]byte(value))
	if err != nil {
		return err
	}

	http.SetCookie(w, m.build(name, base64.RawURLEncoding.EncodeToString(ciphertext), maxAge))
	return nil
}

// GetEncrypted returns a decrypted cookie value.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}

	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrDecrypt
	}

	plaintext, err := m.decrypt(data)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(plaintext), nil
}

// ReadFlashes decodes the pending flash queues from the request without
// clearing them. Returns an empty map when no flash cookie is present.
func (m *Manager) ReadFlashes(r *http.Request) (map[string][]string, error) {
	if m.secret == nil {
		return nil, ErrNoSecret
	}

	raw, err := m.GetEncrypted(r, flashCookie)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return map[string][]string{}, nil
		}
		return nil, err
	}

	flashes := map[string][]string{}
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		// A corrupt flash cookie is not worth failing a request over.
		return map[string][]string{}, nil
	}
	return flashes, nil
}

// WriteFlashes replaces the pending flash queues. Empty queues clear the
// cookie entirely.
func (m *Manager) WriteFlashes(w http.ResponseWriter, flashes map[string][]string) error {
	if m.secret == nil {
		return ErrNoSecret
	}

	if len(flashes) == 0 {
		m.ClearFlashes(w)
		return nil
	}

	data, err := json.Marshal(flashes)
	if err != nil {
		return err
	}
	return m.SetEncrypted(w, flashCookie, string(data), 0)
}

// ClearFlashes deletes the flash cookie, consuming all pending queues.
func (m *Manager) ClearFlashes(w http.ResponseWriter) {
	m.Delete(w, flashCookie)
}

func (m *Manager) build(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}

func (m *Manager) sign(value []byte) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	return mac.Sum(nil)
}

// aead derives a 32-byte key from the secret and builds an AES-GCM cipher.
func (m *Manager) aead() (cipher.AEAD, error) {
	key := sha256.Sum256(m.secret)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (m *Manager) encrypt(plaintext []byte) ([]byte, error) {
	aead, err := m.aead()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (m *Manager) decrypt(ciphertext []byte) ([]byte, error) {
	aead, err := m.aead()
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < aead.NonceSize() {
		return nil, ErrDecrypt
	}

	nonce := ciphertext[:aead.NonceSize()]
	return aead.Open(nil, nonce, ciphertext[aead.NonceSize():], nil)
}
