// Package session loads and saves the authentication cookies replayed into
// browser sessions.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"review-harvester/internal/logging"
)

var (
	ErrCookieRead  = errors.New("cookie_file_unreadable")
	ErrCookieParse = errors.New("cookie_file_malformed")
)

// Cookie holds the fields a browser accepts when setting a cookie.
// A nil field was absent or null in the source and is never sent.
type Cookie struct {
	Name     *string  `json:"name,omitempty"`
	Value    *string  `json:"value,omitempty"`
	Domain   *string  `json:"domain,omitempty"`
	Path     *string  `json:"path,omitempty"`
	Expires  *float64 `json:"expires,omitempty"`
	HTTPOnly *bool    `json:"httpOnly,omitempty"`
	Secure   *bool    `json:"secure,omitempty"`
	SameSite *string  `json:"sameSite,omitempty"`
}

// GetName returns the cookie name or "" when absent
func (c Cookie) GetName() string {
	if c.Name == nil {
		return ""
	}
	return *c.Name
}

// Sanitize decodes a JSON array of cookie-like objects, keeping only the
// recognized fields that carry a value. Entries that are not objects or carry
// a mistyped field are skipped; only a document that is not an array fails.
func Sanitize(data []byte) ([]Cookie, error) {
	cookies, _, err := sanitize(data)
	return cookies, err
}

func sanitize(data []byte) ([]Cookie, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCookieParse, err)
	}

	cookies := make([]Cookie, 0, len(raw))
	skipped := 0
	for _, entry := range raw {
		var cookie Cookie
		if err := json.Unmarshal(entry, &cookie); err != nil {
			skipped++
			continue
		}
		cookies = append(cookies, cookie)
	}
	return cookies, skipped, nil
}

// Load reads and sanitizes the cookie file at path
func Load(path string) ([]Cookie, error) {
	cookies, _, err := load(path)
	return cookies, err
}

func load(path string) ([]Cookie, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCookieRead, err)
	}
	return sanitize(data)
}

// Save writes cookies to path as an indented JSON array
func Save(path string, cookies []Cookie) error {
	if cookies == nil {
		cookies = []Cookie{}
	}

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cookie directory: %w", err)
		}
	}

	// the file holds live session credentials
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}
	return nil
}

// Store is the read-only cookie source used by the scraping pipeline
type Store struct {
	path   string
	logger logging.Logger
}

// NewStore creates a store over the cookie file at path
func NewStore(path string) *Store {
	return &Store{
		path:   path,
		logger: logging.ForComponent("session_store"),
	}
}

// Path returns the cookie file location
func (s *Store) Path() string {
	return s.path
}

// Cookies returns the sanitized cookies, or nil when the file is missing or
// malformed. Running without cookies is a supported degraded mode.
func (s *Store) Cookies() []Cookie {
	cookies, skipped, err := load(s.path)
	if err != nil {
		s.logger.Warn("No valid cookies loaded, the site may show a captcha", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return nil
	}

	if skipped > 0 {
		s.logger.Warn("Skipped malformed cookie entries", map[string]interface{}{
			"path":    s.path,
			"skipped": skipped,
		})
	}

	s.logger.Debug("Cookies loaded", map[string]interface{}{
		"path":  s.path,
		"count": len(cookies),
	})
	return cookies
}
