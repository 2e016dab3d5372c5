// Package env overlays environment variables on another config store.
//
// A key such as "chunking.size" is read from SERCHA_RAG_CHUNKING_SIZE before
// falling back to the wrapped store. Writes always go to the wrapped store,
// so the environment never leaks into the config file.
package env

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/values"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Prefix is prepended to every environment variable name.
const Prefix = "SERCHA_RAG_"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// LookupFunc matches the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// fallbacks are well-known variables consulted when the prefixed one is unset.
var fallbacks = map[string]string{
	"embedding.api_key":    "OPENAI_API_KEY",
	"storage.postgres_dsn": "DATABASE_URL",
}

// ConfigStore reads environment variables first and delegates everything
// else to a base store.
type ConfigStore struct {
	base   driven.ConfigStore
	lookup LookupFunc
}

// Option configures a ConfigStore.
type Option func(*ConfigStore)

// WithLookup replaces os.LookupEnv. Used by tests.
func WithLookup(fn LookupFunc) Option {
	return func(s *ConfigStore) {
		if fn != nil {
			s.lookup = fn
		}
	}
}

// NewConfigStore wraps base with an environment overlay.
func NewConfigStore(base driven.ConfigStore, opts ...Option) *ConfigStore {
	s := &ConfigStore{
		base:   base,
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VarName returns the environment variable that overrides key.
func VarName(key string) string {
	name := strings.ToUpper(key)
	name = strings.NewReplacer(".", "_", "-", "_").Replace(name)
	return Prefix + name
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set.
// With no arguments it reads ./.env. Missing files are ignored.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// Get retrieves a configuration value, preferring the environment.
func (s *ConfigStore) Get(key string) (any, bool) {
	if val, ok := s.lookupKey(key); ok {
		return val, true
	}
	return s.base.Get(key)
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	return values.String(val)
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	return values.Int(val)
}

// GetFloat retrieves a floating point configuration value.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	return values.Float(val)
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	return values.Bool(val)
}

// GetStringSlice retrieves a string slice configuration value.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, _ := s.Get(key)
	return values.StringSlice(val)
}

// Set stores a configuration value in the base store.
func (s *ConfigStore) Set(key string, value any) error {
	return s.base.Set(key, value)
}

// Save persists the base store.
func (s *ConfigStore) Save() error {
	return s.base.Save()
}

// Load reloads the base store.
func (s *ConfigStore) Load() error {
	return s.base.Load()
}

// Path returns the base store's file path.
func (s *ConfigStore) Path() string {
	return s.base.Path()
}

// Overridden reports whether key is currently set from the environment.
func (s *ConfigStore) Overridden(key string) bool {
	_, ok := s.lookupKey(key)
	return ok
}

func (s *ConfigStore) lookupKey(key string) (string, bool) {
	if val, ok := s.lookup(VarName(key)); ok {
		return val, true
	}
	if name := fallbacks[key]; name != "" {
		if val, ok := s.lookup(name); ok && val != "" {
			return val, true
		}
	}
	return "", false
}
