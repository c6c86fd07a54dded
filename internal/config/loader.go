package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Defaults applied to zero-valued settings after decoding.
const (
	DefaultWorkers    = 8
	DefaultQueueDepth = 1024
	DefaultTimeoutMs  = 2000
	DefaultBackend    = "memory"
	DefaultSessionTTL = 24 * time.Hour
	DefaultKeyPrefix  = "pageflow:session:"
)

// Loader reads a survey definition file (YAML or JSON) and watches it for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *SurveyConfig
	onChange []func(*SurveyConfig)
	watcher  *fsnotify.Watcher
}

// NewLoader creates a Loader and performs the initial load. The first
// config is not validated, so tooling can report every problem with it.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.path
}

// Config returns the current (latest) configuration.
func (l *Loader) Config() *SurveyConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*SurveyConfig)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the config on file changes.
// Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", l.path, err)
	}
	l.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						slog.Warn("config reload failed, keeping previous survey", "path", l.path, "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "path", l.path, "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the config file. A file that fails
// to parse or Validate leaves the current config in place and no callback
// runs; the returned error wraps ErrInvalid in the second case.
func (l *Loader) Reload() (*SurveyConfig, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("reload %s: %w", l.path, err)
	}
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(*SurveyConfig), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

func (l *Loader) load() (*SurveyConfig, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}
	cfg, err := Parse(data, formatOf(l.path))
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.path, err)
	}
	return cfg, nil
}

// Format is the encoding of a definition file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

func formatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes a definition document and applies defaults. Both formats are
// read into generic maps first and decoded with the same mapstructure rules,
// so route values may be scalars or lists in either.
func Parse(data []byte, format Format) (*SurveyConfig, error) {
	var raw map[string]interface{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}
	cfg, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode converts an already-unmarshalled document, such as a JSON body
// fetched from a survey backend, into a SurveyConfig with defaults applied.
func Decode(raw map[string]interface{}) (*SurveyConfig, error) {
	var cfg SurveyConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *SurveyConfig) {
	if cfg.Engine.Workers == 0 {
		cfg.Engine.Workers = DefaultWorkers
	}
	if cfg.Engine.QueueDepth == 0 {
		cfg.Engine.QueueDepth = DefaultQueueDepth
	}
	if cfg.Engine.TimeoutMs == 0 {
		cfg.Engine.TimeoutMs = DefaultTimeoutMs
	}
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = DefaultBackend
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = DefaultSessionTTL
	}
	if cfg.Session.KeyPrefix == "" {
		cfg.Session.KeyPrefix = DefaultKeyPrefix
	}
}
