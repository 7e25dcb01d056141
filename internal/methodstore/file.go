// Package methodstore loads shipping method definitions from a
// configuration file (YAML, JSON or TOML).
//
// Parameters are lists of name/value rows rather than maps so parameter
// names keep their case.
package methodstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/tournevent/bringrate/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type fileContents struct {
	Methods []methodEntry `mapstructure:"methods"`
}

type methodEntry struct {
	ID               string           `mapstructure:"id"`
	Rows             []rowEntry       `mapstructure:"rows"`
	Parameters       []parameterEntry `mapstructure:"parameters"`
	OptionParameters []parameterEntry `mapstructure:"optionParameters"`
}

type rowEntry struct {
	Name        string `mapstructure:"name"`
	DisplayName string `mapstructure:"displayName"`
	Language    string `mapstructure:"language"`
	BasePrice   string `mapstructure:"basePrice"`
	Currency    string `mapstructure:"currency"`
}

type parameterEntry struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

// File is a shipper.MethodStore backed by a configuration file.
type File struct {
	v      *viper.Viper
	logger *otelzap.Logger

	mu      sync.RWMutex
	methods map[uuid.UUID]*shipper.ShippingMethod
}

// Open reads the shipping methods in path.
func Open(path string, logger *otelzap.Logger) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)

	f := &File{v: v, logger: logger}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Reload re-reads the file. On error the previously loaded methods are kept.
func (f *File) Reload() error {
	if err := f.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading shipping methods: %w", err)
	}

	var contents fileContents
	if err := f.v.Unmarshal(&contents); err != nil {
		return fmt.Errorf("decoding shipping methods: %w", err)
	}

	methods, err := toMethods(contents.Methods)
	if err != nil {
		return fmt.Errorf("decoding shipping methods: %w", err)
	}

	f.mu.Lock()
	f.methods = methods
	f.mu.Unlock()

	f.logger.Info("Loaded shipping methods",
		zap.String("file", f.v.ConfigFileUsed()),
		zap.Int("count", len(methods)),
	)
	return nil
}

// Watch reloads the file whenever it changes.
func (f *File) Watch() {
	f.v.OnConfigChange(func(e fsnotify.Event) {
		if err := f.Reload(); err != nil {
			f.logger.Error("Reloading shipping methods failed", zap.String("file", e.Name), zap.Error(err))
		}
	})
	f.v.WatchConfig()
}

// GetShippingMethod implements shipper.MethodStore.
func (f *File) GetShippingMethod(ctx context.Context, id uuid.UUID) (*shipper.ShippingMethod, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if m, ok := f.methods[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", shipper.ErrMethodNotFound, id)
}

// Len returns the number of loaded methods.
func (f *File) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.methods)
}

func toMethods(entries []methodEntry) (map[uuid.UUID]*shipper.ShippingMethod, error) {
	methods := make(map[uuid.UUID]*shipper.ShippingMethod, len(entries))
	for i, e := range entries {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			return nil, fmt.Errorf("method %d: invalid id %q: %w", i, e.ID, err)
		}
		if _, dup := methods[id]; dup {
			return nil, fmt.Errorf("method %d: duplicate id %s", i, id)
		}

		m := &shipper.ShippingMethod{
			ID:               id,
			MethodParameters: toParameters(e.Parameters),
			OptionParameters: toParameters(e.OptionParameters),
		}
		for _, r := range e.Rows {
			price := decimal.Zero
			if r.BasePrice != "" {
				price, err = decimal.NewFromString(r.BasePrice)
				if err != nil {
					return nil, fmt.Errorf("method %s: invalid base price %q: %w", id, r.BasePrice, err)
				}
			}
			m.Rows = append(m.Rows, shipper.ShippingMethodRow{
				Name:        r.Name,
				DisplayName: r.DisplayName,
				Language:    r.Language,
				BasePrice:   price,
				Currency:    r.Currency,
			})
		}
		methods[id] = m
	}
	return methods, nil
}

func toParameters(entries []parameterEntry) map[string]string {
	params := make(map[string]string, len(entries))
	for _, p := range entries {
		params[p.Name] = p.Value
	}
	return params
}

var _ shipper.MethodStore = (*File)(nil)
