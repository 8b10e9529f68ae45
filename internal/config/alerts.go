package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// StockAlertBand classifies how far below its minimum a material has fallen.
type StockAlertBand struct {
	Level    string  `mapstructure:"level"`
	MinRatio float64 `mapstructure:"minRatio"`
}

// StockAlertConfig drives the low-stock severity bands shown on the
// materials dashboard. Ratio = qty / minQty; the first band whose
// MinRatio is <= the ratio wins, so bands must be ordered descending.
type StockAlertConfig struct {
	Bands []StockAlertBand `mapstructure:"bands"`
}

func DefaultStockAlertConfig() StockAlertConfig {
	return StockAlertConfig{
		Bands: []StockAlertBand{
			{Level: "warning", MinRatio: 0.5},
			{Level: "critical", MinRatio: 0.0},
		},
	}
}

type StockAlertHolder struct {
	current atomic.Value // holds StockAlertConfig
}

// NewStockAlertHolder reads alerts.yml when present and hot-reloads it on
// change; a missing file falls back to defaults.
func NewStockAlertHolder() (*StockAlertHolder, error) {
	v := viper.New()

	v.SetConfigName("alerts")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/prodline")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PRODLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		return StaticStockAlertHolder(DefaultStockAlertConfig()), nil
	}

	var cfg StockAlertConfig
	if err := v.UnmarshalKey("stock", &cfg); err != nil {
		return nil, err
	}
	if err := validateStockAlertConfig(cfg); err != nil {
		return nil, err
	}

	holder := &StockAlertHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated StockAlertConfig
		if err := v.UnmarshalKey("stock", &updated); err != nil {
			log.Printf("[alert-config] reload failed: %v", err)
			return
		}
		if err := validateStockAlertConfig(updated); err != nil {
			log.Printf("[alert-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
	})

	return holder, nil
}

// StaticStockAlertHolder wraps a fixed policy, with no file watching.
func StaticStockAlertHolder(cfg StockAlertConfig) *StockAlertHolder {
	holder := &StockAlertHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *StockAlertHolder) Current() StockAlertConfig {
	if h == nil {
		return DefaultStockAlertConfig()
	}
	if cfg, ok := h.current.Load().(StockAlertConfig); ok {
		return cfg
	}
	return DefaultStockAlertConfig()
}

func validateStockAlertConfig(cfg StockAlertConfig) error {
	if len(cfg.Bands) == 0 {
		return errors.New("stock alert config requires at least one band")
	}
	prev := 2.0
	for _, b := range cfg.Bands {
		if strings.TrimSpace(b.Level) == "" {
			return errors.New("stock alert band requires a level")
		}
		if b.MinRatio < 0 || b.MinRatio >= 1 {
			return errors.New("stock alert band minRatio must be in [0, 1)")
		}
		if b.MinRatio >= prev {
			return errors.New("stock alert bands must be ordered by descending minRatio")
		}
		prev = b.MinRatio
	}
	return nil
}
