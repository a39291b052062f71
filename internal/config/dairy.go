package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DairyConfig holds operational defaults for milk quality assumptions.
// DefaultFat/DefaultSnf are used wherever a collection has no lab reading
// yet and an estimate is unavoidable (lifetime pending-payment figures).
type DairyConfig struct {
	DefaultFat      float64 `mapstructure:"defaultFat"`
	DefaultSnf      float64 `mapstructure:"defaultSnf"`
	RecentIntakeLen int     `mapstructure:"recentIntakeLen"`
	StockHistoryLen int     `mapstructure:"stockHistoryLen"`
}

func DefaultDairyConfig() DairyConfig {
	return DairyConfig{
		DefaultFat:      3.5,
		DefaultSnf:      8.5,
		RecentIntakeLen: 10,
		StockHistoryLen: 20,
	}
}

// DairyConfigHolder exposes the current DairyConfig with hot reload.
type DairyConfigHolder struct {
	current atomic.Value // holds DairyConfig
}

func NewDairyConfigHolder() (*DairyConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("dairy")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/dairypro/config") // Volume-mounted config
	v.AddConfigPath("/etc/dairypro")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	v.SetEnvPrefix("DAIRYPRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultDairyConfig()
		v.SetDefault("dairy.defaultFat", defaults.DefaultFat)
		v.SetDefault("dairy.defaultSnf", defaults.DefaultSnf)
		v.SetDefault("dairy.recentIntakeLen", defaults.RecentIntakeLen)
		v.SetDefault("dairy.stockHistoryLen", defaults.StockHistoryLen)
	}

	var cfg DairyConfig
	if err := v.UnmarshalKey("dairy", &cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if err := validateDairyConfig(cfg); err != nil {
		return nil, err
	}

	holder := &DairyConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DairyConfig
		if err := v.UnmarshalKey("dairy", &updated); err != nil {
			log.Printf("[dairy-config] reload failed: %v", err)
			return
		}
		updated = updated.withDefaults()
		if err := validateDairyConfig(updated); err != nil {
			log.Printf("[dairy-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[dairy-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// Current returns the active dairy configuration snapshot.
func (h *DairyConfigHolder) Current() DairyConfig {
	if h == nil {
		return DefaultDairyConfig()
	}
	if cfg, ok := h.current.Load().(DairyConfig); ok {
		return cfg
	}
	return DefaultDairyConfig()
}

func (c DairyConfig) withDefaults() DairyConfig {
	defaults := DefaultDairyConfig()
	if c.DefaultFat == 0 {
		c.DefaultFat = defaults.DefaultFat
	}
	if c.DefaultSnf == 0 {
		c.DefaultSnf = defaults.DefaultSnf
	}
	if c.RecentIntakeLen <= 0 {
		c.RecentIntakeLen = defaults.RecentIntakeLen
	}
	if c.StockHistoryLen <= 0 {
		c.StockHistoryLen = defaults.StockHistoryLen
	}
	return c
}

func validateDairyConfig(cfg DairyConfig) error {
	if cfg.DefaultFat < 0 || cfg.DefaultFat > 15 {
		return errors.New("dairy config: defaultFat out of range")
	}
	if cfg.DefaultSnf < 0 || cfg.DefaultSnf > 15 {
		return errors.New("dairy config: defaultSnf out of range")
	}
	return nil
}
