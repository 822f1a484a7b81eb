package ledger

import (
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config describes the settings and commodities a pool starts with.
//
//	keep_price: true
//	currencies: [USD, EUR]
//	commodities:
//	  - symbol: $
//	    precision: 2
//	    flags: [thousands, primary]
//	    aliases: [USD$]
//	conversions:
//	  - {larger: 1m, smaller: 60s}
//	prices:
//	  - P 2023/01/01 AAPL $150.00
type Config struct {
	Settings    `yaml:",inline"`
	Currencies  []string           `json:"currencies,omitempty" yaml:"currencies,omitempty"`
	Commodities []CommodityConfig  `json:"commodities,omitempty" yaml:"commodities,omitempty"`
	Conversions []ConversionConfig `json:"conversions,omitempty" yaml:"conversions,omitempty"`
	Prices      []string           `json:"prices,omitempty" yaml:"prices,omitempty"`
}

// CommodityConfig declares a commodity.
type CommodityConfig struct {
	Symbol    string   `json:"symbol" yaml:"symbol"`
	Precision int      `json:"precision" yaml:"precision"`
	Flags     []string `json:"flags,omitempty" yaml:"flags,omitempty"`
	Aliases   []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// ConversionConfig declares a unit conversion, see [Pool.ParseConversion].
type ConversionConfig struct {
	Larger  string `json:"larger" yaml:"larger"`
	Smaller string `json:"smaller" yaml:"smaller"`
}

// LoadConfig reads a YAML or JSON configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file %v", path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML or JSON configuration.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		*cfg = Config{}
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, errors.Wrap(err, "parse config (tried YAML and JSON)")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// Validate checks that every declared commodity has a symbol and known flags.
func (c *Config) Validate() error {
	for i, cc := range c.Commodities {
		if strings.TrimSpace(cc.Symbol) == "" {
			return errors.Errorf("commodities[%d].symbol is required", i)
		}
		if cc.Precision < 0 || cc.Precision > MaxPrecision {
			return errors.Errorf("commodities[%d].precision must be between 0 and %d", i, MaxPrecision)
		}
		for _, f := range cc.Flags {
			if _, err := ParseCommodityFlag(f); err != nil {
				return errors.Wrapf(err, "commodities[%d].flags", i)
			}
		}
	}
	for i, cv := range c.Conversions {
		if cv.Larger == "" || cv.Smaller == "" {
			return errors.Errorf("conversions[%d] needs larger and smaller", i)
		}
	}
	return nil
}

// Apply installs the configuration into the pool: settings first, then
// currencies, commodities, conversions and prices, in that order.
func (p *Pool) Apply(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	p.SetSettings(cfg.Settings)
	for _, code := range cfg.Currencies {
		if _, err := p.DeclareCurrency(code); err != nil {
			return err
		}
	}
	for _, cc := range cfg.Commodities {
		c := p.FindOrCreate(cc.Symbol)
		c.SetPrecision(cc.Precision)
		flags := Builtin
		for _, name := range cc.Flags {
			f, err := ParseCommodityFlag(name)
			if err != nil {
				return errors.Wrapf(err, "commodity %q", cc.Symbol)
			}
			flags |= f
		}
		c.AddFlags(flags)
		for _, alias := range cc.Aliases {
			if err := p.Alias(alias, c); err != nil {
				return err
			}
		}
	}
	for _, cv := range cfg.Conversions {
		if err := p.ParseConversion(cv.Larger, cv.Smaller); err != nil {
			return err
		}
	}
	for _, line := range cfg.Prices {
		r, err := p.ParsePriceDirective(line)
		if err != nil {
			return err
		}
		if err := p.AddPrice(r.base, r.moment, r.value); err != nil {
			return err
		}
	}
	p.logger.Debug().
		Int("currencies", len(cfg.Currencies)).
		Int("commodities", len(cfg.Commodities)).
		Int("conversions", len(cfg.Conversions)).
		Int("prices", len(cfg.Prices)).
		Msg("configuration applied")
	return nil
}
