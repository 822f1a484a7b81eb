package ledger

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Settings holds the switches read by printing and annotation stripping.
type Settings struct {
	// KeepBase prints amounts in the unit they are stored in, instead of
	// the largest unit reachable through registered conversions.
	KeepBase bool `yaml:"keep_base" json:"keep_base"`
	// KeepPrice, KeepDate and KeepTag select the annotation fields that
	// survive [Amount.StripAnnotations] and appear in [Amount.String].
	KeepPrice bool `yaml:"keep_price" json:"keep_price"`
	KeepDate  bool `yaml:"keep_date" json:"keep_date"`
	KeepTag   bool `yaml:"keep_tag" json:"keep_tag"`
	// StreamFullStrings makes [Amount.String] render the full string.
	StreamFullStrings bool `yaml:"stream_fullstrings" json:"stream_fullstrings"`
	// DecimalComma makes bare numbers read and print with a decimal comma.
	DecimalComma bool `yaml:"decimal_comma" json:"decimal_comma"`
}

// Keep returns the annotation fields selected by the settings.
func (s Settings) Keep() KeepDetails {
	return KeepDetails{Price: s.KeepPrice, Date: s.KeepDate, Tag: s.KeepTag}
}

// Pool is a registry of commodities, keyed by symbol.
// Commodities are created on first reference and never removed, so every
// amount holding a commodity of the pool stays resolvable for the lifetime
// of the pool.
// Pool is safe for concurrent use by multiple goroutines.
type Pool struct {
	mu          sync.RWMutex
	commodities map[string]*Commodity
	order       []*Commodity
	prices      map[*Commodity][]Price
	settings    Settings
	logger      zerolog.Logger
}

// Option configures a [Pool].
type Option func(*Pool)

// WithLogger sets the logger used to trace registry changes.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pool) {
		p.logger = l
	}
}

// WithSettings sets the initial settings of the pool.
func WithSettings(s Settings) Option {
	return func(p *Pool) {
		p.settings = s
	}
}

// NewPool returns an empty pool.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		commodities: make(map[string]*Commodity),
		prices:      make(map[*Commodity][]Price),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Find returns the commodity registered under symbol, or nil.
// Find never creates a commodity.
func (p *Pool) Find(symbol string) *Commodity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.commodities[symbol]
}

// FindOrCreate returns the commodity registered under symbol, creating it
// with precision 0 and no flags if it does not exist yet.
// Repeated calls with the same symbol return the same commodity.
func (p *Pool) FindOrCreate(symbol string) *Commodity {
	if c := p.Find(symbol); c != nil {
		return c
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	// Another goroutine may have won the race between the two locks.
	if c, ok := p.commodities[symbol]; ok {
		return c
	}
	c := &Commodity{pool: p, symbol: symbol}
	p.commodities[symbol] = c
	p.order = append(p.order, c)
	p.logger.Debug().Str("symbol", symbol).Msg("commodity created")
	return c
}

// Alias registers name as another symbol for c.
// Amounts parsed with the alias carry c and print with c's symbol.
func (p *Pool) Alias(name string, c *Commodity) error {
	if c == nil || c.pool != p {
		return errors.Errorf("aliasing %q: commodity does not belong to the pool", name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.commodities[name]; ok && prev != c {
		return errors.Errorf("aliasing %q: symbol already names commodity %q", name, prev.symbol)
	}
	p.commodities[name] = c
	p.logger.Debug().Str("alias", name).Str("symbol", c.symbol).Msg("commodity alias registered")
	return nil
}

// Commodities returns the commodities of the pool sorted by symbol.
// Aliases are not listed.
func (p *Pool) Commodities() []*Commodity {
	p.mu.RLock()
	res := make([]*Commodity, len(p.order))
	copy(res, p.order)
	p.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool { return res[i].symbol < res[j].symbol })
	return res
}

// Settings returns the current settings.
func (p *Pool) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// SetSettings replaces the settings.
func (p *Pool) SetSettings(s Settings) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = s
}

// Update applies fn to the settings under the pool lock.
func (p *Pool) Update(fn func(*Settings)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.settings)
}

// ParseConversion registers a conversion between two units, for example
// ParseConversion("1.0m", "60s") or ParseConversion("1h", "60m").
// Afterwards [Amount.Reduce] expresses amounts of the larger commodity in
// the smaller one and [Amount.Unreduce] does the opposite.
// The larger commodity inherits the flags of the smaller one and becomes
// [NoMarket].
func (p *Pool) ParseConversion(larger, smaller string) error {
	if err := p.parseConversion(larger, smaller); err != nil {
		return newAmountError("parsing conversion ["+larger+" = "+smaller+"]", err)
	}
	return nil
}

func (p *Pool) parseConversion(larger, smaller string) error {
	l, err := p.Parse(larger, ParseNoReduce)
	if err != nil {
		return err
	}
	s, err := p.Parse(smaller, ParseNoReduce)
	if err != nil {
		return err
	}
	if l.IsRealZero() || s.IsRealZero() {
		return ErrDivisionByZero
	}
	if l.comm == nil || s.comm == nil || l.comm == s.comm {
		return errors.New("conversion needs two distinct commodities")
	}
	// ratio is the number of smaller units in one larger unit
	ratio, err := s.Number().Quo(l.Number())
	if err != nil {
		return err
	}
	ratio = ratio.trimmed()
	l.comm.setSmaller(ratio.WithCommodity(s.comm))
	s.comm.setLarger(ratio.WithCommodity(l.comm))
	l.comm.AddFlags(s.comm.Flags() | NoMarket)
	p.logger.Debug().
		Str("larger", l.comm.symbol).
		Str("smaller", s.comm.symbol).
		Str("ratio", ratio.quantity.String()).
		Msg("conversion registered")
	return nil
}

// The process-wide pool used by package-level functions.
var (
	currentMu sync.RWMutex
	current   *Pool
)

// Initialize creates the process-wide pool used by [ParseAmount],
// [Amount.UnmarshalBinary] and the printing of bare amounts.
// Initialize returns an error if the pool already exists.
func Initialize(opts ...Option) error {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current != nil {
		return newAmountError("initializing", ErrAlreadyInitialized)
	}
	current = NewPool(opts...)
	current.logger.Debug().Msg("amounts initialized")
	return nil
}

// Shutdown discards the process-wide pool.
// Shutdown returns an error if [Initialize] has not been called.
func Shutdown() error {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current == nil {
		return newAmountError("shutting down", ErrNotInitialized)
	}
	current.logger.Debug().Msg("amounts shut down")
	current = nil
	return nil
}

// CurrentPool returns the process-wide pool.
// CurrentPool panics if [Initialize] has not been called.
func CurrentPool() *Pool {
	p, err := currentPool()
	if err != nil {
		panic(err.Error())
	}
	return p
}

func currentPool() (*Pool, error) {
	currentMu.RLock()
	defer currentMu.RUnlock()
	if current == nil {
		return nil, newAmountError("resolving pool", ErrNotInitialized)
	}
	return current, nil
}
