// Package pricedb keeps price histories of a [ledger.Pool] outside of the
// process, either as a text file of price directives or in SQLite.
package pricedb

import (
	"context"

	"github.com/govalues/ledger"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Store is a persistent collection of prices.
type Store interface {
	// List returns every stored price, resolving commodities through p.
	List(ctx context.Context, p *ledger.Pool) ([]ledger.Price, error)
	// Put stores prices. Prices already stored are skipped.
	Put(ctx context.Context, prices ...ledger.Price) error
	Close() error
}

type options struct {
	logger zerolog.Logger
}

// Option configures a store.
type Option func(*options)

// WithLogger sets the logger of the store.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load records every price of s in p and returns the number of prices loaded.
func Load(ctx context.Context, s Store, p *ledger.Pool) (int, error) {
	prices, err := s.List(ctx, p)
	if err != nil {
		return 0, errors.Wrap(err, "listing prices")
	}
	for i, r := range prices {
		if err := p.AddPrice(r.Base(), r.Moment(), r.Amount()); err != nil {
			return i, errors.Wrapf(err, "loading %v", r)
		}
	}
	return len(prices), nil
}

// Save stores every price recorded in p and returns the number of prices
// handed to the store.
func Save(ctx context.Context, s Store, p *ledger.Pool) (int, error) {
	var prices []ledger.Price
	for _, c := range p.Commodities() {
		prices = append(prices, p.Prices(c)...)
	}
	if len(prices) == 0 {
		return 0, nil
	}
	if err := s.Put(ctx, prices...); err != nil {
		return 0, errors.Wrap(err, "saving prices")
	}
	return len(prices), nil
}
