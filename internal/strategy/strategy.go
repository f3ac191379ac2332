// Package strategy defines the Strategy Provider contract consumed by the
// backtester and a Registry for looking strategies up by name.
package strategy

import (
	"sort"

	"BacktestForge/internal/model"
)

// Strategy supplies the three pure transforms of a rule-based strategy. Each
// returns its input augmented with new columns and never removes columns.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// Features adds indicator columns to the rows.
	Features(rows []model.Row) ([]model.Row, error)

	// Buy marks rows on which an entry signal fires.
	Buy(rows []model.Row) ([]model.Row, error)

	// Sell marks rows on which an exit signal fires.
	Sell(rows []model.Row) ([]model.Row, error)
}

// Transform is one stage of a strategy.
type Transform func(rows []model.Row) ([]model.Row, error)

// Funcs adapts three plain functions into a Strategy. A nil slot leaves the
// rows untouched.
type Funcs struct {
	ID           string
	FeaturesFunc Transform
	BuyFunc      Transform
	SellFunc     Transform
}

// Compile-time interface check.
var _ Strategy = Funcs{}

func (f Funcs) Name() string { return f.ID }

func (f Funcs) Features(rows []model.Row) ([]model.Row, error) { return apply(f.FeaturesFunc, rows) }
func (f Funcs) Buy(rows []model.Row) ([]model.Row, error)      { return apply(f.BuyFunc, rows) }
func (f Funcs) Sell(rows []model.Row) ([]model.Row, error)     { return apply(f.SellFunc, rows) }

func apply(fn Transform, rows []model.Row) ([]model.Row, error) {
	if fn == nil {
		return rows, nil
	}
	return fn(rows)
}

// Registry holds a named collection of strategies.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register adds a strategy, keyed by its Name(). A later registration with
// the same name replaces the earlier one.
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get retrieves a strategy by name.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// List returns the sorted names of all registered strategies.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
