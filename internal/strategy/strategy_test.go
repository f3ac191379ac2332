package strategy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BacktestForge/internal/model"
)

func TestFuncs_NilSlotsAreIdentity(t *testing.T) {
	rows := []model.Row{{Candle: model.Candle{Close: 1}}, {Candle: model.Candle{Close: 2}}}
	s := Funcs{ID: "identity"}

	for _, stage := range []func([]model.Row) ([]model.Row, error){s.Features, s.Buy, s.Sell} {
		got, err := stage(rows)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	}
	assert.Equal(t, "identity", s.Name())
}

func TestFuncs_DelegatesAndPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	s := Funcs{
		ID: "custom",
		BuyFunc: func(rows []model.Row) ([]model.Row, error) {
			for i := range rows {
				rows[i].Buy = true
			}
			return rows, nil
		},
		SellFunc: func(rows []model.Row) ([]model.Row, error) { return nil, boom },
	}

	rows, err := s.Buy([]model.Row{{}, {}})
	require.NoError(t, err)
	assert.True(t, rows[0].Buy)
	assert.True(t, rows[1].Buy)

	_, err = s.Sell(rows)
	assert.ErrorIs(t, err, boom)
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(Funcs{ID: "test-strategy"})

	got, ok := r.Get("test-strategy")
	require.True(t, ok, "Get returned false for registered strategy")
	assert.Equal(t, "test-strategy", got.Name())

	_, ok = r.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.Register(Funcs{ID: "beta"})
	r.Register(Funcs{ID: "alpha"})

	assert.Equal(t, []string{"alpha", "beta"}, r.List())
}
