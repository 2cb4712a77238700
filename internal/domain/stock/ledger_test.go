package stock_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aikasir-api/internal/domain"
	"github.com/jhoicas/aikasir-api/internal/domain/entity"
	"github.com/jhoicas/aikasir-api/internal/domain/stock"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		before  int
		adjType string
		qty     int
		want    int
	}{
		{"add", 10, entity.AdjustAdd, 5, 15},
		{"subtract", 10, entity.AdjustSubtract, 4, 6},
		{"subtract recorta en 0", 3, entity.AdjustSubtract, 5, 0},
		{"set", 10, entity.AdjustSet, 7, 7},
		{"set a 0", 10, entity.AdjustSet, 0, 0},
		{"sale", 10, entity.AdjustSale, 2, 8},
		{"sale recorta en 0", 1, entity.AdjustSale, 2, 0},
		{"void_return", 8, entity.AdjustVoidReturn, 2, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stock.Apply(tt.before, tt.adjType, tt.qty)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
		})
	}
}

func TestApply_TipoInvalido(t *testing.T) {
	_, err := stock.Apply(10, "transfer", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApply_NoDesborda(t *testing.T) {
	for _, adjType := range []string{entity.AdjustAdd, entity.AdjustVoidReturn} {
		got, err := stock.Apply(10, adjType, math.MaxInt)
		assert.ErrorIs(t, err, domain.ErrOutOfRange, adjType)
		assert.Equal(t, 10, got, "el stock queda como estaba")

		got, err = stock.Apply(math.MaxInt-5, adjType, 5)
		require.NoError(t, err, adjType)
		assert.Equal(t, math.MaxInt, got)
	}
}

func TestValidateUserAdjustment(t *testing.T) {
	assert.NoError(t, stock.ValidateUserAdjustment(entity.AdjustAdd, stock.MaxQuantity))
	assert.ErrorIs(t, stock.ValidateUserAdjustment(entity.AdjustAdd, stock.MaxQuantity+1), domain.ErrOutOfRange)
	assert.ErrorIs(t, stock.ValidateUserAdjustment(entity.AdjustSet, math.MaxInt), domain.ErrInvalidInput)

	assert.NoError(t, stock.ValidateUserAdjustment(entity.AdjustAdd, 1))
	assert.NoError(t, stock.ValidateUserAdjustment(entity.AdjustSet, 3))
	assert.ErrorIs(t, stock.ValidateUserAdjustment(entity.AdjustSet, 0), domain.ErrInvalidInput)

	assert.ErrorIs(t, stock.ValidateUserAdjustment(entity.AdjustAdd, 0), domain.ErrInvalidInput)
	assert.ErrorIs(t, stock.ValidateUserAdjustment(entity.AdjustSubtract, -1), domain.ErrInvalidInput)
	assert.ErrorIs(t, stock.ValidateUserAdjustment(entity.AdjustSale, 1), domain.ErrInvalidInput)
	assert.ErrorIs(t, stock.ValidateUserAdjustment(entity.AdjustVoidReturn, 1), domain.ErrInvalidInput)
}

func item(name string, stockQty, threshold int) entity.Item {
	return entity.Item{ID: name, Name: name, IsActive: true, TrackStock: true, Stock: stockQty, LowStockThreshold: threshold}
}

func TestClassify(t *testing.T) {
	a, ok := stock.Classify(item("Kopi", 3, 5))
	require.True(t, ok)
	assert.Equal(t, entity.StockLow, a.Status)
	assert.Equal(t, stock.SeverityWarning, a.Severity)

	a, ok = stock.Classify(item("Kopi", 0, 5))
	require.True(t, ok)
	assert.Equal(t, entity.StockOut, a.Status)
	assert.Equal(t, stock.SeverityCritical, a.Severity)

	_, ok = stock.Classify(item("Kopi", 6, 5))
	assert.False(t, ok)

	_, ok = stock.Classify(item("Kopi", 5, 5))
	assert.True(t, ok, "igual al umbral es Hampir Habis")

	untracked := item("Jasa", 0, 5)
	untracked.TrackStock = false
	_, ok = stock.Classify(untracked)
	assert.False(t, ok)
}

func TestAlerts_Orden(t *testing.T) {
	alerts := stock.Alerts([]entity.Item{
		item("Teh", 4, 5),
		item("Gula", 0, 5),
		item("Kopi", 2, 5),
		item("Susu", 20, 5),
		item("Air", 0, 5),
	})
	require.Len(t, alerts, 4)
	names := []string{alerts[0].Item.Name, alerts[1].Item.Name, alerts[2].Item.Name, alerts[3].Item.Name}
	assert.Equal(t, []string{"Air", "Gula", "Kopi", "Teh"}, names)
}

func TestSummarize(t *testing.T) {
	inactive := item("Lama", 0, 5)
	inactive.IsActive = false
	s := stock.Summarize([]entity.Item{
		item("Teh", 4, 5),
		item("Gula", 0, 5),
		item("Susu", 20, 5),
		inactive,
	})
	assert.Equal(t, stock.Summary{TotalTracked: 3, LowStock: 1, OutOfStock: 1}, s)
}
