package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/futures_day_bot/internal/domain"
)

func TestPositionValidate(t *testing.T) {
	valid := domain.Position{
		Direction:  domain.DirectionLong,
		EntryPrice: 112000,
		TakeProfit: 112300,
		StopLoss:   111850,
		Quantity:   1,
	}
	assert.NoError(t, valid.Validate())

	inverted := valid
	inverted.StopLoss = 112500
	assert.Error(t, inverted.Validate())

	short := domain.Position{
		Direction:  domain.DirectionShort,
		EntryPrice: 112000,
		TakeProfit: 111700,
		StopLoss:   112150,
		Quantity:   2,
	}
	assert.NoError(t, short.Validate())

	badShort := short
	badShort.TakeProfit = 112500
	assert.Error(t, badShort.Validate())

	zeroQty := valid
	zeroQty.Quantity = 0
	assert.Error(t, zeroQty.Validate())
}

func TestPositionRealized(t *testing.T) {
	long := domain.Position{
		Direction:  domain.DirectionLong,
		EntryPrice: 112000,
		ExitPrice:  112300,
		PointValue: 0.20,
		Quantity:   2,
	}
	assert.InDelta(t, 120.0, long.Realized(), 1e-9)

	short := domain.Position{
		Direction:  domain.DirectionShort,
		EntryPrice: 112000,
		ExitPrice:  112300,
		PointValue: 0.20,
		Quantity:   2,
	}
	assert.InDelta(t, -120.0, short.Realized(), 1e-9)
}
