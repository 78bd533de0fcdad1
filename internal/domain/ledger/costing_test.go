package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stocktrack/internal/core/types"
)

func TestBlendCost_WeightedAverage(t *testing.T) {
	// 10 units at 100 + 10 units at 200 -> average 150
	got := BlendCost(10, types.MustMoney("100"), 10, types.MustMoney("200"))
	assert.True(t, got.Equal(types.MustMoney("150")), "got %s", got)
}

func TestBlendCost_FirstReceipt(t *testing.T) {
	// Empty position takes the incoming price as-is
	got := BlendCost(0, types.ZeroMoney(), 5, types.MustMoney("42.50"))
	assert.True(t, got.Equal(types.MustMoney("42.50")), "got %s", got)
}

func TestBlendCost_ZeroTotalKeepsExisting(t *testing.T) {
	// Combined quantity zero: no division, existing cost retained
	got := BlendCost(0, types.MustMoney("75"), 0, types.MustMoney("999"))
	assert.True(t, got.Equal(types.MustMoney("75")), "got %s", got)
}

func TestBlendCost_UnevenWeights(t *testing.T) {
	// 3 units at 10 + 1 unit at 50 -> (30 + 50) / 4 = 20
	got := BlendCost(3, types.MustMoney("10"), 1, types.MustMoney("50"))
	assert.True(t, got.Equal(types.MustMoney("20")), "got %s", got)
}

func TestBlendCost_FractionalResult(t *testing.T) {
	// 1 unit at 1 + 2 units at 2 -> 5/3
	got := BlendCost(1, types.MustMoney("1"), 2, types.MustMoney("2"))
	expected := types.MustMoney("5").Div(types.MustMoney("3"))
	assert.True(t, got.Equal(expected), "got %s want %s", got, expected)
}
