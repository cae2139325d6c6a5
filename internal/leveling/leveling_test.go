package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiersAreContiguous(t *testing.T) {
	all := Tiers()
	require.Len(t, all, 10)

	for i, tier := range all {
		assert.Equal(t, i+1, tier.Level)
		assert.Equal(t, tier, ForExp(tier.MinExp), "lower bound of level %d", tier.Level)
		if i > 0 {
			assert.Equal(t, all[i-1], ForExp(tier.MinExp-1), "just below level %d", tier.Level)
			assert.Equal(t, all[i-1].MaxExp+1, tier.MinExp)
		}
	}
	assert.Equal(t, Unbounded, all[len(all)-1].MaxExp)
}

func TestForExp(t *testing.T) {
	tests := []struct {
		exp  int
		want int
	}{
		{-5, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{105, 2},
		{999, 4},
		{1000, 5},
		{6999, 9},
		{7000, 10},
		{1_000_000, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelForExp(tt.exp), "exp %d", tt.exp)
	}
}

func TestExpToNext(t *testing.T) {
	assert.Equal(t, 100, ExpToNext(0))
	assert.Equal(t, 5, ExpToNext(95))
	assert.Equal(t, 195, ExpToNext(105))
	assert.Equal(t, 0, ExpToNext(7000))
	assert.Equal(t, 0, ExpToNext(99999))

	for exp := 0; exp < 7000; exp += 37 {
		next := ExpToNext(exp)
		require.Positive(t, next, "exp %d", exp)
		assert.Equal(t, LevelForExp(exp)+1, LevelForExp(exp+next))
	}
}

func TestExpGainCrossesTier(t *testing.T) {
	assert.Equal(t, 1, LevelForExp(95))
	assert.Equal(t, 2, LevelForExp(95+10))
}

func TestTiersReturnsCopy(t *testing.T) {
	all := Tiers()
	all[0].Name = "changed"
	assert.NotEqual(t, "changed", ForExp(0).Name)
}

func TestProgress(t *testing.T) {
	assert.InDelta(t, 0.0, Progress(0), 1e-9)
	assert.InDelta(t, 0.5, Progress(50), 1e-9)
	assert.InDelta(t, 1.0, Progress(8000), 1e-9)
}
