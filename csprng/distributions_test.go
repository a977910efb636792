package csprng

import (
	"math"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/require"
)

// TestCenteredBinomialVariance is the statistical self-test spec §8 expects
// of the random engine: the centered binomial distribution, Binomial(4η) -
// 2η, has mean 0 and variance η. Sampling many draws and checking the
// empirical variance against that closed form catches a broken bit-sum or
// an off-by-one in the shift, which a handful of deterministic unit
// vectors would not.
func TestCenteredBinomialVariance(t *testing.T) {
	eng, err := NewEngineFromSeed()
	require.NoError(t, err)

	const eta = 10
	const draws = 20000

	samples := make([]float64, draws)
	for i := range samples {
		samples[i] = float64(CenteredBinomial(eng, eta))
	}

	mean, err := stats.Mean(samples)
	require.NoError(t, err)
	require.Less(t, math.Abs(mean), 0.5)

	variance, err := stats.Variance(samples)
	require.NoError(t, err)
	require.InDelta(t, float64(eta), variance, 1.0)
}

// TestBinomialRange checks that Binomial(n) never leaves [0, n].
func TestBinomialRange(t *testing.T) {
	eng, err := NewEngineFromSeed()
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		v := Binomial(eng, 37)
		require.GreaterOrEqual(t, v, 0)
		require.LessOrEqual(t, v, 37)
	}
}
