package montecarlo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSimulationInputValidation(t *testing.T) {
	valid := SimulationInput{
		BaseCost:         100000,
		Factors:          map[string]Distribution{"f": Uniform{Min: -0.1, Max: 0.1}},
		Iterations:       100,
		Seed:             1,
		ConfidenceLevels: []float64{0.5},
	}

	cases := []struct {
		name   string
		mutate func(*SimulationInput)
	}{
		{"zero base cost", func(in *SimulationInput) { in.BaseCost = 0 }},
		{"negative base cost", func(in *SimulationInput) { in.BaseCost = -5 }},
		{"zero iterations", func(in *SimulationInput) { in.Iterations = 0 }},
		{"negative iterations", func(in *SimulationInput) { in.Iterations = -10 }},
		{"confidence level zero", func(in *SimulationInput) { in.ConfidenceLevels = []float64{0} }},
		{"confidence level one", func(in *SimulationInput) { in.ConfidenceLevels = []float64{1} }},
		{"confidence level above one", func(in *SimulationInput) { in.ConfidenceLevels = []float64{1.5} }},
		{"bad factor params", func(in *SimulationInput) {
			in.Factors = map[string]Distribution{"f": Uniform{Min: 0.1, Max: 0.1}}
		}},
		{"correlation size mismatch", func(in *SimulationInput) {
			in.Correlation = CorrelationMatrix{{1, 0}, {0, 1}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := RunSimulation(in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	t.Run("nil distribution", func(t *testing.T) {
		in := valid
		in.Factors = map[string]Distribution{"f": nil}
		_, err := RunSimulation(in)
		require.ErrorIs(t, err, ErrUnsupportedDistribution)
	})
}

func TestRunSimulationNoFactors(t *testing.T) {
	result, err := RunSimulation(SimulationInput{
		BaseCost:         500000,
		Factors:          nil,
		Iterations:       1000,
		Seed:             42,
		ConfidenceLevels: []float64{0.5, 0.8, 0.95},
	})
	require.NoError(t, err)

	// 每次迭代都恰为基准成本
	assert.True(t, result.MeanCost.Equal(result.BaseCost))
	assert.True(t, result.StdDev.IsZero())
	assert.True(t, result.MinCost.Equal(result.BaseCost))
	assert.True(t, result.MaxCost.Equal(result.BaseCost))
	for level, p := range result.Percentiles {
		assert.True(t, p.Equal(result.BaseCost), "percentile %v", level)
	}
	assert.Equal(t, 1000, result.Iterations)
	assert.Empty(t, result.FactorsApplied)
	assert.Empty(t, result.Sensitivities)
}

func TestRunSimulationDeterministic(t *testing.T) {
	input := SimulationInput{
		BaseCost: 250000,
		Factors: map[string]Distribution{
			"labor":    Triangular{Min: -0.05, Mode: 0.02, Max: 0.15},
			"material": Normal{Mean: 0.01, StdDev: 0.03},
			"schedule": PERT{Min: -0.02, Mode: 0.0, Max: 0.1},
		},
		Correlation: CorrelationMatrix{
			{1, 0.5, 0},
			{0.5, 1, 0},
			{0, 0, 1},
		},
		Iterations:       5000,
		Seed:             123,
		ConfidenceLevels: []float64{0.5, 0.8, 0.95},
	}

	first, err := RunSimulation(input)
	require.NoError(t, err)
	second, err := RunSimulation(input)
	require.NoError(t, err)

	// 相同输入与种子，逐位一致
	require.Equal(t, first, second)

	input.Seed = 124
	third, err := RunSimulation(input)
	require.NoError(t, err)
	assert.NotEqual(t, first.MeanCost, third.MeanCost)
}

func TestRunSimulationPercentileOrdering(t *testing.T) {
	result, err := RunSimulation(SimulationInput{
		BaseCost: 1000000,
		Factors: map[string]Distribution{
			"risk": Triangular{Min: -0.1, Mode: 0.0, Max: 0.2},
		},
		Iterations:       20000,
		Seed:             7,
		ConfidenceLevels: []float64{0.5, 0.8, 0.95},
	})
	require.NoError(t, err)

	p50 := result.Percentiles[0.5].InexactFloat64()
	p80 := result.Percentiles[0.8].InexactFloat64()
	p95 := result.Percentiles[0.95].InexactFloat64()
	assert.Less(t, p50, p80)
	assert.Less(t, p80, p95)
	assert.GreaterOrEqual(t, p50, result.MinCost.InexactFloat64())
	assert.LessOrEqual(t, p95, result.MaxCost.InexactFloat64())
}

func TestTriangularMeanConvergence(t *testing.T) {
	const (
		min  = -0.1
		mode = 0.05
		max  = 0.3
	)
	result, err := RunSimulation(SimulationInput{
		BaseCost:         1000000,
		Factors:          map[string]Distribution{"f": Triangular{Min: min, Mode: mode, Max: max}},
		Iterations:       100000,
		Seed:             42,
		ConfidenceLevels: []float64{0.5},
	})
	require.NoError(t, err)

	expected := 1000000 * (1 + (min+mode+max)/3)
	assert.InEpsilon(t, expected, result.MeanCost.InexactFloat64(), 0.02)
}

func TestPERTMeanConvergence(t *testing.T) {
	const (
		min  = -0.1
		mode = 0.02
		max  = 0.25
	)
	result, err := RunSimulation(SimulationInput{
		BaseCost:         1000000,
		Factors:          map[string]Distribution{"f": PERT{Min: min, Mode: mode, Max: max}},
		Iterations:       100000,
		Seed:             42,
		ConfidenceLevels: []float64{0.5},
	})
	require.NoError(t, err)

	expected := 1000000 * (1 + (min+4*mode+max)/6)
	assert.InEpsilon(t, expected, result.MeanCost.InexactFloat64(), 0.02)
}

func TestSensitivityOrdering(t *testing.T) {
	result, err := RunSimulation(SimulationInput{
		BaseCost: 1000000,
		Factors: map[string]Distribution{
			"small": Normal{Mean: 0, StdDev: 0.01},
			"large": Normal{Mean: 0, StdDev: 0.10},
		},
		Iterations:       20000,
		Seed:             11,
		ConfidenceLevels: []float64{0.5},
	})
	require.NoError(t, err)

	small := math.Abs(result.Sensitivities["small"])
	large := math.Abs(result.Sensitivities["large"])
	assert.Greater(t, large, small)
	for name, s := range result.Sensitivities {
		assert.GreaterOrEqual(t, s, -1.0, name)
		assert.LessOrEqual(t, s, 1.0, name)
	}
}

func TestFactorOrderIndependentOfMapOrder(t *testing.T) {
	result, err := RunSimulation(SimulationInput{
		BaseCost: 100000,
		Factors: map[string]Distribution{
			"zeta":  Uniform{Min: -0.1, Max: 0.1},
			"alpha": Uniform{Min: -0.1, Max: 0.1},
			"mid":   Uniform{Min: -0.1, Max: 0.1},
		},
		Iterations:       100,
		Seed:             3,
		ConfidenceLevels: []float64{0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, result.FactorsApplied)
}

func TestEndToEndExample(t *testing.T) {
	result, err := RunSimulation(SimulationInput{
		BaseCost: 1000000,
		Factors: map[string]Distribution{
			"market": Triangular{Min: -0.1, Mode: 0.0, Max: 0.2},
		},
		Iterations:       100000,
		Seed:             42,
		ConfidenceLevels: []float64{0.5, 0.8, 0.95},
	})
	require.NoError(t, err)

	// 三角分布均值 (−0.1+0+0.2)/3 ≈ 0.0333 → 期望成本约 1,033,333
	mean := result.MeanCost.InexactFloat64()
	assert.Greater(t, mean, 1023000.0)
	assert.Less(t, mean, 1043000.0)

	p50 := result.Percentiles[0.5].InexactFloat64()
	p80 := result.Percentiles[0.8].InexactFloat64()
	p95 := result.Percentiles[0.95].InexactFloat64()
	assert.Less(t, p50, p80)
	assert.Less(t, p80, p95)
	assert.Equal(t, 100000, result.Iterations)
}

func TestPercentileLinear(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 3.0, percentileLinear(data, 0.5), 1e-12)
	assert.InDelta(t, 2.0, percentileLinear(data, 0.25), 1e-12)
	assert.InDelta(t, 4.2, percentileLinear(data, 0.8), 1e-12)
	assert.InDelta(t, 1.0, percentileLinear(data, 1e-9), 1e-6)

	single := []float64{7}
	assert.Equal(t, 7.0, percentileLinear(single, 0.5))
}
