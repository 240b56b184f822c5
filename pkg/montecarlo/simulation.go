package montecarlo

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// SimulationInput 蒙特卡洛模拟输入参数
type SimulationInput struct {
	// BaseCost 基准成本（风险前），必须为正
	BaseCost float64
	// Factors 风险因子集合，键为因子名；遍历顺序与结果无关，
	// 引擎内部按因子名排序固定列顺序，保证可复现
	Factors map[string]Distribution
	// Correlation 可选的目标秩相关矩阵，nil 表示因子相互独立
	Correlation CorrelationMatrix
	// Iterations 模拟次数（例如 10000），必须为正
	Iterations int
	// Seed 随机种子，相同输入与种子产出逐位一致的结果
	Seed int64
	// ConfidenceLevels 请求的置信水平，各自须落在开区间 (0,1)
	ConfidenceLevels []float64
}

// SimulationResult 蒙特卡洛模拟输出结果。
// 金额字段为 decimal，由 float64 计算结果在边界处一次转换。
type SimulationResult struct {
	BaseCost decimal.Decimal
	// MeanCost 模拟成本均值
	MeanCost decimal.Decimal
	// StdDev 总体标准差（与 np.std 一致，除以 n 而非 n-1）
	StdDev decimal.Decimal
	// Percentiles 置信水平到成本分位数的映射，线性插值法
	Percentiles map[float64]decimal.Decimal
	MinCost     decimal.Decimal
	MaxCost     decimal.Decimal
	// Iterations 实际使用的迭代次数
	Iterations int
	// FactorsApplied 参与模拟的因子名，按名称升序
	FactorsApplied []string
	// Sensitivities 因子名到 Spearman 秩相关系数的映射，取值 [-1,1]
	Sensitivities map[string]float64
}

// RunSimulation 执行一次完整的蒙特卡洛成本风险模拟。
//
// 流程：拉丁超立方采样 → 各因子逆 CDF 变换 → 可选 Iman-Conover 相关注入
// → 按迭代合计 multiplier = 1 + Σdeltas 并作用于基准成本 → 统计摘要与
// 敏感度分析。所有校验在任何采样开始前完成，失败即返回，绝不部分计算。
func RunSimulation(input SimulationInput) (*SimulationResult, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	names := sortedFactorNames(input.Factors)
	n := input.Iterations
	d := len(names)

	// 无风险因子时每次迭代都恰为基准成本
	if d == 0 {
		return degenerateResult(&input), nil
	}

	rng := rand.New(rand.NewSource(input.Seed))
	uniform := latinHypercube(rng, n, d)

	// 逆 CDF 变换：每列均匀样本映射为该因子的成本冲击
	deltas := uniform
	for j, name := range names {
		dist := input.Factors[name]
		for i := 0; i < n; i++ {
			deltas[i][j] = dist.quantile(uniform[i][j])
		}
	}

	if input.Correlation != nil {
		correlated, err := imanConover(deltas, input.Correlation)
		if err != nil {
			return nil, err
		}
		deltas = correlated
	}

	// 合计：multiplier = 1 + Σdeltas，成本 = base_cost × multiplier
	costs := make([]float64, n)
	for i := 0; i < n; i++ {
		total := 1.0
		for j := 0; j < d; j++ {
			total += deltas[i][j]
		}
		costs[i] = input.BaseCost * total
	}

	mean, _ := stats.Mean(costs)
	stdDev, _ := stats.StandardDeviationPopulation(costs)
	minCost, _ := stats.Min(costs)
	maxCost, _ := stats.Max(costs)

	sorted := append([]float64(nil), costs...)
	sort.Float64s(sorted)
	percentiles := make(map[float64]decimal.Decimal, len(input.ConfidenceLevels))
	for _, level := range input.ConfidenceLevels {
		percentiles[level] = decimal.NewFromFloat(percentileLinear(sorted, level))
	}

	// 敏感度基于相关注入之后的取值计算：调用方拿到的系数反映
	// 因子在最终（含依赖结构）模拟中的实际影响
	sensitivities := make(map[string]float64, d)
	colBuf := make([]float64, n)
	for j, name := range names {
		for i := 0; i < n; i++ {
			colBuf[i] = deltas[i][j]
		}
		sensitivities[name] = spearman(colBuf, costs)
	}

	return &SimulationResult{
		BaseCost:       decimal.NewFromFloat(input.BaseCost),
		MeanCost:       decimal.NewFromFloat(mean),
		StdDev:         decimal.NewFromFloat(stdDev),
		Percentiles:    percentiles,
		MinCost:        decimal.NewFromFloat(minCost),
		MaxCost:        decimal.NewFromFloat(maxCost),
		Iterations:     n,
		FactorsApplied: names,
		Sensitivities:  sensitivities,
	}, nil
}

func validateInput(input *SimulationInput) error {
	if !(input.BaseCost > 0) {
		return fmt.Errorf("%w: base_cost must be positive, got %v", ErrValidation, input.BaseCost)
	}
	if input.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrValidation, input.Iterations)
	}
	for _, level := range input.ConfidenceLevels {
		if !(level > 0 && level < 1) {
			return fmt.Errorf("%w: confidence level %v outside (0, 1)", ErrValidation, level)
		}
	}
	for name, dist := range input.Factors {
		if name == "" {
			return fmt.Errorf("%w: risk factor name must not be empty", ErrValidation)
		}
		if dist == nil {
			return fmt.Errorf("%w: factor %q has no distribution", ErrUnsupportedDistribution, name)
		}
		if err := dist.validate(name); err != nil {
			return err
		}
	}
	if input.Correlation != nil {
		if err := validateCorrelationMatrix(input.Correlation, len(input.Factors)); err != nil {
			return err
		}
	}
	return nil
}

func sortedFactorNames(factors map[string]Distribution) []string {
	names := make([]string, 0, len(factors))
	for name := range factors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func degenerateResult(input *SimulationInput) *SimulationResult {
	base := decimal.NewFromFloat(input.BaseCost)
	percentiles := make(map[float64]decimal.Decimal, len(input.ConfidenceLevels))
	for _, level := range input.ConfidenceLevels {
		percentiles[level] = base
	}
	return &SimulationResult{
		BaseCost:       base,
		MeanCost:       base,
		StdDev:         decimal.Zero,
		Percentiles:    percentiles,
		MinCost:        base,
		MaxCost:        base,
		Iterations:     input.Iterations,
		FactorsApplied: []string{},
		Sensitivities:  map[string]float64{},
	}
}

// percentileLinear 在排序后的样本上做线性插值分位数
// （与 numpy.percentile 的 "linear" 方法一致）
func percentileLinear(sorted []float64, level float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := level * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
