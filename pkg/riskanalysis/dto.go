package riskanalysis

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/costrisk/pkg/montecarlo"
)

// RiskFactorDTO 风险因子的传输表示。分布类型为字符串，
// 参数按分布种类选填（指针区分"未提供"与零值）。
type RiskFactorDTO struct {
	Distribution string   `json:"distribution"`
	MinValue     *float64 `json:"min_value,omitempty"`
	MostLikely   *float64 `json:"most_likely,omitempty"`
	MaxValue     *float64 `json:"max_value,omitempty"`
	Mean         *float64 `json:"mean,omitempty"`
	StdDev       *float64 `json:"std_dev,omitempty"`
}

// AnalysisRequest 一次成本风险分析请求
type AnalysisRequest struct {
	BaseCost          float64                  `json:"base_cost"`
	RiskFactors       map[string]RiskFactorDTO `json:"risk_factors"`
	CorrelationMatrix [][]float64              `json:"correlation_matrix,omitempty"`
	// Iterations 为 0 时使用配置默认值
	Iterations int   `json:"iterations,omitempty"`
	Seed       int64 `json:"seed"`
	// ConfidenceLevels 为空时使用配置默认值
	ConfidenceLevels []float64 `json:"confidence_levels,omitempty"`
}

// AnalysisResult 分析结果。金额保留两位小数，敏感度保留四位。
type AnalysisResult struct {
	BaseCost float64 `json:"base_cost"`
	MeanCost float64 `json:"mean_cost"`
	StdDev   float64 `json:"std_dev"`
	// Percentiles 键形如 "p50"、"p80"、"p97.5"
	Percentiles        map[string]float64 `json:"percentiles"`
	MinCost            float64            `json:"min_cost"`
	MaxCost            float64            `json:"max_cost"`
	Iterations         int                `json:"iterations"`
	RiskFactorsApplied []string           `json:"risk_factors_applied"`
	Sensitivities      map[string]float64 `json:"sensitivities"`
}

// toDistribution 把字符串分布类型映射为引擎的封闭分布变体。
// 未识别的类型报 ErrUnsupportedDistribution，缺参报 ErrValidation。
func toDistribution(name string, dto RiskFactorDTO) (montecarlo.Distribution, error) {
	switch strings.ToLower(dto.Distribution) {
	case "uniform":
		if dto.MinValue == nil || dto.MaxValue == nil {
			return nil, missingParams(name, "uniform", "min_value, max_value")
		}
		return montecarlo.Uniform{Min: *dto.MinValue, Max: *dto.MaxValue}, nil
	case "triangular":
		if dto.MinValue == nil || dto.MostLikely == nil || dto.MaxValue == nil {
			return nil, missingParams(name, "triangular", "min_value, most_likely, max_value")
		}
		return montecarlo.Triangular{Min: *dto.MinValue, Mode: *dto.MostLikely, Max: *dto.MaxValue}, nil
	case "pert":
		if dto.MinValue == nil || dto.MostLikely == nil || dto.MaxValue == nil {
			return nil, missingParams(name, "pert", "min_value, most_likely, max_value")
		}
		return montecarlo.PERT{Min: *dto.MinValue, Mode: *dto.MostLikely, Max: *dto.MaxValue}, nil
	case "normal":
		if dto.Mean == nil || dto.StdDev == nil {
			return nil, missingParams(name, "normal", "mean, std_dev")
		}
		return montecarlo.Normal{Mean: *dto.Mean, StdDev: *dto.StdDev}, nil
	case "lognormal":
		if dto.Mean == nil || dto.StdDev == nil {
			return nil, missingParams(name, "lognormal", "mean, std_dev")
		}
		return montecarlo.LogNormal{Mu: *dto.Mean, Sigma: *dto.StdDev}, nil
	default:
		return nil, fmt.Errorf("%w: factor %q declares unknown distribution %q",
			montecarlo.ErrUnsupportedDistribution, name, dto.Distribution)
	}
}

func missingParams(name, kind, params string) error {
	return fmt.Errorf("%w: factor %q: %s distribution requires %s",
		montecarlo.ErrValidation, name, kind, params)
}

// percentileLabel 置信水平的展示键，如 0.8 → "p80"、0.975 → "p97.5"。
// 经 decimal 放大避免浮点十进制伪差（0.975×100 ≠ 97.5）。
func percentileLabel(level float64) string {
	return "p" + decimal.NewFromFloat(level).Mul(decimal.NewFromInt(100)).String()
}
