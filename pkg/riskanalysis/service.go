// Package riskanalysis 是蒙特卡洛引擎的应用层门面：
// 转换传输对象、套用配置默认值与上限、输出结构化日志与指标。
// 计算本身完全委托给 pkg/montecarlo，引擎保持纯函数语义。
package riskanalysis

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/logging"

	"github.com/wyfcoding/costrisk/pkg/config"
	"github.com/wyfcoding/costrisk/pkg/metrics"
	"github.com/wyfcoding/costrisk/pkg/montecarlo"
)

// AnalysisService 成本风险分析服务
type AnalysisService struct {
	defaults config.SimulationConfig
	metrics  *metrics.Metrics
}

// NewAnalysisService 构造函数。metrics 可为 nil（不采集指标）。
func NewAnalysisService(cfg config.SimulationConfig, m *metrics.Metrics) *AnalysisService {
	return &AnalysisService{
		defaults: cfg,
		metrics:  m,
	}
}

// RunAnalysis 执行一次成本风险分析。
//
// 引擎是 CPU 密集的同步计算，不提供中途取消；调用方若需要取消语义，
// 应在进入前检查上下文（此处仅做一次入口检查），并自行把计算挪出
// 延迟敏感路径。
func (s *AnalysisService) RunAnalysis(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iterations := req.Iterations
	if iterations == 0 {
		iterations = s.defaults.DefaultIterations
	}
	levels := req.ConfidenceLevels
	if len(levels) == 0 {
		levels = append([]float64(nil), s.defaults.DefaultConfidenceLevels...)
	}

	if s.defaults.MaxIterations > 0 && iterations > s.defaults.MaxIterations {
		return nil, fmt.Errorf("%w: iterations %d exceeds configured maximum %d",
			montecarlo.ErrValidation, iterations, s.defaults.MaxIterations)
	}
	if s.defaults.MaxRiskFactors > 0 && len(req.RiskFactors) > s.defaults.MaxRiskFactors {
		return nil, fmt.Errorf("%w: %d risk factors exceeds configured maximum %d",
			montecarlo.ErrValidation, len(req.RiskFactors), s.defaults.MaxRiskFactors)
	}

	factors := make(map[string]montecarlo.Distribution, len(req.RiskFactors))
	for name, dto := range req.RiskFactors {
		dist, err := toDistribution(name, dto)
		if err != nil {
			return nil, err
		}
		factors[name] = dist
	}

	logging.Info(ctx, "Starting Monte Carlo analysis",
		"base_cost", req.BaseCost,
		"risk_factors", len(factors),
		"iterations", iterations,
		"correlated", req.CorrelationMatrix != nil,
	)
	defer logging.LogDuration(ctx, "Monte Carlo analysis finished",
		"iterations", iterations,
	)()

	start := time.Now()
	result, err := montecarlo.RunSimulation(montecarlo.SimulationInput{
		BaseCost:         req.BaseCost,
		Factors:          factors,
		Correlation:      montecarlo.CorrelationMatrix(req.CorrelationMatrix),
		Iterations:       iterations,
		Seed:             req.Seed,
		ConfidenceLevels: levels,
	})
	if err != nil {
		logging.Error(ctx, "Monte Carlo analysis failed", "error", err)
		if s.metrics != nil {
			s.metrics.SimulationFailures.Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SimulationsTotal.Inc()
		s.metrics.SimulationDuration.Observe(time.Since(start).Seconds())
		s.metrics.SimulationIterations.Observe(float64(result.Iterations))
		s.metrics.RiskFactorsPerRun.Observe(float64(len(result.FactorsApplied)))
	}

	return toAnalysisResult(result), nil
}

// toAnalysisResult 渲染结果 DTO：金额两位小数，敏感度四位
func toAnalysisResult(r *montecarlo.SimulationResult) *AnalysisResult {
	percentiles := make(map[string]float64, len(r.Percentiles))
	for level, value := range r.Percentiles {
		percentiles[percentileLabel(level)] = money(value)
	}
	sensitivities := make(map[string]float64, len(r.Sensitivities))
	for name, corr := range r.Sensitivities {
		sensitivities[name] = decimal.NewFromFloat(corr).Round(4).InexactFloat64()
	}
	return &AnalysisResult{
		BaseCost:           money(r.BaseCost),
		MeanCost:           money(r.MeanCost),
		StdDev:             money(r.StdDev),
		Percentiles:        percentiles,
		MinCost:            money(r.MinCost),
		MaxCost:            money(r.MaxCost),
		Iterations:         r.Iterations,
		RiskFactorsApplied: r.FactorsApplied,
		Sensitivities:      sensitivities,
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
