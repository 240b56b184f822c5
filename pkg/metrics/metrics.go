// Package metrics 提供 Prometheus helper，包含模拟引擎的业务指标模板
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/costrisk/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// 模拟执行计数
	SimulationsTotal prometheus.Counter
	// 模拟失败计数（校验失败、数值失败均计入）
	SimulationFailures prometheus.Counter
	// 模拟耗时
	SimulationDuration prometheus.Histogram
	// 单次模拟的迭代次数分布
	SimulationIterations prometheus.Histogram
	// 单次模拟的风险因子数分布
	RiskFactorsPerRun prometheus.Histogram
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		SimulationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "costrisk",
			Subsystem: serviceName,
			Name:      "simulations_total",
			Help:      "Total Monte Carlo simulations completed",
		}),
		SimulationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "costrisk",
			Subsystem: serviceName,
			Name:      "simulation_failures_total",
			Help:      "Total Monte Carlo simulations that returned an error",
		}),
		SimulationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "costrisk",
			Subsystem: serviceName,
			Name:      "simulation_duration_seconds",
			Help:      "Monte Carlo simulation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SimulationIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "costrisk",
			Subsystem: serviceName,
			Name:      "simulation_iterations",
			Help:      "Iteration count per simulation",
			Buckets:   []float64{1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		}),
		RiskFactorsPerRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "costrisk",
			Subsystem: serviceName,
			Name:      "risk_factors_per_run",
			Help:      "Risk factor count per simulation",
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.SimulationsTotal,
		m.SimulationFailures,
		m.SimulationDuration,
		m.SimulationIterations,
		m.RiskFactorsPerRun,
	}

	for _, collector := range collectors {
		if err := prometheus.DefaultRegisterer.Register(collector); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}
