// Package montecarlo 实现项目成本的蒙特卡洛风险模拟引擎。
//
// 引擎是一个无状态的纯计算：给定基准成本、一组独立的风险因子（各自声明
// 概率分布）、可选的秩相关矩阵、迭代次数与随机种子，输出成本分布的统计
// 摘要（均值、标准差、分位数）以及各因子的敏感度排序。
// 同一输入与种子保证逐位一致的输出，引擎内部不做任何 I/O 与日志。
package montecarlo

import (
	"fmt"
	"math"
)

// Distribution 风险因子的概率分布定义。
// 五种分布构成封闭集合（uniform / triangular / normal / lognormal / pert），
// 每种分布携带自己的参数并在模拟开始前完成一次校验。
// 因子的取值解释为成本的分数调整，例如 0.05 表示 +5%。
type Distribution interface {
	// Kind 返回分布类型名
	Kind() string

	// validate 校验参数约束，违反约束直接报错，绝不静默修正
	validate(name string) error
	// quantile 逆累积分布函数（分位数函数），把 [0,1) 均匀样本映射为分布取值
	quantile(u float64) float64
}

// Uniform 均匀分布 U(min, max)
type Uniform struct {
	Min float64
	Max float64
}

func (d Uniform) Kind() string { return "uniform" }

func (d Uniform) validate(name string) error {
	if !(d.Min < d.Max) {
		return fmt.Errorf("%w: factor %q: uniform requires min < max (min=%v, max=%v)",
			ErrValidation, name, d.Min, d.Max)
	}
	return nil
}

func (d Uniform) quantile(u float64) float64 {
	return d.Min + u*(d.Max-d.Min)
}

// Triangular 三角分布 Tri(min, mode, max)
type Triangular struct {
	Min  float64
	Mode float64
	Max  float64
}

func (d Triangular) Kind() string { return "triangular" }

func (d Triangular) validate(name string) error {
	return validateThreePoint(name, "triangular", d.Min, d.Mode, d.Max)
}

func (d Triangular) quantile(u float64) float64 {
	span := d.Max - d.Min
	// 众数处的 CDF 值，决定落在左支还是右支
	fc := (d.Mode - d.Min) / span
	if u < fc {
		return d.Min + math.Sqrt(u*span*(d.Mode-d.Min))
	}
	return d.Max - math.Sqrt((1-u)*span*(d.Max-d.Mode))
}

// PERT 分布：缩放到 [min, max] 的四参数 Beta 分布，
// 形状参数 α = 1 + 4·(mode−min)/(max−min)，β = 1 + 4·(max−mode)/(max−min)，
// 均值为 (min + 4·mode + max)/6。
type PERT struct {
	Min  float64
	Mode float64
	Max  float64
}

func (d PERT) Kind() string { return "pert" }

func (d PERT) validate(name string) error {
	return validateThreePoint(name, "pert", d.Min, d.Mode, d.Max)
}

func (d PERT) quantile(u float64) float64 {
	span := d.Max - d.Min
	alpha := 1 + 4*(d.Mode-d.Min)/span
	beta := 1 + 4*(d.Max-d.Mode)/span
	return d.Min + span*betaQuantile(u, alpha, beta)
}

// Normal 正态分布 N(mean, std_dev²)
type Normal struct {
	Mean   float64
	StdDev float64
}

func (d Normal) Kind() string { return "normal" }

func (d Normal) validate(name string) error {
	if !(d.StdDev > 0) {
		return fmt.Errorf("%w: factor %q: normal requires std_dev > 0 (got %v)",
			ErrValidation, name, d.StdDev)
	}
	return nil
}

func (d Normal) quantile(u float64) float64 {
	return d.Mean + d.StdDev*normalQuantile(u)
}

// LogNormal 对数正态分布。Mu/Sigma 是对数空间中底层正态分布的参数；
// 取值为 exp(mu + sigma·Φ⁻¹(u)) − 1，即乘性冲击减一后并入加性合计。
// 注意：乘性减一的取值会与其他加性因子在同一 multiplier 合计中混用，
// 该混合语义有待需求方确认后再行调整。
type LogNormal struct {
	Mu    float64
	Sigma float64
}

func (d LogNormal) Kind() string { return "lognormal" }

func (d LogNormal) validate(name string) error {
	if !(d.Sigma > 0) {
		return fmt.Errorf("%w: factor %q: lognormal requires sigma > 0 (got %v)",
			ErrValidation, name, d.Sigma)
	}
	return nil
}

func (d LogNormal) quantile(u float64) float64 {
	return math.Exp(d.Mu+d.Sigma*normalQuantile(u)) - 1
}

// validateThreePoint 校验三点估计 min ≤ mode ≤ max 且 min < max
func validateThreePoint(name, kind string, min, mode, max float64) error {
	if !(min < max) {
		return fmt.Errorf("%w: factor %q: %s requires min < max (min=%v, max=%v)",
			ErrValidation, name, kind, min, max)
	}
	if mode < min || mode > max {
		return fmt.Errorf("%w: factor %q: %s requires min <= most_likely <= max (got %v)",
			ErrValidation, name, kind, mode)
	}
	return nil
}
