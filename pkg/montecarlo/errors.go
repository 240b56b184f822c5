package montecarlo

import "errors"

// 引擎的错误分类。调用方通过 errors.Is 区分三类失败：
// 输入校验失败、不支持的分布类型、数值计算失败。
// 数值失败单独成类，便于调用方决定是否去掉相关性矩阵后重试。
var (
	// ErrValidation 输入校验失败（参数越界、矩阵形状错误等），模拟开始前返回
	ErrValidation = errors.New("montecarlo: invalid input")
	// ErrUnsupportedDistribution 不支持的分布类型，属配置/编程错误
	ErrUnsupportedDistribution = errors.New("montecarlo: unsupported distribution")
	// ErrNumerical 数值计算失败（如 Cholesky 分解失败）
	ErrNumerical = errors.New("montecarlo: numerical failure")
)
