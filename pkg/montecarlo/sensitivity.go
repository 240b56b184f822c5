package montecarlo

import "github.com/montanaflynn/stats"

// spearman 计算两个向量的 Spearman 秩相关系数：
// 各自独立取秩后，对秩向量计算 Pearson 相关。
// 系数有符号，取值 [-1, 1]，量纲无关，对单调非线性关系稳健。
// 并列值采用序数秩（按出现顺序定秩）而非平均秩；输入来自
// 连续分布的采样，并列概率为零，两种约定在此等价。
func spearman(x, y []float64) float64 {
	corr, err := stats.Pearson(rankFloats(x), rankFloats(y))
	if err != nil {
		return 0
	}
	return corr
}

func rankFloats(values []float64) []float64 {
	ranks := make([]float64, len(values))
	for i, rank := range rankOrdinal(values) {
		ranks[i] = float64(rank)
	}
	return ranks
}
