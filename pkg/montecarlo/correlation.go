package montecarlo

import (
	"fmt"
	"math"
	"sort"

	algorithm "github.com/wyfcoding/pkg/algos/math"
)

// CorrelationMatrix 风险因子间的目标秩相关矩阵。
// 维度等于参与相关的因子数（按因子名排序），要求对称、对角线为 1、
// 元素取值在 [-1, 1]，且可 Cholesky 分解（半正定）。
type CorrelationMatrix [][]float64

// symmetryTolerance 对称性与对角线检查的浮点容差
const symmetryTolerance = 1e-9

// validateCorrelationMatrix 校验矩阵形状与元素约束。
// 半正定性不在此处判定，由 Cholesky 分解本身判定并归类为数值失败。
func validateCorrelationMatrix(m CorrelationMatrix, n int) error {
	if len(m) != n {
		return fmt.Errorf("%w: correlation matrix has %d rows, expected %dx%d for %d risk factors",
			ErrValidation, len(m), n, n, n)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: correlation matrix row %d has %d columns, expected %d",
				ErrValidation, i, len(row), n)
		}
	}
	for i := 0; i < n; i++ {
		if math.Abs(m[i][i]-1) > symmetryTolerance {
			return fmt.Errorf("%w: correlation matrix diagonal must be 1.0, got %v at [%d][%d]",
				ErrValidation, m[i][i], i, i)
		}
		for j := 0; j < n; j++ {
			// NaN 与任何比较都为 false，须显式拒绝，否则会漏过
			// 区间与对称性检查、流入 Cholesky 分解
			if math.IsNaN(m[i][j]) {
				return fmt.Errorf("%w: correlation matrix entry [%d][%d] is NaN",
					ErrValidation, i, j)
			}
			if m[i][j] < -1 || m[i][j] > 1 {
				return fmt.Errorf("%w: correlation matrix entry [%d][%d] = %v outside [-1, 1]",
					ErrValidation, i, j, m[i][j])
			}
			if math.Abs(m[i][j]-m[j][i]) > symmetryTolerance {
				return fmt.Errorf("%w: correlation matrix not symmetric at [%d][%d]",
					ErrValidation, i, j)
			}
		}
	}
	return nil
}

// imanConover 用 Iman-Conover 方法对已变换的样本矩阵注入目标秩相关，
// 每列仅做重排，边缘分布严格保持不变。
//
// 步骤：
//  1. 目标矩阵 Cholesky 分解 C = LLᵗ（失败归为数值错误，不降级不近似）
//  2. 各列秩变换后映射为 van der Waerden 正态得分 Φ⁻¹((rank−0.5)/n)
//  3. 得分矩阵右乘 Lᵗ（逐行计算 L·z），得到带目标相关结构的正态得分
//  4. 对相关得分逐列取秩
//  5. 把各列原始取值按升序重新分配到步骤 4 的秩序位置上
func imanConover(deltas [][]float64, corr CorrelationMatrix) ([][]float64, error) {
	n := len(deltas)
	if n == 0 {
		return deltas, nil
	}
	d := len(deltas[0])

	matrix, err := algorithm.NewMatrixFromData([][]float64(corr))
	if err != nil {
		return nil, fmt.Errorf("%w: building correlation matrix: %v", ErrNumerical, err)
	}
	chol, err := matrix.Cholesky()
	if err != nil {
		return nil, fmt.Errorf("%w: cholesky decomposition failed (matrix not positive semi-definite): %v",
			ErrNumerical, err)
	}

	// van der Waerden 正态得分
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, d)
	}
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		for i := 0; i < n; i++ {
			col[i] = deltas[i][j]
		}
		for i, rank := range rankOrdinal(col) {
			scores[i][j] = normalQuantile((float64(rank) - 0.5) / float64(n))
		}
	}

	// 逐行注入相关性：correlated_i = L · scores_i
	correlated := make([][]float64, n)
	for i := 0; i < n; i++ {
		row, err := chol.MultiplyVector(scores[i])
		if err != nil {
			return nil, fmt.Errorf("%w: applying cholesky factor: %v", ErrNumerical, err)
		}
		correlated[i] = row
	}

	// 按相关得分的秩序重排原始取值
	result := make([][]float64, n)
	for i := range result {
		result[i] = make([]float64, d)
	}
	sortedCol := make([]float64, n)
	for j := 0; j < d; j++ {
		for i := 0; i < n; i++ {
			col[i] = correlated[i][j]
			sortedCol[i] = deltas[i][j]
		}
		order := argsort(col)
		sort.Float64s(sortedCol)
		for k, pos := range order {
			result[pos][j] = sortedCol[k]
		}
	}
	return result, nil
}

// rankOrdinal 返回 1..n 的序数秩，并列值按原始顺序定秩
func rankOrdinal(values []float64) []int {
	order := argsort(values)
	ranks := make([]int, len(values))
	for k, idx := range order {
		ranks[idx] = k + 1
	}
	return ranks
}

// argsort 返回使 values 升序的下标排列，并列值保持原始顺序
func argsort(values []float64) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})
	return order
}
