package montecarlo

import "math/rand"

// latinHypercube 生成 n×d 的拉丁超立方均匀样本矩阵，取值范围 [0,1)。
// 每个维度把 [0,1) 划分为 n 个等宽分层，每层恰好落一个随机点，
// 再对层与样本的对应关系做随机置换。各维度独立置换，分层本身
// 不会引入维度间相关性；需要的相关性由 Iman-Conover 显式注入。
//
// 随机源由调用方传入（按请求构造、种子确定），相同 (seed, n, d)
// 产出逐位一致的矩阵。
func latinHypercube(r *rand.Rand, n, d int) [][]float64 {
	samples := make([][]float64, n)
	for i := range samples {
		samples[i] = make([]float64, d)
	}

	for j := 0; j < d; j++ {
		perm := r.Perm(n)
		for i := 0; i < n; i++ {
			samples[i][j] = (float64(perm[i]) + r.Float64()) / float64(n)
		}
	}
	return samples
}
