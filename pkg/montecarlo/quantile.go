package montecarlo

import "math"

// 本文件实现引擎依赖的两个特殊函数：标准正态分位数 Φ⁻¹ 与 Beta 分布
// 分位数。包内 pack 的第三方库均不提供 ppf/quantile 族函数，
// 因此基于 math.Erfinv 与正则化不完全 Beta 函数（Lentz 连分式）自行实现。

// normalQuantile 标准正态分布的分位数函数 Φ⁻¹(p)。
// p <= 0 返回 -Inf，p >= 1 返回 +Inf。
func normalQuantile(p float64) float64 {
	switch {
	case p <= 0:
		return math.Inf(-1)
	case p >= 1:
		return math.Inf(1)
	}
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

// betaQuantile Beta(α, β) 分布的分位数函数。
// 利用 CDF 单调性做 Newton 迭代，步长越界时退化为二分保证收敛。
func betaQuantile(p, alpha, beta float64) float64 {
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	}

	lnBeta := lgamma(alpha) + lgamma(beta) - lgamma(alpha+beta)

	lo, hi := 0.0, 1.0
	x := 0.5
	for i := 0; i < 100; i++ {
		f := regIncompleteBeta(x, alpha, beta) - p
		if f > 0 {
			hi = x
		} else {
			lo = x
		}

		// Newton 步：f' 即 Beta 密度，取对数避免上溢/下溢
		logPDF := (alpha-1)*math.Log(x) + (beta-1)*math.Log1p(-x) - lnBeta
		next := x - f*math.Exp(-logPDF)
		if !(next > lo && next < hi) {
			next = (lo + hi) / 2
		}
		if math.Abs(next-x) <= 1e-15 {
			return next
		}
		x = next
	}
	return x
}

// regIncompleteBeta 正则化不完全 Beta 函数 I_x(a, b)
func regIncompleteBeta(x, a, b float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}

	front := math.Exp(lgamma(a+b) - lgamma(a) - lgamma(b) +
		a*math.Log(x) + b*math.Log1p(-x))

	// 连分式在 x < (a+1)/(a+b+2) 时收敛快，否则用对称关系换边
	if x < (a+1)/(a+b+2) {
		return front * betaContinuedFraction(x, a, b) / a
	}
	return 1 - front*betaContinuedFraction(1-x, b, a)/b
}

// betaContinuedFraction 不完全 Beta 函数的连分式展开（modified Lentz 法）
func betaContinuedFraction(x, a, b float64) float64 {
	const (
		maxIterations = 300
		epsilon       = 3e-15
		tiny          = 1e-300
	)

	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIterations; m++ {
		fm := float64(m)
		m2 := 2 * fm

		// 偶数项
		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		// 奇数项
		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		delta := d * c
		h *= delta

		if math.Abs(delta-1) < epsilon {
			break
		}
	}
	return h
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
