package evaluator

// FitSlope 对数值序列做一阶最小二乘拟合，返回斜率
// 自变量为读数下标（0..n-1），即斜率单位为"每个读数间隔的变化量"
// 读数不足 2 条时返回 0（趋势分析由调用方跳过）
func FitSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	return (nf*sumXY - sumX*sumY) / denom
}
