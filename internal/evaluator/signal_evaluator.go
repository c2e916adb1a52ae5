package evaluator

import (
	"fmt"

	"triage-bridge/internal/models"
)

// SignalEvaluator 单信号评估器（阈值 + 趋势）
type SignalEvaluator struct {
	signal models.Signal
	config models.SignalConfig
}

// NewSignalEvaluator 创建单信号评估器
func NewSignalEvaluator(signal models.Signal, config models.SignalConfig) *SignalEvaluator {
	return &SignalEvaluator{
		signal: signal,
		config: config,
	}
}

// Evaluate 评估一个信号的读数序列
// 判定顺序：
//  1. 读数不足 2 条时跳过趋势分析，仅对最新值做红区检查
//  2. 最新值越过红区阈值 → CRITICAL 标记（优先于趋势标记）
//  3. 否则斜率在恶化方向上超过预警阈值 → WARNING 标记
//  4. 否则无标记
//
// 同一信号一次评估最多产生一条标记
func (e *SignalEvaluator) Evaluate(series []models.VitalReading) (models.SignalResult, *models.RiskFlag) {
	result := models.SignalResult{
		Signal: e.signal,
		Trend:  models.TrendInsufficientData,
	}

	if len(series) == 0 {
		return result, nil
	}

	latest := series[len(series)-1].Value
	result.Latest = &latest
	result.Critical = e.isCritical(latest)

	if len(series) >= 2 {
		values := make([]float64, len(series))
		for i, r := range series {
			values[i] = r.Value
		}
		result.Slope = FitSlope(values)

		if e.isDeteriorating(result.Slope) {
			result.Trend = models.TrendWorsening
		} else {
			result.Trend = models.TrendStable
		}
	}

	// 红区标记优先于趋势标记
	if result.Critical {
		return result, &models.RiskFlag{
			Signal:   e.signal,
			Severity: models.SeverityCritical,
			Reason:   CriticalReason(e.signal),
		}
	}

	if result.Trend == models.TrendWorsening {
		return result, &models.RiskFlag{
			Signal:   e.signal,
			Severity: models.SeverityWarning,
			Reason:   WorseningReason(e.signal),
		}
	}

	return result, nil
}

// isCritical 最新值是否越过红区阈值
func (e *SignalEvaluator) isCritical(value float64) bool {
	if e.config.CriticalLow != nil && value < *e.config.CriticalLow {
		return true
	}
	if e.config.CriticalHigh != nil && value > *e.config.CriticalHigh {
		return true
	}
	return false
}

// isDeteriorating 斜率是否在恶化方向上超过预警阈值
// 方向由配置显式给出，不从符号推断
func (e *SignalEvaluator) isDeteriorating(slope float64) bool {
	switch e.config.Direction {
	case models.WorseWhenRising:
		return slope > e.config.SlopeWarn
	case models.WorseWhenFalling:
		return slope < -e.config.SlopeWarn
	default:
		return false
	}
}

// CriticalReason 红区标记的说明文案
func CriticalReason(signal models.Signal) string {
	return fmt.Sprintf("CRITICAL: %s crossed safety limits.", signal.DisplayName())
}

// WorseningReason 恶化趋势标记的说明文案
func WorseningReason(signal models.Signal) string {
	return fmt.Sprintf("%s is worsening over time.", signal.DisplayName())
}
