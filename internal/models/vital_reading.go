package models

import (
	"fmt"
	"time"
)

// Signal 监测信号类型
type Signal string

const (
	SignalHeartRate Signal = "heart_rate"
	SignalSpO2      Signal = "spo2"
	SignalPainScore Signal = "pain_score"
)

// MonitoredSignals 评估管线遍历的信号列表（顺序固定，保证输出稳定）
var MonitoredSignals = []Signal{
	SignalHeartRate,
	SignalSpO2,
	SignalPainScore,
}

// DisplayName 信号的显示名称（用于 reason 文案和报表）
func (s Signal) DisplayName() string {
	switch s {
	case SignalHeartRate:
		return "Heart Rate"
	case SignalSpO2:
		return "Spo2"
	case SignalPainScore:
		return "Pain Score"
	default:
		return string(s)
	}
}

// Unit 信号的计量单位
func (s Signal) Unit() string {
	switch s {
	case SignalHeartRate:
		return "bpm"
	case SignalSpO2:
		return "%"
	default:
		return ""
	}
}

// IsValid 检查信号是否为已知的监测信号
func (s Signal) IsValid() bool {
	switch s {
	case SignalHeartRate, SignalSpO2, SignalPainScore:
		return true
	}
	return false
}

// VitalReading 单次生命体征读数（记录后不可变）
type VitalReading struct {
	Signal     Signal    `json:"signal" db:"signal"`
	Value      float64   `json:"value" db:"value"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// VitalsHistory 按信号分组的读数序列（会话内按时间追加）
type VitalsHistory struct {
	HeartRate []VitalReading `json:"heart_rate"`
	SpO2      []VitalReading `json:"spo2"`
	PainScore []VitalReading `json:"pain_score"`
}

// Series 返回指定信号的读数序列（按记录顺序）
func (h *VitalsHistory) Series(signal Signal) []VitalReading {
	switch signal {
	case SignalHeartRate:
		return h.HeartRate
	case SignalSpO2:
		return h.SpO2
	case SignalPainScore:
		return h.PainScore
	default:
		return nil
	}
}

// Append 追加读数
// 不变式：序列必须按时间有序，乱序追加会被拒绝
func (h *VitalsHistory) Append(reading VitalReading) error {
	if !reading.Signal.IsValid() {
		return fmt.Errorf("unknown signal: %s", reading.Signal)
	}

	series := h.Series(reading.Signal)
	if len(series) > 0 {
		last := series[len(series)-1]
		if reading.RecordedAt.Before(last.RecordedAt) {
			return fmt.Errorf("out-of-order reading for %s: %s before %s",
				reading.Signal,
				reading.RecordedAt.Format(time.RFC3339),
				last.RecordedAt.Format(time.RFC3339),
			)
		}
	}

	switch reading.Signal {
	case SignalHeartRate:
		h.HeartRate = append(h.HeartRate, reading)
	case SignalSpO2:
		h.SpO2 = append(h.SpO2, reading)
	case SignalPainScore:
		h.PainScore = append(h.PainScore, reading)
	}

	return nil
}

// Latest 返回指定信号的最新读数（无读数时返回 nil）
func (h *VitalsHistory) Latest(signal Signal) *VitalReading {
	series := h.Series(signal)
	if len(series) == 0 {
		return nil
	}
	return &series[len(series)-1]
}

// Values 返回指定信号的数值序列（用于斜率拟合）
func (h *VitalsHistory) Values(signal Signal) []float64 {
	series := h.Series(signal)
	if len(series) == 0 {
		return nil
	}

	values := make([]float64, len(series))
	for i, r := range series {
		values[i] = r.Value
	}
	return values
}

// All 返回所有信号的读数（按信号分组展开，用于归档）
func (h *VitalsHistory) All() []VitalReading {
	var readings []VitalReading
	for _, signal := range MonitoredSignals {
		readings = append(readings, h.Series(signal)...)
	}
	return readings
}

// ReadingCount 返回指定信号的读数数量
func (h *VitalsHistory) ReadingCount(signal Signal) int {
	return len(h.Series(signal))
}
