package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_Success(t *testing.T) {
	var h VitalsHistory
	now := time.Now()

	require.NoError(t, h.Append(VitalReading{
		Signal:     SignalHeartRate,
		Value:      88,
		RecordedAt: now,
	}))
	require.NoError(t, h.Append(VitalReading{
		Signal:     SignalHeartRate,
		Value:      92,
		RecordedAt: now.Add(time.Minute),
	}))

	assert.Equal(t, 2, h.ReadingCount(SignalHeartRate))
	assert.Equal(t, 92.0, h.Latest(SignalHeartRate).Value)
}

func TestAppend_RejectsOutOfOrderReading(t *testing.T) {
	var h VitalsHistory
	now := time.Now()

	require.NoError(t, h.Append(VitalReading{
		Signal:     SignalSpO2,
		Value:      95,
		RecordedAt: now,
	}))

	err := h.Append(VitalReading{
		Signal:     SignalSpO2,
		Value:      97,
		RecordedAt: now.Add(-time.Minute),
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "out-of-order reading")
	// 被拒绝的读数不入序列
	assert.Equal(t, 1, h.ReadingCount(SignalSpO2))
	assert.Equal(t, 95.0, h.Latest(SignalSpO2).Value)
}

func TestAppend_AcceptsEqualTimestamp(t *testing.T) {
	var h VitalsHistory
	now := time.Now()

	require.NoError(t, h.Append(VitalReading{
		Signal:     SignalPainScore,
		Value:      3,
		RecordedAt: now,
	}))
	require.NoError(t, h.Append(VitalReading{
		Signal:     SignalPainScore,
		Value:      4,
		RecordedAt: now,
	}))

	assert.Equal(t, 2, h.ReadingCount(SignalPainScore))
}

func TestAppend_UnknownSignal(t *testing.T) {
	var h VitalsHistory

	err := h.Append(VitalReading{
		Signal:     Signal("blood_pressure"),
		Value:      120,
		RecordedAt: time.Now(),
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown signal")
}

func TestAppend_OrderIsPerSignal(t *testing.T) {
	var h VitalsHistory
	now := time.Now()

	require.NoError(t, h.Append(VitalReading{
		Signal:     SignalHeartRate,
		Value:      88,
		RecordedAt: now.Add(time.Minute),
	}))

	// 其他信号的序列独立计序
	require.NoError(t, h.Append(VitalReading{
		Signal:     SignalSpO2,
		Value:      95,
		RecordedAt: now,
	}))
}
