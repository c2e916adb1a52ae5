package handoff

import (
	"fmt"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"triage-bridge/internal/models"
)

// 影像引用在交接载荷中的标记
const (
	PhotoAvailable = "AVAILABLE"
	PhotoNone      = "NONE"
)

// DefaultQRSize 二维码默认边长（像素）
const DefaultQRSize = 256

// BuildPayload 构建交接载荷（管道分隔的键值串，供护士端扫码读取）
// 格式：NAME:..|AGE:..|STATUS:..|SPECIALIST:..|VITALS:..bpm,..%|PHOTO_REF:..
// 缺失的最新读数以 N/A 占位
func BuildPayload(session *models.PatientSession, result *models.TriageResult) (string, error) {
	if session == nil {
		return "", fmt.Errorf("session is required")
	}
	if result == nil {
		return "", fmt.Errorf("result is required")
	}

	photoRef := PhotoNone
	if session.HasPhoto() {
		photoRef = PhotoAvailable
	}

	fields := []string{
		"NAME:" + session.Patient.Name,
		"AGE:" + session.Patient.Age,
		"STATUS:" + result.OverallStatus,
		"SPECIALIST:" + result.Specialist,
		fmt.Sprintf("VITALS:%sbpm,%s%%",
			latestValue(&session.Vitals, models.SignalHeartRate),
			latestValue(&session.Vitals, models.SignalSpO2),
		),
		"PHOTO_REF:" + photoRef,
	}

	return strings.Join(fields, "|"), nil
}

// EncodePNG 将交接载荷编码为 QR 码 PNG（中等纠错级别）
func EncodePNG(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("payload is required")
	}
	if size <= 0 {
		size = DefaultQRSize
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	return png, nil
}

// latestValue 最新读数的文本形式（无读数时为 N/A）
func latestValue(vitals *models.VitalsHistory, signal models.Signal) string {
	latest := vitals.Latest(signal)
	if latest == nil {
		return "N/A"
	}
	return strconv.FormatFloat(latest.Value, 'f', -1, 64)
}
