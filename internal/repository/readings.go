package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"triage-bridge/internal/models"
)

// ReadingRepository 生命体征读数仓库（vital_readings 表）
type ReadingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReadingRepository 创建读数仓库
func NewReadingRepository(db *sql.DB, logger *zap.Logger) *ReadingRepository {
	return &ReadingRepository{
		db:     db,
		logger: logger,
	}
}

// ListReadings 列出会话的读数（可按信号过滤，按记录时间升序）
func (r *ReadingRepository) ListReadings(ctx context.Context, sessionID string, signal *models.Signal) ([]models.VitalReading, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	query := `
		SELECT signal, value, recorded_at
		FROM vital_readings
		WHERE session_id = $1
	`
	args := []interface{}{sessionID}

	if signal != nil {
		query += ` AND signal = $2`
		args = append(args, string(*signal))
	}
	query += ` ORDER BY recorded_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	defer rows.Close()

	var readings []models.VitalReading
	for rows.Next() {
		var reading models.VitalReading
		var sig string
		if err := rows.Scan(&sig, &reading.Value, &reading.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		reading.Signal = models.Signal(sig)
		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}

	return readings, nil
}

// CountReadings 统计会话的读数条数
func (r *ReadingRepository) CountReadings(ctx context.Context, sessionID string) (int, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("session_id is required")
	}

	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vital_readings WHERE session_id = $1`,
		sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}

	return count, nil
}
