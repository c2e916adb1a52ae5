package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"triage-bridge/internal/models"
)

// SessionRepository 会话归档仓库（triage_sessions / vital_readings 表）
// 归档只追加，不提供删除
type SessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository 创建会话归档仓库
func NewSessionRepository(db *sql.DB, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

// SessionRecord 归档记录（会话 + 最终评估结果快照）
type SessionRecord struct {
	Session models.PatientSession
	Result  *models.TriageResult
}

// SessionFilters 会话查询过滤条件
type SessionFilters struct {
	StartTime     *time.Time // 创建时间下界
	EndTime       *time.Time // 创建时间上界
	OverallStatus *string    // RED_FLAG / MONITOR（从结果快照中过滤）
	MainSymptom   *string
}

// ArchiveSession 归档已完成的会话及其读数（单事务，实现 session.Archiver 接口）
// 幂等：同一会话重复归档不报错也不重复写入
// （监测器兜底归档与 Finish 归档可能先后触发同一会话）
func (r *SessionRepository) ArchiveSession(ctx context.Context, session *models.PatientSession, result *models.TriageResult) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}
	if session.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}

	var resultJSON []byte
	if result != nil {
		var err error
		resultJSON, err = json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO triage_sessions (
			session_id,
			patient_name,
			patient_age,
			airway,
			bleeding,
			main_symptom,
			rapid_worsening,
			photo_ref,
			step,
			result,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (session_id) DO NOTHING
	`

	res, err := tx.ExecContext(ctx, query,
		session.SessionID,
		session.Patient.Name,
		session.Patient.Age,
		session.Safety.Airway,
		session.Safety.Bleeding,
		session.MainSymptom,
		session.RapidWorsening,
		session.PhotoRef,
		string(session.Step),
		nullableJSON(resultJSON),
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	// 已归档过的会话：跳过读数写入，直接返回
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read insert result: %w", err)
	}
	if inserted == 0 {
		r.logger.Debug("Session already archived, skipping",
			zap.String("session_id", session.SessionID),
		)
		return nil
	}

	readingQuery := `
		INSERT INTO vital_readings (session_id, signal, value, recorded_at)
		VALUES ($1, $2, $3, $4)
	`
	for _, reading := range session.Vitals.All() {
		if _, err := tx.ExecContext(ctx, readingQuery,
			session.SessionID,
			string(reading.Signal),
			reading.Value,
			reading.RecordedAt,
		); err != nil {
			return fmt.Errorf("failed to insert reading: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Session archived",
		zap.String("session_id", session.SessionID),
		zap.String("main_symptom", session.MainSymptom),
	)

	return nil
}

// GetSession 根据 session_id 获取归档记录（不含读数，读数走 ReadingRepository）
func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*SessionRecord, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	query := `
		SELECT
			session_id,
			patient_name,
			patient_age,
			airway,
			bleeding,
			main_symptom,
			rapid_worsening,
			photo_ref,
			step,
			result,
			created_at,
			updated_at
		FROM triage_sessions
		WHERE session_id = $1
	`

	record, err := r.scanSession(r.db.QueryRowContext(ctx, query, sessionID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session not found: session_id=%s", sessionID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return record, nil
}

// ListSessions 按过滤条件列出归档记录（按创建时间倒序）
func (r *SessionRepository) ListSessions(ctx context.Context, filters SessionFilters, limit, offset int) ([]*SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	where, args := buildSessionWhere(filters)
	query := fmt.Sprintf(`
		SELECT
			session_id,
			patient_name,
			patient_age,
			airway,
			bleeding,
			main_symptom,
			rapid_worsening,
			photo_ref,
			step,
			result,
			created_at,
			updated_at
		FROM triage_sessions
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var records []*SessionRecord
	for rows.Next() {
		record, err := r.scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return records, nil
}

// CountSessions 统计符合过滤条件的归档记录数
func (r *SessionRepository) CountSessions(ctx context.Context, filters SessionFilters) (int, error) {
	where, args := buildSessionWhere(filters)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM triage_sessions %s`, where)

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	return count, nil
}

// scanner 兼容 QueryRow 与 Rows 的扫描接口
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanSession 扫描单行会话记录
func (r *SessionRepository) scanSession(row scanner) (*SessionRecord, error) {
	var record SessionRecord
	var photoRef sql.NullString
	var step string
	var resultJSON []byte

	err := row.Scan(
		&record.Session.SessionID,
		&record.Session.Patient.Name,
		&record.Session.Patient.Age,
		&record.Session.Safety.Airway,
		&record.Session.Safety.Bleeding,
		&record.Session.MainSymptom,
		&record.Session.RapidWorsening,
		&photoRef,
		&step,
		&resultJSON,
		&record.Session.CreatedAt,
		&record.Session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// 处理可空字段
	if photoRef.Valid {
		record.Session.PhotoRef = &photoRef.String
	}
	record.Session.Step = models.Step(step)

	// 处理 JSONB 结果快照
	if len(resultJSON) > 0 {
		var result models.TriageResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result snapshot: %w", err)
		}
		record.Result = &result
	}

	return &record, nil
}

// buildSessionWhere 构建动态 WHERE 子句
func buildSessionWhere(filters SessionFilters) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	addCondition := func(condition string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filters.StartTime != nil {
		addCondition("created_at >= $%d", *filters.StartTime)
	}
	if filters.EndTime != nil {
		addCondition("created_at <= $%d", *filters.EndTime)
	}
	if filters.OverallStatus != nil {
		addCondition("result->>'overall_status' = $%d", *filters.OverallStatus)
	}
	if filters.MainSymptom != nil {
		addCondition("main_symptom = $%d", *filters.MainSymptom)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// nullableJSON 空 JSON 写入 NULL
func nullableJSON(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
