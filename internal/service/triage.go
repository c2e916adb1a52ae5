package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"triage-bridge/internal/config"
	"triage-bridge/internal/evaluator"
	"triage-bridge/internal/export"
	"triage-bridge/internal/handoff"
	"triage-bridge/internal/models"
	"triage-bridge/internal/repository"
	"triage-bridge/internal/session"
	"triage-bridge/internal/workflow"
)

// TriageService 分诊服务（整合各层）
type TriageService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger

	// 各层组件
	stateManager *session.StateManager
	resultCache  *session.ResultCache
	monitor      *session.Monitor
	sessionRepo  *repository.SessionRepository
	readingRepo  *repository.ReadingRepository
	evaluator    *evaluator.Evaluator
	workflow     *workflow.Workflow
}

// NewTriageService 创建分诊服务
func NewTriageService(cfg *config.Config, logger *zap.Logger) (*TriageService, error) {
	// 1. 连接数据库
	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 2. 连接 Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	// 3. 创建 Repository 层
	sessionRepo := repository.NewSessionRepository(db, logger)
	readingRepo := repository.NewReadingRepository(db, logger)

	// 4. 创建会话状态层
	stateManager := session.NewStateManager(cfg, redisClient, logger)
	resultCache := session.NewResultCache(cfg, redisClient, logger)
	monitor := session.NewMonitor(cfg, stateManager, resultCache, logger)

	// 5. 创建评估器与流程控制
	eval, err := evaluator.NewEvaluator(cfg.Signals, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator: %w", err)
	}
	wf := workflow.NewWorkflow(logger)

	return &TriageService{
		config:       cfg,
		db:           db,
		redisClient:  redisClient,
		logger:       logger,
		stateManager: stateManager,
		resultCache:  resultCache,
		monitor:      monitor,
		sessionRepo:  sessionRepo,
		readingRepo:  readingRepo,
		evaluator:    eval,
		workflow:     wf,
	}, nil
}

// Start 启动监测模式（轮询活动会话并刷新评估结果缓存）
func (s *TriageService) Start(ctx context.Context) error {
	s.logger.Info("Starting triage service")
	return s.monitor.Start(ctx, s.evaluator, s.sessionRepo)
}

// Stop 停止服务
func (s *TriageService) Stop() error {
	s.logger.Info("Stopping triage service")

	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database",
			zap.Error(err),
		)
	}
	if err := s.redisClient.Close(); err != nil {
		s.logger.Error("Failed to close redis",
			zap.Error(err),
		)
	}

	return nil
}

// StartSession 创建新会话（注册步骤）并设为活动会话
func (s *TriageService) StartSession(ctx context.Context, name, age string) (*models.PatientSession, error) {
	now := time.Now()
	sess := &models.PatientSession{
		SessionID: uuid.New().String(),
		Patient: models.PatientInfo{
			Name: name,
			Age:  age,
		},
		Step:      models.StepRegistration,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.stateManager.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.stateManager.SetActiveSession(ctx, sess.SessionID); err != nil {
		return nil, err
	}

	s.logger.Info("Session started",
		zap.String("session_id", sess.SessionID),
	)

	return sess, nil
}

// RecordSafety 记录安全问询答案
func (s *TriageService) RecordSafety(ctx context.Context, sessionID, airway, bleeding string) error {
	return s.mutateSession(ctx, sessionID, func(sess *models.PatientSession) error {
		sess.Safety.Airway = airway
		sess.Safety.Bleeding = bleeding
		return nil
	})
}

// RecordVitals 记录一组生命体征读数（三个信号各追加一条）
func (s *TriageService) RecordVitals(ctx context.Context, sessionID string, heartRate, spo2, painScore float64) error {
	now := time.Now()
	return s.mutateSession(ctx, sessionID, func(sess *models.PatientSession) error {
		for _, reading := range []models.VitalReading{
			{Signal: models.SignalHeartRate, Value: heartRate, RecordedAt: now},
			{Signal: models.SignalSpO2, Value: spo2, RecordedAt: now},
			{Signal: models.SignalPainScore, Value: painScore, RecordedAt: now},
		} {
			if err := sess.Vitals.Append(reading); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetContext 记录主诉与恶化问询
func (s *TriageService) SetContext(ctx context.Context, sessionID, mainSymptom, rapidWorsening string) error {
	return s.mutateSession(ctx, sessionID, func(sess *models.PatientSession) error {
		if _, ok := models.SpecialistFor(mainSymptom); !ok {
			return fmt.Errorf("unrecognized main symptom: %q", mainSymptom)
		}
		sess.MainSymptom = mainSymptom
		sess.RapidWorsening = rapidWorsening
		return nil
	})
}

// AttachPhoto 挂载影像引用
// 仅对需要创面评估的主诉开放（主诉域门控）
func (s *TriageService) AttachPhoto(ctx context.Context, sessionID, photoRef string) error {
	if photoRef == "" {
		return fmt.Errorf("photo_ref is required")
	}
	return s.mutateSession(ctx, sessionID, func(sess *models.PatientSession) error {
		if !models.PhotoEligible(sess.MainSymptom) {
			return fmt.Errorf("photo not eligible for symptom: %q", sess.MainSymptom)
		}
		sess.PhotoRef = &photoRef
		return nil
	})
}

// Advance 推进流程步骤
func (s *TriageService) Advance(ctx context.Context, sessionID string) (*models.PatientSession, error) {
	sess, err := s.stateManager.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.workflow.Advance(sess); err != nil {
		return nil, err
	}

	if err := s.stateManager.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	return sess, nil
}

// Evaluate 对会话做一次同步评估并刷新结果缓存
func (s *TriageService) Evaluate(ctx context.Context, sessionID string) (*models.TriageResult, error) {
	sess, err := s.stateManager.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result, err := s.evaluator.Evaluate(sess)
	if err != nil {
		return nil, err
	}

	if err := s.resultCache.UpdateResult(ctx, sessionID, result); err != nil {
		return nil, err
	}

	return result, nil
}

// HandoffBundle 汇总步骤的交接产物
type HandoffBundle struct {
	Session      *models.PatientSession
	Result       *models.TriageResult
	Payload      string   // 交接载荷（管道分隔）
	QRCode       []byte   // 载荷的 QR 码 PNG
	Report       []byte   // 会话报告 Excel 文件
	ReportName   string   // 报告文件名
	Instructions []string // 患者照护指引
}

// Finish 完成评估：归档会话、生成交接载荷与报告、清除活动指针
// 会话必须已走到汇总步骤
func (s *TriageService) Finish(ctx context.Context, sessionID string) (*HandoffBundle, error) {
	sess, err := s.stateManager.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Completed() {
		return nil, fmt.Errorf("session not complete: step=%s", sess.Step)
	}

	result, err := s.evaluator.Evaluate(sess)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.ArchiveSession(ctx, sess, result); err != nil {
		return nil, err
	}

	payload, err := handoff.BuildPayload(sess, result)
	if err != nil {
		return nil, err
	}
	qrPNG, err := handoff.EncodePNG(payload, handoff.DefaultQRSize)
	if err != nil {
		return nil, err
	}
	report, err := export.GenerateSessionReport(sess, result)
	if err != nil {
		return nil, err
	}

	if err := s.stateManager.ClearActiveSession(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Session finished",
		zap.String("session_id", sessionID),
		zap.String("overall_status", result.OverallStatus),
		zap.String("decision", string(result.Decision)),
	)

	return &HandoffBundle{
		Session:      sess,
		Result:       result,
		Payload:      payload,
		QRCode:       qrPNG,
		Report:       report,
		ReportName:   export.ReportFilename(sess),
		Instructions: models.PatientInstructions(),
	}, nil
}

// GetSession 读取会话状态
func (s *TriageService) GetSession(ctx context.Context, sessionID string) (*models.PatientSession, error) {
	return s.stateManager.GetSession(ctx, sessionID)
}

// GetResult 读取评估结果缓存
func (s *TriageService) GetResult(ctx context.Context, sessionID string) (*models.TriageResult, error) {
	return s.resultCache.GetResult(ctx, sessionID)
}

// ListArchivedSessions 查询归档记录
func (s *TriageService) ListArchivedSessions(ctx context.Context, filters repository.SessionFilters, limit, offset int) ([]*repository.SessionRecord, error) {
	return s.sessionRepo.ListSessions(ctx, filters, limit, offset)
}

// mutateSession 读取-修改-保存会话状态
func (s *TriageService) mutateSession(ctx context.Context, sessionID string, mutate func(*models.PatientSession) error) error {
	sess, err := s.stateManager.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := mutate(sess); err != nil {
		return err
	}

	sess.UpdatedAt = time.Now()
	return s.stateManager.SaveSession(ctx, sess)
}
