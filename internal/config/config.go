package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"triage-bridge/internal/models"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config 分诊服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig

	// 分诊服务特定配置
	Triage struct {
		// Redis 缓存配置
		Cache struct {
			SessionKeyPrefix string // 会话状态缓存键前缀，如 "triage:session:"
			SessionSuffix    string // 会话状态缓存键后缀，如 ":state"
			ResultSuffix     string // 评估结果缓存键后缀，如 ":flags"
			ActiveSessionKey string // 当前活动会话指针键
			SessionTTL       int    // 会话状态 TTL（秒），默认 4 小时
			ResultTTL        int    // 评估结果 TTL（秒），默认 30 秒
		}

		// 监测模式轮询间隔（秒）
		PollInterval int

		// 信号阈值配置文件路径（YAML，可选；缺省时使用内置默认阈值）
		ThresholdsFile string
	}

	Log struct {
		Level  string
		Format string
	}

	// 各信号评估配置（内置默认值，可被 ThresholdsFile 覆盖）
	Signals map[models.Signal]models.SignalConfig
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	// 从环境变量加载（默认值）
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "triage")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	// 分诊服务配置
	cfg.Triage.Cache.SessionKeyPrefix = getEnv("CACHE_SESSION_PREFIX", "triage:session:")
	cfg.Triage.Cache.SessionSuffix = ":state"
	cfg.Triage.Cache.ResultSuffix = ":flags"
	cfg.Triage.Cache.ActiveSessionKey = getEnv("CACHE_ACTIVE_SESSION_KEY", "triage:active_session")
	cfg.Triage.Cache.SessionTTL = getEnvInt("CACHE_SESSION_TTL", 4*3600)
	cfg.Triage.Cache.ResultTTL = getEnvInt("CACHE_RESULT_TTL", 30)

	cfg.Triage.PollInterval = getEnvInt("MONITOR_POLL_INTERVAL", 5)
	cfg.Triage.ThresholdsFile = getEnv("TRIAGE_THRESHOLDS_FILE", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// 信号阈值：内置默认值 + 可选 YAML 覆盖
	cfg.Signals = models.DefaultSignalConfigs()
	if cfg.Triage.ThresholdsFile != "" {
		if err := loadThresholdsFile(cfg.Triage.ThresholdsFile, cfg.Signals); err != nil {
			return nil, fmt.Errorf("failed to load thresholds file: %w", err)
		}
	}

	for signal, sc := range cfg.Signals {
		if err := sc.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config for signal %s: %w", signal, err)
		}
	}

	return cfg, nil
}

// thresholdsFile 阈值配置文件结构
type thresholdsFile struct {
	Signals map[string]signalThresholds `yaml:"signals"`
}

// signalThresholds 单信号阈值（字段缺省时保留内置默认值）
type signalThresholds struct {
	CriticalLow  *float64 `yaml:"critical_low"`
	CriticalHigh *float64 `yaml:"critical_high"`
	SlopeWarn    *float64 `yaml:"slope_warn"`
	Direction    *string  `yaml:"direction"`
}

// loadThresholdsFile 读取 YAML 阈值文件并覆盖默认配置
func loadThresholdsFile(path string, signals map[models.Signal]models.SignalConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file thresholdsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for name, overrides := range file.Signals {
		signal := models.Signal(name)
		if !signal.IsValid() {
			return fmt.Errorf("unknown signal in thresholds file: %s", name)
		}

		sc := signals[signal]
		if overrides.CriticalLow != nil {
			sc.CriticalLow = overrides.CriticalLow
		}
		if overrides.CriticalHigh != nil {
			sc.CriticalHigh = overrides.CriticalHigh
		}
		if overrides.SlopeWarn != nil {
			sc.SlopeWarn = *overrides.SlopeWarn
		}
		if overrides.Direction != nil {
			sc.Direction = models.TrendDirection(*overrides.Direction)
		}
		signals[signal] = sc
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
