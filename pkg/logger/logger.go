// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器，未初始化时使用默认配置
func Get() *zerolog.Logger {
	Init(DefaultConfig())
	return &logger
}

// ctxKey 上下文键，避免与其他包的键冲突
type ctxKey int

const (
	requestIDKey ctxKey = iota
	departmentIDKey
)

// ContextWithRequestID 在上下文中记录请求ID
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext 读取请求ID，没有时返回空串
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ContextWithDepartmentID 在上下文中记录科室ID
func ContextWithDepartmentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, departmentIDKey, id)
}

// WithContext 从上下文创建日志器，带上请求ID与科室ID
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	if reqID := RequestIDFromContext(ctx); reqID != "" {
		l = l.With().Str("request_id", reqID).Logger()
	}
	if deptID, ok := ctx.Value(departmentIDKey).(string); ok {
		l = l.With().Str("department_id", deptID).Logger()
	}

	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// RosterLogger 排班引擎专用日志器
type RosterLogger struct {
	base *zerolog.Logger
}

// NewRosterLogger 创建排班引擎日志器
func NewRosterLogger() *RosterLogger {
	l := Get().With().Str("component", "roster").Logger()
	return &RosterLogger{base: &l}
}

// StartDepartment 记录科室排班开始
func (l *RosterLogger) StartDepartment(departmentID, period string, nurses, days int) {
	l.base.Info().
		Str("department_id", departmentID).
		Str("period", period).
		Int("nurses", nurses).
		Int("days", days).
		Msg("开始生成排班")
}

// ModelBuilt 记录决策模型规模
func (l *RosterLogger) ModelBuilt(departmentID string, variables, clauses, linears int) {
	l.base.Debug().
		Str("department_id", departmentID).
		Int("variables", variables).
		Int("clauses", clauses).
		Int("linears", linears).
		Msg("决策模型构建完成")
}

// SolveComplete 记录求解结果（运维观测记录）
// conflict_count 与 branch_count 按搜索轮次计数
func (l *RosterLogger) SolveComplete(departmentID, status string, solutions, conflicts, branches int, wallTime time.Duration) {
	l.base.Info().
		Str("department_id", departmentID).
		Str("status", status).
		Int("solution_count", solutions).
		Int("conflict_count", conflicts).
		Int("branch_count", branches).
		Float64("wall_time_seconds", wallTime.Seconds()).
		Msg("排班求解完成")
}

// DepartmentSkipped 记录跳过的科室
func (l *RosterLogger) DepartmentSkipped(departmentID, reason string) {
	l.base.Info().
		Str("department_id", departmentID).
		Str("reason", reason).
		Msg("跳过科室排班")
}

// ConstraintViolation 记录约束违反
func (l *RosterLogger) ConstraintViolation(constraint, details string) {
	l.base.Warn().
		Str("constraint", constraint).
		Str("details", details).
		Msg("约束违反")
}

// Published 记录排班发布
func (l *RosterLogger) Published(departmentID string, shifts int) {
	l.base.Info().
		Str("department_id", departmentID).
		Int("shifts", shifts).
		Msg("排班已发布")
}

// DepartmentFailed 记录科室排班失败
func (l *RosterLogger) DepartmentFailed(departmentID string, err error) {
	l.base.Error().
		Err(err).
		Str("department_id", departmentID).
		Msg("科室排班失败")
}
