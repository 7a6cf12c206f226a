// Package app 按配置装配服务与命令行共用的组件
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/paiban/nurse-roster/internal/config"
	"github.com/paiban/nurse-roster/internal/database"
	"github.com/paiban/nurse-roster/internal/handler"
	"github.com/paiban/nurse-roster/internal/job"
	"github.com/paiban/nurse-roster/internal/lock"
	"github.com/paiban/nurse-roster/internal/metrics"
	"github.com/paiban/nurse-roster/internal/repository"
	"github.com/paiban/nurse-roster/pkg/logger"
	"github.com/paiban/nurse-roster/pkg/roster"
	"github.com/paiban/nurse-roster/pkg/scheduler/solver"
	"github.com/redis/go-redis/v9"
)

// App 已装配的组件
type App struct {
	Cfg      *config.Config
	Location *time.Location

	DB    *database.DB
	Redis *redis.Client

	Departments *repository.DepartmentRepository
	Nurses      *repository.NurseRepository
	Staffing    *repository.StaffingRepository
	WorkDays    *repository.WorkDayRepository
	Shifts      *repository.ShiftRepository

	Planner  *roster.Planner
	Recorder *metrics.Recorder
	Locker   lock.Locker
	Job      *job.MonthlyJob
}

// InitLogger 按配置初始化日志
func InitLogger(cfg *config.Config) {
	format := "console"
	if cfg.App.LogJSON {
		format = "json"
	}
	logger.Init(logger.Config{
		Level:      cfg.App.LogLevel,
		Format:     format,
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	})
}

// New 连接数据库与 redis 并装配排班流水线
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, fmt.Errorf("加载时区失败: %w", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &App{Cfg: cfg, Location: loc, DB: db}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Departments = repository.NewDepartmentRepository(db)
	a.Nurses = repository.NewNurseRepository(db)
	a.Staffing = repository.NewStaffingRepository(db)
	a.WorkDays = repository.NewWorkDayRepository(db)
	a.Shifts = repository.NewShiftRepository(db, loc)

	a.Planner = roster.NewPlanner(roster.Sources{
		Departments:  a.Departments,
		Nurses:       a.Nurses,
		Staffing:     a.Staffing,
		Availability: a.WorkDays,
		Publisher:    a.Shifts,
	}, roster.Options{
		Solver: solver.Options{
			SolutionLimit: cfg.Scheduler.SolutionLimit,
			Seed:          cfg.Scheduler.Seed,
			Timeout:       cfg.Scheduler.Timeout,
		},
		Parallelism: cfg.Scheduler.Parallelism,
		DryRun:      cfg.Scheduler.DryRun,
		Location:    loc,
	})
	a.Recorder = metrics.NewRecorder(nil)
	a.Planner.SetMetrics(a.Recorder)

	if cfg.Redis.Enabled {
		client, err := lock.NewClient(ctx, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = client
		a.Locker = lock.NewRedisLocker(client, cfg.Redis.LockTTL)
	} else {
		a.Locker = lock.NewLocalLocker()
	}

	a.Job, err = job.New(cfg.Scheduler.RRule, loc, a.Planner, a.Locker)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Job.SetRecorder(a.Recorder)

	return a, nil
}

// Handlers 返回 HTTP 处理器
func (a *App) Handlers() *handler.Handlers {
	return &handler.Handlers{
		Roster:   handler.NewRosterHandler(a.Planner, a.Departments, a.Locker, a.Location),
		Shifts:   handler.NewShiftHandler(a.Shifts),
		WorkDays: handler.NewWorkDayHandler(a.WorkDays, a.Nurses),
		Rules:    handler.NewRuleHandler(nil),
	}
}

// Close 释放连接
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn().Err(err).Msg("关闭Redis连接失败")
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			logger.Warn().Err(err).Msg("关闭数据库连接失败")
		}
	}
}
