// Package job 按 RRULE 周期触发月度排班
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/paiban/nurse-roster/internal/lock"
	"github.com/paiban/nurse-roster/pkg/logger"
	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/roster"
	"github.com/teambition/rrule-go"
)

// Runner 执行一次月度排班
type Runner interface {
	RunMonth(ctx context.Context, now time.Time) *roster.RunSummary
}

// FinishRecorder 记录月度排班完成
type FinishRecorder interface {
	RecordRunFinished(at time.Time)
}

// MonthlyJob 月度排班任务
type MonthlyJob struct {
	rule     *rrule.RRule
	loc      *time.Location
	runner   Runner
	locker   lock.Locker
	recorder FinishRecorder

	now   func() time.Time
	after func(d time.Duration) <-chan time.Time
}

// New 创建月度任务，expr 为 RRULE（不含 DTSTART），按 loc 解释时刻
func New(expr string, loc *time.Location, runner Runner, locker lock.Locker) (*MonthlyJob, error) {
	rule, err := rrule.StrToRRule(expr)
	if err != nil {
		return nil, fmt.Errorf("解析RRULE失败: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}

	// 以很早的本地时间为起点，BYHOUR 等字段按 loc 解释
	rule.DTStart(time.Date(2000, 1, 1, 0, 0, 0, 0, loc))

	return &MonthlyJob{
		rule:   rule,
		loc:    loc,
		runner: runner,
		locker: locker,
		now:    time.Now,
		after:  time.After,
	}, nil
}

// SetRecorder 设置完成记录器
func (j *MonthlyJob) SetRecorder(r FinishRecorder) {
	j.recorder = r
}

// NextRun 返回 t 之后的下一次触发时刻
func (j *MonthlyJob) NextRun(t time.Time) (time.Time, error) {
	next := j.rule.After(t.In(j.loc), false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("RRULE 在 %s 之后没有触发时刻", t.Format(time.RFC3339))
	}
	return next, nil
}

// lockKey 同一排班月份只允许一个实例运行
func lockKey(now time.Time) string {
	return lock.RunKey(model.NextPeriod(now))
}

// RunOnce 获取运行锁后立即执行一次
func (j *MonthlyJob) RunOnce(ctx context.Context) (*roster.RunSummary, error) {
	now := j.now().In(j.loc)

	release, err := j.locker.Acquire(ctx, lockKey(now))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("释放运行锁失败")
		}
	}()

	summary := j.runner.RunMonth(ctx, now)
	if j.recorder != nil {
		j.recorder.RecordRunFinished(summary.Finished)
	}
	return summary, summary.Err
}

// Start 阻塞运行，直到 ctx 取消
func (j *MonthlyJob) Start(ctx context.Context) error {
	for {
		next, err := j.NextRun(j.now())
		if err != nil {
			return err
		}

		logger.Info().Time("next_run", next).Msg("月度排班任务已调度")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-j.after(next.Sub(j.now())):
		}

		if _, err := j.RunOnce(ctx); err != nil {
			logger.Error().Err(err).Msg("月度排班运行失败")
		}
	}
}
