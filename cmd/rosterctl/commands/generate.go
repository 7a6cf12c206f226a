package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/paiban/nurse-roster/internal/lock"
	apperrors "github.com/paiban/nurse-roster/pkg/errors"
	"github.com/paiban/nurse-roster/pkg/model"
)

// GenerateCmd 为单个科室生成排班
func GenerateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <department_id>",
		Short: "为一个科室生成某月排班",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deptID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("department_id 格式错误: %w", err)
			}

			year, _ := cmd.Flags().GetInt("year")
			month, _ := cmd.Flags().GetInt("month")
			seed, _ := cmd.Flags().GetInt64("seed")
			limit, _ := cmd.Flags().GetInt("solution-limit")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			a, err := app.App()
			if err != nil {
				return err
			}

			period, err := resolvePeriod(year, month, time.Now().In(a.Location))
			if err != nil {
				return err
			}

			dept, err := a.Departments.GetByID(app.Ctx, deptID)
			if err != nil {
				return err
			}
			if dept == nil {
				return apperrors.NotFound("科室", deptID.String())
			}

			opts := a.Planner.DefaultRunOptions()
			opts.DryRun = opts.DryRun || dryRun
			if cmd.Flags().Changed("seed") {
				opts.Solver.Seed = seed
			}
			if limit > 0 {
				opts.Solver.SolutionLimit = limit
			}

			// 发布时与月度任务互斥
			if !opts.DryRun {
				release, err := a.Locker.Acquire(app.Ctx, lock.RunKey(period))
				if err != nil {
					return err
				}
				defer release(context.WithoutCancel(app.Ctx))
			}

			report, err := a.Planner.PlanDepartment(app.Ctx, dept, period, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n科室:   %s (%s)\n", dept.Name, dept.ID)
			fmt.Fprintf(out, "月份:   %s\n", report.Period)
			fmt.Fprintf(out, "状态:   %s\n", report.Status)
			fmt.Fprintf(out, "种子:   %d\n", opts.Solver.Seed)
			fmt.Fprintf(out, "解/无解轮数/搜索轮数: %d/%d/%d  耗时 %s\n",
				report.SolutionCount, report.ConflictCount, report.BranchCount, report.WallTime.Round(time.Millisecond))
			if report.Skipped {
				fmt.Fprintf(out, "跳过:   %s\n", report.SkipReason)
				return nil
			}
			if len(report.Shifts) > 0 {
				nurses, err := a.Nurses.ListByDepartment(app.Ctx, dept.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, FormatRoster(period, report.Shifts, nurses, a.Location))
			}
			if f := report.Fairness; f != nil {
				fmt.Fprintf(out, "\n工时: 平均 %.1f  最少 %.0f  最多 %.0f  基尼 %.3f  公平性评分 %.1f\n",
					f.AvgHours, f.MinHours, f.MaxHours, f.HoursGini, f.OverallScore)
			}
			if c := report.Coverage; c != nil {
				fmt.Fprintf(out, "覆盖: %d/%d 岗位  超配 %d\n", c.FilledSlots, c.RequiredSlots, c.SurplusSlots)
			}
			if opts.DryRun {
				fmt.Fprintln(out, "\n(试运行，未发布)")
			} else {
				fmt.Fprintf(out, "\n已发布 %d 个班次\n", report.ShiftsPublished)
			}
			return nil
		},
	}

	cmd.Flags().Int("year", 0, "排班年份（默认下个月）")
	cmd.Flags().Int("month", 0, "排班月份 1-12（默认下个月）")
	cmd.Flags().Int64("seed", 0, "搜索随机种子")
	cmd.Flags().Int("solution-limit", 0, "最多求解的方案数")
	cmd.Flags().Bool("dry-run", false, "只求解不发布")

	return cmd
}

// resolvePeriod 未指定年月时取下个月
func resolvePeriod(year, month int, now time.Time) (model.Period, error) {
	switch {
	case year == 0 && month == 0:
		return model.NextPeriod(now), nil
	case year == 0 || month < 1 || month > 12:
		return model.Period{}, apperrors.New(apperrors.CodeInvalidTimeRange, "--year 与 --month 需同时指定且月份在 1-12")
	}
	return model.NewPeriod(year, time.Month(month)), nil
}
