package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// RunCmd 立即执行一次全部科室的月度排班
func RunCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "立即为全部科室生成下个月排班",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			parallelism, _ := cmd.Flags().GetInt("parallelism")

			if dryRun {
				app.Cfg.Scheduler.DryRun = true
			}
			if parallelism > 0 {
				app.Cfg.Scheduler.Parallelism = parallelism
			}

			a, err := app.App()
			if err != nil {
				return err
			}

			summary, err := a.Job.RunOnce(app.Ctx)
			if summary == nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n月份 %s，共 %d 个科室，耗时 %s\n\n",
				summary.Period, len(summary.Reports), summary.Finished.Sub(summary.Started).Round(time.Millisecond))
			for _, r := range summary.Reports {
				line := fmt.Sprintf("  %s  %-10s 班次 %d", r.DepartmentID, r.Status, r.ShiftsPublished)
				if r.Error != "" {
					line += "  错误: " + r.Error
				} else if r.SkipReason != "" {
					line += "  " + r.SkipReason
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "\n失败 %d，发布班次 %d\n", summary.Failed(), summary.ShiftsPublished())
			return err
		},
	}

	cmd.Flags().Bool("dry-run", false, "只求解不发布")
	cmd.Flags().Int("parallelism", 0, "并行处理的科室数")

	return cmd
}
