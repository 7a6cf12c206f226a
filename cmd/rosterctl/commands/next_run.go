package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/paiban/nurse-roster/internal/job"
	"github.com/paiban/nurse-roster/pkg/model"
)

// NextRunCmd 列出接下来的触发时刻，不连接数据库
func NextRunCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next-run",
		Short: "显示月度排班接下来的触发时刻",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")

			loc, err := app.Cfg.Scheduler.Location()
			if err != nil {
				return err
			}
			j, err := job.New(app.Cfg.Scheduler.RRule, loc, nil, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			t := time.Now()
			for i := 0; i < count; i++ {
				t, err = j.NextRun(t)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s  → 生成 %s\n", t.Format(time.RFC3339), model.NextPeriod(t))
			}
			return nil
		},
	}

	cmd.Flags().Int("count", 3, "显示的次数")
	return cmd
}
