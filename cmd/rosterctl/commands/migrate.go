package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// MigrateCmd 执行数据库迁移
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "创建或升级数据库表",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.App()
			if err != nil {
				return err
			}
			if err := a.DB.Migrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ 数据库迁移完成")
			return nil
		},
	}
}
