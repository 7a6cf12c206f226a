package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paiban/nurse-roster/cmd/rosterctl/commands"
	"github.com/paiban/nurse-roster/internal/app"
	"github.com/paiban/nurse-roster/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCtx := &commands.AppContext{Ctx: ctx}

	rootCmd := &cobra.Command{
		Use:          "rosterctl",
		Short:        "护士月度排班命令行工具",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			app.InitLogger(cfg)
			appCtx.Cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			appCtx.Close()
		},
	}

	rootCmd.AddCommand(commands.GenerateCmd(appCtx))
	rootCmd.AddCommand(commands.RunCmd(appCtx))
	rootCmd.AddCommand(commands.MigrateCmd(appCtx))
	rootCmd.AddCommand(commands.NextRunCmd(appCtx))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
