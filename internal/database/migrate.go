package database

import (
	"embed"
	"fmt"

	"github.com/GuiaBolso/darwin"
	"github.com/diegoclair/sqlmigrator"
	"github.com/paiban/nurse-roster/pkg/logger"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migrate 按版本顺序执行 sql/ 下的建表脚本，已执行的版本会被跳过
func (db *DB) Migrate() error {
	migrator := sqlmigrator.New(db.DB, darwin.PostgresDialect{})
	if err := migrator.Migrate(sqlFiles, "sql"); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	logger.Info().Msg("数据库迁移完成")
	return nil
}
