package commands

import (
	"context"

	"github.com/paiban/nurse-roster/internal/app"
	"github.com/paiban/nurse-roster/internal/config"
)

// AppContext 命令共享的依赖
// 需要数据库的命令通过 App() 按需装配
type AppContext struct {
	Cfg *config.Config
	Ctx context.Context

	app *app.App
}

// App 装配并返回应用组件
func (c *AppContext) App() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := app.New(c.Ctx, c.Cfg)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

// Close 释放已装配的连接
func (c *AppContext) Close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}
