// 护士排班服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paiban/nurse-roster/internal/app"
	"github.com/paiban/nurse-roster/internal/config"
	"github.com/paiban/nurse-roster/internal/metrics"
	"github.com/paiban/nurse-roster/internal/middleware"
	"github.com/paiban/nurse-roster/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	app.InitLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化失败")
	}
	defer a.Close()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if err := a.DB.Health(r.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status, "service": cfg.App.Name})
	})

	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	a.Handlers().Register(mux)

	if cfg.Metrics.Enabled {
		mux.HandleFunc("GET "+cfg.Metrics.Path, func(w http.ResponseWriter, r *http.Request) {
			metrics.RecordDBStats(a.DB.Stats())
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	// 执行顺序：recovery -> requestID -> rateLimit -> cors -> logging -> handler
	handler := middleware.Chain(mux,
		middleware.Recovery,
		middleware.RequestID,
		middleware.RateLimit(middleware.NewRateLimiter(float64(cfg.API.RateLimit))),
		middleware.CORS(cfg.API.CORS),
		middleware.SecurityHeaders,
		middleware.Logging,
		middleware.Timeout(cfg.API.Timeout),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.API.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if cfg.Scheduler.Enabled {
		go func() {
			if err := a.Job.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("月度排班任务退出")
			}
		}()
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("env", cfg.App.Env).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}

	logger.Info().Msg("服务器已关闭")
}
