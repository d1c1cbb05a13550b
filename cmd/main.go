// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"geo-registry/internal/api"
	"geo-registry/internal/loader"
	"geo-registry/internal/logger"
	"geo-registry/internal/metrics"
	"geo-registry/internal/middleware"
	"geo-registry/internal/migrate"
	"geo-registry/internal/querycache"
	"geo-registry/internal/registry"
	"geo-registry/internal/utils"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok")
	apiBase := os.Getenv("API_BASE")
	if apiBase == "" {
		apiBase = "/api"
	}
	l.Debug("config_api_base", "base", apiBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := registry.NewHandle(nil)

	// 背景：启动时一次性导入，之后登记表只在内存中变更
	dataDir := os.Getenv("REGISTRY_DATA_DIR")
	if dataDir == "" {
		dataDir = filepath.Join("data", "registry")
	}
	l.Debug("config_data_dir", "dir", dataDir)
	if _, err := os.Stat(dataDir); err == nil {
		if _, err := loader.LoadDir(ctx, dataDir, h); err != nil {
			l.Error("loader_dir_error", "err", err)
			os.Exit(1)
		}
	} else {
		l.Info("loader_dir_skipped", "dir", dataDir)
	}

	if os.Getenv("REGISTRY_LOAD_PG") == "true" {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		l.Info("db_open_ok")
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
			os.Exit(1)
		}
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		if _, err := loader.LoadPostgres(ctx, db, h); err != nil {
			l.Error("loader_pg_error", "err", err)
			os.Exit(1)
		}
		// 导入完成后不再访问数据库
		_ = db.Close()
	} else {
		l.Debug("loader_pg_skipped")
	}

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else if err := rc.Ping(ctx).Err(); err != nil {
		// 不可用时退化为仅进程内缓存，避免每次查询等待超时
		l.Error("redis_ping_error", "err", err)
		_ = rc.Close()
		rc = nil
	} else {
		l.Info("redis_ping_ok")
		defer rc.Close()
	}
	qc := querycache.NewFromEnv(rc)

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(h, qc, os.Getenv("ADMIN_TOKEN"))
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.Info("shutdown_begin")
		_ = s.Shutdown(sctx)
	}()

	l.Info("listening", "addr", addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("listen_error", "err", err)
		os.Exit(1)
	}
	l.Info("shutdown_done")
}
