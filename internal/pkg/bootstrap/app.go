// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"ticketing/internal/pkg/logger"
	"ticketing/internal/pkg/nacos"
	"ticketing/internal/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

// AppCtx 是交给各服务注册路由和后台任务的上下文。
type AppCtx struct {
	Ctx    context.Context
	Mux    *http.ServeMux
	Config *Config

	group     *errgroup.Group
	onCleanup *[]func(ctx context.Context)
}

// Go 在服务生命周期内启动一个后台任务，ctx 在收到退出信号时取消。
// 任务返回非 nil 错误会触发整个服务退出。
func (a AppCtx) Go(fn func(ctx context.Context) error) {
	a.group.Go(func() error { return fn(a.Ctx) })
}

// OnShutdown 注册关停时执行的清理函数，按后进先出执行。
func (a AppCtx) OnShutdown(fn func(ctx context.Context)) {
	*a.onCleanup = append(*a.onCleanup, fn)
}

// AppInfo 包含了启动一个微服务所需的所有特定信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx) error
}

// StartService 封装了所有微服务的通用启动和优雅关停逻辑。
func StartService(info AppInfo) {
	cfg, err := LoadConfig("")
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(info.ServiceName, cfg.App.LogLevel)

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint, cfg.Infra.Jaeger.SampleRatio)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	group, gctx := errgroup.WithContext(ctx)

	var cleanups []func(ctx context.Context)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	appCtx := AppCtx{Ctx: gctx, Mux: mux, Config: cfg, group: group, onCleanup: &cleanups}
	if info.RegisterHandlers != nil {
		if err := info.RegisterHandlers(appCtx); err != nil {
			logger.Logger.Fatal().Err(err).Msgf("failed to set up %s", info.ServiceName)
		}
	}

	var registry *nacos.Client
	var ip string
	if cfg.Infra.Nacos.Enabled {
		registry, err = nacos.NewNacosClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to initialize nacos client")
		}
		if ip, err = outboundIP(); err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to get outbound IP address")
		}
		if err := registry.RegisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to register service with nacos")
		}
	}

	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}
	group.Go(func() error {
		logger.Logger.Info().Msgf("%s listening on :%d", info.ServiceName, info.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Logger.Info().Msgf("Shutting down service %s...", info.ServiceName)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if registry != nil {
			if err := registry.DeregisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
				logger.Logger.Error().Err(err).Msg("Error deregistering from Nacos")
			}
			registry.Close()
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error().Err(err).Msg("Error shutting down http server")
		}
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i](shutdownCtx)
		}
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error().Err(err).Msg("Error shutting down tracer provider")
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Logger.Error().Err(err).Msgf("Service %s stopped with error", info.ServiceName)
		return
	}
	logger.Logger.Info().Msgf("Service %s gracefully shut down.", info.ServiceName)
}

// outboundIP 通过一次 UDP "拨号" 取得本机对外的地址，不会真正发包。
func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
