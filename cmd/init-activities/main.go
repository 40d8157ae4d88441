// cmd/init-activities/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"ticketing/internal/pkg/bootstrap"
	"ticketing/internal/pkg/logger"
	"ticketing/internal/service/inventory"
	"ticketing/internal/service/inventory/application"
	"ticketing/internal/service/inventory/domain"
)

const serviceName = "init-activities"

// defaultCatalogue 是首次部署时写入的活动
var defaultCatalogue = []application.CreateActivityRequest{
	{
		ActivityKey: "padel",
		DisplayName: "Padel",
		Description: "Fun padel games for all skill levels.",
		UnitPrice:   200,
		Capacity:    500,
	},
}

func main() {
	configPath := flag.String("config", "", "config file (defaults to CONFIG_FILE or configs/inventory.yaml)")
	resize := flag.String("resize", "", "optionally resize one activity, e.g. padel=300")
	flag.Parse()

	cfg, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(serviceName, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *resize); err != nil {
		logger.Logger.Error().Err(err).Msg("initialisation failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *bootstrap.Config, resize string) error {
	repo, closeRepo, err := inventory.NewRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	ledger := application.NewLedgerService(repo, otel.Tracer(serviceName))
	if err := seed(ctx, ledger); err != nil {
		return err
	}
	if resize != "" {
		return resizeOne(ctx, ledger, resize)
	}
	return nil
}

// seed 只在库中还没有任何活动时写入默认目录
func seed(ctx context.Context, ledger *application.LedgerService) error {
	existing, err := ledger.List(ctx, domain.FilterAll)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Logger.Info().Int("count", len(existing)).Msg("activities already initialised, skipping seed")
		return nil
	}

	for i := range defaultCatalogue {
		res, err := ledger.Create(ctx, &defaultCatalogue[i])
		if err != nil {
			return err
		}
		if !res.Success {
			return errors.Errorf("seed %s: %s", defaultCatalogue[i].ActivityKey, res.Message)
		}
		logger.Logger.Info().
			Str("activity_key", res.Activity.Key).
			Int("capacity", res.Activity.Capacity).
			Msg("✅ activity created")
	}
	return nil
}

func resizeOne(ctx context.Context, ledger *application.LedgerService, spec string) error {
	key, value, ok := strings.Cut(spec, "=")
	if !ok {
		return errors.Errorf("invalid -resize %q, want key=capacity", spec)
	}
	capacity, err := strconv.Atoi(value)
	if err != nil {
		return errors.Wrapf(err, "invalid capacity in -resize %q", spec)
	}

	res, err := ledger.Resize(ctx, key, capacity)
	if err != nil {
		return err
	}
	if !res.Success {
		return errors.New(res.Message)
	}
	logger.Logger.Info().Str("activity_key", res.Activity.Key).Int("capacity", capacity).Msg(res.Message)
	return nil
}
