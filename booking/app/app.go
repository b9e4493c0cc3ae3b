package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/table-booking/booking/config"
	"github.com/Astemirdum/table-booking/booking/internal/handler"
	"github.com/Astemirdum/table-booking/booking/internal/lock"
	"github.com/Astemirdum/table-booking/booking/internal/repository"
	"github.com/Astemirdum/table-booking/booking/internal/server"
	"github.com/Astemirdum/table-booking/booking/internal/service"
	"github.com/Astemirdum/table-booking/booking/migrations"
	"github.com/Astemirdum/table-booking/pkg/auth"
	"github.com/Astemirdum/table-booking/pkg/kafka"
	"github.com/Astemirdum/table-booking/pkg/logger"
	"github.com/Astemirdum/table-booking/pkg/postgres"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "booking")
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var repo repository.Repository
	switch cfg.Storage {
	case config.StorageMemory:
		repo = repository.NewMemory(log)
	default:
		db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
		if err != nil {
			log.Fatal("db init", zap.Error(err))
		}
		closers = append(closers, db.Close)
		pgRepo, err := repository.NewRepository(db, log)
		if err != nil {
			log.Fatal("repo", zap.Error(err))
		}
		repo = pgRepo
	}

	var opts []service.Option
	switch cfg.Lock {
	case config.LockMemory:
		opts = append(opts, service.WithLocker(lock.NewMemory()))
	case config.LockRedis:
		client, err := lock.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("redis init", zap.Error(err))
		}
		closers = append(closers, func() { _ = client.Close() })
		opts = append(opts, service.WithLocker(lock.NewRedis(client, cfg.Redis.TTL, log)))
	default:
		log.Warn("booking lock disabled: concurrent overlapping requests may both be admitted")
	}

	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		closers = append(closers, func() { _ = producer.Close() })
		opts = append(opts, service.WithPublisher(service.NewKafkaPublisher(producer, cfg.Kafka.ReservationsTopic(), log)))
	}

	svc := service.NewService(repo, log, opts...)
	issuer := auth.NewIssuer(cfg.Auth)
	authSvc := service.NewAuthService(service.NewAccountProvider(repo, issuer, cfg.BcryptCost), log)

	h := handler.New(svc, authSvc, issuer, log, handler.WithRequestTimeout(cfg.RequestTimeout))
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)),
		zap.String("storage", cfg.Storage),
		zap.String("lock", cfg.Lock))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("Graceful shutdown", zap.Error(context.Cause(gCtx)))

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error("server", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}
