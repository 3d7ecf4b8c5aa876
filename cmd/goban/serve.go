package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"goban/internal/adapters"
	"goban/internal/bootstrap"
	gameDelivery "goban/internal/delivery/game"
	"goban/internal/delivery/rpc"
	ownMiddleware "goban/internal/middleware"
	"goban/internal/repository"
	gameuc "goban/internal/usecase/game"
)

func newServeCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve games over HTTP, websocket and gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := NewLogger()
			defer func() { _ = logger.Sync() }()

			cfg, err := bootstrap.Setup(*cfgPath)
			if err != nil {
				logger.Errorw("failed to setup configuration", "error", err)
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

// stores holds whichever journal and archive the configuration selects,
// plus the connections to close on shutdown.
type stores struct {
	journal gameuc.GameJournal
	archive gameuc.GameArchive
	closers []func(context.Context) error
}

func serve(parent context.Context, cfg *bootstrap.Config, log *zap.SugaredLogger) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	go handleShutdown(ctx, cancel, log)

	st, err := initStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		for _, closeFn := range st.closers {
			if err := closeFn(closeCtx); err != nil {
				log.Warnf("close store: %v", err)
			}
		}
	}()

	rules, err := cfg.Rules()
	if err != nil {
		return err
	}
	gameUC := gameuc.NewGameUseCase(st.journal, st.archive, log, gameuc.Defaults{
		BoardSize:  cfg.BoardSize,
		Rules:      rules,
		Jitter:     cfg.Jitter,
		JitterSeed: cfg.JitterSeed,
		PageLimit:  cfg.PageLimitArchive,
	})

	r := chi.NewRouter()
	if cfg.IsLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	gameDelivery.NewGameHandler(log, gameUC).Router(r)
	httpServer := &http.Server{Addr: cfg.ServerPort, Handler: r}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(rpc.UnaryLogger(log)))
	rpc.RegisterGobanServer(grpcServer, rpc.NewServer(log, gameUC))
	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		return err
	}

	errs := make(chan error, 2)
	go func() {
		log.Infof("gRPC server is running on port %s", cfg.GrpcPort)
		errs <- grpcServer.Serve(lis)
	}()
	go func() {
		log.Infof("Server is running on port %s", cfg.ServerPort)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errs <- err
			return
		}
		errs <- nil
	}()

	select {
	case <-ctx.Done():
	case err = <-errs:
		log.Errorf("server stopped: %v", err)
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warnf("http shutdown: %v", shutdownErr)
	}
	grpcServer.GracefulStop()
	return err
}

// initStores connects redis and mongo when they are configured and falls
// back to in-process stores otherwise.
func initStores(ctx context.Context, cfg *bootstrap.Config, log *zap.SugaredLogger) (*stores, error) {
	st := &stores{}

	if cfg.RedisUrl != "" {
		redisAdapter := adapters.NewAdapterRedis(cfg, log)
		if err := redisAdapter.Init(ctx); err != nil {
			return nil, err
		}
		st.journal = repository.NewGameJournalRedis(log, redisAdapter.GetClient())
		st.closers = append(st.closers, redisAdapter.Close)
	} else {
		log.Warn("REDIS_URL is empty, live games are kept in memory")
		st.journal = repository.NewGameJournalMemory()
	}

	if cfg.MongoUri != "" {
		mongoAdapter := adapters.NewAdapterMongo(cfg, log)
		if err := mongoAdapter.Init(ctx); err != nil {
			for _, closeFn := range st.closers {
				_ = closeFn(ctx)
			}
			return nil, err
		}
		st.archive = repository.NewGameArchiveMongo(log, mongoAdapter.Database)
		st.closers = append(st.closers, mongoAdapter.Close)
	} else {
		log.Warn("MONGO_URI is empty, closed games are kept in memory")
		st.archive = repository.NewGameArchiveMemory()
	}

	log.Info("game stores initialized")
	return st, nil
}

func handleShutdown(ctx context.Context, cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	select {
	case <-sigs:
		log.Info("Received shutdown signal")
		cancelFunc()
	case <-ctx.Done():
	}
}
