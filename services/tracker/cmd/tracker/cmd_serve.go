package main

import (
	"context"
	"errors"
	"net"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/example/vocab-tracker/internal/platform/httpserver"
	"github.com/example/vocab-tracker/internal/platform/run"
	"github.com/example/vocab-tracker/services/tracker/internal/handlers"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with periodic sync",
		Long:  "serve exposes the tracker to UI clients over HTTP, runs the flush timer\nand reloads the vocabulary file when it changes. SIGINT/SIGTERM trigger a final flush.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			return serve(a)
		},
	}
}

func serve(a *app) error {
	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: func() error {
		if a.catalog.Deck() == nil {
			return errors.New("catalog not loaded")
		}
		return nil
	}})
	handlers.Mount(r, handlers.Deps{Engine: a.eng, Catalog: a.catalog, Log: a.log})

	srv := httpserver.New(httpserver.Options{Addr: a.cfg.App.HTTP.Addr, ServiceName: a.cfg.App.ServiceName, Logger: a.log, Router: r})

	grpcSrv, err := startHealthServer(a.cfg.GRPCAddr, a.log)
	if err != nil {
		a.close(context.Background())
		return err
	}

	runner := run.New(a.log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			if err := a.catalog.Watch(ctx); err != nil {
				a.log.Warn("catalog watch stopped", zap.Error(err))
			}
		}()
		return srv.Start(a.log)
	})

	err = runner.Graceful(
		srv.Shutdown,
		func(context.Context) error {
			if grpcSrv != nil {
				grpcSrv.GracefulStop()
			}
			return nil
		},
		func(ctx context.Context) error {
			_, err := a.eng.Teardown(ctx)
			return err
		},
	)
	a.res.Close()
	a.log.Info("exit", zap.Int("code", code))
	_ = a.log.Sync()
	if code != 0 {
		return errors.New("server exited with error")
	}
	return err
}

// startHealthServer serves the standard gRPC health service on addr. An
// empty addr disables it.
func startHealthServer(addr string, log *zap.Logger) (*grpc.Server, error) {
	if addr == "" {
		return nil, nil
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	go func() {
		log.Info("grpc health server starting", zap.String("addr", addr))
		if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("grpc health server", zap.Error(err))
		}
	}()
	return s, nil
}
