package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/wellwatch/internal/httpapi"
	"github.com/ppiankov/wellwatch/internal/lexicon"
	"github.com/ppiankov/wellwatch/internal/server"
)

const shutdownTimeout = 5 * time.Second

var (
	serveGRPCAddr string
	serveHTTPAddr string
	serveLexicon  string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveGRPCAddr, "grpc-addr", "", "gRPC listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http-addr", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveLexicon, "lexicon", "", "Path to lexicon YAML (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC and HTTP risk servers",
	Long: "Runs wellwatch as a central risk service. Edge clients call the gRPC\n" +
		"RiskService or the JSON API; both share one session tracker.\n" +
		"The lexicon file is hot-reloaded on change.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, cfgHash, err := loadConfig()
	if err != nil {
		return err
	}
	if serveGRPCAddr != "" {
		cfg.GRPCAddr = serveGRPCAddr
	}
	if serveHTTPAddr != "" {
		cfg.HTTPAddr = serveHTTPAddr
	}
	if serveLexicon != "" {
		cfg.LexiconPath = serveLexicon
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	logger.Info("config loaded", "config_hash", cfgHash)

	svc, err := newService(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	var grpcSrv *server.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
		}
		grpcSrv = server.New(svc.guard, logger)
		g.Go(func() error { return grpcSrv.ServeOn(lis) })
	}

	var httpSrv *http.Server
	if cfg.HTTPAddr != "" {
		httpSrv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.New(svc.guard, svc.metrics, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("http listening", "addr", cfg.HTTPAddr)
			if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
	}

	lexPath := cfg.LexiconPath
	if lexPath == "" {
		lexPath = lexicon.DefaultPath()
	}
	reloader, err := server.NewReloader([]string{lexPath},
		server.LexiconReload(svc.guard, lexPath, svc.metrics), logger)
	if err != nil {
		logger.Warn("hot-reload disabled", "error", err)
	} else if reloader.Watched() > 0 {
		g.Go(func() error { return reloader.Run(gctx) })
	}

	g.Go(func() error {
		svc.guard.RunSweeper(gctx, cfg.Session.SweepInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
		}
		if httpSrv == nil {
			return nil
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
