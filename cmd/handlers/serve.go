package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ideaforge/internal/config"
	"ideaforge/internal/knowledge"
	"ideaforge/internal/logger"
	"ideaforge/internal/server"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		addr    string
		origins string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard, landing pages and JSON API",
		Long: `Start an HTTP server over the idea store.

Routes:
  GET /                          dashboard
  GET /ideas/{slug}/             landing page
  GET /api/ideas[?status=rejected]
  GET /api/ideas/{fingerprint}
  GET /api/knowledge
  GET /health`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			if addr == "" {
				addr = cfg.Server.Addr
			}
			var allowed []string
			if origins != "" {
				allowed = strings.Split(origins, ",")
			}
			return runServe(cmd.Context(), cfg, server.Config{Addr: addr, AllowedOrigins: allowed})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config: :8080)")
	cmd.Flags().StringVar(&origins, "cors", "", "Comma-separated allowed CORS origins")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, serverCfg server.Config) error {
	log := logger.Get()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(st, knowledge.NewBase(cfg.App.DataDir), serverCfg, log)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server listening on %s", serverCfg.Addr))
		serverErrors <- srv.Start()
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		log.Info("Server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
