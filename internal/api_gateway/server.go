package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homeplan-finance-core/internal/api_gateway/handler"
	"github.com/homeplan-finance-core/internal/api_gateway/service"
	"github.com/homeplan-finance-core/internal/config"
)

// Services bundles everything the HTTP surface exposes.
type Services struct {
	Account     service.AccountService
	Transfer    service.TransferService
	Plan        service.PlanService
	Origination service.OriginationService
}

// Server owns the gin engine and the http.Server wrapped around it.
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer builds the router with all handlers mounted and wraps it in an
// http.Server configured from cfg. Nothing listens until Start is called.
func NewServer(log *slog.Logger, cfg *config.Config, services Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	setupRouter(log, router,
		handler.NewAccountHandler(log, services.Account),
		handler.NewTransferHandler(log, services.Transfer),
		handler.NewPlanHandler(log, services.Plan),
		handler.NewApplicationHandler(log, services.Origination),
		handler.NewInvitationHandler(log, services.Origination),
	)

	return &Server{
		logger:     log,
		httpRouter: router,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

// Start blocks serving requests until the listener fails or Stop is called.
func (s *Server) Start() error {
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests, giving up after the write timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
