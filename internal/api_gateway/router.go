package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/homeplan-finance-core/internal/api_gateway/handler"
	"github.com/homeplan-finance-core/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
	transferHandler *handler.TransferHandler,
	planHandler *handler.PlanHandler,
	applicationHandler *handler.ApplicationHandler,
	invitationHandler *handler.InvitationHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Account operations
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("", accountHandler.GetByOwner)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.POST("/:id/close", accountHandler.Close)
			accounts.GET("/:id/transfers", transferHandler.GetByAccountID)
		}

		// Transfer operations
		transfers := v1.Group("/transfers")
		{
			transfers.POST("", transferHandler.Create)
			transfers.GET("/:id", transferHandler.GetByID)
		}

		// Affordability and plan generation
		v1.POST("/affordability/quote", planHandler.Quote)
		v1.POST("/plans", planHandler.Generate)

		// Application lifecycle
		applications := v1.Group("/applications")
		{
			applications.POST("", applicationHandler.Submit)
			applications.GET("", applicationHandler.GetByApplicant)
			applications.GET("/:id", applicationHandler.GetByID)
			applications.POST("/:id/review", applicationHandler.Review)
			applications.POST("/:id/approve", applicationHandler.Approve)
			applications.POST("/:id/reject", applicationHandler.Reject)
			applications.POST("/:id/disburse", applicationHandler.Disburse)
			applications.POST("/:id/invitations", applicationHandler.CreateInvitation)
		}

		// Invitation lifecycle
		invitations := v1.Group("/invitations")
		{
			invitations.GET("", invitationHandler.GetByInvitee)
			invitations.POST("/:id/accept", invitationHandler.Accept)
			invitations.POST("/:id/reject", invitationHandler.Reject)
			invitations.POST("/:id/expire", invitationHandler.Expire)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
