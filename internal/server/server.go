package server

import (
	"context"

	"mindgym-api/internal/handler"
	appmiddleware "mindgym-api/internal/middleware"
	"mindgym-api/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

type Server struct {
	echo           *echo.Echo
	authService    service.AuthService
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	billingHandler *handler.BillingHandler
}

func NewServer(
	log zerolog.Logger,
	authService service.AuthService,
	billingService service.BillingService,
	secureCookies bool,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogMethod: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Err(v.Error).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:           e,
		authService:    authService,
		authHandler:    handler.NewAuthHandler(authService, secureCookies),
		userHandler:    handler.NewUserHandler(),
		billingHandler: handler.NewBillingHandler(billingService, log),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- auth --------
	auth := api.Group("/auth")
	auth.POST("/register", s.authHandler.Register)
	auth.POST("/login", s.authHandler.Login)
	auth.POST("/logout", s.authHandler.Logout)

	requireSession := appmiddleware.Session(s.authService)
	api.GET("/me", s.userHandler.Me, requireSession)

	// -------- billing --------
	billing := api.Group("/billing")
	billing.POST("/checkout", s.billingHandler.CreateCheckout, requireSession)
	billing.GET("/checkout/:id/status", s.billingHandler.CheckoutStatus, requireSession)

	// -------- stripe webhooks / callbacks --------
	billing.POST("/webhook", s.billingHandler.Webhook)
	billing.GET("/success", s.billingHandler.Success)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
