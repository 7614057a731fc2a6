package pkg

import (
	"context"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"enotice/internal/auth"
	"enotice/internal/config"
	"enotice/internal/guard"
	"enotice/internal/notice"
	"enotice/internal/notifier"
	"enotice/internal/storage"
	"enotice/pkg/middleware"
)

var NoticeBoardModules = fx.Module("enotice",
	fx.Provide(config.Load),
	fx.Provide(config.NewLogger),
	fx.Provide(config.NewMongoDBClient),
	fx.Provide(config.NewEmailService),
	fx.Provide(func(es *config.EmailService) notifier.Mailer { return es }),
	fx.Provide(auth.NewTokenManager),
	fx.Provide(auth.NewUserRepository),
	fx.Provide(auth.NewService),
	fx.Provide(func(s *auth.Service) notice.RoleResolver { return s }),
	fx.Provide(auth.NewAuthHandler),
	fx.Provide(notice.NewRepository),
	fx.Provide(storage.NewGridFSStore),
	fx.Provide(notifier.NewService),
	fx.Provide(func(s *notifier.Service) notice.ApprovalNotifier { return s }),
	fx.Provide(notifier.NewScheduler),
	fx.Provide(notice.NewService),
	fx.Provide(notice.NewNoticeHandler),
	fx.Provide(guard.NewEnforcer),
	fx.Provide(guard.NewGuardHandler),
	fx.Provide(NewEchoServer),
	fx.Invoke(config.EnsureIndexes),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(func(s *notifier.Scheduler, lc fx.Lifecycle) { s.Start(lc) }),
)

func NewEchoServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting HTTP server", zap.String("addr", addr))
			go func() {
				if err := e.Start(addr); err != nil {
					logger.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down HTTP server")
			return e.Shutdown(ctx)
		},
	})
	return e
}

func RegisterRoutes(
	e *echo.Echo,
	tokens *auth.TokenManager,
	enforcer *casbin.Enforcer,
	logger *zap.Logger,
	authHandler *auth.AuthHandler,
	noticeHandler *notice.NoticeHandler,
	guardHandler *guard.GuardHandler,
) {
	// Public surface.
	e.POST("/signup", authHandler.Signup)
	e.POST("/login", authHandler.Login)
	e.GET("/notices", noticeHandler.ListApproved)
	e.GET("/notices/:id", noticeHandler.Detail)
	e.GET("/files/:id", noticeHandler.ServeFile)
	e.GET("/views", guardHandler.Views, middleware.OptionalJWT(tokens))

	// Session-guarded surface; casbin decides per-role reachability.
	api := e.Group("/api")
	api.Use(middleware.JWT(tokens))
	api.Use(middleware.Casbin(enforcer, logger))

	api.POST("/logout", authHandler.Logout)
	api.GET("/profile", authHandler.Profile)
	api.GET("/views", guardHandler.Views)
	api.POST("/notices", noticeHandler.Submit)
	api.GET("/notices/pending", noticeHandler.ListPending)
	api.POST("/notices/:id/approve", noticeHandler.Approve)
}
