package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/gymcard/internal/config"
	"github.com/mansoorceksport/gymcard/internal/domain"
	"github.com/mansoorceksport/gymcard/internal/export"
	"github.com/mansoorceksport/gymcard/internal/handler"
	"github.com/mansoorceksport/gymcard/internal/logger"
	"github.com/mansoorceksport/gymcard/internal/membership"
	"github.com/mansoorceksport/gymcard/internal/middleware"
	"github.com/mansoorceksport/gymcard/internal/service"
	"github.com/mansoorceksport/gymcard/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idempotencyTTL  = 24 * time.Hour
	imageFetchLimit = 5 * time.Second
	gymName         = "Gym Member Card"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config  *config.Config
	Members domain.MemberRepository
	// Photos is nil when no object storage is configured
	Photos domain.PhotoRepository
	// RedisClient is optional; it backs idempotent admin writes
	RedisClient *redis.Client
	Clock       membership.Clock
	Logger      *zap.Logger
	Metrics     *telemetry.Metrics
	// Fetcher downloads card images for PDFs; defaults to HTTP
	Fetcher   export.Fetcher
	Refresher *service.RemainingRefresher
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	fetcher := deps.Fetcher
	if fetcher == nil {
		fetcher = export.NewHTTPFetcher(imageFetchLimit)
	}

	calc := membership.NewCalculator(deps.Clock)

	// Initialize services
	cardService := service.NewCardService(deps.Members, calc, cfg.Server.BaseURL, cfg.Server.QRServiceURL, log)
	memberService := service.NewMemberService(deps.Members, deps.Photos, calc, log)
	refresher := deps.Refresher
	if refresher == nil {
		refresher = service.NewRemainingRefresher(deps.Members, calc, deps.Metrics, log)
	}
	cardPDF := export.NewCardPDF(fetcher, gymName, log)

	// Initialize handlers
	cardHandler := handler.NewCardHandler(cardService, cardPDF, deps.Metrics)
	calendarHandler := handler.NewCalendarHandler(calc, deps.Metrics)
	memberHandler := handler.NewMemberHandler(memberService, refresher, deps.Members, handler.NewValidator(), log)

	maxUpload := cfg.Server.MaxUploadSizeMB
	if maxUpload <= 0 {
		maxUpload = 5
	}
	app := fiber.New(fiber.Config{
		AppName:      "Gym Member Card API",
		BodyLimit:    int(maxUpload * 1024 * 1024),
		ErrorHandler: errorHandler(log),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(telemetry.FiberMiddleware())
	app.Use(deps.Metrics.Middleware())
	app.Use(logger.FiberMiddleware(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "gymcard",
		})
	})
	app.Get("/metrics", deps.Metrics.Handler())

	// Public scan link
	rate, burst := cfg.Server.ScanRatePerSec, cfg.Server.ScanBurst
	if rate <= 0 || burst <= 0 {
		rate, burst = 5, 20
	}
	scan := app.Group("/scan", middleware.NewRateLimiter(rate, burst).Handler())
	scan.Get("/:token", cardHandler.GetCard)
	scan.Get("/:token/card.pdf", cardHandler.GetCardPDF)

	v1 := app.Group("/v1")

	calendar := v1.Group("/calendar")
	calendar.Get("/to-gregorian", calendarHandler.ToGregorian)
	calendar.Get("/to-ethiopian", calendarHandler.ToEthiopian)
	calendar.Get("/format", calendarHandler.Format)
	calendar.Get("/add-months", calendarHandler.AddMonths)
	calendar.Get("/days-between", calendarHandler.DaysBetween)
	calendar.Get("/leap/:year", calendarHandler.Leap)
	calendar.Get("/today", calendarHandler.Today)

	// ===========================================
	// ADMIN API - /v1/admin/* (front desk token)
	// ===========================================
	admin := v1.Group("/admin")
	admin.Use(middleware.VerifyAdminToken(cfg.JWT.Secret))
	admin.Use(middleware.Idempotency(deps.RedisClient, idempotencyTTL, log))

	admin.Get("/members", memberHandler.List)
	admin.Post("/members", memberHandler.Create)
	admin.Put("/members/:id", memberHandler.Update)
	admin.Post("/members/:id/renew", memberHandler.Renew)
	admin.Post("/members/:id/photo", memberHandler.UploadPhoto)
	admin.Post("/remaining/refresh", memberHandler.RefreshRemaining)

	return app
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   msg,
		})
	}
}
