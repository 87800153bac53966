package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"tropharbour-backend/internal/config"
	infraCache "tropharbour-backend/internal/infrastructure/cache"
	"tropharbour-backend/internal/infrastructure/database"
	"tropharbour-backend/internal/infrastructure/email"
	"tropharbour-backend/internal/infrastructure/payment"
	"tropharbour-backend/internal/infrastructure/queue"
	"tropharbour-backend/internal/infrastructure/storage"
	"tropharbour-backend/internal/infrastructure/ticket"
	"tropharbour-backend/pkg/cache"
	"tropharbour-backend/pkg/jwt"
	"tropharbour-backend/pkg/logger"

	bookingHandler "tropharbour-backend/internal/domains/booking/handler"
	bookingRepo "tropharbour-backend/internal/domains/booking/repository"
	bookingService "tropharbour-backend/internal/domains/booking/service"
	reviewHandler "tropharbour-backend/internal/domains/review/handler"
	reviewRepo "tropharbour-backend/internal/domains/review/repository"
	reviewService "tropharbour-backend/internal/domains/review/service"
	tourHandler "tropharbour-backend/internal/domains/tour/handler"
	tourRepo "tropharbour-backend/internal/domains/tour/repository"
	tourService "tropharbour-backend/internal/domains/tour/service"
	userHandler "tropharbour-backend/internal/domains/user/handler"
	userRepo "tropharbour-backend/internal/domains/user/repository"
	userService "tropharbour-backend/internal/domains/user/service"
)

// devWebhookSecret signs mock gateway events when Stripe is not configured.
const devWebhookSecret = "whsec_dev"

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph shared by the API server
// and the worker.
type Container struct {
	// ========================================
	// INFRASTRUCTURE
	// ========================================
	Config      *config.Config
	Mongo       *database.MongoDB
	DB          *database.PostgresDB
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client
	Storage     *storage.MinIOStorage
	Images      *storage.Images
	Mailer      *email.Mailer
	SMTPSender  email.Sender
	Gateway     payment.Gateway
	Tickets     *ticket.Generator

	// ========================================
	// REPOSITORIES
	// ========================================
	UserRepo    userRepo.UserRepository
	TourRepo    tourRepo.TourRepository
	ReviewRepo  reviewRepo.ReviewRepository
	BookingRepo bookingRepo.BookingRepository

	// ========================================
	// SERVICES
	// ========================================
	AuthService    userService.AuthService
	UserService    userService.UserService
	TourService    tourService.TourService
	ReviewService  reviewService.ReviewService
	BookingService bookingService.BookingService

	// ========================================
	// HANDLERS
	// ========================================
	AuthHandler    *userHandler.AuthHandler
	UserHandler    *userHandler.UserHandler
	TourHandler    *tourHandler.TourHandler
	ReviewHandler  *reviewHandler.ReviewHandler
	BookingHandler *bookingHandler.BookingHandler
}

// NewContainer builds the dependency graph in order: config,
// infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	logger.Info("Initializing container", map[string]interface{}{})

	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("Config loaded", map[string]interface{}{"environment": cfg.App.Environment})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.initInfrastructure(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("Container initialized", map[string]interface{}{})
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config

	// Document store
	mongoDB, err := database.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}
	c.Mongo = mongoDB

	// Booking ledger
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}
	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	// Redis failure is not fatal: aggregations are simply not cached
	c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		logger.Warn("Redis unavailable, caching disabled", map[string]interface{}{"error": err.Error()})
		c.Cache = cache.Noop{}
	} else {
		c.Cache = infraCache.NewRedisCache(c.Redis.Client, "tropharbour:")
	}

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	minioStorage, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	c.Storage = minioStorage
	c.Images = storage.NewImages(storage.NewImageProcessor(), minioStorage)

	c.SMTPSender = email.NewSMTPSender(cfg.Email.Host, cfg.Email.Port, cfg.Email.Username, cfg.Email.Password, cfg.Email.From)
	c.Mailer = email.NewMailer(c.SMTPSender, email.NewQueuedSender(c.AsynqClient, queue.QueueDefault))

	if cfg.Stripe.SecretKey != "" {
		c.Gateway = payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	} else {
		secret := cfg.Stripe.WebhookSecret
		if secret == "" {
			secret = devWebhookSecret
		}
		logger.Warn("STRIPE_SECRET_KEY not set, using the mock payment gateway", map[string]interface{}{})
		c.Gateway = payment.NewMockGateway(secret)
	}

	c.Tickets = ticket.NewGenerator(cfg.Ticket.Secret)
	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = userRepo.NewMongoRepository(c.Mongo.Collection(database.CollectionUsers))
	c.TourRepo = tourRepo.NewMongoRepository(c.Mongo.Collection(database.CollectionTours))
	c.ReviewRepo = reviewRepo.NewMongoRepository(c.Mongo.Collection(database.CollectionReviews))
	c.BookingRepo = bookingRepo.NewPostgresRepository(c.DB.Pool)
}

func (c *Container) initServices() {
	c.AuthService = userService.NewAuthService(c.UserRepo, c.JWTManager, c.Mailer)
	c.UserService = userService.NewUserService(c.UserRepo, c.Images)

	// Reviews write the tour rating aggregate; tours list their reviews.
	c.ReviewService = reviewService.NewReviewService(c.ReviewRepo, c.TourRepo, c.UserRepo, c.Cache)
	c.TourService = tourService.NewTourService(c.TourRepo, c.UserRepo, c.ReviewService, c.Images, c.Cache)

	c.BookingService = bookingService.NewBookingService(
		c.BookingRepo,
		c.TourRepo,
		c.UserRepo,
		c.Gateway,
		c.Mailer,
		c.Tickets,
		bookingService.URLs{Base: c.Config.App.BaseURL, Images: c.Config.MinIO.PublicURL()},
		c.Config.Stripe.Currency,
	)
}

func (c *Container) initHandlers() {
	c.AuthHandler = userHandler.NewAuthHandler(c.AuthService, userHandler.CookieConfig{
		ExpiresDays: c.Config.JWT.CookieExpiresDays,
		Production:  c.Config.IsProduction(),
	})
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.TourHandler = tourHandler.NewTourHandler(c.TourService)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
	c.BookingHandler = bookingHandler.NewBookingHandler(c.BookingService)
}

// HealthCheck pings every backing store.
func (c *Container) HealthCheck(ctx context.Context) map[string]string {
	status := map[string]string{}
	record := func(name string, err error) {
		if err != nil {
			status[name] = "DOWN: " + err.Error()
			return
		}
		status[name] = "UP"
	}
	record("mongo", c.Mongo.HealthCheck(ctx))
	record("postgres", c.DB.HealthCheck(ctx))
	record("redis", c.Redis.HealthCheck(ctx))
	record("storage", c.Storage.HealthCheck(ctx))
	return status
}

// Cleanup releases connections. It is safe on a partially built container.
func (c *Container) Cleanup() {
	logger.Info("Cleaning up container resources", map[string]interface{}{})

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			logger.Error("Failed to close asynq client", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("Failed to close Redis", err)
		}
	}
	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Mongo.Close(ctx); err != nil {
			logger.Error("Failed to close MongoDB", err)
		}
	}
}
