package main

import (
	"context"
	"os"
	"time"

	"github.com/abujafor1924/newmilikoz/config"
	"github.com/abujafor1924/newmilikoz/handlers"
	"github.com/abujafor1924/newmilikoz/internal/cache"
	"github.com/abujafor1924/newmilikoz/internal/mailer"
	"github.com/abujafor1924/newmilikoz/internal/ws"
	"github.com/abujafor1924/newmilikoz/middleware"
	"github.com/abujafor1924/newmilikoz/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.LoadConfig()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	if !cfg.IsDevelopment() {
		log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := config.Migrate(db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	config.SeedRooms(db, log)

	var store cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(context.Background(), cfg.RedisURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer redisCache.Close()
		store = redisCache
		log.Info().Msg("using redis cache")
	} else {
		store = cache.NewMemoryCache()
		log.Info().Msg("using in-memory cache")
	}

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = &mailer.SMTPMailer{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.MailFrom,
		}
	} else {
		mail = &mailer.LogMailer{Log: log}
	}

	hub := ws.NewHub()
	chatService := ws.NewService(db, hub, log)

	app := fiber.New(fiber.Config{
		AppName:      "Milikoz Backend",
		ServerHeader: "Milikoz Backend Server/1.0",
		ErrorHandler: middleware.ErrorHandler(log),
	})

	middleware.SetupMiddleware(app, log)

	authHandler := handlers.NewAuthHandler(db, mail, log)
	profileHandler := handlers.NewProfileHandler(db)
	bookHandler := handlers.NewBookHandler(db)
	productHandler := handlers.NewProductHandler(db)
	interactionHandler := handlers.NewInteractionHandler(db, store, log)
	chatHandler := handlers.NewChatHandler(hub, chatService, db, store, log)

	// Health Check Endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "success",
			"message": "API is healthy",
		})
	})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.RequestPasswordReset)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/confirm-reset-password", authHandler.ConfirmPasswordReset)
	auth.Get("/profile", utils.AuthMiddleware, profileHandler.GetProfile)
	auth.Put("/profile", utils.AuthMiddleware, profileHandler.UpdateProfile)
	auth.Post("/profile/picture", utils.AuthMiddleware, profileHandler.UploadProfilePicture)

	books := api.Group("/books")
	books.Get("/", bookHandler.ListBooks)
	books.Post("/", bookHandler.CreateBook)
	books.Get("/:id", bookHandler.GetBook)
	books.Put("/:id", bookHandler.UpdateBook)
	books.Patch("/:id", bookHandler.UpdateBook)
	books.Delete("/:id", bookHandler.DeleteBook)

	products := api.Group("/products")
	products.Get("/", productHandler.GetAllProducts)
	products.Post("/", productHandler.CreateProduct)
	products.Get("/:id", productHandler.GetProduct)
	products.Put("/:id", productHandler.UpdateProduct)
	products.Delete("/:id", productHandler.DeleteProduct)

	interactions := api.Group("/interactions")
	interactions.Post("/record", interactionHandler.RecordInteraction)
	interactions.Get("/popular", interactionHandler.GetPopularItems)

	chat := api.Group("/chat")
	chat.Post("/users", chatHandler.CreateUser)
	chat.Post("/join", chatHandler.JoinRoom)
	chat.Get("/rooms", chatHandler.PublicRooms)
	chat.Post("/rooms", chatHandler.CreateRoom)
	chat.Get("/rooms/popular", chatHandler.PopularRooms)
	chat.Get("/rooms/:id", chatHandler.GetRoom)
	chat.Put("/rooms/:id", chatHandler.UpdateRoom)
	chat.Delete("/rooms/:id", chatHandler.DeleteRoom)
	chat.Get("/rooms/:id/stats", chatHandler.RoomStats)
	chat.Get("/rooms/:id/messages", chatHandler.RoomMessages)
	chat.Get("/rooms/:id/users", chatHandler.RoomUsers)
	chat.Get("/messages", chatHandler.ListMessages)
	chat.Get("/status", chatHandler.SystemStatus)

	app.Use("/ws/chat/:room_id", chatHandler.WebSocketUpgradeMiddleware)
	app.Get("/ws/chat/:room_id", chatHandler.Handler())

	log.Info().Str("host", cfg.Host).Str("port", cfg.AppPort).Msg("server starting")

	if err := app.Listen(cfg.Host + ":" + cfg.AppPort); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
