package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/spacehub/backend/internal/config"
	"github.com/spacehub/backend/internal/database"
	"github.com/spacehub/backend/internal/handlers"
	"github.com/spacehub/backend/internal/middleware"
	"github.com/spacehub/backend/internal/realtime"
	"github.com/spacehub/backend/internal/services"
	"github.com/spacehub/backend/pkg/logger"
	"github.com/spacehub/backend/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	hub := realtime.NewHub()
	accessService := services.NewAccessService(db)

	authHandler := handlers.NewAuthHandler(db)
	usersHandler := handlers.NewUsersHandler(db)
	friendsHandler := handlers.NewFriendsHandler(db, accessService, hub)
	groupsHandler := handlers.NewGroupsHandler(db, accessService, hub)
	messagesHandler := handlers.NewMessagesHandler(db, accessService, hub)
	directMessagesHandler := handlers.NewDirectMessagesHandler(db, accessService, hub)
	notesHandler := handlers.NewNotesHandler(db, accessService, hub)
	notificationsHandler := handlers.NewNotificationsHandler(db)

	authMiddleware := middleware.NewAuthMiddleware(db)
	wsHandler := realtime.NewHandler(hub, authMiddleware, accessService)

	app := fiber.New(fiber.Config{BodyLimit: 4 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	prometheus := fiberprometheus.New("spacehub")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/ws", wsHandler.Upgrade, wsHandler.Serve())

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)
	authRoutes.Put("/me", authMiddleware.RequireAuth, authHandler.UpdateMe)
	authRoutes.Put("/password", authMiddleware.RequireAuth, authHandler.ChangePassword)

	api.Get("/users/search", authMiddleware.RequireAuth, usersHandler.Search)
	api.Get("/users/:id", authMiddleware.RequireAuth, usersHandler.Get)

	requestRoutes := api.Group("/friend-requests", authMiddleware.RequireAuth)
	requestRoutes.Post("/", friendsHandler.SendRequest)
	requestRoutes.Get("/", friendsHandler.ListRequests)
	requestRoutes.Put("/:id", friendsHandler.Respond)
	requestRoutes.Delete("/:id", friendsHandler.Cancel)

	friendRoutes := api.Group("/friends", authMiddleware.RequireAuth)
	friendRoutes.Get("/", friendsHandler.ListFriends)
	friendRoutes.Delete("/:friendId", friendsHandler.RemoveFriend)

	groupRoutes := api.Group("/groups", authMiddleware.RequireAuth)
	groupRoutes.Post("/", groupsHandler.Create)
	groupRoutes.Get("/", groupsHandler.List)
	groupRoutes.Get("/:id", groupsHandler.Get)
	groupRoutes.Get("/:id/members", groupsHandler.ListMembers)
	groupRoutes.Post("/:id/members", groupsHandler.AddMember)
	groupRoutes.Delete("/:id/members/:userId", groupsHandler.RemoveMember)
	groupRoutes.Get("/:id/messages", messagesHandler.List)
	groupRoutes.Post("/:id/messages", messagesHandler.Post)
	groupRoutes.Get("/:id/notes", notesHandler.List)
	groupRoutes.Post("/:id/notes", notesHandler.Create)

	noteRoutes := api.Group("/notes", authMiddleware.RequireAuth)
	noteRoutes.Get("/:id", notesHandler.Get)
	noteRoutes.Post("/:id/blocks", notesHandler.AddBlock)
	noteRoutes.Put("/:id/blocks/:blockId", notesHandler.UpdateBlock)
	noteRoutes.Delete("/:id/blocks/:blockId", notesHandler.DeleteBlock)

	dmRoutes := api.Group("/direct-messages", authMiddleware.RequireAuth)
	dmRoutes.Get("/", directMessagesHandler.ListConversations)
	dmRoutes.Post("/", directMessagesHandler.Send)
	dmRoutes.Get("/:partnerId", directMessagesHandler.GetConversation)

	notificationRoutes := api.Group("/notifications", authMiddleware.RequireAuth)
	notificationRoutes.Get("/", notificationsHandler.List)
	notificationRoutes.Patch("/", notificationsHandler.MarkRead)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
