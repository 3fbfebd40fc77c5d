package main

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/accounts"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/orders"
	"storefront/internal/session"
)

func main() {
	config.Load()
	cfg := config.AppEnv
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(cfg.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureMenuIndexes(db); err != nil {
		log.Printf("⚠️ menu index warning: %v", err)
	}
	if err := database.EnsureAdminIndexes(db); err != nil {
		log.Printf("⚠️ admin index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}

	adminStore := accounts.NewMongoStore(db)
	if cfg.AdminEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := adminStore.Seed(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Printf("⚠️ admin seed warning: %v", err)
		}
		cancel()
	}

	menu := catalog.NewMongoStore(db)
	orderService := orders.NewService(orders.NewMongoStore(db))

	var orderClient checkout.OrderClient = orderService
	if cfg.UsesRemoteOrders() {
		remote, err := checkout.NewHTTPClient(cfg.OrderServiceURL, cfg.OrderTimeout)
		if err != nil {
			log.Fatal(err)
		}
		orderClient = remote
		log.Println("[CHECKOUT] [INFO] submitting orders to", cfg.OrderServiceURL)
	} else {
		log.Println("[CHECKOUT] [INFO] submitting orders in-process")
	}
	submitter := checkout.NewSubmitter(orderClient)

	sessions := session.NewStore(cfg.MergePolicy(), cfg.SessionTTL)
	log.Printf("[CART] [INFO] merge policy=%s session ttl=%s", cfg.MergePolicy(), cfg.SessionTTL)

	stopPrune := startSessionPruner(sessions, pruneInterval(cfg.SessionTTL))
	defer stopPrune()

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20
	images := handlers.ImageStore{Root: cfg.UploadDir}
	r.Static("/uploads", filepath.Join(cfg.UploadDir, "uploads"))

	r.GET("/health", handlers.Health(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}))

	r.GET("/menu", handlers.GetMenu(menu))
	r.GET("/menu/categories", handlers.GetMenuCategories(menu))
	r.GET("/menu/:slug", handlers.GetMenuItem(menu))
	r.POST("/menu/:slug/quote", handlers.QuoteMenuItem(menu))

	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.CartSession(sessions, cfg.CookieSecure, int(cfg.SessionTTL.Seconds())))
	{
		cartGroup.GET("", handlers.GetCart())
		cartGroup.POST("/items", handlers.AddCartItem(menu))
		cartGroup.DELETE("/items/*key", handlers.RemoveCartItem())
		cartGroup.POST("/checkout", handlers.Checkout(submitter, cfg.OrderTimeout))
	}

	r.POST("/api/orders", handlers.CreateOrder(orderService))

	r.POST("/admin/login", handlers.AdminLogin(accounts.NewAuthenticator(adminStore, cfg.JWTSecret, cfg.AccessTokenTTL)))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			claims, _ := middleware.ClaimsFrom(c)
			c.JSON(200, gin.H{"ok": true, "email": claims["email"]})
		})

		admin.GET("/menu", handlers.GetAllMenuItems(menu))
		admin.POST("/menu", handlers.CreateMenuItem(menu))
		admin.PUT("/menu/:id", handlers.UpdateMenuItem(menu))
		admin.DELETE("/menu/:id", handlers.DeleteMenuItem(menu))
		admin.PUT("/menu/:id/image", handlers.UploadMenuItemImage(menu, images))

		admin.GET("/orders", handlers.GetOrders(orderService))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(orderService))
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Println("server stopped:", err)
	}
}

func pruneInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

func startSessionPruner(store *session.Store, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				store.Prune()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
