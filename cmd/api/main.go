package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orderflow/orderflowgo/internal/ai"
	"github.com/orderflow/orderflowgo/internal/config"
	"github.com/orderflow/orderflowgo/internal/database"
	"github.com/orderflow/orderflowgo/internal/handlers"
	"github.com/orderflow/orderflowgo/internal/history"
	"github.com/orderflow/orderflowgo/internal/models"
	"github.com/orderflow/orderflowgo/internal/orders"
	"github.com/orderflow/orderflowgo/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	if err := db.AutoMigrate(&models.AppState{}); err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Load persisted history (corrupt saved data starts empty)
	store := history.NewStore(history.NewGormKeystore(db.DB))

	// 5. Extraction gateway
	ctx := context.Background()
	extractor, err := ai.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatalf("Failed to init Gemini client: %v", err)
	}
	defer extractor.Close()

	// 6. Live update hub
	hub := websocket.NewHub()
	go hub.Run()

	// 7. Order service and HTTP router
	svc := orders.NewService(store, extractor, hub, cfg.AgentName)
	router := handlers.NewRouter(svc, hub, cfg.FrontendDir)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on port %s (agent identity: %s)\n", cfg.Port, cfg.AgentName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
