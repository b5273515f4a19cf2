package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"pack-backend/internal/auth"
	"pack-backend/internal/backup"
	"pack-backend/internal/cache"
	"pack-backend/internal/config"
	"pack-backend/internal/database"
	"pack-backend/internal/db"
	"pack-backend/internal/handlers"
	"pack-backend/internal/health"
	h "pack-backend/internal/http"
	"pack-backend/internal/locks"
	"pack-backend/internal/middleware"
	"pack-backend/internal/monitoring"
	"pack-backend/internal/repositories"
	"pack-backend/internal/scans"
	"pack-backend/internal/services"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	migrationsDir := flag.String("migrations", "migrations", "Directory with SQL migration files")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis cache is optional; everything falls back to Postgres reads.
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (serving from database only)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool, *migrationsDir)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	for _, dir := range []string{cfg.Backup.Dir, cfg.Backup.WorkingRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Cannot create data directory %s: %v", dir, err)
		}
	}

	healthChecker := health.NewHealthChecker(pool)

	// Ops endpoint runs on its own port, away from the API surface.
	go monitoring.NewMonitoringServer(pool, cfg.Monitoring.Port, cfg.Backup.Dir).Start()

	jwtManager := auth.NewJWTManager(cfg)

	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	panelRepo := repositories.NewPanelRepository(pool)
	archiveRepo := repositories.NewArchiveRepository(pool)

	customerLocks := locks.NewCustomerLocks()
	scanReader := scans.NewReader()
	zipper := backup.NewZipper()

	// Typed-nil guard: a disabled mirror must stay a nil interface.
	var mirror services.ArtifactMirror
	if m := backup.NewMirror(cfg); m != nil {
		mirror = m
		log.Println("[Mirror] Backup artifact mirroring enabled")
	}

	userService := services.NewUserService(userRepo, jwtManager)
	lifecycleService := services.NewLifecycleService(customerRepo, customerLocks)
	customerService := services.NewCustomerService(customerRepo, panelRepo, customerLocks, cfg.Backup.WorkingRoot)
	packingService := services.NewPackingService(customerRepo, panelRepo, scanReader, lifecycleService, customerLocks)
	archiveService := services.NewArchiveService(customerRepo, archiveRepo, scanReader, zipper, mirror,
		lifecycleService, customerLocks, cfg.Backup.Dir, cfg.Backup.WorkingRoot)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	authHandler := handlers.NewAuthHandler(userService)
	customerHandler := handlers.NewCustomerHandler(customerService, packingService, lifecycleService, archiveService)
	archiveHandler := handlers.NewArchiveHandler(archiveService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := h.NewRouter(authHandler, customerHandler, archiveHandler, healthHandler, authMiddleware)

	handler := middleware.PanicRecovery(
		middleware.MetricsMiddleware(
			middleware.RequestLogging(
				corsMiddleware(router))))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
