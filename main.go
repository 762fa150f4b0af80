package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/clients"
	apperrors "github.com/plant-decor/KLTN-PlantDecor-Mobile/common/errors"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/common/logger"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/common/middleware"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/config"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/controllers"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/database"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/mockapi"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/routes"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/stores"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.Initialize(cfg.Env)
	defer log.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var mockServer *http.Server
	if cfg.MockAPIAddr != "" {
		mockServer = startMockAPI(cfg.MockAPIAddr, log)
		cfg.APIBaseURL = "http://" + cfg.MockAPIAddr
	}

	ctx := context.Background()
	credentials, closeCredentials, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open credential store", zap.Error(err))
	}
	defer func() {
		if err := closeCredentials(); err != nil {
			log.Warn("failed to close credential store", zap.Error(err))
		}
	}()

	tokens := clients.NewTokenManager(credentials, log, cfg.RefreshSingleFlight)
	api := clients.NewAPIClient(cfg.APIBaseURL, cfg.APITimeout, tokens, log)

	session := stores.NewSessionStore(api, log)
	catalog := stores.NewCatalogStore(api, cfg.ItemsPerPage, log)
	cart := stores.NewCartStore()
	designs := stores.NewDesignStore(api, cfg.DesignTimeout, log)

	bootCtx, cancel := context.WithTimeout(ctx, cfg.APITimeout)
	if session.CheckAuth(bootCtx) {
		log.Info("session restored", zap.String("user_id", session.Snapshot().User.ID))
	}
	catalog.FetchCategories(bootCtx)
	cancel()

	controller := controllers.NewBridgeController(session, catalog, cart, designs, cfg.MaxCartQuantity, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMin))
	r.Use(apperrors.ErrorMiddleware())

	routes.RegisterRoutes(r, controller)

	srv := &http.Server{
		Addr:    cfg.BridgeAddr,
		Handler: r,
	}

	go func() {
		log.Info("bridge listening", zap.String("addr", cfg.BridgeAddr), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("bridge server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("bridge shutdown error", zap.Error(err))
	}
	if mockServer != nil {
		if err := mockServer.Shutdown(shutdownCtx); err != nil {
			log.Error("mock api shutdown error", zap.Error(err))
		}
	}
}

// startMockAPI serves the in-memory storefront with one demo account.
func startMockAPI(addr string, log *zap.Logger) *http.Server {
	mock := mockapi.New(mockapi.Options{}, log.Named("mockapi"))
	if _, err := mock.CreateAccount("demo@plantdecor.vn", "plantdecor", "Demo Customer"); err != nil {
		log.Fatal("failed to seed demo account", zap.Error(err))
	}

	// listen before returning so the boot-time session check can reach it
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal("failed to listen for mock storefront", zap.Error(err))
	}
	srv := &http.Server{Handler: mock.Router()}
	go func() {
		log.Info("mock storefront listening", zap.String("addr", addr))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("mock storefront error", zap.Error(err))
		}
	}()
	return srv
}
