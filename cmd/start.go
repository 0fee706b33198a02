package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ValtisD/CardiacStockTracker-sub001/core/config"
	"github.com/ValtisD/CardiacStockTracker-sub001/core/database"
	"github.com/ValtisD/CardiacStockTracker-sub001/core/loader"
	"github.com/ValtisD/CardiacStockTracker-sub001/core/logger"
	"github.com/ValtisD/CardiacStockTracker-sub001/core/middleware/auth"
	"github.com/ValtisD/CardiacStockTracker-sub001/core/middleware/rayid"
	"github.com/ValtisD/CardiacStockTracker-sub001/core/storage"
	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory"
	"github.com/ValtisD/CardiacStockTracker-sub001/feature/stockcount"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the stock tracker server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (Optional)
		// Without a database the tracker runs on the in-memory store,
		// which is enough for demos and local development.
		var store inventory.Store
		if db, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed, using in-memory store", zap.Error(err))
			store = inventory.NewMemStore()
		} else {
			gs := inventory.NewGormStore(db)
			if err := gs.Migrate(); err != nil {
				logg.Fatal("Failed to migrate database schema", zap.Error(err))
			}
			for _, issue := range database.VerifySchema(db) {
				logg.Warn("Schema verification issue", zap.String("issue", issue))
			}
			store = gs
			logg.Info("Connected to inventory database")
		}

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 5. Initialize Storage (Optional)
		// The audit archive is best-effort; without object storage the
		// tracker still reconciles, it just keeps no off-box trail.
		var client storage.Client
		if sc, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Optional storage connection failed, audit archive disabled", zap.Error(err))
		} else {
			client = sc
		}

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()

		// Register Features
		inv := inventory.NewFeature(store, logg)
		mgr.Register(inv)
		mgr.Register(stockcount.NewFeature(store, client, cfg.Storage.Bucket, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
