package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	app "estatewatch/internal"
	"estatewatch/internal/access"
	"estatewatch/internal/config"
	"estatewatch/internal/email"
	"estatewatch/internal/storage"
	"estatewatch/internal/visitor"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the estate visitor management server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		fmt.Println("Starting estate visitor management server...")
		ServerMain(ctx, provider)
	},
}

// Initialize logger
func initLogger(cfg *config.Config) *slog.Logger {
	// Determine level from config and set it on the handler options.
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		println("Invalid log level in config, defaulting to INFO")
	}
	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	slog.Debug("Logger initialized", "level", level.String())
	return logger
}

// Generate static QR code for the support page
func genSupportQr(url string) {
	qrCode, err := qrcode.Encode(url, qrcode.Medium, config.QR_IMAGE_SIZE)
	if err != nil {
		slog.Error("Error generating support QR code", "error", err)
		return
	}

	filePath := "web/assets/support_qr.png"

	// Save the QR code to a file
	if err := os.WriteFile(filePath, qrCode, 0644); err != nil {
		slog.Error("Error saving support QR code", "error", err)
	} else {
		slog.Debug("Support QR code saved successfully", "file_path", filePath, "support_url", url)
	}
}

// NewEngineFromConfig assembles the lifecycle engine with the optional
// access code email notifier.
func NewEngineFromConfig(cfg *config.Config, provider storage.Provider) *visitor.Engine {
	engine := visitor.NewEngine(provider)

	if cfg.Email.Host != "" {
		client, err := email.NewClient(cfg.Email)
		if err != nil {
			slog.Warn("Email notifications disabled", "error", err)
		} else {
			engine.SetNotifier(email.NewAccessCodeNotifier(client))
		}
	}

	return engine
}

func LoadRoutePolicy(cfg *config.Config) *access.Policy {
	policy, err := access.NewPolicy(cfg.Policy.PolicyFile)
	if err != nil {
		slog.Error("Failed to load route policy", "error", err, "file", cfg.Policy.PolicyFile)
		os.Exit(1)
	}
	return policy
}

func ServerMain(ctx context.Context, storageProvider storage.Provider) {

	if config.Cfg == nil {
		panic("Config not initialized.")
	}

	initLogger(config.Cfg)

	// Use the provider passed from cobra command (already initialized)
	if storageProvider == nil {
		slog.Error("Storage provider is nil")
		os.Exit(1)
	}

	if config.Cfg.SupportURL != "" {
		genSupportQr(config.Cfg.SupportURL)
	}

	// Initialize HTTP server
	server := app.HTTPServer()

	// Initialize route policy and lifecycle engine
	policy := LoadRoutePolicy(config.Cfg)
	engine := NewEngineFromConfig(config.Cfg, storageProvider)
	defer engine.Close()

	// Background sweep of overdue pre-authorizations
	if config.Cfg.ExpirySweepInterval > 0 {
		engine.StartJanitor(time.Duration(config.Cfg.ExpirySweepInterval) * time.Minute)
	}

	// Middleware to inject shared services into context
	server.Use(func(c *gin.Context) {
		c.Set("Storage", storageProvider)
		c.Next()
	}, func(c *gin.Context) {
		c.Set("Engine", engine)
		c.Next()
	}, func(c *gin.Context) {
		c.Set("Policy", policy)
		c.Next()
	})

	app.RegisterRoutes(server)

	server.Run()
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
