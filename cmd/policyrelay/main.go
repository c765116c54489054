// ABOUTME: Entry point for the PolicyRelay cluster audit service.
// ABOUTME: Handles initialization, configuration parsing, and starts the HTTP server.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/policyrelay/policyrelay/internal/engine"
	"github.com/policyrelay/policyrelay/internal/metrics"
	"github.com/policyrelay/policyrelay/internal/providers"
	"github.com/policyrelay/policyrelay/internal/server"
)

// defaultExcludedNamespaces are platform-infrastructure namespaces skipped
// by every namespace-scoped rule unless overridden via EXCLUDE_NS.
const defaultExcludedNamespaces = "kube-system,kube-public,local-path-storage,ingress-nginx,cert-manager"

func main() {
	config := parseConfig()

	// Set up structured logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Received shutdown signal")
		cancel()
	}()

	app, err := NewApp(config, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create application")
	}

	if err := app.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start application")
	}
}

func parseConfig() *engine.Config {
	config := &engine.Config{}
	var excludeList string

	flag.StringVar(&config.Mode, "mode", "cluster", "Snapshot mode: cluster, kubectl, local, or mock")
	flag.IntVar(&config.Port, "port", 8080, "Port to expose the HTTP API on")
	flag.StringVar(&config.ManifestFile, "manifest-file", "", "Path to JSON manifest list (required for local mode)")
	flag.StringVar(&config.KubectlPath, "kubectl-path", "", "Path to the kubectl binary (kubectl mode)")
	flag.StringVar(&excludeList, "exclude-namespaces", defaultExcludedNamespaces, "Comma-separated namespaces excluded from auditing")
	flag.BoolVar(&config.AuditOnStart, "audit-on-start", false, "Run one audit pass at startup")
	flag.BoolVar(&config.MockMode, "mock", false, "Enable mock snapshot provider for local testing (no cluster access)")
	flag.Parse()

	// Override with environment variables if set
	if envMode := os.Getenv("MODE"); envMode != "" {
		config.Mode = envMode
	}
	if envPort := os.Getenv("PORT"); envPort != "" {
		if port, err := strconv.Atoi(envPort); err == nil {
			config.Port = port
		} else {
			log.Printf("Invalid PORT environment variable: %s", envPort)
		}
	}
	if envManifest := os.Getenv("MANIFEST_FILE"); envManifest != "" {
		config.ManifestFile = envManifest
	}
	if envKubectl := os.Getenv("KUBECTL_PATH"); envKubectl != "" {
		config.KubectlPath = envKubectl
	}
	if envExclude := os.Getenv("EXCLUDE_NS"); envExclude != "" {
		excludeList = envExclude
	}
	if envMock := os.Getenv("MOCK_MODE"); envMock == "true" || envMock == "1" {
		config.MockMode = true
	}
	if envAudit := os.Getenv("AUDIT_ON_START"); envAudit == "true" || envAudit == "1" {
		config.AuditOnStart = true
	}

	config.ExcludeNamespaces = splitNamespaces(excludeList)

	// Validate configuration
	if config.Mode == "local" && !config.MockMode && config.ManifestFile == "" {
		log.Fatal("Manifest file is required for local mode (unless using mock mode)")
	}

	return config
}

func splitNamespaces(list string) []string {
	var namespaces []string
	for _, ns := range strings.Split(list, ",") {
		if trimmed := strings.TrimSpace(ns); trimmed != "" {
			namespaces = append(namespaces, trimmed)
		}
	}
	return namespaces
}

type App struct {
	config *engine.Config
	logger *logrus.Logger
	engine *engine.Engine
}

func NewApp(config *engine.Config, logger *logrus.Logger) (*App, error) {
	logger.WithFields(logrus.Fields{
		"mode":                config.Mode,
		"port":                config.Port,
		"excluded_namespaces": config.ExcludeNamespaces,
	}).Info("Initializing PolicyRelay")

	providerConfig := &providers.ProviderConfig{
		Mode:         config.Mode,
		ManifestFile: config.ManifestFile,
		KubectlPath:  config.KubectlPath,
		MockMode:     config.MockMode,
	}

	snapshotProvider, err := providers.CreateSnapshotProvider(providerConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot provider: %w", err)
	}

	auditEngine := engine.NewEngine(snapshotProvider, config, logger)

	return &App{
		config: config,
		logger: logger,
		engine: auditEngine,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	if a.config.AuditOnStart {
		go func() {
			if _, err := a.engine.RunAudit(ctx); err != nil {
				a.logger.WithError(err).Error("Startup audit pass failed")
			}
		}()
	}

	// Create HTTP server
	mux := http.NewServeMux()
	mux.HandleFunc("/api/audit", a.securityMiddleware(server.CreateAuditHandler(a.engine, a.logger)))
	mux.HandleFunc("/api/report", a.securityMiddleware(server.CreateReportHandler(a.engine, a.logger)))
	mux.HandleFunc("/metrics", a.securityMiddleware(metrics.CreateMetricsHandler(a.engine, a.logger)))
	mux.HandleFunc("/health", a.securityMiddleware(a.healthHandler))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	go func() {
		<-ctx.Done()
		a.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	a.logger.WithFields(logrus.Fields{
		"port": a.config.Port,
		"mode": a.config.Mode,
	}).Info("Starting HTTP server")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (a *App) securityMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Security headers
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; script-src 'none'; object-src 'none'; frame-ancestors 'none'")

		// Run-audit is a trigger, so POST is admitted alongside reads
		if r.Method != http.MethodGet && r.Method != http.MethodHead && r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		a.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"remote_ip":  r.RemoteAddr,
			"user_agent": r.UserAgent(),
		}).Debug("HTTP request received")

		next(w, r)
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok"}`)
}
