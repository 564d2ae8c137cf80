package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/affordableaudits/audit-api/internal/application"
	appaudit "github.com/affordableaudits/audit-api/internal/application/audit"
	"github.com/affordableaudits/audit-api/internal/config"
	aiopenai "github.com/affordableaudits/audit-api/internal/infra/ai/openai"
	"github.com/affordableaudits/audit-api/internal/infra/ai/prompt"
	"github.com/affordableaudits/audit-api/internal/infra/httpserver"
	"github.com/affordableaudits/audit-api/internal/infra/mail"
	stripegw "github.com/affordableaudits/audit-api/internal/infra/payment/stripe"
	"github.com/affordableaudits/audit-api/internal/infra/report"
	"github.com/affordableaudits/audit-api/internal/infra/scanner"
	minioStore "github.com/affordableaudits/audit-api/internal/infra/storage"
	"github.com/affordableaudits/audit-api/internal/infra/workspace"
	"github.com/affordableaudits/audit-api/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// payment gateway + session registry
	gateway := stripegw.New(stripegw.Config{
		SecretKey:  cfg.Stripe.SecretKey,
		PriceID:    cfg.Stripe.PriceID,
		SuccessURL: cfg.Stripe.SuccessURL,
		CancelURL:  cfg.Stripe.CancelURL,
	})
	sessions := appaudit.NewRegistry(gateway)

	// reasoning service client
	systemPrompt, err := prompt.Load(cfg.OpenAI.PromptPath)
	if err != nil {
		log.Fatalf("prompt load error: %v", err)
	}
	aiClient := aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, systemPrompt, cfg.OpenAITimeout())

	// scanners
	slither := scanner.NewSlither(cfg.Audit.SlitherBinary, cfg.SlitherTimeout())
	mythril := scanner.NewMythril(cfg.Audit.MythrilBinary, cfg.MythrilTimeout())

	// init service
	svc := &appaudit.Service{
		Workspaces:  workspace.NewManager(cfg.Audit.StorageRoot),
		Structural:  slither,
		Symbolic:    mythril,
		Synthesizer: aiClient,
		Renderer: report.NewPDFRenderer(report.Branding{
			Name:       cfg.Report.BrandName,
			Color:      cfg.Report.BrandColor,
			FooterText: cfg.Report.FooterText,
		}),
		Mailer: mail.NewMailer(mail.Config{
			Host:        cfg.Email.Host,
			Port:        cfg.Email.Port,
			Username:    cfg.Email.Username,
			Password:    cfg.Email.Password,
			SenderName:  cfg.Email.SenderName,
			SenderEmail: cfg.Email.SenderEmail,
			UseTLS:      cfg.Email.UseTLS,
		}),
		Clock: application.SystemClock{},
	}

	// optional report archive
	if cfg.Minio.Enabled {
		archive, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		svc.Archive = archive
	}

	// health checks for the external tools
	checkers := map[string]middleware.HealthChecker{
		"slither": &middleware.BinaryHealthChecker{Binary: binaryOrDefault(cfg.Audit.SlitherBinary, "slither")},
		"mythril": &middleware.BinaryHealthChecker{Binary: binaryOrDefault(cfg.Audit.MythrilBinary, "myth")},
	}

	// init router
	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(svc, sessions, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		// Audits block until both scanners and the reasoning service finish.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func binaryOrDefault(configured, fallback string) string {
	if configured != "" {
		return configured
	}
	return fallback
}
