package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jjenkins/prazos/internal/handlers"
	"github.com/jjenkins/prazos/internal/service"
	"github.com/jjenkins/prazos/internal/store"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the deadline calculator web server",
	Long: `Start the web server with the calculator page, the JSON API and the
Prometheus metrics endpoint.

With PRAZOS_SOURCE=postgres the holidays and deadline types are read from the
database and every calculation is recorded in the audit log.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to run the server on (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Use PORT env var unless the flag was given
	if !cmd.Flags().Changed("port") {
		port = cfg.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := newServices(ctx, reg)
	if err != nil {
		return err
	}
	defer svc.Close()

	deps := handlers.Deps{
		Engine:    svc.engine,
		Templates: svc.templates,
		Holidays:  svc.registry,
		Gatherer:  reg,
		Logger:    logger,
	}
	if svc.db != nil {
		deps.Audit = store.NewCalculationStore(svc.db)
		deps.Summary = service.NewMetricsService(svc.db)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Calculadora de Prazos",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	handlers.Register(app, deps)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", port, "source", cfg.Source)
		errCh <- app.Listen(":" + port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
