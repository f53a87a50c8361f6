package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Anmepod44/website/internal/infra/metrics"
	"github.com/Anmepod44/website/internal/presentation/rest"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/spf13/cobra"
)

func serveEntry() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the HTTP server accepting build requests",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			serve()
		},
	}
}

func serve() {
	c, err := newComponents(context.Background())
	if err != nil {
		log.Panic(err)
	}

	handler := rest.NewServer(c.handlers, c.deployCfg, c.serverCfg)
	app := fiber.New(fiber.Config{
		IdleTimeout: 5 * time.Second,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: c.serverCfg.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	rest.RegisterHandlers(app, handler)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.HTTPHandler(c.registry)))

	go func() {
		if err := app.Listen(c.serverCfg.ListenAddr); err != nil {
			log.Panic(err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	<-sig
	fmt.Println("Gracefully shutting down...")
	_ = app.ShutdownWithTimeout(c.serverCfg.RequestTimeout)
	fmt.Println("Fiber was successfully shutdown.")
}
