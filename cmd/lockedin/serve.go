package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freedompraise/lockedin/internal/apperr"
	"github.com/freedompraise/lockedin/internal/middleware"
	"github.com/freedompraise/lockedin/internal/routes"
	"github.com/freedompraise/lockedin/internal/scheduler"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the daily mirror sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, v)
		},
	}

	cmd.Flags().String("port", "", "HTTP port")
	cmd.Flags().String("sync-time", "", "daily sync time, HH:MM")
	bindFlag(v, "PORT", cmd.Flags().Lookup("port"))
	bindFlag(v, "SYNC_TIME", cmd.Flags().Lookup("sync-time"))

	return cmd
}

func runServe(ctx context.Context, v *viper.Viper) error {
	a, err := newApp(ctx, v)
	if err != nil {
		return err
	}
	defer a.Close()

	hour, minute, err := a.cfg.SyncClock()
	if err != nil {
		return err
	}
	loc, _ := a.cfg.SyncLocation()

	daily := scheduler.NewDaily(hour, minute, loc, func(ctx context.Context) error {
		_, err := a.syncer.SyncAll(ctx)
		return err
	}, a.log)
	go daily.Run(ctx)

	server := fiber.New(fiber.Config{
		AppName: "lockedin",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := apperr.HTTPStatus(apperr.KindOf(err))
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})
	server.Use(recover.New())
	server.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000",
		AllowCredentials: true,
	}))
	server.Use(middleware.RequestLogger(a.log))

	routes.Setup(server, a.handler)

	errCh := make(chan error, 1)
	go func() {
		a.log.Infow("Server starting", "port", a.cfg.Port, "environment", a.cfg.Environment)
		errCh <- server.Listen(":" + a.cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Infow("Shutting down")
	return server.ShutdownWithTimeout(10 * time.Second)
}
