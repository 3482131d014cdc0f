package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"petcare/internal/config"
	"petcare/internal/http/handlers"
	applog "petcare/internal/log"
	"petcare/internal/repos"
	"petcare/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:          "petcare",
		Short:        "Multi-tenant pet-care platform API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./application.yml)")

	load := func() (config.Config, error) {
		if cfgFile != "" {
			return config.LoadFile(cfgFile)
		}
		return config.Load(), nil
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and seed demo data",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer db.Close()
			applog.Logger().Info().Str("driver", cfg.DBDriver).Msg("schema up to date")
			return nil
		},
	}
	root.AddCommand(serveCmd, migrateCmd)
	// bare `petcare` serves
	root.RunE = serveCmd.RunE
	return root
}

func setupLogging(cfg config.Config) (io.Closer, error) {
	applog.SetLevel(cfg.LogLevel)
	if cfg.LogFile == "" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	applog.SetOutput(io.MultiWriter(os.Stdout, f))
	return f, nil
}

// otpStore returns nil when Redis is unreachable; OTP login is then refused.
func otpStore(ctx context.Context, cfg config.Config) (services.OTPStore, *redis.Client) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		applog.Logger().Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, otp login disabled")
		_ = rdb.Close()
		return nil, nil
	}
	return repos.NewOTPStore(rdb), rdb
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	closer, err := setupLogging(cfg)
	if err != nil {
		applog.Logger().Warn().Err(err).Str("file", cfg.LogFile).Msg("could not open log file")
	} else if closer != nil {
		defer closer.Close()
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	otp, rdb := otpStore(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}
	auth := services.NewAuthService(db, otp, nil, cfg.OTPTTL)
	app := handlers.NewApp(db, cfg, auth)

	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	applog.Logger().Info().Str("port", cfg.Port).Msg("listening")
	return app.Listen(":" + cfg.Port)
}
