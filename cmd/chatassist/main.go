package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chatassist/chatassist/internal/profile"
	"github.com/chatassist/chatassist/internal/version"
	"github.com/chatassist/chatassist/server"
	"github.com/chatassist/chatassist/store"
	"github.com/chatassist/chatassist/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "chatassist",
	Short: "ChatAssist is an AI reply suggestion backend for creator messaging",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := profileFromConfig()
		if err := instanceProfile.Validate(); err != nil {
			return err
		}
		setupLogger(instanceProfile)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return err
		}
		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			return err
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Start(ctx)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			if err != nil {
				slog.Error("failed to start server", "error", err)
			}
		case sig := <-sigCh:
			slog.Info("received signal", "signal", sig.String())
		}

		s.Shutdown(ctx)
		return nil
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "postgres")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of the server")
	rootCmd.PersistentFlags().String("driver", "postgres", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database connection string")
	rootCmd.PersistentFlags().String("secret", "", "secret used to sign tokens")
	rootCmd.PersistentFlags().StringSlice("origins", nil, "allowed CORS origins")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("chatassist")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// profileFromConfig assembles the profile from flags and CHATASSIST_*
// environment variables. Validate fills the remaining defaults.
func profileFromConfig() *profile.Profile {
	mode := viper.GetString("mode")
	return &profile.Profile{
		Mode:    mode,
		Addr:    viper.GetString("addr"),
		Port:    viper.GetInt("port"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Secret:  viper.GetString("secret"),
		Version: version.GetCurrentVersion(mode),
		Origins: viper.GetStringSlice("origins"),

		AccessTokenTTLMinutes: viper.GetInt("access_token_ttl_minutes"),
		RefreshTokenTTLHours:  viper.GetInt("refresh_token_ttl_hours"),

		OpenAIAPIKey:        viper.GetString("openai_api_key"),
		OpenAIBaseURL:       viper.GetString("openai_base_url"),
		DefaultModel:        viper.GetString("default_model"),
		EmbeddingModel:      viper.GetString("embedding_model"),
		EmbeddingDimensions: viper.GetInt("embedding_dimensions"),

		RateLimitPerSecond:     viper.GetFloat64("rate_limit_per_second"),
		RateLimitBurst:         viper.GetInt("rate_limit_burst"),
		AuthRateLimitPerMinute: viper.GetFloat64("auth_rate_limit_per_minute"),
	}
}

func setupLogger(instanceProfile *profile.Profile) {
	level := slog.LevelInfo
	if instanceProfile.IsDev() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
