package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"bom-gen/config"
	"bom-gen/web"

	"github.com/joho/godotenv"
)

// Settings read from the environment (or a .env file next to the binary).
type settings struct {
	Addr         string
	ConfigFile   string
	TemplateDir  string
	MaxUploadMB  int64
	Origins      []string
	PerMinute    int
	LogLevel     slog.Level
	ShutdownWait time.Duration
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; variables may be set directly.
	envErr := godotenv.Load()

	st, err := loadSettings(os.Getenv)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: st.LogLevel}))
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("No .env file loaded", "error", envErr)
	}

	bundle := config.Default()
	if st.ConfigFile != "" {
		logger.Info("Loading configuration bundle", "file", st.ConfigFile)
		if bundle, err = config.LoadConfigBundle(st.ConfigFile); err != nil {
			return err
		}
	}

	handler, err := web.NewServer(web.Options{
		Bundle:            bundle,
		TemplateRoot:      st.TemplateDir,
		MaxUploadBytes:    st.MaxUploadMB << 20,
		AllowedOrigins:    st.Origins,
		GeneratePerMinute: st.PerMinute,
	}, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              st.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", st.Addr, "templates", st.TemplateDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), st.ShutdownWait)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadSettings(getenv func(string) string) (*settings, error) {
	st := &settings{
		Addr:         ":8080",
		ConfigFile:   getenv("BOM_CONFIG"),
		TemplateDir:  ".",
		MaxUploadMB:  32,
		ShutdownWait: 30 * time.Second,
	}
	if addr := getenv("ADDR"); addr != "" {
		st.Addr = addr
	} else if port := getenv("PORT"); port != "" {
		st.Addr = ":" + port
	}
	if dir := getenv("TEMPLATE_DIR"); dir != "" {
		st.TemplateDir = dir
	}
	if v := getenv("MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_MB %q", v)
		}
		st.MaxUploadMB = n
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				st.Origins = append(st.Origins, o)
			}
		}
	}
	if v := getenv("GENERATE_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid GENERATE_PER_MINUTE %q", v)
		}
		st.PerMinute = n
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		if err := st.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
	}
	return st, nil
}
