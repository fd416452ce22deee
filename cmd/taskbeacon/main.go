package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"

	"taskbeacon/internal/channel"
	"taskbeacon/internal/config"
	"taskbeacon/internal/dispatch"
	"taskbeacon/internal/httpapi"
	beaconmcp "taskbeacon/internal/mcp"
	"taskbeacon/internal/notify"
	"taskbeacon/internal/project"
	"taskbeacon/internal/session"
	sig "taskbeacon/internal/signal"
	"taskbeacon/internal/store"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "notify":
		cmdNotify(os.Args[2:])
	case "version":
		fmt.Printf("taskbeacon %s\n", version)
	case "check":
		cmdCheck(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: taskbeacon <command> [flags]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve     Start the notification server\n")
	fmt.Fprintf(os.Stderr, "  notify    Send a one-shot notification\n")
	fmt.Fprintf(os.Stderr, "  check     Validate configuration\n")
	fmt.Fprintf(os.Stderr, "  version   Print version\n")
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args) // ExitOnError handles errors

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	slog.Info("starting taskbeacon",
		"version", version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func cmdNotify(args []string) {
	fs := flag.NewFlagSet("notify", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	text := fs.String("text", "", "request or command text (required)")
	response := fs.String("response", "", "response or output text")
	status := fs.String("status", "", "explicit status: success, failed or running")
	duration := fs.String("duration", "", "human-readable duration, e.g. '2分钟' or '90s'")
	channelName := fs.String("channel", "", "destination channel (default channel when empty)")
	fromStdin := fs.Bool("stdin", false, "read captured output from stdin as session output")
	_ = fs.Parse(args) // ExitOnError handles errors

	if *text == "" {
		fmt.Fprintln(os.Stderr, "-text is required")
		os.Exit(1)
	}
	if *status != "" && !sig.Status(*status).Valid() {
		fmt.Fprintf(os.Stderr, "unknown status %q\n", *status)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	svc, db, err := buildService(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*cfg.Engine.DispatchTimeout)
	defer cancel()

	req := notify.Request{
		Text:     *text,
		Response: *response,
		Status:   sig.Status(*status),
		Duration: *duration,
		Channel:  *channelName,
		Context:  projectContext(),
	}

	// Piped output goes through a session so long transcripts get the
	// same tail-bounded distillation the server applies.
	if *fromStdin {
		sess := session.New(cfg.Engine.MaxSessionOutput, cfg.Engine.FineGrained, req.Context)
		sess.AddInteraction(*text, *response)
		piped, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading stdin: %v\n", err)
			os.Exit(1)
		}
		sess.AppendOutput(string(piped))
		distilled := sess.Finish()
		if req.Status.Valid() {
			distilled.Status = req.Status
		}
		if d := sig.ParseDuration(*duration); d > 0 {
			distilled.DurationSec = d
		}
		req = notify.Request{Signal: &distilled, Channel: *channelName}
	}

	res, err := svc.Notify(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if !res.Outcome.OK {
		fmt.Fprintf(os.Stderr, "delivery to %q failed (%s): %s\n",
			res.Channel, res.Outcome.Failure, res.Outcome.Diagnostic)
		os.Exit(1)
	}
	fmt.Printf("delivered %q (%s) to %q\n", res.Signal.TaskName, res.Signal.Status, res.Channel)
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args) // ExitOnError handles errors

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("configuration is valid")
	if len(cfg.Channels) == 0 {
		fmt.Println("warning: no channels configured")
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// projectContext detects the project around the working directory so
// notifications carry where the work happened.
func projectContext() map[string]string {
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}
	return project.Detect(cwd).Context()
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch cfg.Server.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlers := []slog.Handler{
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
	}

	if cfg.Server.LogFile != "" {
		f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			slog.Warn("failed to open log file, using stdout only", "path", cfg.Server.LogFile, "error", err)
		} else {
			handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		}
	}

	logger := slog.New(slog.NewMultiHandler(handlers...))
	slog.SetDefault(logger)
}

// buildService wires the resolver, dispatcher and delivery log into one
// notification service.
func buildService(cfg *config.Config) (*notify.Service, store.Store, error) {
	resolver, err := channel.NewResolver(cfg.Channels, cfg.Engine.DefaultChannel)
	if err != nil {
		return nil, nil, fmt.Errorf("building channel resolver: %w", err)
	}

	var db store.Store
	if cfg.Database.Path != "" {
		dbPath := config.ExpandHome(cfg.Database.Path)
		sqlStore, err := store.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		slog.Info("database opened", "path", dbPath)
		db = sqlStore
	}

	return &notify.Service{
		Resolver:   resolver,
		Dispatcher: dispatch.New(cfg.Engine.DispatchTimeout),
		Store:      db,
		Fine:       cfg.Engine.FineGrained,
	}, db, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	svc, db, err := buildService(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
		go retentionLoop(ctx, db, cfg.Database.RetentionDays)
	}

	// --- MCP Server ---
	mcpServer := beaconmcp.NewServer(&beaconmcp.Deps{
		Notifier: svc,
		Store:    db,
		Version:  version,
	})
	mcpHTTP := server.NewStreamableHTTPServer(mcpServer)

	// --- HTTP Router ---
	api := &httpapi.Server{
		Service:      svc,
		Store:        db,
		Tokens:       cfg.Auth.APITokens,
		MockReceiver: cfg.Server.MockReceiver,
	}
	r := api.Router()

	r.Group(func(r chi.Router) {
		r.Use(httpapi.BearerAuth(cfg.Auth.APITokens))
		r.Handle("/mcp", mcpHTTP)
	})

	// --- HTTP Server ---
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("taskbeacon is ready", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// retentionLoop prunes delivery records past the configured age once a
// day. Zero or negative retention disables pruning.
func retentionLoop(ctx context.Context, db store.Store, retentionDays int) {
	if retentionDays <= 0 {
		return
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	prune := func() {
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if err := db.Cleanup(cutoff); err != nil {
			slog.Error("pruning delivery log", "error", err)
		}
	}

	prune()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
