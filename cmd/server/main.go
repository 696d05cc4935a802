// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/podbox/internal/api/connect"
	"github.com/osa030/podbox/internal/api/playerv1/playerv1connect"
	"github.com/osa030/podbox/internal/app/catalog"
	"github.com/osa030/podbox/internal/app/session"
	"github.com/osa030/podbox/internal/infra/config"
	"github.com/osa030/podbox/internal/infra/logger"
)

var (
	app        = kingpin.New("podbox-server", "podbox player state server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-playlists command
	listPlaylistsCmd = app.Command("list-playlists", "List catalog playlists and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	closeLog, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closeLog()

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Load catalog
	cat, err := catalog.NewFromConfig(context.Background(), cfg)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load catalog: %v", err)
	}

	// Handle list-playlists command
	if command == listPlaylistsCmd.FullCommand() {
		printPlaylists(cat)
		return
	}

	// Run server (defer ensures shutdown hook is called)
	if err := run(cfg, cat); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		closeLog()
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config, cat *catalog.Catalog) error {
	ctx := context.Background()

	// Create session manager
	sessionMgr, err := session.NewManager(cfg, cat)
	if err != nil {
		return errors.Wrap(err, "failed to create session manager")
	}
	defer sessionMgr.Close()

	// Start session
	if err := sessionMgr.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start session")
	}

	// Create HTTP mux
	mux := http.NewServeMux()

	// Register services
	mux.Handle(playerv1connect.NewListenerServiceHandler(apiconnect.NewListenerService(sessionMgr)))

	if cfg.ControlTokenRequired() {
		zlog.Info().Msgf("Control API requires %s", apiconnect.ControlTokenHeader)
	} else {
		zlog.Warn().Msg("Control API is open: no control token configured")
	}
	mux.Handle(playerv1connect.NewControlServiceHandler(
		apiconnect.NewControlService(sessionMgr),
		connect.WithInterceptors(apiconnect.NewControlAuthInterceptor(cfg.Control.Token)),
	))

	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Bind before the hooks run so they can reach the server
	addr, serverErrCh, err := startServer(server)
	if err != nil {
		return errors.Wrap(err, "failed to start server")
	}
	zlog.Info().Msgf("Server listening: addr=%s", addr)

	// Execute startup hook if configured (after server is running)
	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")
	defer executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	// Wait for shutdown signal, session end, or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
		stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := sessionMgr.Stop(stopCtx); err != nil {
			zlog.Error().Msgf("Failed to stop session: %v", err)
		}
		cancel()
	case <-sessionMgr.Done():
		zlog.Info().Msg("Session ended, shutting down...")
	case err := <-serverErrCh:
		return errors.Wrap(err, "server error")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close session manager first to terminate active connections/streams
	sessionMgr.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}

// startServer binds the listen address and serves in the background.
// Errors after a successful bind arrive on the returned channel.
func startServer(server *http.Server) (net.Addr, <-chan error, error) {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, nil, err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return ln.Addr(), errCh, nil
}

// printPlaylists prints the catalog.
func printPlaylists(cat *catalog.Catalog) {
	fmt.Printf("Catalog Playlists (%d):\n", cat.Len())
	for _, p := range cat.Playlists() {
		fmt.Printf("  %-20s - %s [%d episodes, %v]\n", p.ID, p.Name, p.Len(), p.TotalDuration().Round(time.Second))
		for _, url := range p.URLs() {
			fmt.Printf("      %s\n", url)
		}
	}
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
