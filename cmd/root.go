package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/osherai/bullhorn-mcp/internal/bullhorn"
)

const (
	// transportStdio serves MCP over standard input/output
	transportStdio = "stdio"

	// transportStreamableHTTP serves MCP over streamable HTTP
	transportStreamableHTTP = "streamable-http"
)

var (
	version         string
	envFile         string
	verbose         bool
	noColor         bool
	console         bool
	serverTransport string
	listenAddr      string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bullhorn-mcp",
	Short: "Bullhorn CRM MCP server",
	Long: `bullhorn-mcp exposes read-only Bullhorn CRM query operations as MCP
(Model Context Protocol) tools.

It authenticates against Bullhorn's OAuth 2.0 endpoints with the credentials
from the environment (or a .env file), maintains the short-lived REST session
transparently, and serves the following tools to an MCP host:

- list_jobs / list_candidates: filtered listings with Lucene queries
- get_job / get_candidate: single-entity fetches by ID
- search_entities / query_entities: arbitrary entity search and SQL-like query
- get_entity_metadata: entity schema discovery

The tool supports two modes:
- MCP Server mode (default): serve MCP over stdio or streamable-http
- Console mode (--console): interactive exploration of CRM data

Required environment variables: BULLHORN_CLIENT_ID, BULLHORN_CLIENT_SECRET,
BULLHORN_USERNAME, BULLHORN_PASSWORD. Optional: BULLHORN_AUTH_URL,
BULLHORN_LOGIN_URL.`,
	RunE: runBullhornMCP,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version for the application
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	// Add flags
	rootCmd.Flags().StringVar(&envFile, "env-file", "", "Path to a .env file with Bullhorn credentials (default: ./.env if present)")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose logging (show credential lifecycle events)")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored log output")
	rootCmd.Flags().BoolVar(&console, "console", false, "Start interactive console mode instead of serving MCP")
	rootCmd.Flags().StringVar(&serverTransport, "server-transport", transportStdio, "Transport protocol for the MCP server (stdio, streamable-http)")
	rootCmd.Flags().StringVar(&listenAddr, "listen-addr", ":8899", "Listen address for streamable-http server (path is fixed to /mcp)")

	// Add subcommands
	rootCmd.AddCommand(newSelfUpdateCmd())
}

// validateTransport validates the transport configuration
func validateTransport() error {
	if serverTransport != transportStdio && serverTransport != transportStreamableHTTP {
		return fmt.Errorf("unsupported server transport '%s' (stdio and streamable-http are supported)", serverTransport)
	}
	return nil
}

// setupSignalHandler sets up graceful shutdown on interrupt signals
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if console {
			fmt.Println("\nReceived interrupt signal, shutting down gracefully...")
		}
		cancel()
	}()
}

// newLogger creates the process logger. Logs go to stderr so that the stdio
// MCP transport keeps stdout to itself.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: noColor,
	}).Level(level).With().Timestamp().Logger()
}

// runMCPServer serves the Bullhorn tools over the configured MCP transport
func runMCPServer(client *bullhorn.Client, logger zerolog.Logger) error {
	server, err := bullhorn.NewServer(client, serverTransport, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	logger.Info().Str("transport", serverTransport).Msg("Starting bullhorn-mcp MCP server")
	if serverTransport == transportStreamableHTTP {
		addr := listenAddr
		if !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
		logger.Info().Msgf("Listening on %s/mcp", addr)
	}

	if err := server.Start(listenAddr); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

func runBullhornMCP(cmd *cobra.Command, args []string) error {
	if err := validateTransport(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	setupSignalHandler(cancel)

	logger := newLogger()

	cfg, err := bullhorn.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	auth := bullhorn.NewSessionManager(cfg, nil, logger)
	client := bullhorn.NewClient(auth, nil, logger)

	if console {
		consoleHandler := bullhorn.NewConsole(client, logger)
		if err := consoleHandler.Run(ctx); err != nil {
			return fmt.Errorf("console error: %w", err)
		}
		return nil
	}

	return runMCPServer(client, logger)
}
