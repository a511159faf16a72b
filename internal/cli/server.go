package cli

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ammcore/ammd/internal/auth"
	"github.com/ammcore/ammd/internal/config"
	"github.com/ammcore/ammd/internal/core/amount"
	"github.com/ammcore/ammd/internal/core/ledger"
	"github.com/ammcore/ammd/internal/core/pool"
	"github.com/ammcore/ammd/internal/rpc"
	"github.com/ammcore/ammd/internal/storage/compression"
	"github.com/ammcore/ammd/internal/storage/database"
	"github.com/ammcore/ammd/internal/storage/database/bbolt"
	"github.com/ammcore/ammd/internal/storage/database/pebble"
	"github.com/ammcore/ammd/internal/storage/journal"
)

var (
	// Server flag overrides
	serverPort     int
	serverBindAddr string
)

// serverCmd represents the server command (default action).
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the pool daemon",
	Long: `Start the ammd server which provides:
- HTTP JSON-RPC API for pool queries and state transitions
- WebSocket event stream for committed pool events
- Health check endpoint

The ledger is loaded from the snapshot store at startup and written back on
shutdown. This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServer(cmd, args)
	}

	serverCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "port to listen on (overrides config)")
	serverCmd.Flags().StringVar(&serverBindAddr, "bind", "", "address to bind to (overrides config)")
}

// openSnapshotStore opens the configured key-value backend.
func openSnapshotStore(cfg *config.DatabaseConfig) (database.DB, error) {
	switch cfg.Backend {
	case "pebble":
		return pebble.Open(cfg.Path)
	case "bbolt":
		return bbolt.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %s", database.ErrUnknownBackend, cfg.Backend)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}
	if serverBindAddr != "" {
		cfg.Server.BindAddr = serverBindAddr
	}

	db, err := openSnapshotStore(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer db.Close()

	comp := compression.NewCompressor(cfg.Database.Compression)
	persister := ledger.NewPersister(db, comp)

	store, err := persister.Load(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load ledger snapshot: %w", err)
	}

	// Event sinks: WebSocket stream always, journal when enabled.
	hub := rpc.NewEventHub()
	sinks := pool.MultiSink{hub}

	var history *journal.Journal
	if cfg.Journal.Enabled() {
		history, err = journal.Open(cfg.Journal.Driver, cfg.Journal.DSN, cfg.Journal.CacheSize)
		if err != nil {
			return fmt.Errorf("failed to open event journal: %w", err)
		}
		defer history.Close()
		sinks = append(sinks, history)
	}

	engine := pool.NewEngine(store, pool.Config{
		Sink:      sinks,
		PriceUnit: amount.Balance(cfg.Pool.PriceUnit),
	})

	authenticator := auth.New(cfg.AdminAccounts)
	svc := rpc.NewService(engine, authenticator, history, buildVersion)
	rpcServer := rpc.NewServer(svc, cfg.Server.Timeout())

	mux := http.NewServeMux()
	mux.Handle("/", rpcServer)
	mux.Handle("/rpc", rpcServer)
	mux.Handle("/ws", hub)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"ammd"}`))
	})

	listenAddr := net.JoinHostPort(cfg.Server.BindAddr, strconv.Itoa(cfg.Server.Port))
	httpServer := &http.Server{
		Addr:        listenAddr,
		Handler:     mux,
		ReadTimeout: cfg.Server.Timeout(),
	}

	if !quiet {
		fmt.Printf("ammd %s\n", buildVersion)
		fmt.Printf("  - HTTP JSON-RPC: http://%s/\n", listenAddr)
		fmt.Printf("  - WebSocket:     ws://%s/ws\n", listenAddr)
		fmt.Printf("  - Health check:  http://%s/health\n", listenAddr)
		fmt.Printf("  - Snapshots:     %s (%s, %s)\n", cfg.Database.Path, cfg.Database.Backend, comp.Name())
		if cfg.Journal.Enabled() {
			fmt.Printf("  - Journal:       %s (%s)\n", cfg.Journal.DSN, cfg.Journal.Driver)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown: %v", err)
		}
		hub.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	// The server has stopped, no writer is left. Flush the final snapshot.
	saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := persister.Save(saveCtx, store); err != nil {
		return fmt.Errorf("failed to save ledger snapshot: %w", err)
	}

	if !quiet {
		fmt.Println("Shutdown complete, ledger snapshot saved")
	}
	return nil
}
