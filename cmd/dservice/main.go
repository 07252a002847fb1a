// Command dservice runs the reconciling content server (spec.md §6). The
// root command's default action is `serve`, following the teacher's
// 16-trustless-gateway convention of a rootRun that starts a long-running
// HTTP server; allow-list, block-list, and indexer-data are one-shot cobra
// subcommands that open the same on-disk store, act, and close it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stigmergic-org/dservice/internal/chainwatcher"
	"github.com/stigmergic-org/dservice/internal/finalization"
	"github.com/stigmergic-org/dservice/internal/httpapi"
	"github.com/stigmergic-org/dservice/internal/listregistry"
	"github.com/stigmergic-org/dservice/internal/reconciler"
	"github.com/stigmergic-org/dservice/internal/serving"
	"github.com/stigmergic-org/dservice/internal/store"
	"github.com/stigmergic-org/dservice/internal/upload"
	"github.com/stigmergic-org/dservice/pkg/health"
)

var flags struct {
	ipfsAPI           string
	apiPort           int
	apiHost           string
	rpc               string
	startBlock        uint64
	chainID           uint64
	disableIndexing   bool
	logLevel          string
	silent            bool
	logDir            string
	tlsKey            string
	tlsCert           string
	universalResolver string
	simplePage        string
	dataDir           string
}

var rootCmd = &cobra.Command{
	Use:   "dservice",
	Short: "reconciling ENS content-hash server",
	Long:  "dservice watches an ENS-style registry, reconciles finalized page versions into a content-addressed store, and serves them over HTTP",
	Run:   rootRun,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&flags.ipfsAPI, "ipfs-api", "http://localhost:5001", "IPFS HTTP API endpoint (unused by the offline store, kept for operator familiarity)")
	f.IntVar(&flags.apiPort, "api-port", 3000, "HTTP API listen port")
	f.StringVar(&flags.apiHost, "api-host", "localhost", "HTTP API listen host")
	f.StringVar(&flags.rpc, "rpc", "http://localhost:8545", "EVM JSON-RPC endpoint")
	f.Uint64Var(&flags.startBlock, "start-block", 0, "chain cursor floor when no cursor is persisted")
	f.Uint64Var(&flags.chainID, "chain-id", 1, "chain ID of --rpc")
	f.BoolVar(&flags.disableIndexing, "disable-indexing", false, "serve only, never run the reconciler")
	f.StringVar(&flags.logLevel, "log-level", "info", "log level: error|warn|info|debug")
	f.BoolVar(&flags.silent, "silent", false, "suppress all logging")
	f.StringVar(&flags.logDir, "log-dir", "", "directory for log files (default: stderr only)")
	f.StringVar(&flags.tlsKey, "tls-key", "", "TLS private key path")
	f.StringVar(&flags.tlsCert, "tls-cert", "", "TLS certificate path")
	f.StringVar(&flags.universalResolver, "universal-resolver", "", "override universal resolver contract address")
	f.StringVar(&flags.simplePage, "simplepage", "", "override registry contract address")
	f.StringVar(&flags.dataDir, "data-dir", defaultDataDir(), "on-disk store directory")

	rootCmd.AddCommand(allowListCmd, blockListCmd, indexerDataCmd)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dservice"
	}
	return home + "/.dservice"
}

func newLogger() zerolog.Logger {
	if flags.silent {
		return zerolog.Nop()
	}
	level, err := zerolog.ParseLevel(flags.logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out = os.Stderr
	w := zerolog.ConsoleWriter{Out: out}
	log := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if flags.logDir != "" {
		if err := os.MkdirAll(flags.logDir, 0o755); err != nil {
			log.Warn().Err(err).Msg("failed to create log-dir, logging to stderr only")
			return log
		}
		f, err := os.OpenFile(flags.logDir+"/dservice.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Warn().Err(err).Msg("failed to open log file, logging to stderr only")
			return log
		}
		multi := zerolog.MultiLevelWriter(w, f)
		log = zerolog.New(multi).Level(level).With().Timestamp().Logger()
	}
	return log
}

func rootRun(cmd *cobra.Command, args []string) {
	log := newLogger()

	s, err := store.New(store.Config{Backend: store.BackendBadger, Path: flags.dataDir})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := listregistry.New(s)
	finals, err := finalization.New(ctx, s, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load finalization map")
	}
	defer finals.Close()

	serv := serving.New(s)
	intake := upload.New(s, 256<<20) // 256 MiB upload cap

	var rec *reconciler.Reconciler
	var watcher *chainwatcher.Watcher
	if !flags.disableIndexing {
		resolverABI, err := universalResolverABI()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build universal resolver ABI")
		}
		watcher, err = chainwatcher.Dial(ctx, chainwatcher.Config{
			RPCEndpoint:       flags.rpc,
			ChainID:           flags.chainID,
			RegistryAddress:   common.HexToAddress(flags.simplePage),
			ResolverABI:       resolverABI,
			UniversalResolver: common.HexToAddress(flags.universalResolver),
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to dial chain RPC")
		}
		defer watcher.Close()

		rec = reconciler.New(reconciler.Config{StartBlock: flags.startBlock}, s, watcher, reg, finals, log)
		go rec.Run(ctx)
		defer rec.Stop()
	}

	healthMgr := health.NewManager(health.DefaultConfig())
	healthMgr.Register(health.ComponentConnectivityCheck("store", func(ctx context.Context) error {
		_, err := s.PinList(ctx, "spg_")
		return err
	}))
	if watcher != nil {
		healthMgr.Register(health.ComponentConnectivityCheck("chain-rpc", func(ctx context.Context) error {
			_, err := watcher.Head(ctx)
			return err
		}))
	}

	handler := httpapi.NewHandler(httpapi.Deps{
		Store:    s,
		Registry: reg,
		Finals:   finals,
		Serving:  serv,
		Intake:   intake,
		Health:   healthMgr,
	}, log)

	addr := flags.apiHost + ":" + itoa(flags.apiPort)
	srv := newHTTPServer(addr, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("dservice listening")
		if flags.tlsCert != "" && flags.tlsKey != "" {
			errCh <- srv.ListenAndServeTLS(flags.tlsCert, flags.tlsKey)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("http server exited")
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
		_ = srv.Shutdown(context.Background())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
