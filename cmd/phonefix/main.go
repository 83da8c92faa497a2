// phonefix rewrites directory telephone numbers that start with a trunk zero
// into UK international format. main wires the backends, the audit sinks and
// the run controller; the pipeline itself lives in internal packages.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"phonefix/internal/audit"
	auditkafka "phonefix/internal/audit/kafka"
	"phonefix/internal/directory"
	ldapstore "phonefix/internal/directory/store/ldap"
	"phonefix/internal/directory/store/memory"
	pgstore "phonefix/internal/directory/store/postgres"
	"phonefix/internal/platform/config"
	"phonefix/internal/platform/httpserver"
	"phonefix/internal/platform/logger"
	"phonefix/internal/platform/metrics"
	platformredis "phonefix/internal/platform/redis"
	"phonefix/internal/precheck"
	"phonefix/internal/run"
	"phonefix/internal/runlock"
	"phonefix/internal/status"
)

const version = "1.2.0"

var (
	cfg     = config.FromEnv()
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:          "phonefix",
	Short:        "Bulk-normalize directory telephone numbers to UK international format",
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Query candidates, rewrite their numbers and write the audit log",
	Long: `Queries the directory for accounts whose telephone number starts with a
leading zero, rewrites each to +44 format, applies the change unless
--simulate is set, and records every outcome in a per-run CSV audit log.

A fatal startup condition (missing privileges, unreachable directory,
uncreatable audit log) exits non-zero before any record is touched.
Per-record failures are logged and never stop the batch.`,
	RunE: runNormalization,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the phonefix version",
	Run: func(*cobra.Command, []string) {
		fmt.Println("phonefix " + version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	runCmd.Flags().BoolVar(&cfg.Simulate, "simulate", cfg.Simulate, "perform the full query/transform/log cycle without writing to the directory")
	runCmd.Flags().StringVar(&cfg.Backend, "backend", cfg.Backend, "directory backend: ldap, postgres or memory")
	runCmd.Flags().StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "directory the audit log is created in")
	runCmd.Flags().StringVar(&cfg.StatusAddr, "status-addr", cfg.StatusAddr, "optional address for the progress/metrics HTTP endpoint")

	rootCmd.AddCommand(runCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runNormalization(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logger.New(verbose)
	runID := uuid.New()

	gw, closeGateway, err := openGateway(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open directory gateway: %w", err)
	}
	defer closeGateway()

	// Serialize runs against the same directory when Redis is configured.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		lock := runlock.New(redisClient.Client, runID.String(), cfg.Redis.LockTTL)
		if err := lock.Acquire(ctx); err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(context.Background()); err != nil {
				log.Warn("releasing run lock", "error", err)
			}
		}()
	}

	// The mirror is built inside the factory so a run aborted by a failed
	// precondition never touches the brokers or creates the topic; the
	// controller closes the whole sink, mirror included, on every path past
	// creation.
	openSink := func(started time.Time, runID uuid.UUID) (audit.Sink, string, error) {
		fileSink, err := audit.NewFileSink(cfg.LogDir, started, runID)
		if err != nil {
			return nil, "", err
		}
		if len(cfg.Kafka.Brokers) > 0 {
			mirror, err := auditkafka.New(ctx, auditkafka.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic}, runID)
			if err != nil {
				log.Warn("audit mirror disabled", "error", err)
			} else {
				return audit.NewMultiSink(log, fileSink, mirror), fileSink.Path(), nil
			}
		}
		return fileSink, fileSink.Path(), nil
	}

	reg := prometheus.NewRegistry()
	tracker := status.NewTracker()

	controller := run.NewController(run.Options{
		RunID:    runID,
		Gateway:  gw,
		OpenSink: openSink,
		Checks: []precheck.Check{
			precheck.Elevated(nil),
			precheck.GatewayReachable(gw),
		},
		SimulateOnly: cfg.Simulate,
		Log:          log,
		Metrics:      metrics.New(reg),
		OnProgress:   tracker.Update,
	})

	serveCtx, stopServe := context.WithCancel(ctx)
	defer stopServe()
	g, gctx := errgroup.WithContext(serveCtx)
	if cfg.StatusAddr != "" {
		srv := httpserver.New(cfg.StatusAddr, status.Router(tracker, reg))
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutCtx)
		})
		log.Info("status endpoint listening", "addr", cfg.StatusAddr)
	}

	summary, runErr := controller.Run(ctx)

	stopServe()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("status server", "error", err)
	}

	if runErr != nil {
		return runErr
	}

	fmt.Printf("processed %d accounts in %s: %d applied, %d simulated, %d rejected, %d failed\n",
		summary.Total, summary.Duration.Round(time.Millisecond),
		summary.Applied, summary.Simulated, summary.Rejected, summary.Failed)
	fmt.Printf("audit log: %s\n", summary.LogPath)
	return nil
}

// openGateway builds the configured backend. The returned func releases its
// connection and is safe to call once.
func openGateway(ctx context.Context, cfg config.Config) (directory.Gateway, func(), error) {
	switch cfg.Backend {
	case config.BackendLDAP:
		st, err := ldapstore.Dial(ldapstore.Config{
			URL:          cfg.LDAP.URL,
			BindDN:       cfg.LDAP.BindDN,
			BindPassword: cfg.LDAP.BindPassword,
			BaseDN:       cfg.LDAP.BaseDN,
		})
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case config.BackendPostgres:
		st, err := pgstore.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case config.BackendMemory:
		return memory.NewInMemory(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
