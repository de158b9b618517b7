package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zeetee1235/contiki-ng-brpl/internal/brplconf"
	"github.com/zeetee1235/contiki-ng-brpl/internal/contracts"
	"github.com/zeetee1235/contiki-ng-brpl/internal/csvlog"
	"github.com/zeetee1235/contiki-ng-brpl/internal/metrics"
	"github.com/zeetee1235/contiki-ng-brpl/internal/objective"
	"github.com/zeetee1235/contiki-ng-brpl/internal/report"
	"github.com/zeetee1235/contiki-ng-brpl/internal/shutdown"
	"github.com/zeetee1235/contiki-ng-brpl/internal/simulate"
	"github.com/zeetee1235/contiki-ng-brpl/internal/topology/parser"
	"github.com/zeetee1235/contiki-ng-brpl/internal/topology/validate"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Drive a BRPL core through a topology manifest",
	Long:  `Loads a topology YAML file and runs the BRPL objective against it for the configured number of ticks.`,
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().String("topology", "", "path to topology YAML file")
	runCmd.Flags().String("report-dir", "./reports", "directory to write the run report into")
	runCmd.Flags().Int("keep-last-n", 20, "number of run reports to retain (0 disables pruning)")
	runCmd.Flags().Uint32("log-sample-rate", 1, "emit 1 out of every N CSV log lines (0 or 1 logs every tick)")
	runCmd.Flags().String("metrics-addr", "", "address to serve Prometheus metrics on, e.g. :9100 (empty disables)")
	runCmd.Flags().String("stop-file", "", "path polled for existence; its presence stops the run early")
	runCmd.Flags().Int64("seed", 1, "deterministic RNG seed for link-metric jitter")
	runCmd.Flags().Bool("dry-run", false, "validate the topology and exit without simulating")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	topoPath, _ := cmd.Flags().GetString("topology")
	if topoPath == "" {
		return fmt.Errorf("--topology flag is required")
	}
	reportDir, _ := cmd.Flags().GetString("report-dir")
	keepLastN, _ := cmd.Flags().GetInt("keep-last-n")
	sampleRate, _ := cmd.Flags().GetUint32("log-sample-rate")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	stopFile, _ := cmd.Flags().GetString("stop-file")
	seed, _ := cmd.Flags().GetInt64("seed")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	logLevel := zerolog.InfoLevel
	if verbose {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		Level(logLevel).
		With().Timestamp().Logger()

	logger.Info().Str("version", version).Msg("brpld starting")

	params, err := brplconf.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load brpl config: %w", err)
	}

	logger.Info().Str("file", topoPath).Msg("parsing topology")
	p := parser.New(nil)
	topo, err := p.ParseFile(topoPath)
	if err != nil {
		return fmt.Errorf("failed to parse topology: %w", err)
	}

	v := validate.New()
	if err := v.Validate(topo); err != nil {
		return fmt.Errorf("topology validation failed: %v", v.Errors)
	}
	for _, warning := range v.Warnings {
		logger.Warn().Msg(warning)
	}
	logger.Info().Str("name", topo.Metadata.Name).Msg("topology validated")

	if dryRun {
		fmt.Println("topology is valid (dry-run mode)")
		return nil
	}

	csvLogger := csvlog.New(os.Stdout, sampleRate)

	var metricsReg *metrics.Registry
	var metricsSrv *http.Server
	if metricsAddr != "" {
		metricsReg = metrics.New()
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsReg.Handler())
		metricsSrv = &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
		logger.Info().Str("addr", metricsAddr).Msg("serving prometheus metrics")
	}

	stopCtrl := shutdown.New(shutdown.Config{
		StopFile:             stopFile,
		EnableSignalHandlers: true,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopCtrl.Start(ctx)
	stopCtrl.OnStop(func() { cancel() })

	sim := simulate.New(topo, params, simulate.Config{
		Ref:         &objective.MRHOF{MinHopRankInc: uint16(params.MinHopRankInc)},
		TrustOracle: contracts.DefaultTrustOracle{Scale: params.Scale},
		CSVWriter:   csvLogger,
		MetricsReg:  metricsReg,
		Log:         logger,
		Seed:        seed,
	})
	sim.AttachShutdown(stopCtrl)

	logger.Info().Str("topology", topo.Metadata.Name).Int("ticks", topo.Spec.Ticks).Msg("starting simulation")
	run := sim.Run(ctx)
	run.RunID = runID(seed)

	storage, err := report.NewStorage(reportDir, keepLastN, logger)
	if err != nil {
		return fmt.Errorf("failed to create report storage: %w", err)
	}
	path, err := storage.Save(run)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to save run report")
	} else {
		logger.Info().Str("path", path).Msg("run report saved")
	}

	if metricsSrv != nil {
		_ = metricsSrv.Close()
	}

	logger.Info().Str("status", string(run.Status)).Bool("success", run.Success).Msg("simulation finished")

	if !run.Success {
		return fmt.Errorf("simulation did not pass all critical invariants: %s", run.Message)
	}
	return nil
}
