// Package main provides the CLI entry point for sshbench, a tool that
// benchmarks the system OpenSSH client across key exchange algorithms,
// MACs, and ciphers.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/cobra"

	"github.com/twogate/sshbench/bench"
	"github.com/twogate/sshbench/report"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "sshbench",
		Short: "Benchmark SSH transfer performance per algorithm",
		Long: `Sshbench times the system OpenSSH client against every key exchange
algorithm, MAC, and cipher it reports, transferring a fixed-size
high-entropy payload in both directions and writing one CSV file per
category.`,
		Version:       versioninfo.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		configPath     string
		payloadPath    string
		payloadSize    int64
		transferCipher string
		outputDir      string
		sshBinary      string
		scpBinary      string
		trialTimeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <host>",
		Short: "Run all benchmark sweeps against a host",
		Long: `Run the kex sweep, then the MAC and cipher sweeps in both transfer
directions, and write the five result CSV files. Existing result files
are overwritten. A failed trial is skipped; only payload generation
and algorithm discovery abort the run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg bench.Config

			if configPath != "" {
				var err error

				cfg, err = bench.LoadFile(configPath)
				if err != nil {
					return fmt.Errorf("load config %s: %w", configPath, err)
				}
			}

			// Flags override config-file values; the host is
			// positional only.
			cfg.Host = args[0]

			flags := cmd.Flags()
			if flags.Changed("payload-path") {
				cfg.PayloadPath = payloadPath
			}
			if flags.Changed("payload-size") {
				cfg.PayloadBytes = payloadSize
			}
			if flags.Changed("transfer-cipher") {
				cfg.TransferCipher = transferCipher
			}
			if flags.Changed("output-dir") {
				cfg.OutputDir = outputDir
			}
			if flags.Changed("ssh") {
				cfg.SSHBinary = sshBinary
			}
			if flags.Changed("scp") {
				cfg.SCPBinary = scpBinary
			}
			if flags.Changed("trial-timeout") {
				cfg.TrialTimeout = trialTimeout
			}

			return runBenchmark(cmd.Context(), logger, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "",
		"Path to a YAML config file")
	flags.StringVar(&payloadPath, "payload-path", bench.DefaultPayloadPath,
		"Transfer payload path, used locally and on the remote host")
	flags.Int64Var(&payloadSize, "payload-size", bench.DefaultPayloadBytes,
		"Transfer payload size in bytes")
	flags.StringVar(&transferCipher, "transfer-cipher",
		bench.DefaultTransferCipher,
		"Cipher pinned during the MAC sweeps")
	flags.StringVar(&outputDir, "output-dir", ".",
		"Directory for the result CSV files")
	flags.StringVar(&sshBinary, "ssh", "ssh",
		"ssh binary to benchmark")
	flags.StringVar(&scpBinary, "scp", "scp",
		"scp binary to benchmark")
	flags.DurationVar(&trialTimeout, "trial-timeout", 0,
		"Per-trial timeout (0 waits forever, as classic behavior)")

	return cmd
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	cfg bench.Config,
) error {
	cfg = cfg.WithDefaults()

	suite, err := bench.NewSuite(cfg, logger)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting benchmark",
		slog.String("host", cfg.Host),
		slog.String("payload_path", cfg.PayloadPath),
		slog.Int64("payload_bytes", cfg.PayloadBytes),
		slog.String("transfer_cipher", cfg.TransferCipher),
	)

	results, err := suite.Run(ctx)
	if err != nil {
		return fmt.Errorf("run benchmark: %w", err)
	}

	if err := report.WriteFiles(cfg.OutputDir, results); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.String("output_dir", cfg.OutputDir),
		slog.Int("kex_trials", len(results.Kex)),
		slog.Int("mac_trials", len(results.MACSend)+len(results.MACReceive)),
		slog.Int("cipher_trials",
			len(results.CipherSend)+len(results.CipherReceive)),
	)

	return nil
}
