package bench

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/twogate/sshbench/payload"
	"github.com/twogate/sshbench/sshrun"
)

// Direction selects which way an scp trial moves data.
type Direction int

// Transfer directions relative to the local host.
const (
	Send Direction = iota
	Receive
)

func (d Direction) String() string {
	if d == Receive {
		return "receive"
	}

	return "send"
}

// Suite runs the full benchmark against one host: a kex sweep, then
// MAC and cipher sweeps in both transfer directions. Trials run
// strictly one at a time.
type Suite struct {
	cfg    Config
	client *sshrun.Client
	logger *slog.Logger
}

// NewSuite fills defaults, validates cfg, and prepares a Suite.
func NewSuite(cfg Config, logger *slog.Logger) (*Suite, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := sshrun.NewClient(
		cfg.SSHBinary, cfg.SCPBinary,
		cfg.Options, cfg.TrialTimeout, logger,
	)

	return &Suite{
		cfg:    cfg,
		client: client,
		logger: logger.With(slog.String("host", cfg.Host)),
	}, nil
}

// Run executes every sweep and returns the collected results. A failed
// trial is recorded and the run moves on; only algorithm discovery and
// payload generation are fatal, in which case no results are returned
// at all.
func (s *Suite) Run(ctx context.Context) (*Results, error) {
	kexes, err := s.client.QueryAlgorithms(ctx, sshrun.ClassKex)
	if err != nil {
		return nil, fmt.Errorf("discover kex algorithms: %w", err)
	}

	macs, err := s.client.QueryAlgorithms(ctx, sshrun.ClassMAC)
	if err != nil {
		return nil, fmt.Errorf("discover macs: %w", err)
	}

	ciphers, err := s.client.QueryAlgorithms(ctx, sshrun.ClassCipher)
	if err != nil {
		return nil, fmt.Errorf("discover ciphers: %w", err)
	}

	var results Results

	// Step 1: kex trials need no payload, only a login attempt.
	results.Kex = s.sweepKex(ctx, kexes)

	// Step 2: the local payload feeds the send-direction transfers.
	s.logger.InfoContext(ctx, "generating local payload",
		slog.String("path", s.cfg.PayloadPath),
		slog.Int64("bytes", s.cfg.PayloadBytes),
	)

	if err := payload.GenerateLocal(
		s.cfg.PayloadPath, s.cfg.PayloadBytes,
	); err != nil {
		return nil, fmt.Errorf("generate local payload: %w", err)
	}

	results.MACSend = s.sweepMACs(ctx, macs, Send)
	results.CipherSend = s.sweepCiphers(ctx, ciphers, Send)

	// Step 3: the remote payload feeds the receive-direction
	// transfers.
	s.logger.InfoContext(ctx, "generating remote payload",
		slog.String("path", s.cfg.PayloadPath),
		slog.Int64("bytes", s.cfg.PayloadBytes),
	)

	if err := payload.GenerateRemote(
		ctx, s.client, s.cfg.Host, s.cfg.PayloadPath, s.cfg.PayloadBytes,
	); err != nil {
		return nil, fmt.Errorf("generate remote payload: %w", err)
	}

	results.MACReceive = s.sweepMACs(ctx, macs, Receive)
	results.CipherReceive = s.sweepCiphers(ctx, ciphers, Receive)

	return &results, nil
}

// sweepKex forces each key exchange algorithm on a login attempt that
// runs the no-op remote command. The exit code cannot distinguish a
// rejected algorithm from a login that failed after negotiation; both
// count as the same failed trial.
func (s *Suite) sweepKex(ctx context.Context, kexes []string) []Trial {
	s.logger.InfoContext(ctx, "testing kex algorithms",
		slog.Int("count", len(kexes)),
	)

	trials := make([]Trial, 0, len(kexes))

	for _, kex := range kexes {
		s.logger.InfoContext(ctx, "trying kex algorithm",
			slog.String("algorithm", kex),
		)

		elapsed, err := s.client.Connect(
			ctx, s.cfg.Host, "KexAlgorithms="+kex,
		)

		trials = append(trials, s.record(ctx, kex, elapsed, err))
	}

	return trials
}

// sweepMACs transfers the payload once per MAC with the cipher pinned
// to the configured transfer cipher, so only the MAC varies.
func (s *Suite) sweepMACs(
	ctx context.Context,
	macs []string,
	dir Direction,
) []Trial {
	s.logger.InfoContext(ctx, "testing macs",
		slog.Int("count", len(macs)),
		slog.String("direction", dir.String()),
	)

	trials := make([]Trial, 0, len(macs))

	for _, mac := range macs {
		s.logger.InfoContext(ctx, "trying mac algorithm",
			slog.String("algorithm", mac),
			slog.String("direction", dir.String()),
		)

		src, dst := s.endpoints(dir)
		elapsed, err := s.client.Copy(ctx, src, dst,
			"Ciphers="+s.cfg.TransferCipher, "Macs="+mac)

		trials = append(trials, s.record(ctx, mac, elapsed, err))
	}

	return trials
}

// sweepCiphers transfers the payload once per cipher with the MAC left
// to the client's own negotiation.
func (s *Suite) sweepCiphers(
	ctx context.Context,
	ciphers []string,
	dir Direction,
) []Trial {
	s.logger.InfoContext(ctx, "testing ciphers",
		slog.Int("count", len(ciphers)),
		slog.String("direction", dir.String()),
	)

	trials := make([]Trial, 0, len(ciphers))

	for _, cipher := range ciphers {
		s.logger.InfoContext(ctx, "trying cipher",
			slog.String("algorithm", cipher),
			slog.String("direction", dir.String()),
		)

		src, dst := s.endpoints(dir)
		elapsed, err := s.client.Copy(ctx, src, dst, "Ciphers="+cipher)

		trials = append(trials, s.record(ctx, cipher, elapsed, err))
	}

	return trials
}

// endpoints returns the scp source and destination for a transfer in
// the given direction. The receiving side always discards into
// /dev/null so disk speed never enters the measurement.
func (s *Suite) endpoints(dir Direction) (string, string) {
	if dir == Receive {
		return sshrun.RemoteRef(s.cfg.Host, s.cfg.PayloadPath), os.DevNull
	}

	return s.cfg.PayloadPath, sshrun.RemoteRef(s.cfg.Host, os.DevNull)
}

func (s *Suite) record(
	ctx context.Context,
	algorithm string,
	elapsed time.Duration,
	err error,
) Trial {
	if err != nil {
		s.logger.WarnContext(ctx, "trial failed",
			slog.String("algorithm", algorithm),
			slog.String("error", err.Error()),
		)

		return Trial{Algorithm: algorithm}
	}

	s.logger.InfoContext(ctx, "trial finished",
		slog.String("algorithm", algorithm),
		slog.Duration("elapsed", elapsed),
	)

	return Trial{Algorithm: algorithm, Elapsed: elapsed, OK: true}
}
