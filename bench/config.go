package bench

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPayloadBytes is the transfer payload size used when none is
// configured.
const DefaultPayloadBytes = 100 * 1024 * 1024

// DefaultPayloadPath is where the payload file lives, locally and on
// the remote host.
const DefaultPayloadPath = "/tmp/ssh-bench-random-data"

// DefaultTransferCipher is the cipher pinned during the MAC sweeps so
// that only the MAC under test varies.
const DefaultTransferCipher = "aes256-ctr"

// DefaultOptions returns the OpenSSH overrides applied to every trial.
// Compression must stay off: the payload is random data that cannot
// compress, and enabling it would only add CPU cost to some trials.
// Multiplexing must stay off so every trial pays full connection
// setup.
func DefaultOptions() []string {
	return []string{
		"StrictHostKeyChecking=no",
		"ControlMaster=no",
		"ControlPath=none",
		"Compression=no",
	}
}

// Config carries every knob of a benchmark run. It is assembled once
// by the caller and passed in immutably; TrialTimeout is flag-only
// (zero disables it, matching the classic behavior of blocking on a
// hung process).
type Config struct {
	Host           string        `yaml:"host"`
	PayloadPath    string        `yaml:"payload_path"`
	PayloadBytes   int64         `yaml:"payload_bytes"`
	TransferCipher string        `yaml:"transfer_cipher"`
	OutputDir      string        `yaml:"output_dir"`
	SSHBinary      string        `yaml:"ssh_binary"`
	SCPBinary      string        `yaml:"scp_binary"`
	Options        []string      `yaml:"options"`
	TrialTimeout   time.Duration `yaml:"-"`
}

// LoadFile reads configuration overrides from a YAML file. Zero-valued
// fields keep their defaults when the config is later passed through
// WithDefaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// WithDefaults returns a copy of c with zero-valued fields filled in.
func (c Config) WithDefaults() Config {
	if c.PayloadPath == "" {
		c.PayloadPath = DefaultPayloadPath
	}

	if c.PayloadBytes == 0 {
		c.PayloadBytes = DefaultPayloadBytes
	}

	if c.TransferCipher == "" {
		c.TransferCipher = DefaultTransferCipher
	}

	if c.OutputDir == "" {
		c.OutputDir = "."
	}

	if c.SSHBinary == "" {
		c.SSHBinary = "ssh"
	}

	if c.SCPBinary == "" {
		c.SCPBinary = "scp"
	}

	if c.Options == nil {
		c.Options = DefaultOptions()
	}

	return c
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}

	if c.PayloadBytes <= 0 {
		return fmt.Errorf(
			"payload size must be positive, got %d", c.PayloadBytes,
		)
	}

	if c.TrialTimeout < 0 {
		return fmt.Errorf(
			"trial timeout must not be negative, got %s", c.TrialTimeout,
		)
	}

	return nil
}
