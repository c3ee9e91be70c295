// Package payload creates the high-entropy transfer files used as scp
// payloads. The data must be incompressible so that disabling SSH
// compression keeps every trial comparable.
package payload

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"github.com/twogate/sshbench/sshrun"
)

// GenerateLocal writes exactly size random bytes to path, creating or
// truncating the file.
func GenerateLocal(path string, size int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create payload %s: %w", path, err)
	}

	if _, err := io.CopyN(f, rand.Reader, size); err != nil {
		f.Close()

		return fmt.Errorf("write payload %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close payload %s: %w", path, err)
	}

	return nil
}

// GenerateRemote creates an equivalent payload on host by piping the
// remote /dev/urandom through head. Errors are fatal to the run: the
// receive-direction trials have nothing to transfer without it.
func GenerateRemote(
	ctx context.Context,
	client *sshrun.Client,
	host, path string,
	size int64,
) error {
	command := fmt.Sprintf("head -c %d </dev/urandom >%s", size, path)

	if err := client.Exec(ctx, host, command); err != nil {
		return fmt.Errorf("generate remote payload: %w", err)
	}

	return nil
}
