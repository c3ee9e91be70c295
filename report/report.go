// Package report serializes benchmark results into per-category CSV
// files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/twogate/sshbench/bench"
)

// Category names, one per output file.
const (
	CategoryKex           = "kex"
	CategoryMACSend       = "mac-send"
	CategoryCipherSend    = "cipher-send"
	CategoryMACReceive    = "mac-receive"
	CategoryCipherReceive = "cipher-receive"
)

// FileName returns the output file name for a category.
func FileName(category string) string {
	return fmt.Sprintf("ssh-bench-%s.csv", category)
}

// WriteCSV writes the header row and one row per successful trial in
// input order. Failed trials are omitted entirely; the elapsed time is
// rendered in seconds.
func WriteCSV(w io.Writer, trials []bench.Trial) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"algorithm", "time"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, trial := range trials {
		if !trial.OK {
			continue
		}

		seconds := strconv.FormatFloat(
			trial.Elapsed.Seconds(), 'f', -1, 64,
		)

		if err := cw.Write([]string{trial.Algorithm, seconds}); err != nil {
			return fmt.Errorf("write row for %s: %w", trial.Algorithm, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteFiles writes the five category files into dir, silently
// overwriting any existing files of the same name.
func WriteFiles(dir string, results *bench.Results) error {
	categories := []struct {
		name   string
		trials []bench.Trial
	}{
		{CategoryKex, results.Kex},
		{CategoryMACSend, results.MACSend},
		{CategoryCipherSend, results.CipherSend},
		{CategoryMACReceive, results.MACReceive},
		{CategoryCipherReceive, results.CipherReceive},
	}

	for _, category := range categories {
		path := filepath.Join(dir, FileName(category.name))

		if err := writeFile(path, category.trials); err != nil {
			return err
		}
	}

	return nil
}

func writeFile(path string, trials []bench.Trial) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := WriteCSV(f, trials); err != nil {
		f.Close()

		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}
