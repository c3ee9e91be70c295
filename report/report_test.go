package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twogate/sshbench/bench"
)

func TestWriteCSVSkipsFailedTrials(t *testing.T) {
	trials := []bench.Trial{
		{
			Algorithm: "curve25519-sha256",
			Elapsed:   420 * time.Millisecond,
			OK:        true,
		},
		{Algorithm: "diffie-hellman-group14-sha256"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, trials))

	assert.Equal(t,
		"algorithm,time\ncurve25519-sha256,0.42\n",
		buf.String())
}

func TestWriteCSVPreservesOrder(t *testing.T) {
	trials := []bench.Trial{
		{Algorithm: "zzz-first", Elapsed: time.Second, OK: true},
		{Algorithm: "aaa-second", Elapsed: 2 * time.Second, OK: true},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, trials))

	assert.Equal(t,
		"algorithm,time\nzzz-first,1\naaa-second,2\n",
		buf.String())
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	assert.Equal(t, "algorithm,time\n", buf.String())
}

func TestWriteCSVRowCountEqualsSuccesses(t *testing.T) {
	trials := []bench.Trial{
		{Algorithm: "a", Elapsed: time.Second, OK: true},
		{Algorithm: "b"},
		{Algorithm: "c", Elapsed: time.Second, OK: true},
		{Algorithm: "d"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, trials))

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 3, lines, "header plus one row per success")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "ssh-bench-kex.csv", FileName(CategoryKex))
	assert.Equal(t, "ssh-bench-mac-send.csv", FileName(CategoryMACSend))
	assert.Equal(t, "ssh-bench-cipher-receive.csv",
		FileName(CategoryCipherReceive))
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()

	results := &bench.Results{
		Kex: []bench.Trial{
			{
				Algorithm: "curve25519-sha256",
				Elapsed:   420 * time.Millisecond,
				OK:        true,
			},
		},
		MACSend: []bench.Trial{
			{Algorithm: "hmac-sha2-256", Elapsed: time.Second, OK: true},
		},
	}

	require.NoError(t, WriteFiles(dir, results))

	for _, category := range []string{
		CategoryKex, CategoryMACSend, CategoryCipherSend,
		CategoryMACReceive, CategoryCipherReceive,
	} {
		_, err := os.Stat(filepath.Join(dir, FileName(category)))
		assert.NoError(t, err, "missing file for %s", category)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName(CategoryKex)))
	require.NoError(t, err)
	assert.Equal(t, "algorithm,time\ncurve25519-sha256,0.42\n",
		string(data))

	// Categories without successes still get a header-only file.
	data, err = os.ReadFile(
		filepath.Join(dir, FileName(CategoryCipherSend)))
	require.NoError(t, err)
	assert.Equal(t, "algorithm,time\n", string(data))
}

func TestWriteFilesOverwrites(t *testing.T) {
	dir := t.TempDir()

	first := &bench.Results{
		Kex: []bench.Trial{
			{Algorithm: "first-run", Elapsed: time.Second, OK: true},
		},
	}
	require.NoError(t, WriteFiles(dir, first))

	second := &bench.Results{
		Kex: []bench.Trial{
			{Algorithm: "second-run", Elapsed: 2 * time.Second, OK: true},
		},
	}
	require.NoError(t, WriteFiles(dir, second))

	data, err := os.ReadFile(filepath.Join(dir, FileName(CategoryKex)))
	require.NoError(t, err)
	assert.Equal(t, "algorithm,time\nsecond-run,2\n", string(data))
}

func TestWriteFilesBadDir(t *testing.T) {
	err := WriteFiles(filepath.Join(t.TempDir(), "missing"),
		&bench.Results{})
	require.Error(t, err)
}
