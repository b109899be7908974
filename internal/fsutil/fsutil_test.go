package fsutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGzipSuffix(t *testing.T) {
	assert.True(t, IsGzip("data.mtz.gz"))
	assert.False(t, IsGzip("data.mtz"))
	assert.Equal(t, "run.stream", TrimGzip("run.stream.gz"))
	assert.Equal(t, "run.stream", TrimGzip("run.stream"))
}

func TestSaveLoad(t *testing.T) {
	for _, name := range []string{"plain.bin", "packed.bin.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			payload := []byte("reflection payload")

			require.NoError(t, Save(path, func(w io.Writer) error {
				_, err := w.Write(payload)
				return err
			}))

			var got []byte
			require.NoError(t, Load(path, func(r io.Reader) error {
				var err error
				got, err = io.ReadAll(r)
				return err
			}))
			assert.Equal(t, payload, got)

			if IsGzip(path) {
				raw, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.NotEqual(t, payload, raw)
			}
		})
	}
}

func TestSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	boom := errors.New("boom")
	err := Save(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Failed write leaves the previous file and no temp litter.
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadMissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "absent.bin"), func(io.Reader) error { return nil })
	assert.True(t, os.IsNotExist(err))
}
