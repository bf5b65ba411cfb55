package main

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = "Hamburg;12.0\nBulawayo;8.9\nHamburg;14.0\nPalembang;38.8\nHamburg;10.0\n"

const scenarioReport = "Bulawayo: 8.9/8.9/8.9\nHamburg: 10.0/12.0/14.0\nPalembang: 38.8/38.8/38.8\n"

func TestRunEnginesAgree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measurements.txt")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))

	for _, engine := range []string{"scan", "chunks", "mmap"} {
		t.Run(engine, func(t *testing.T) {
			var out bytes.Buffer
			err := run(context.Background(), config{
				inputFile: path,
				engine:    engine,
				workers:   4,
			}, &out)
			require.NoError(t, err)
			assert.Equal(t, scenarioReport, out.String())
		})
	}
}

func TestRunMissingInputWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.txt")

	for _, engine := range []string{"scan", "chunks", "mmap"} {
		t.Run(engine, func(t *testing.T) {
			var out bytes.Buffer
			err := run(context.Background(), config{inputFile: path, engine: engine}, &out)
			require.Error(t, err)
			assert.ErrorIs(t, err, fs.ErrNotExist)
			assert.Zero(t, out.Len(), "no partial report on fatal failure")
		})
	}
}

func TestRunUnknownEngine(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), config{inputFile: "x", engine: "warp"}, &out)
	assert.Error(t, err)
}
