package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hupe1980/kdknn"
	"github.com/hupe1980/kdknn/report"
)

func TestAtoi(t *testing.T) {
	tests := map[string]int{
		"1000":  1000,
		"  42":  42,
		"+7":    7,
		"12abc": 12,
		"abc":   0,
		"":      0,
		"-5":    0,
		"-":     0,
		"0":     0,
	}
	for in, want := range tests {
		assert.Equal(t, want, atoi(in), "%q", in)
	}
}

func TestParseWorkerList(t *testing.T) {
	ws, err := parseWorkerList("1, 2,4,")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4}, ws)

	_, err = parseWorkerList("1,x")
	assert.Error(t, err)
	_, err = parseWorkerList("0")
	assert.Error(t, err)
	_, err = parseWorkerList(" , ")
	assert.Error(t, err)
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func lines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestRun_Text(t *testing.T) {
	code, stdout, stderr := runCLI(t, "-workers", "2", "-kmin", "3", "-kmax", "3", "-seed", "1", "-log-level", "error", "10")
	require.Equal(t, exitOK, code, stderr)

	out := lines(stdout)
	require.Len(t, out, 10)
	for _, line := range out {
		assert.True(t, strings.HasPrefix(line, "Point "), line)
		assert.Len(t, strings.Fields(strings.SplitN(line, ":", 2)[1]), 3)
	}
}

func TestRun_JSONPartition(t *testing.T) {
	code, stdout, stderr := runCLI(t,
		"-workers", "3", "-variant", "partition", "-format", "json", "-compress", "zstd",
		"-kmin", "1", "-kmax", "2", "-log-level", "error", "12")
	require.Equal(t, exitOK, code, stderr)

	out := lines(stdout)
	require.Len(t, out, 24)
	for _, line := range out {
		assert.True(t, strings.HasPrefix(line, "{"), line)
		assert.Contains(t, line, `"neighbors":`)
	}
}

func TestRun_SequentialDefaultsToOneWorker(t *testing.T) {
	code, stdout, stderr := runCLI(t, "-variant", "sequential", "-log-level", "error", "20")
	require.Equal(t, exitOK, code, stderr)

	out := lines(stdout)
	require.Len(t, out, 4*6)
	assert.Equal(t, "Results for k = 5 (showing first 5 points):", out[0])
}

func TestRun_ZeroPoints(t *testing.T) {
	code, stdout, stderr := runCLI(t, "-workers", "2", "-log-level", "error", "abc")
	require.Equal(t, exitOK, code, stderr)
	assert.Empty(t, stdout)
}

func TestRun_Scaling(t *testing.T) {
	code, stdout, stderr := runCLI(t, "-scaling", "1,2", "-kmin", "2", "-kmax", "2", "-log-level", "error", "50")
	require.Equal(t, exitOK, code, stderr)

	out := lines(stdout)
	require.Len(t, out, 3)
	assert.True(t, strings.HasPrefix(out[0], "Processors"))
}

func TestRun_ScalingRepeat(t *testing.T) {
	code, stdout, stderr := runCLI(t, "-scaling", "1", "-repeat", "2", "-kmin", "2", "-kmax", "2", "-log-level", "error", "20")
	require.Equal(t, exitOK, code, stderr)
	assert.Len(t, lines(stdout), 2)
}

func TestRun_MsgPack(t *testing.T) {
	code, stdout, stderr := runCLI(t, "-workers", "2", "-kmin", "2", "-kmax", "2", "-format", "msgpack", "-log-level", "error", "6")
	require.Equal(t, exitOK, code, stderr)

	dec := msgpack.NewDecoder(strings.NewReader(stdout))
	dec.SetCustomStructTag("json")

	n := 0
	for {
		var rec report.Record
		if err := dec.Decode(&rec); err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
		assert.Len(t, rec.Neighbors, 2)
		n++
	}
	assert.Equal(t, 6, n)
}

func TestRun_UsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-variant", "gpu"},
		{"-format", "xml"},
		{"-compress", "brotli"},
		{"-log-level", "loud"},
		{"-scaling", "0"},
		{"-scaling", "1", "-repeat", "0"},
		{"-nope"},
		{"-config", filepath.Join(t.TempDir(), "missing.yaml")},
	} {
		code, _, _ := runCLI(t, args...)
		assert.Equal(t, exitUsage, code, args)
	}
}

func TestRun_Help(t *testing.T) {
	code, _, stderr := runCLI(t, "-h")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "Usage: kdknn")
}

func TestRun_RunError(t *testing.T) {
	code, _, stderr := runCLI(t, "-variant", "sequential", "-workers", "2", "-log-level", "error", "10")
	assert.Equal(t, exitRun, code)
	assert.Contains(t, stderr, "sequential variant requires exactly one worker")
}

func TestRun_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kdknn.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
points: 8
workers: 2
variant: partition
seed: 3
k:
  min: 2
  max: 2
  step: 1
format: json
log-level: error
`), 0o600))

	code, stdout, stderr := runCLI(t, "-config", path)
	require.Equal(t, exitOK, code, stderr)
	out := lines(stdout)
	require.Len(t, out, 8)
	assert.True(t, strings.HasPrefix(out[0], "{"))

	// Flags override the file.
	code, stdout, stderr = runCLI(t, "-config", path, "-format", "text", "4")
	require.Equal(t, exitOK, code, stderr)
	out = lines(stdout)
	require.Len(t, out, 4)
	assert.True(t, strings.HasPrefix(out[0], "Point "))
}

func TestNewSink(t *testing.T) {
	var buf bytes.Buffer

	assert.IsType(t, &report.TextSink{}, newSink("text", kdknn.Replicate, &buf))
	assert.IsType(t, &report.PreviewSink{}, newSink("text", kdknn.Sequential, &buf))
	assert.IsType(t, &report.JSONSink{}, newSink("json", kdknn.Replicate, &buf))
	assert.IsType(t, &report.JSONSink{}, newSink("go-json", kdknn.Partition, &buf))
	assert.IsType(t, &report.MsgPackSink{}, newSink("msgpack", kdknn.Replicate, &buf))
}

func TestRun_GoJSONMatchesJSON(t *testing.T) {
	args := []string{"-workers", "2", "-kmin", "2", "-kmax", "2", "-log-level", "error"}

	code, std, stderr := runCLI(t, append(args, "-format", "json", "8")...)
	require.Equal(t, exitOK, code, stderr)
	code, fast, stderr := runCLI(t, append(args, "-format", "go-json", "8")...)
	require.Equal(t, exitOK, code, stderr)

	assert.ElementsMatch(t, lines(std), lines(fast))
}
