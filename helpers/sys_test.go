package helpers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// helperArgs re-runs the test binary as a fake process, see TestHelperProcess.
func helperArgs(mode string) *ExecArgs {
	return &ExecArgs{
		Command:     os.Args[0],
		CommandArgs: []string{"-test.run=TestHelperProcess", "--"},
		Env:         []string{"GO_WANT_HELPER_PROCESS=1", "HELPER_MODE=" + mode},
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("HELPER_MODE") {
	case "echo":
		fmt.Fprint(os.Stdout, `{"ok":true}`)
		fmt.Fprint(os.Stderr, "line one\nline two\r\npartial")
		os.Exit(0)
	case "fail":
		fmt.Fprint(os.Stdout, "some output")
		fmt.Fprintln(os.Stderr, "boom")
		os.Exit(3)
	case "flood":
		// Far more than a pipe buffer on both streams.
		chunk := strings.Repeat("x", 1024)
		for i := 0; i < 512; i++ {
			fmt.Fprintln(os.Stderr, chunk)
			fmt.Fprint(os.Stdout, chunk)
		}
		os.Exit(0)
	case "hang":
		time.Sleep(time.Minute)
		os.Exit(0)
	}
	os.Exit(2)
}

func TestExecCaptureSuccess(t *testing.T) {
	args := helperArgs("echo")

	var mu sync.Mutex
	var lines []string
	var started CommandInfo
	args.OnStart = func(info CommandInfo) { started = info }
	args.OnPipeErr = func(msg PipeMessage) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, msg.Output)
	}

	result, err := ExecCapture(context.Background(), args)
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, `{"ok":true}`, string(result.Stdout))
	assert.Equal(t, "line one\nline two\r\npartial", string(result.Stderr))
	assert.Equal(t, []string{"line one", "line two", "partial"}, lines)
	assert.Equal(t, result.Pid, started.Pid)
	assert.Contains(t, started.Command, "-test.run=TestHelperProcess")
}

func TestExecCaptureNonZeroExit(t *testing.T) {
	result, err := ExecCapture(context.Background(), helperArgs("fail"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "some output", string(result.Stdout))
	assert.Equal(t, "boom\n", string(result.Stderr))
}

func TestExecCaptureDrainsBothStreams(t *testing.T) {
	result, err := ExecCapture(context.Background(), helperArgs("flood"))
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExitCode)
	assert.Len(t, result.Stdout, 512*1024)
	assert.Len(t, result.Stderr, 512*1025)
}

func TestExecCaptureSpawnError(t *testing.T) {
	result, err := ExecCapture(context.Background(), &ExecArgs{Command: "/nonexistent/analysis-worker"})
	assert.Nil(t, result)

	var spawnErr *SpawnError
	require.True(t, errors.As(err, &spawnErr))
	assert.Equal(t, "/nonexistent/analysis-worker", spawnErr.Command)
}

func TestExecCaptureTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := ExecCapture(ctx, helperArgs("hang"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, result)
	assert.NotEqual(t, 0, result.ExitCode)
	assert.Less(t, time.Since(start), 30*time.Second)
}

func TestExecCaptureCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := ExecCapture(ctx, helperArgs("echo"))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLineWriter(t *testing.T) {
	var lines []string
	w := &lineWriter{onLine: func(s string) { lines = append(lines, s) }}

	_, _ = w.Write([]byte("ab"))
	_, _ = w.Write([]byte("c\n\nde"))
	_, _ = w.Write([]byte("f\n"))
	w.Flush()

	assert.Equal(t, []string{"abc", "def"}, lines)
}
