package helpers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type CommandInfo struct {
	Command string `json:"command"`
	Pid     int    `json:"pid"`
}

type ExecArgs struct {
	OnStart     func(CommandInfo)
	OnPipeErr   func(PipeMessage)
	Command     string
	CommandArgs []string
	// Env is appended to the environment of the current process.
	Env []string
}

type PipeMessage struct {
	Output string
	Pid    int
}

// ExecResult Everything a finished process left behind. Stdout and Stderr hold
// all bytes written during the lifetime of the process.
type ExecResult struct {
	Pid      int
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// SpawnError The process could not be started at all, e.g. missing binary or
// permission denied.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start '%s': %s", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

func (execArgs *ExecArgs) ToString() string {
	return fmt.Sprintf("%s %s", execArgs.Command, strings.Join(execArgs.CommandArgs, " "))
}

// ExecCapture runs the command and buffers stdout and stderr until the process
// exits. Both pipes are drained concurrently, a process blocked on a full pipe
// buffer would otherwise never exit. Each stderr line is handed to OnPipeErr
// as it arrives.
//
// A *SpawnError is returned when no process was started. Once the process ran,
// the result is always returned; a non-zero exit status is not an error. The
// error is the context error when the process was killed because ctx ended.
func ExecCapture(ctx context.Context, execArgs *ExecArgs) (*ExecResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := exec.CommandContext(ctx, execArgs.Command, execArgs.CommandArgs...)
	if len(execArgs.Env) > 0 {
		c.Env = append(os.Environ(), execArgs.Env...)
	}
	configureProcessGroup(c)

	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Command: execArgs.Command, Err: err}
	}
	stderr, err := c.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Command: execArgs.Command, Err: err}
	}

	log.Infof("[Worker] Executing: %s", execArgs.ToString())
	if err := c.Start(); err != nil {
		log.Errorf("[Worker] cmd.Start: %s", err)
		return nil, &SpawnError{Command: execArgs.Command, Err: err}
	}

	pid := c.Process.Pid
	if execArgs.OnStart != nil {
		execArgs.OnStart(CommandInfo{Pid: pid, Command: execArgs.ToString()})
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	errLines := &lineWriter{onLine: func(line string) {
		if execArgs.OnPipeErr != nil {
			execArgs.OnPipeErr(PipeMessage{Output: line, Pid: pid})
		}
	}}

	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&stdoutBuf, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(io.MultiWriter(&stderrBuf, errLines), stderr)
		errLines.Flush()
		return err
	})

	// The exit status is only read after both streams reached EOF.
	drainErr := g.Wait()
	waitErr := c.Wait()

	result := &ExecResult{
		Pid:      pid,
		ExitCode: c.ProcessState.ExitCode(),
		Stdout:   stdoutBuf.Bytes(),
		Stderr:   stderrBuf.Bytes(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil && !c.ProcessState.Success() {
		return result, ctxErr
	}
	if drainErr != nil {
		return result, fmt.Errorf("reading output of pid %d: %w", pid, drainErr)
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return result, waitErr
	}

	return result, nil
}

// lineWriter calls onLine for every complete line written to it.
type lineWriter struct {
	mu      sync.Mutex
	pending []byte
	onLine  func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.emit(w.pending[:i])
		w.pending = w.pending[i+1:]
	}

	return len(p), nil
}

// Flush emits a trailing line without newline.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) > 0 {
		w.emit(w.pending)
		w.pending = nil
	}
}

func (w *lineWriter) emit(line []byte) {
	text := strings.TrimRight(string(line), "\r")
	if text != "" {
		w.onLine(text)
	}
}
