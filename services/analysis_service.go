package services

import (
	"context"
	"errors"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/srad/videoanalyzer/conf"
	"github.com/srad/videoanalyzer/helpers"
)

// JobRequest binds one uploaded input to the output the worker must write.
type JobRequest struct {
	JobID      string
	InputPath  string
	OutputPath string
	// OutputName is the public identifier of the output, reported on success.
	OutputName string
}

// Hooks Observers of a running worker, both optional.
type Hooks struct {
	OnStart  func(info helpers.CommandInfo)
	OnStderr func(line string)
}

// Analyzer runs the external analysis worker, one process per job. It holds
// no per-job state and is safe for concurrent use.
type Analyzer struct {
	Command string
	// Args precede --input/--output, usually the script path.
	Args []string
	Env  []string
	// OutputLimit caps raw stdout/stderr kept in a failure, in characters.
	OutputLimit int
}

func NewAnalyzer(cfg *conf.Cfg) *Analyzer {
	return &Analyzer{
		Command:     cfg.WorkerCommand,
		Args:        cfg.WorkerArgs(),
		OutputLimit: cfg.WorkerOutputLimit,
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Run executes the worker for req and classifies what it left behind. It
// blocks until the worker exited and both output streams are drained. Every
// failure is reported in the Outcome, Run itself never fails.
func (a *Analyzer) Run(ctx context.Context, req JobRequest, hooks *Hooks) Outcome {
	if hooks == nil {
		hooks = &Hooks{}
	}

	logger := log.WithField("job", req.JobID)

	args := append([]string{}, a.Args...)
	args = append(args, "--input", absPath(req.InputPath), "--output", absPath(req.OutputPath))

	result, err := helpers.ExecCapture(ctx, &helpers.ExecArgs{
		Command:     a.Command,
		CommandArgs: args,
		Env:         a.Env,
		OnStart: func(info helpers.CommandInfo) {
			logger.Infof("[Job] Worker started with pid %d", info.Pid)
			if hooks.OnStart != nil {
				hooks.OnStart(info)
			}
		},
		OnPipeErr: func(msg helpers.PipeMessage) {
			logger.WithField("pid", msg.Pid).Warnf("[Worker] %s", msg.Output)
			if hooks.OnStderr != nil {
				hooks.OnStderr(msg.Output)
			}
		},
	})

	outcome := a.classify(req, result, err)
	if outcome.OK() {
		logger.Infof("[Job] Analysis complete, output '%s'", outcome.Success.Output)
	} else {
		logger.Errorf("[Job] Analysis failed (%s): %s", outcome.Failure.Kind, outcome.Failure.Message)
	}

	return outcome
}

func (a *Analyzer) classify(req JobRequest, result *helpers.ExecResult, err error) Outcome {
	outcome := Outcome{JobID: req.JobID}

	// No process ever existed.
	var spawnErr *helpers.SpawnError
	if errors.As(err, &spawnErr) {
		outcome.Failure = newFailure(FailureSpawn, spawnErr)
		return outcome
	}
	if result == nil {
		outcome.Failure = contextFailure(err)
		return outcome
	}

	stdout := string(result.Stdout)
	payload, parseErr := helpers.ParsePayload(stdout)

	var failure *Failure
	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)):
		failure = contextFailure(err)
	case err != nil:
		failure = newFailure(FailureExit, err)
	case result.ExitCode != 0:
		failure = newFailure(FailureExit, &WorkerExitError{ExitCode: result.ExitCode})
	case parseErr != nil:
		failure = newFailure(FailureParse, parseErr)
	case payload == nil:
		failure = newFailure(FailureParse, &helpers.ParseFailure{Reason: "worker reported no result payload"})
	}

	if failure == nil {
		outcome.Success = &Success{Output: req.OutputName, Payload: payload}
		return outcome
	}

	exitCode := result.ExitCode
	failure.ExitCode = &exitCode
	if parseErr != nil {
		failure.ParseError = parseErr.Error()
	}
	failure.Stdout = helpers.Truncate(stdout, a.OutputLimit)
	failure.Stderr = helpers.Truncate(string(result.Stderr), a.OutputLimit)
	failure.Output = reportedOutput(payload)

	outcome.Failure = failure
	return outcome
}

// reportedOutput Base name of the payload's "output" field, if it has one.
func reportedOutput(payload helpers.Payload) *string {
	value, ok := payload["output"].(string)
	if !ok || value == "" {
		return nil
	}
	name := filepath.Base(value)
	return &name
}
