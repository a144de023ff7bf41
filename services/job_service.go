package services

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
	"github.com/srad/videoanalyzer/conf"
	"github.com/srad/videoanalyzer/database"
	"github.com/srad/videoanalyzer/helpers"
	"github.com/srad/videoanalyzer/network"
	"github.com/srad/videoanalyzer/workspace"
)

var (
	json           = jsoniter.ConfigCompatibleWithStandardLibrary
	archiveTimeout = 10 * time.Minute
)

type JobMessage struct {
	Job  *database.AnalysisJob `json:"job"`
	Data interface{}           `json:"data"`
}

// message Events carry a snapshot, the job keeps changing while clients are served.
func message(job *database.AnalysisJob, data interface{}) JobMessage {
	snapshot := *job
	return JobMessage{Job: &snapshot, Data: data}
}

// JobService Runs analysis jobs, records them in the job table and
// publishes their progress to websocket clients.
type JobService struct {
	analyzer      *Analyzer
	namer         *workspace.Namer
	archiver      Archiver
	uploadsPath   string
	processedPath string
	timeout       time.Duration

	mu      sync.Mutex
	running map[string]context.CancelFunc
	archive sync.WaitGroup
}

// NewJobService archiver may be nil.
func NewJobService(cfg *conf.Cfg, analyzer *Analyzer, archiver Archiver) *JobService {
	return &JobService{
		analyzer:      analyzer,
		namer:         workspace.NewNamer(),
		archiver:      archiver,
		uploadsPath:   cfg.UploadsPath,
		processedPath: cfg.ProcessedPath,
		timeout:       cfg.WorkerTimeout,
		running:       make(map[string]context.CancelFunc),
	}
}

// NewJob Assigns the job id and both filenames. Nothing is written yet.
func (s *JobService) NewJob(originalName string) *database.AnalysisJob {
	return &database.AnalysisJob{
		JobID:            uuid.NewString(),
		OriginalFilename: filepath.Base(originalName),
		InputFilename:    s.namer.UploadFilename(originalName),
		OutputFilename:   s.namer.OutputFilename(),
	}
}

// InputPath Where the upload of job must be stored before Execute.
func (s *JobService) InputPath(job *database.AnalysisJob) string {
	return filepath.Join(s.uploadsPath, job.InputFilename)
}

func (s *JobService) OutputPath(job *database.AnalysisJob) string {
	return filepath.Join(s.processedPath, job.OutputFilename)
}

// Execute Runs the worker for a job whose input is already stored and
// blocks until the outcome is known.
func (s *JobService) Execute(ctx context.Context, job *database.AnalysisJob) Outcome {
	ctx, cancel := s.jobContext(ctx)
	defer cancel()

	s.register(job.JobID, cancel)
	defer s.unregister(job.JobID)

	if err := database.CreateJob(job); err != nil {
		log.Errorf("[Job] Job '%s' runs without history: %s", job.JobID, err)
	}
	network.BroadCastClients(network.JobCreateEvent, message(job, nil))

	outcome := s.analyzer.Run(ctx, JobRequest{
		JobID:      job.JobID,
		InputPath:  s.InputPath(job),
		OutputPath: s.OutputPath(job),
		OutputName: job.OutputFilename,
	}, &Hooks{
		OnStart: func(info helpers.CommandInfo) {
			if err := job.UpdateInfo(info.Pid, info.Command); err != nil {
				log.Errorf("[Job] Error updating job info: %s", err)
			}
			network.BroadCastClients(network.JobStartEvent, message(job, info))
		},
		OnStderr: func(line string) {
			network.BroadCastClients(network.JobLogEvent, message(job, line))
		},
	})

	s.record(job, outcome)

	return outcome
}

func (s *JobService) jobContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(parent, s.timeout)
	}
	return context.WithCancel(parent)
}

func (s *JobService) record(job *database.AnalysisJob, outcome Outcome) {
	if outcome.OK() {
		summary, err := json.Marshal(outcome.Success.Payload)
		if err != nil {
			log.Errorf("[Job] Error serializing summary of job '%s': %s", job.JobID, err)
		}
		if err := job.Complete(summary); err != nil {
			log.Errorf("[Job] Error completing job '%s': %s", job.JobID, err)
		}
		network.BroadCastClients(network.JobDoneEvent, message(job, outcome.Success))
		s.archiveOutput(s.OutputPath(job))
		return
	}

	failure := outcome.Failure
	if err := job.Fail(string(failure.Kind), failure.ExitCode, failure.Message); err != nil {
		log.Errorf("[Job] Error failing job '%s': %s", job.JobID, err)
	}
	network.BroadCastClients(network.JobErrorEvent, message(job, failure))
}

func (s *JobService) archiveOutput(path string) {
	if s.archiver == nil {
		return
	}

	s.archive.Add(1)
	go func() {
		defer s.archive.Done()

		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		if err := s.archiver.Archive(ctx, path); err != nil {
			log.Errorf("[Archive] Error archiving '%s': %s", path, err)
		}
	}()
}

func (s *JobService) register(jobID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running[jobID] = cancel
}

func (s *JobService) unregister(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, jobID)
}

// Stop Cancels a running job, its worker is killed. Returns false if no
// such job is running.
func (s *JobService) Stop(jobID string) bool {
	s.mu.Lock()
	cancel, ok := s.running[jobID]
	s.mu.Unlock()

	if ok {
		log.Infof("[Job] Stopping job '%s'", jobID)
		cancel()
	}

	return ok
}

func (s *JobService) IsRunning(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[jobID]
	return ok
}

// StopAll Cancels every running job and waits for pending archive uploads.
func (s *JobService) StopAll() {
	s.mu.Lock()
	for id, cancel := range s.running {
		log.Infof("[Job] Stopping job '%s'", id)
		cancel()
	}
	s.mu.Unlock()

	s.archive.Wait()
}
