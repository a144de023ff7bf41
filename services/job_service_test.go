package services

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/srad/videoanalyzer/conf"
	"github.com/srad/videoanalyzer/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

type fakeArchiver struct {
	mu    sync.Mutex
	paths []string
}

func (a *fakeArchiver) Archive(_ context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paths = append(a.paths, path)
	return nil
}

func newTestJobService(t *testing.T, mode string, timeout time.Duration, archiver Archiver) *JobService {
	t.Helper()

	require.NoError(t, database.Init("sqlite", filepath.Join(t.TempDir(), "jobs.db")))
	t.Cleanup(func() {
		_ = database.Close()
	})

	dir := t.TempDir()
	cfg := &conf.Cfg{
		UploadsPath:   filepath.Join(dir, "uploads"),
		ProcessedPath: filepath.Join(dir, "processed"),
		WorkerTimeout: timeout,
	}
	require.NoError(t, os.MkdirAll(cfg.UploadsPath, 0755))
	require.NoError(t, os.MkdirAll(cfg.ProcessedPath, 0755))

	return NewJobService(cfg, testAnalyzer(mode), archiver)
}

func storeUpload(t *testing.T, s *JobService, job *database.AnalysisJob) {
	t.Helper()
	require.NoError(t, os.WriteFile(s.InputPath(job), []byte("video"), 0644))
}

func TestNewJob(t *testing.T) {
	s := NewJobService(&conf.Cfg{UploadsPath: "uploads", ProcessedPath: "processed"}, testAnalyzer("echo"), nil)

	first := s.NewJob("/tmp/Clip.MOV")
	second := s.NewJob("clip")

	assert.Len(t, first.JobID, 36)
	assert.NotEqual(t, first.JobID, second.JobID)
	assert.Equal(t, "Clip.MOV", first.OriginalFilename)
	assert.Regexp(t, regexp.MustCompile(`^video-\d+\.mov$`), first.InputFilename)
	assert.Regexp(t, regexp.MustCompile(`^video-\d+\.mp4$`), second.InputFilename)
	assert.Regexp(t, regexp.MustCompile(`^annotated-\d+\.avi$`), first.OutputFilename)
	assert.NotEqual(t, first.OutputFilename, second.OutputFilename)
	assert.Equal(t, filepath.Join("uploads", first.InputFilename), s.InputPath(first))
	assert.Equal(t, filepath.Join("processed", first.OutputFilename), s.OutputPath(first))
}

func TestExecuteRecordsSuccess(t *testing.T) {
	archiver := &fakeArchiver{}
	s := newTestJobService(t, "vehicles", 0, archiver)

	job := s.NewJob("clip.mp4")
	storeUpload(t, s, job)

	outcome := s.Execute(context.Background(), job)
	require.True(t, outcome.OK(), "failure: %+v", outcome.Failure)
	assert.Equal(t, job.JobID, outcome.JobID)
	assert.Equal(t, job.OutputFilename, outcome.Success.Output)
	assert.False(t, s.IsRunning(job.JobID))

	s.StopAll()

	stored, err := database.FindJobByID(job.JobID)
	require.NoError(t, err)
	assert.Equal(t, database.StatusCompleted, stored.Status)
	assert.NotZero(t, stored.Pid)
	assert.JSONEq(t, `{"vehicles":{"total_detections":5},"output":"/somewhere/else/evil.avi"}`, string(stored.Summary))
	assert.Equal(t, []string{s.OutputPath(job)}, archiver.paths)
}

func TestExecuteRecordsFailure(t *testing.T) {
	archiver := &fakeArchiver{}
	s := newTestJobService(t, "crash", 0, archiver)

	job := s.NewJob("clip.mp4")
	storeUpload(t, s, job)

	outcome := s.Execute(context.Background(), job)
	require.False(t, outcome.OK())
	assert.Equal(t, FailureExit, outcome.Failure.Kind)

	stored, err := database.FindJobByID(job.JobID)
	require.NoError(t, err)
	assert.Equal(t, database.StatusFailed, stored.Status)
	require.NotNil(t, stored.ExitCode)
	assert.Equal(t, 1, *stored.ExitCode)
	require.NotNil(t, stored.FailureKind)
	assert.Equal(t, string(FailureExit), *stored.FailureKind)
	assert.Empty(t, archiver.paths)
}

func TestExecuteTimeout(t *testing.T) {
	s := newTestJobService(t, "hang", 500*time.Millisecond, nil)

	job := s.NewJob("clip.mp4")
	storeUpload(t, s, job)

	outcome := s.Execute(context.Background(), job)
	require.False(t, outcome.OK())
	assert.Equal(t, FailureTimeout, outcome.Failure.Kind)

	stored, err := database.FindJobByID(job.JobID)
	require.NoError(t, err)
	require.NotNil(t, stored.FailureKind)
	assert.Equal(t, string(FailureTimeout), *stored.FailureKind)
}

func TestStopRunningJob(t *testing.T) {
	s := newTestJobService(t, "hang", 0, nil)

	job := s.NewJob("clip.mp4")
	storeUpload(t, s, job)

	done := make(chan Outcome, 1)
	go func() {
		done <- s.Execute(context.Background(), job)
	}()

	require.Eventually(t, func() bool { return s.IsRunning(job.JobID) }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, s.Stop(job.JobID))

	select {
	case outcome := <-done:
		require.False(t, outcome.OK())
		assert.Equal(t, FailureCanceled, outcome.Failure.Kind)
	case <-time.After(10 * time.Second):
		t.Fatal("stopped job did not finish")
	}

	assert.False(t, s.Stop(job.JobID))
}

func TestStopUnknownJob(t *testing.T) {
	s := NewJobService(&conf.Cfg{}, testAnalyzer("echo"), nil)
	assert.False(t, s.Stop("missing"))
}

func TestCheckWorker(t *testing.T) {
	assert.True(t, checkWorker(&conf.Cfg{WorkerCommand: os.Args[0]}))
	assert.False(t, checkWorker(&conf.Cfg{WorkerCommand: filepath.Join(t.TempDir(), "missing-worker")}))
}

func TestNewArchiverDisabled(t *testing.T) {
	archiver, err := NewArchiver(&conf.Cfg{})
	require.NoError(t, err)
	assert.Nil(t, archiver)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "video/x-msvideo", contentType("processed/annotated-1.avi"))
	assert.Equal(t, "video/mp4", contentType("uploads/video-1.mp4"))
	assert.Equal(t, "application/octet-stream", contentType("notes.txt"))
}
