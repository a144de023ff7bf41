package database

import (
	"encoding/json"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type JobStatus string

const (
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// AnalysisJob One analysis request and, once finished, its outcome.
type AnalysisJob struct {
	JobID            string `json:"jobId" gorm:"primaryKey;size:36"`
	OriginalFilename string `json:"originalFilename"`
	InputFilename    string `json:"inputFilename" gorm:"not null"`
	OutputFilename   string `json:"outputFilename" gorm:"not null;uniqueIndex"`

	Status JobStatus `json:"status" gorm:"not null;index:idx_status"`

	// Worker process
	Pid     int     `json:"pid" gorm:"not null;default:0"`
	Command *string `json:"command" gorm:"default:null"`

	// Outcome
	FailureKind *string         `json:"failureKind" gorm:"default:null"`
	ExitCode    *int            `json:"exitCode" gorm:"default:null"`
	Error       *string         `json:"error" gorm:"default:null"`
	Summary     json.RawMessage `json:"summary" gorm:"type:text;default:null" swaggertype:"object"`

	CreatedAt   time.Time  `json:"createdAt" gorm:"not null;index:idx_create_at"`
	CompletedAt *time.Time `json:"completedAt" gorm:"default:null"`
}

func (AnalysisJob) TableName() string {
	return "jobs"
}

var ErrJobNotFound = errors.New("job not found")

func CreateJob(job *AnalysisJob) error {
	job.Status = StatusRunning
	job.CreatedAt = time.Now()

	if err := Db.Create(job).Error; err != nil {
		log.Errorf("[Job] Error creating job '%s': %s", job.JobID, err)
		return err
	}
	log.Infof("[Job] Created job '%s' for '%s'", job.JobID, job.InputFilename)

	return nil
}

func (job *AnalysisJob) UpdateInfo(pid int, command string) error {
	job.Pid = pid
	job.Command = &command
	return Db.Model(&AnalysisJob{}).Where("job_id = ?", job.JobID).
		Updates(map[string]interface{}{"pid": pid, "command": command}).Error
}

// Complete Stores a successful result.
func (job *AnalysisJob) Complete(summary json.RawMessage) error {
	now := time.Now()
	job.Status = StatusCompleted
	job.Summary = summary
	job.CompletedAt = &now

	return Db.Model(&AnalysisJob{}).Where("job_id = ?", job.JobID).
		Updates(map[string]interface{}{
			"status":       StatusCompleted,
			"summary":      summary,
			"completed_at": now,
		}).Error
}

// Fail Stores a failed result, exitCode is nil if the worker never ran.
func (job *AnalysisJob) Fail(kind string, exitCode *int, message string) error {
	now := time.Now()
	job.Status = StatusFailed
	job.FailureKind = &kind
	job.ExitCode = exitCode
	job.Error = &message
	job.CompletedAt = &now

	return Db.Model(&AnalysisJob{}).Where("job_id = ?", job.JobID).
		Updates(map[string]interface{}{
			"status":       StatusFailed,
			"failure_kind": kind,
			"exit_code":    exitCode,
			"error":        message,
			"completed_at": now,
		}).Error
}

func FindJobByID(id string) (*AnalysisJob, error) {
	var job AnalysisJob
	err := Db.Where("job_id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// JobList Newest jobs first.
func JobList(skip, take int, states []JobStatus) ([]*AnalysisJob, int64, error) {
	var jobs []*AnalysisJob
	var totalCount int64

	filter := func(db *gorm.DB) *gorm.DB {
		if len(states) > 0 {
			return db.Where("status IN ?", states)
		}
		return db
	}

	if err := Db.Model(&AnalysisJob{}).Scopes(filter).Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if err := Db.Scopes(filter).
		Order("created_at DESC").
		Offset(skip).
		Limit(take).
		Find(&jobs).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, err
	}

	return jobs, totalCount, nil
}

// FailInterruptedJobs Jobs still marked running at startup lost their worker
// when the service went down.
func FailInterruptedJobs() (int64, error) {
	now := time.Now()
	result := Db.Model(&AnalysisJob{}).Where("status = ?", StatusRunning).
		Updates(map[string]interface{}{
			"status":       StatusFailed,
			"failure_kind": "interrupted",
			"error":        "service stopped while the job was running",
			"completed_at": now,
		})

	return result.RowsAffected, result.Error
}
