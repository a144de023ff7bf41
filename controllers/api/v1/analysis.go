package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/srad/videoanalyzer/app"
	"github.com/srad/videoanalyzer/conf"
	"github.com/srad/videoanalyzer/models/responses"
	"github.com/srad/videoanalyzer/services"
	"github.com/srad/videoanalyzer/workspace"
)

const (
	uploadField = "video"

	messageComplete    = "Analysis complete"
	messageSpawnFailed = "Failed to start analysis worker"
	messageFailed      = "Analysis worker failed or returned invalid JSON"
)

var errNoVideo = errors.New(`No video uploaded (field name must be "video")`)

// AnalyzeVideo godoc
// @Summary     Analyze a video
// @Description Stores the uploaded video, runs the analysis worker on it and waits for the result.
// @Tags        analysis
// @Accept      multipart/form-data
// @Produce     json
// @Param       video formData file true "Video file"
// @Success     200 {object} responses.AnalysisResponse
// @Failure     400 {object} app.ErrorResponse
// @Failure     413 {object} app.ErrorResponse
// @Failure     500 {object} responses.WorkerFailureResponse
// @Router      /analyze-video [post]
func AnalyzeVideo(jobs *services.JobService, maxUploadBytes int64) func(c *gin.Context) {
	return func(c *gin.Context) {
		appG := app.Gin{C: c}

		if maxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
		}

		header, err := c.FormFile(uploadField)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				appG.Error(http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds the limit of %s", humanize.IBytes(uint64(maxErr.Limit))))
				return
			}
			appG.Error(http.StatusBadRequest, errNoVideo)
			return
		}

		job := jobs.NewJob(header.Filename)
		inputPath := jobs.InputPath(job)

		if err := c.SaveUploadedFile(header, inputPath); err != nil {
			log.Errorf("[AnalyzeVideo] Error storing upload: %s", err)
			appG.Error(http.StatusInternalServerError, &workspace.StorageError{Path: inputPath, Err: err})
			return
		}
		log.Infof("[AnalyzeVideo] Stored '%s' (%s) as '%s'", header.Filename, humanize.Bytes(uint64(header.Size)), job.InputFilename)

		// A client that disconnects does not abort the analysis.
		outcome := jobs.Execute(context.WithoutCancel(c.Request.Context()), job)

		status, body := analysisResponse(outcome)
		appG.Response(status, body)
	}
}

func analysisResponse(outcome services.Outcome) (int, interface{}) {
	if outcome.OK() {
		return http.StatusOK, responses.AnalysisResponse{
			JobID:             outcome.JobID,
			Message:           messageComplete,
			AnnotatedVideoURL: conf.ProcessedURL(outcome.Success.Output),
			Summary:           outcome.Success.Payload,
		}
	}

	failure := outcome.Failure
	if failure.Kind == services.FailureSpawn {
		return http.StatusInternalServerError, responses.SpawnFailureResponse{
			JobID:   outcome.JobID,
			Error:   messageSpawnFailed,
			Details: failure.Message,
		}
	}

	body := responses.WorkerFailureResponse{
		JobID:      outcome.JobID,
		Error:      messageFailed,
		ExitCode:   failure.ExitCode,
		ParseError: failure.ParseError,
		StdoutRaw:  failure.Stdout,
		StderrRaw:  failure.Stderr,
	}
	if failure.Output != nil {
		url := conf.ProcessedURL(*failure.Output)
		body.AnnotatedVideoURL = &url
	}

	return http.StatusInternalServerError, body
}
