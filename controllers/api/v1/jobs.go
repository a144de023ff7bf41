package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/srad/videoanalyzer/app"
	"github.com/srad/videoanalyzer/database"
	"github.com/srad/videoanalyzer/models/requests"
	"github.com/srad/videoanalyzer/models/responses"
	"github.com/srad/videoanalyzer/services"
)

// GetJobs godoc
// @Summary     Return a list of jobs
// @Description Return a list of jobs, newest first
// @Tags        jobs
// @Accept      json
// @Produce     json
// @Param       skip   query int    false "Number of rows to skip"
// @Param       take   query int    false "Number of rows to take (1-100)"
// @Param       states query []string false "Only jobs in these states" collectionFormat(multi)
// @Success     200 {object} responses.JobsResponse
// @Failure     400 {object} app.ErrorResponse
// @Failure     500 {object} app.ErrorResponse
// @Router      /jobs [get]
func GetJobs(c *gin.Context) {
	appG := app.Gin{C: c}

	var req requests.JobsRequest
	if status, err := app.BindAndValid(c, &req); err != nil {
		appG.Error(status, err)
		return
	}

	jobs, totalCount, err := database.JobList(req.Skip, req.Take, req.States)
	if err != nil {
		appG.Error(http.StatusInternalServerError, err)
		return
	}

	appG.Response(http.StatusOK, responses.JobsResponse{
		Jobs:       jobs,
		TotalCount: totalCount,
		Skip:       req.Skip,
		Take:       req.Take,
	})
}

// GetJob godoc
// @Summary     Return one job
// @Tags        jobs
// @Produce     json
// @Param       id path string true "Job id"
// @Success     200 {object} database.AnalysisJob
// @Failure     404 {object} app.ErrorResponse
// @Failure     500 {object} app.ErrorResponse
// @Router      /jobs/{id} [get]
func GetJob(c *gin.Context) {
	appG := app.Gin{C: c}

	job, err := database.FindJobByID(c.Param("id"))
	if errors.Is(err, database.ErrJobNotFound) {
		appG.Error(http.StatusNotFound, err)
		return
	}
	if err != nil {
		appG.Error(http.StatusInternalServerError, err)
		return
	}

	appG.Response(http.StatusOK, job)
}

// StopJob godoc
// @Summary     Stop a running job
// @Description Kills the worker of a running job, the job fails as canceled.
// @Tags        jobs
// @Produce     json
// @Param       id path string true "Job id"
// @Success     200 {object} responses.StopJobResponse
// @Failure     404 {object} app.ErrorResponse
// @Router      /jobs/{id}/stop [post]
func StopJob(jobs *services.JobService) func(c *gin.Context) {
	return func(c *gin.Context) {
		appG := app.Gin{C: c}
		id := c.Param("id")

		if !jobs.Stop(id) {
			appG.Error(http.StatusNotFound, errors.New("job is not running"))
			return
		}

		appG.Response(http.StatusOK, responses.StopJobResponse{JobID: id, Stopped: true})
	}
}
