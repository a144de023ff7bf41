package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/srad/videoanalyzer/app"
	"github.com/srad/videoanalyzer/models/responses"
)

// GetHealth godoc
// @Summary     Liveness probe
// @Description Answers as long as the http server runs
// @Tags        info
// @Produce     json
// @Success     200 {object} responses.HealthResponse
// @Router      /health [get]
func GetHealth(c *gin.Context) {
	appG := app.Gin{C: c}

	appG.Response(http.StatusOK, responses.HealthResponse{Status: "ok"})
}

// GetVersion godoc
// @Summary     Returns server version information
// @Schemes
// @Description version information
// @Tags        info
// @Accept      json
// @Produce     json
// @Success     200 {object} responses.ServerInfoResponse
// @Router      /info/version [get]
func GetVersion(version, commit string) func(c *gin.Context) {
	return func(c *gin.Context) {
		appG := app.Gin{C: c}

		appG.Response(http.StatusOK, responses.ServerInfoResponse{Commit: commit, Version: version})
	}
}
