package controllers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/srad/videoanalyzer/conf"
	v1 "github.com/srad/videoanalyzer/controllers/api/v1"
	"github.com/srad/videoanalyzer/docs"
	"github.com/srad/videoanalyzer/middlewares"
	"github.com/srad/videoanalyzer/network"
	"github.com/srad/videoanalyzer/services"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           VideoAnalyzer API
// @version         1.0
// @description     Upload videos and run the traffic analysis worker on them.
//
// @contact.name   API Support
// @contact.url    https://github.com/srad
//
// @host      localhost:3000
// @BasePath  /api/v1

// Setup InitRouter initialize routing information
func Setup(cfg *conf.Cfg, jobs *services.JobService, version, commit string) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
		AllowWebSockets:  true,
		AllowWildcard:    true,
	}))

	// Annotated outputs, addressed by the url returned from analyze-video.
	router.Static(conf.ProcessedRoute, cfg.ProcessedPath)

	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", v1.GetHealth)

	auth := middlewares.CheckAuthorizationHeader(cfg.Secret)
	analyze := v1.AnalyzeVideo(jobs, cfg.MaxUploadBytes())

	// Unversioned route kept for existing clients.
	router.POST("/api/analyze-video", auth, analyze)

	apiV1 := router.Group("/api/v1")
	apiV1.Use(auth)
	{
		apiV1.POST("/analyze-video", analyze)

		// Jobs
		apiV1.GET("/jobs", v1.GetJobs)
		apiV1.GET("/jobs/:id", v1.GetJob)
		apiV1.POST("/jobs/:id/stop", v1.StopJob(jobs))

		apiV1.GET("/info/version", v1.GetVersion(version, commit))

		apiV1.GET("/ws", network.WsHandler)
	}

	return router
}
