package services

import (
	"os/exec"

	log "github.com/sirupsen/logrus"
	"github.com/srad/videoanalyzer/conf"
	"github.com/srad/videoanalyzer/database"
)

func StartUpJobs(cfg *conf.Cfg) {
	log.Infoln("[StartUpJobs] Running startup job ...")

	failInterruptedJobs()
	checkWorker(cfg)
}

// failInterruptedJobs Jobs left running by a previous process never get an outcome otherwise.
func failInterruptedJobs() {
	count, err := database.FailInterruptedJobs()
	if err != nil {
		log.Errorf("[StartUpJobs] Error failing interrupted jobs: %s", err)
		return
	}
	if count > 0 {
		log.Warnf("[StartUpJobs] Marked %d interrupted job(s) as failed", count)
	}
}

// checkWorker Only warns, a missing worker is reported per job as a spawn failure.
func checkWorker(cfg *conf.Cfg) bool {
	path, err := exec.LookPath(cfg.WorkerCommand)
	if err != nil {
		log.Warnf("[StartUpJobs] Worker command '%s' not found in PATH: %s", cfg.WorkerCommand, err)
		return false
	}
	log.Infof("[StartUpJobs] Found worker command '%s' at '%s'", cfg.WorkerCommand, path)

	return true
}
