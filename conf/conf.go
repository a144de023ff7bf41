package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Cfg struct {
	Port int

	UploadsPath   string
	ProcessedPath string

	WorkerCommand     string
	WorkerScript      string
	WorkerTimeout     time.Duration
	WorkerOutputLimit int

	MaxUploadMb int

	DbDriver string
	DbDSN    string

	Secret string

	ArchiveEndpoint  string
	ArchiveBucket    string
	ArchiveAccessKey string
	ArchiveSecretKey string
	ArchiveUseSSL    bool

	LogLevel string
}

const (
	// ProcessedRoute URL prefix under which annotated outputs are served.
	ProcessedRoute = "/processed"
	// UploadFallbackExt is used when an uploaded file has no extension.
	UploadFallbackExt = ".mp4"
	// OutputExt container of annotated outputs written by the worker.
	OutputExt = ".avi"
)

var (
	appCfg   *Cfg
	readOnce sync.Once
)

// defaultWorkerCommand The interpreter that runs the analysis script.
func defaultWorkerCommand() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

func setDefaults() {
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("dirs.uploads", "uploads")
	viper.SetDefault("dirs.processed", "processed")
	viper.SetDefault("worker.command", defaultWorkerCommand())
	viper.SetDefault("worker.script", filepath.Join("python", "analyze_video.py"))
	viper.SetDefault("worker.timeout", "30m")
	viper.SetDefault("worker.outputlimit", 5000)
	viper.SetDefault("upload.maxsizemb", 200)
	viper.SetDefault("db.driver", "sqlite")
	viper.SetDefault("db.dsn", "videoanalyzer.db")
	viper.SetDefault("archive.bucket", "processed")
	viper.SetDefault("log.level", "info")
}

func getConfInt(key, envKey string) int {
	val := os.Getenv(envKey)
	if val == "" {
		return viper.GetInt(key)
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		log.Errorf("[getConfInt] Error parsing env variable '%s': %v", envKey, err)
		return viper.GetInt(key)
	}

	return n
}

func getConfBool(key, envKey string) bool {
	val := os.Getenv(envKey)
	if val == "" {
		return viper.GetBool(key)
	}
	return strings.EqualFold(val, "true") || val == "1"
}

func getConfDuration(key, envKey string) time.Duration {
	val := os.Getenv(envKey)
	if val == "" {
		val = viper.GetString(key)
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		log.Errorf("[getConfDuration] Error parsing '%s': %v", key, err)
		return 0
	}

	return d
}

// getConfOptional Environment variable first, then config file, may be empty.
func getConfOptional(key, envKey string) string {
	val := os.Getenv(envKey)
	if val == "" {
		val = viper.GetString(key)
	}
	return val
}

func getConfString(key, envKey string) string {
	val := getConfOptional(key, envKey)
	if val == "" {
		log.Panicf("Missing config file value for key %s", key)
	}
	return val
}

// Read loads the configuration once. The config file conf/app.* is optional,
// defaults and environment variables are sufficient to run.
func Read() *Cfg {
	readOnce.Do(func() {
		setDefaults()

		viper.SetConfigName("conf/app")
		viper.AddConfigPath("./")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				panic(fmt.Errorf("fatal error config file: %w", err))
			}
			log.Infoln("[conf] No config file found, using defaults and environment")
		}

		appCfg = load()
	})

	return appCfg
}

func load() *Cfg {
	return &Cfg{
		Port: getConfInt("server.port", "PORT"),

		UploadsPath:   getConfString("dirs.uploads", "UPLOADS_DIR"),
		ProcessedPath: getConfString("dirs.processed", "PROCESSED_DIR"),

		WorkerCommand:     getConfString("worker.command", "WORKER_COMMAND"),
		WorkerScript:      getConfOptional("worker.script", "WORKER_SCRIPT"),
		WorkerTimeout:     getConfDuration("worker.timeout", "WORKER_TIMEOUT"),
		WorkerOutputLimit: getConfInt("worker.outputlimit", "WORKER_OUTPUT_LIMIT"),

		MaxUploadMb: getConfInt("upload.maxsizemb", "UPLOAD_MAX_MB"),

		DbDriver: getConfString("db.driver", "DB_DRIVER"),
		DbDSN:    getConfString("db.dsn", "DB_DSN"),

		Secret: getConfOptional("auth.secret", "SECRET"),

		ArchiveEndpoint:  getConfOptional("archive.endpoint", "ARCHIVE_ENDPOINT"),
		ArchiveBucket:    getConfOptional("archive.bucket", "ARCHIVE_BUCKET"),
		ArchiveAccessKey: getConfOptional("archive.accesskey", "ARCHIVE_ACCESS_KEY"),
		ArchiveSecretKey: getConfOptional("archive.secretkey", "ARCHIVE_SECRET_KEY"),
		ArchiveUseSSL:    getConfBool("archive.usessl", "ARCHIVE_USE_SSL"),

		LogLevel: getConfOptional("log.level", "LOG_LEVEL"),
	}
}

// WorkerArgs Leading arguments passed to the worker command, before --input/--output.
func (cfg *Cfg) WorkerArgs() []string {
	if cfg.WorkerScript == "" {
		return nil
	}
	return []string{cfg.WorkerScript}
}

func (cfg *Cfg) MaxUploadBytes() int64 {
	return int64(cfg.MaxUploadMb) << 20
}

// ProcessedURL Public URL of an annotated output file.
func ProcessedURL(filename string) string {
	return ProcessedRoute + "/" + filepath.Base(filename)
}
