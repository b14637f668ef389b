package config

import (
	"fmt"
	"io"
	"os"
	"time"

	zlogsentry "github.com/archdx/zerolog-sentry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cww "github.com/lzap/cloudwatchwriter2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"
)

func ConfigureLogging() {
	conf := Get()
	level, err := zerolog.ParseLevel(conf.Logging.Level)
	if err != nil {
		log.Error().Err(err).Msg("")
		level = zerolog.InfoLevel
	}

	writers := []io.Writer{}
	if conf.Logging.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !conf.Logging.Color})
	} else {
		writers = append(writers, os.Stderr)
	}
	if conf.Cloudwatch.Key != "" {
		cloudWatchLogger, err := newCloudWatchLogger(conf.Cloudwatch)
		if err != nil {
			log.Fatal().Err(err).Msg("ERROR setting up cloudwatch")
		}
		writers = append(writers, cloudWatchLogger)
	}
	if conf.Sentry.Dsn != "" {
		sentryWriter, err := zlogsentry.New(conf.Sentry.Dsn, zlogsentry.WithLevels(zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel))
		if err != nil {
			log.Error().Err(err).Msg("ERROR setting up sentry, errors will not be reported")
		} else {
			writers = append(writers, sentryWriter)
		}
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger().Level(level)
	zerolog.SetGlobalLevel(level)
	zerolog.DefaultContextLogger = &log.Logger
}

// DBLevel maps the application log level onto the gorm logger level.
func DBLevel(level string) gormlogger.LogLevel {
	switch level {
	case "trace", "debug":
		return gormlogger.Info
	case "info", "warn":
		return gormlogger.Warn
	case "error", "fatal", "panic":
		return gormlogger.Error
	case "disabled":
		return gormlogger.Silent
	}
	return gormlogger.Warn
}

func newCloudWatchLogger(cwConfig Cloudwatch) (io.Writer, error) {
	cloudWatchWriter, err := cww.NewWithClient(newCloudWatchClient(cwConfig), 2000*time.Millisecond, cwConfig.Group, cwConfig.Stream)

	if err != nil {
		return nil, fmt.Errorf("cloudwatchwriter.NewWithClient: %w", err)
	}

	return cloudWatchWriter, nil
}

func newCloudWatchClient(cwConfig Cloudwatch) *cloudwatchlogs.Client {
	cache := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		cwConfig.Key, cwConfig.Secret, cwConfig.Session))

	return cloudwatchlogs.New(cloudwatchlogs.Options{
		Region:      cwConfig.Region,
		Credentials: cache,
	})
}
