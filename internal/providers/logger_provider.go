package providers

import (
	"io"
	"os"
	"path/filepath"
	"tsd/internal/structures"

	"github.com/rs/zerolog"
)

type TypeEnum string

const (
	TypeApp  TypeEnum = "app"
	TypeGet  TypeEnum = "get"
	TypePost TypeEnum = "post"
)

// GetLogTypeByRequestType maps an HTTP method to a log type. Anything that
// is not a POST is logged as a read.
func GetLogTypeByRequestType(method string) TypeEnum {
	if method == "POST" {
		return TypePost
	}
	return TypeGet
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

// LogProvider writes application logs to app.log and request logs to
// access.log inside the configured directory.
type LogProvider struct {
	app    zerolog.Logger
	access zerolog.Logger
	files  []*os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, err
	}

	mode := os.FileMode(conf.Logger.Mode)
	appFile, err := openLogFile(filepath.Join(conf.Logger.Dir, "app.log"), mode)
	if err != nil {
		return nil, err
	}
	accessFile, err := openLogFile(filepath.Join(conf.Logger.Dir, "access.log"), mode)
	if err != nil {
		appFile.Close()
		return nil, err
	}

	var appOut io.Writer = appFile
	if conf.Debug {
		appOut = io.MultiWriter(appFile, zerolog.ConsoleWriter{Out: os.Stdout})
	}

	return &LogProvider{
		app:    zerolog.New(appOut).Level(level).With().Timestamp().Logger(),
		access: zerolog.New(accessFile).Level(level).With().Timestamp().Logger(),
		files:  []*os.File{appFile, accessFile},
	}, nil
}

func openLogFile(path string, mode os.FileMode) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, mode)
}

func (l *LogProvider) loggerFor(t TypeEnum) *zerolog.Logger {
	if t == TypeApp {
		return &l.app
	}
	return &l.access
}

func (l *LogProvider) logf(lvl zerolog.Level, t TypeEnum, format string, args ...interface{}) {
	l.loggerFor(t).WithLevel(lvl).Str("type", string(t)).Msgf(format, args...)
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.logf(zerolog.ErrorLevel, t, format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.logf(zerolog.WarnLevel, t, format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.logf(zerolog.DebugLevel, t, format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.logf(zerolog.InfoLevel, t, format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.logf(zerolog.FatalLevel, t, format, args...)
}

func (l *LogProvider) Close() {
	for _, f := range l.files {
		_ = f.Close()
	}
}
