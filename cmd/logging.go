package cmd

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

var patTerminalEscapeSequences = regexp.MustCompile(`(\x9b|\x1b\[)[0-?]*[ -\/]*[@-~]`)

var allLevels = []logrus.Level{
	logrus.PanicLevel,
	logrus.FatalLevel,
	logrus.ErrorLevel,
	logrus.WarnLevel,
	logrus.InfoLevel,
	logrus.DebugLevel,
	logrus.TraceLevel,
}

// TerminalModeHook writes to a console, keeping escape sequences only when
// the console is a terminal.
type TerminalModeHook struct {
	Writer    io.Writer
	LogLevels []logrus.Level
	Formatter logrus.Formatter
	Colors    bool
}

func (hook *TerminalModeHook) Fire(entry *logrus.Entry) error {
	line, err := hook.Formatter.Format(entry)
	if err != nil {
		return err
	}
	line = bytes.ReplaceAll(line, []byte{0x00}, []byte{})
	if !hook.Colors {
		line = patTerminalEscapeSequences.ReplaceAll(line, []byte{})
	}
	_, err = hook.Writer.Write(line)
	return err
}

func (hook *TerminalModeHook) Levels() []logrus.Level {
	return hook.LogLevels
}

type FileModeHook struct {
	Writer    io.Writer
	LogLevels []logrus.Level
	Formatter logrus.Formatter
}

func (hook *FileModeHook) Fire(entry *logrus.Entry) error {
	line, err := hook.Formatter.Format(entry)
	if err != nil {
		return err
	}
	line = bytes.ReplaceAll(line, []byte{0x00}, []byte{})

	// Filter terminal escapes
	line = patTerminalEscapeSequences.ReplaceAll(line, []byte{})

	_, err = hook.Writer.Write(line)
	return err
}

func (hook *FileModeHook) Levels() []logrus.Level {
	return hook.LogLevels
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func parseLogLevel(name string) logrus.Level {
	switch strings.ToLower(name) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func configureLogging(conf *RunConfig) {
	logger := logrus.New()
	logger.Level = parseLogLevel(gLogLevel)

	// Store the logger in the config
	conf.Logger = logger

	// Discard and use the hooks instead
	logger.Out = io.Discard

	if gLogfile != "" && gLogfile != "-" {
		// Log to file
		logFD, err := os.OpenFile(gLogfile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			logger.Out = os.Stderr
			logger.Fatalf("can't open log '%s': %v", gLogfile, err)
		}

		logger.AddHook(&FileModeHook{
			Writer:    logFD,
			LogLevels: allLevels,
			Formatter: &logrus.TextFormatter{
				TimestampFormat: "2006-01-02 15:04:05",
				FullTimestamp:   true,
				DisableColors:   true,
			},
		})
		return
	}

	// Log to stderr
	colors := isTerminal(os.Stderr)
	logger.AddHook(&TerminalModeHook{
		Writer:    os.Stderr,
		LogLevels: allLevels,
		Colors:    colors,
		Formatter: &logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
			ForceColors:     colors,
		},
	})
}
