package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ETLLogger is the leveled logger of the training job. Every entry goes to
// the daily log file and is mirrored to the standard logger.
type ETLLogger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	file        *os.File
	isVerbose   bool
}

// NewETLLogger opens (or creates) <logDir>/training_<date>.log.
func NewETLLogger(logDir string, verbose bool) (*ETLLogger, error) {
	if logDir == "" {
		logDir = "."
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create log directory %s: %w", logDir, err)
	}

	currentTime := time.Now().Format("2006-01-02")
	logFileName := filepath.Join(logDir, fmt.Sprintf("training_%s.log", currentTime))

	file, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open log file %s: %w", logFileName, err)
	}

	l := newETLLogger(file, verbose)
	l.file = file
	return l, nil
}

// NewWriterLogger logs to w only; tests use it to capture output.
func NewWriterLogger(w io.Writer, verbose bool) *ETLLogger {
	return newETLLogger(w, verbose)
}

func newETLLogger(w io.Writer, verbose bool) *ETLLogger {
	return &ETLLogger{
		infoLogger:  log.New(w, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:  log.New(w, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(w, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
		debugLogger: log.New(w, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile),
		isVerbose:   verbose,
	}
}

// Close closes the log file, if any.
func (l *ETLLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Info logs an informational message
func (l *ETLLogger) Info(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.infoLogger.Output(2, msg)
	if l.file != nil {
		log.Println("INFO:", msg)
	}
}

// Warn logs a condition worth a look that does not stop the run
func (l *ETLLogger) Warn(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.warnLogger.Output(2, msg)
	if l.file != nil {
		log.Println("WARN:", msg)
	}
}

// Error logs an error message
func (l *ETLLogger) Error(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.errorLogger.Output(2, msg)
	if l.file != nil {
		log.Println("ERROR:", msg)
	}
}

// Debug logs only in verbose mode
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}

	msg := fmt.Sprintf(format, v...)
	l.debugLogger.Output(2, msg)
	if l.file != nil {
		log.Println("DEBUG:", msg)
	}
}

// LogTrainingStart marks the start of a run
func (l *ETLLogger) LogTrainingStart(runID string) {
	l.Info("Starting training run %s", runID)
}

// LogExtractComplete reports the extract phase
func (l *ETLLogger) LogExtractComplete(readings int, duration time.Duration) {
	l.Info("Extract phase finished in %v: %d readings", duration, readings)
}

// LogLabelingComplete reports the per-class counts and the discarded rows
func (l *ETLLogger) LogLabelingComplete(classCounts map[string]int, discarded int) {
	names := make([]string, 0, len(classCounts))
	for name := range classCounts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, classCounts[name])
	}
	l.Info("Labeling finished: %s; %d UNKNOWN readings discarded", strings.Join(parts, ", "), discarded)
}

// LogTrainingComplete reports the end of a run
func (l *ETLLogger) LogTrainingComplete(startTime time.Time, trainRows, testRows int, accuracy float64) {
	l.Info("Training finished in %v", time.Since(startTime))
	l.Info("Trained on %d rows, evaluated on %d rows, accuracy %.4f", trainRows, testRows, accuracy)
}
