package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var (
	AppLogger   *log.Logger
	ProxyLogger *log.Logger
	ErrorLogger *log.Logger

	mu           sync.Mutex
	level        = levelInfo
	levelName    = "INFO"
	appLogFile   *os.File
	proxyLogFile *os.File
	initialized  bool
)

func parseLevel(s string) (int, string) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return levelDebug, "DEBUG"
	case "WARN", "WARNING":
		return levelWarn, "WARN"
	case "ERROR":
		return levelError, "ERROR"
	default:
		return levelInfo, "INFO"
	}
}

// openLog opens path for appending, creating its directory. It falls back to
// io.Discard so a broken log path never stops the service.
func openLog(path, name string) (io.Writer, *os.File, string) {
	if path == "" {
		return io.Discard, nil, "(discarded)"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		ErrorLogger.Printf("Failed to create %s log directory %s: %v. %s logs will be discarded.", name, filepath.Dir(path), err, name)
		return io.Discard, nil, "(discarded)"
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		ErrorLogger.Printf("Failed to open %s log file %s: %v. %s logs will be discarded.", name, path, err, name)
		return io.Discard, nil, "(discarded)"
	}
	return f, f, path
}

// InitGlobalLoggers points the app and proxy loggers at their files.
// Errors always also go to stderr.
func InitGlobalLoggers(appLogPath, proxyLogPath, lvl string) error {
	mu.Lock()
	defer mu.Unlock()

	closeFilesLocked()
	level, levelName = parseLevel(lvl)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	appWriter, appFile, appDesc := openLog(appLogPath, "app")
	appLogFile = appFile
	AppLogger = log.New(appWriter, "APP: ", log.Ldate|log.Ltime|log.Lshortfile)

	proxyWriter, proxyFile, proxyDesc := openLog(proxyLogPath, "proxy")
	proxyLogFile = proxyFile
	ProxyLogger = log.New(proxyWriter, "PROXY: ", log.Ldate|log.Ltime|log.Lshortfile)

	if !initialized {
		AppLogger.Printf("App logger initialized. Log level: %s. Output file: %s", levelName, appDesc)
		ProxyLogger.Printf("Proxy logger initialized. Log level: %s. Output file: %s", levelName, proxyDesc)
	}
	initialized = true
	return nil
}

// SetOutput sends app and proxy logs to w at the given level. Used by tests
// and by commands that log to the terminal.
func SetOutput(w io.Writer, lvl string) {
	mu.Lock()
	defer mu.Unlock()
	closeFilesLocked()
	level, levelName = parseLevel(lvl)
	AppLogger = log.New(w, "APP: ", 0)
	ProxyLogger = log.New(w, "PROXY: ", 0)
	ErrorLogger = log.New(w, "ERROR: ", 0)
}

// Level returns the active level name.
func Level() string {
	return levelName
}

func Info(format string, v ...interface{}) {
	if AppLogger != nil && level <= levelInfo {
		AppLogger.Printf(format, v...)
	}
}

func Debug(format string, v ...interface{}) {
	if AppLogger != nil && level <= levelDebug {
		AppLogger.Printf(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	if AppLogger != nil && level <= levelWarn {
		AppLogger.Printf("WARN: "+format, v...)
	}
}

func Error(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if ErrorLogger != nil {
		ErrorLogger.Print(message)
	}
	if AppLogger != nil && appLogFile != nil {
		AppLogger.Print(message)
	}
}

func Fatal(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if ErrorLogger != nil {
		ErrorLogger.Fatal(message)
	}
	log.Fatal(message)
}

func ProxyInfo(format string, v ...interface{}) {
	if ProxyLogger != nil && level <= levelInfo {
		ProxyLogger.Printf(format, v...)
	}
}

func ProxyDebug(format string, v ...interface{}) {
	if ProxyLogger != nil && level <= levelDebug {
		ProxyLogger.Printf(format, v...)
	}
}

func ProxyError(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if ErrorLogger != nil {
		ErrorLogger.Print(message)
	}
	if ProxyLogger != nil && proxyLogFile != nil {
		ProxyLogger.Print(message)
	}
}

func closeFilesLocked() {
	if appLogFile != nil {
		appLogFile.Close()
		appLogFile = nil
	}
	if proxyLogFile != nil {
		proxyLogFile.Close()
		proxyLogFile = nil
	}
}

func CloseLogFiles() {
	mu.Lock()
	defer mu.Unlock()
	if appLogFile != nil {
		AppLogger.Println("Closing app log file.")
	}
	closeFilesLocked()
	initialized = false
}
