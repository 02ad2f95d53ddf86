package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает имя уровня; неизвестное имя даёт INFO
func ParseLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TRACE":
		return TRACE
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger представляет систему логирования компонента
type Logger struct {
	component       string
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
}

var (
	logDirMu sync.RWMutex
	logDir   = "logs"

	// Глобальный экземпляр логгера. До InitDefaultLogger вызовы ничего не делают.
	defaultLogger *Logger
)

// SetLogDir задаёт директорию для файлов логов
func SetLogDir(dir string) {
	logDirMu.Lock()
	defer logDirMu.Unlock()
	if dir != "" {
		logDir = dir
	}
}

func currentLogDir() string {
	logDirMu.RLock()
	defer logDirMu.RUnlock()
	return logDir
}

// NewLogger создаёт логгер компонента с файлом logs/<component>_<время>.log
func NewLogger(component string) (*Logger, error) {
	dir := currentLogDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(dir, fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	return &Logger{
		component:       component,
		consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
		fileLogger:      log.New(file, "", log.LstdFlags),
		file:            file,
		minConsoleLevel: INFO,
		minFileLevel:    TRACE,
	}, nil
}

// NewWriterLogger создаёт логгер без файла, пишущий в w (для тестов и CLI)
func NewWriterLogger(component string, w io.Writer, level LogLevel) *Logger {
	return &Logger{
		component:       component,
		consoleLogger:   log.New(w, "", log.LstdFlags),
		minConsoleLevel: level,
		minFileLevel:    ERROR,
	}
}

// InitDefaultLogger инициализирует глобальный логгер
func InitDefaultLogger(component string) error {
	logger, err := NewLogger(component)
	if err != nil {
		return err
	}
	defaultLogger = logger
	return nil
}

// SetDefaultLogger подменяет глобальный логгер
func SetDefaultLogger(l *Logger) {
	defaultLogger = l
}

// CloseDefaultLogger закрывает глобальный логгер
func CloseDefaultLogger() {
	if defaultLogger != nil {
		_ = defaultLogger.Close()
	}
}

// SetConsoleLevel меняет порог вывода в консоль
func (l *Logger) SetConsoleLevel(level LogLevel) {
	if l != nil {
		l.minConsoleLevel = level
	}
}

// Close закрывает файл логгера
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

func (l *Logger) Trace(format string, args ...interface{}) { l.write(TRACE, format, args...) }
func (l *Logger) Debug(format string, args ...interface{}) { l.write(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.write(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.write(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.write(ERROR, format, args...) }

// write внутренняя функция для логирования
func (l *Logger) write(level LogLevel, format string, args ...interface{}) {
	if l == nil {
		return
	}

	prefix := fmt.Sprintf("[%s]", level.String())
	if l.component != "" {
		prefix = fmt.Sprintf("[%s] [%s]", level.String(), l.component)
	}
	message := prefix + " " + fmt.Sprintf(format, args...)

	if l.fileLogger != nil && level >= l.minFileLevel {
		l.fileLogger.Println(message)
	}
	if l.consoleLogger != nil && level >= l.minConsoleLevel {
		l.consoleLogger.Println(message)
	}
}

// Trace логирует сообщение уровня TRACE в глобальный логгер
func Trace(format string, args ...interface{}) { defaultLogger.write(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG
func Debug(format string, args ...interface{}) { defaultLogger.write(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO
func Info(format string, args ...interface{}) { defaultLogger.write(INFO, format, args...) }

// Warn логирует сообщение уровня WARN
func Warn(format string, args ...interface{}) { defaultLogger.write(WARN, format, args...) }

// Error логирует сообщение уровня ERROR
func Error(format string, args ...interface{}) { defaultLogger.write(ERROR, format, args...) }
