package logging

import (
	"fmt"
	"sync"
)

// LoggerManager управляет логгерами отдельных компонентов
type LoggerManager struct {
	mu       sync.RWMutex
	loggers  map[string]*Logger
	fileMode bool
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{
			loggers: make(map[string]*Logger),
		}
	})
	return globalManager
}

// EnableFiles включает создание файлов для компонентных логгеров.
// Без этого компоненты пишут через глобальный логгер (или никуда, если он не инициализирован).
func (lm *LoggerManager) EnableFiles(enabled bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.fileMode = enabled
}

// GetLogger возвращает логгер для компонента, создавая его при необходимости
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	if logger, exists := lm.loggers[component]; exists {
		lm.mu.RUnlock()
		return logger, nil
	}
	fileMode := lm.fileMode
	lm.mu.RUnlock()

	if !fileMode {
		return nil, fmt.Errorf("file logging disabled for %s", component)
	}

	// Создаем новый логгер под write lock
	lm.mu.Lock()
	defer lm.mu.Unlock()

	// Проверяем еще раз на случай race condition
	if logger, exists := lm.loggers[component]; exists {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger for %s: %w", component, err)
	}

	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер или fallback на глобальный при ошибке
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err != nil {
		if defaultLogger == nil {
			return nil
		}
		// Fallback: пишем в консоль глобального логгера с именем компонента
		return &Logger{
			component:       component,
			consoleLogger:   defaultLogger.consoleLogger,
			fileLogger:      defaultLogger.fileLogger,
			minConsoleLevel: defaultLogger.minConsoleLevel,
			minFileLevel:    defaultLogger.minFileLevel,
		}
	}
	return logger
}

// CloseAll закрывает все логгеры
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var lastErr error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close logger for %s: %w", component, err)
		}
	}

	lm.loggers = make(map[string]*Logger)
	return lastErr
}

// SetLogLevel устанавливает уровень логирования для компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.RLock()
	logger, exists := lm.loggers[component]
	lm.mu.RUnlock()

	if !exists {
		return fmt.Errorf("logger for component %s not found", component)
	}

	logger.minConsoleLevel = consoleLevel
	logger.minFileLevel = fileLevel
	return nil
}

// Удобные функции для получения логгеров
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetHarnessLogger() *Logger {
	return GetComponentLogger("harness")
}

func GetSolverLogger() *Logger {
	return GetComponentLogger("solver")
}

func GetAPILogger() *Logger {
	return GetComponentLogger("api")
}

func GetRenderLogger() *Logger {
	return GetComponentLogger("render")
}
