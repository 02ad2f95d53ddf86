package solver

import "errors"

var (
	// ErrUnknownAlgorithm - идентификатор алгоритма отсутствует в таблице
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	// ErrUnknownHeuristic - неизвестное имя эвристики
	ErrUnknownHeuristic = errors.New("unknown heuristic")
	// ErrInvalidParameter - вес или лимит итераций вне допустимого диапазона
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrTransport - запрос к решателю не завершился разбираемым ответом
	ErrTransport = errors.New("solver transport failure")
	// ErrMalformedResponse - ответ не соответствует схеме
	ErrMalformedResponse = errors.New("malformed solver response")
)
