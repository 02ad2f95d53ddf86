package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/annel0/voxel-pathlab/internal/logging"
)

var (
	runPrefix   = []byte("run:")
	runSeqKey   = []byte("seq:run")
	runSeqLease = uint64(100)
)

// BadgerHistory хранит историю запусков в BadgerDB; значения - JSON, сжатый zstd
type BadgerHistory struct {
	db      *badger.DB
	seq     *badger.Sequence
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerHistory открывает (или создаёт) историю в dataPath/history
func NewBadgerHistory(dataPath string) (*BadgerHistory, error) {
	dbPath := filepath.Join(dataPath, "history")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	seq, err := db.GetSequence(runSeqKey, runSeqLease)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось получить последовательность: %w", err)
	}

	logging.Info("💾 История запусков: %s", dbPath)
	return &BadgerHistory{
		db:      db,
		seq:     seq,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

func runKey(n uint64) []byte {
	key := make([]byte, len(runPrefix)+8)
	copy(key, runPrefix)
	binary.BigEndian.PutUint64(key[len(runPrefix):], n)
	return key
}

// Append сохраняет запись под следующим номером последовательности
func (h *BadgerHistory) Append(_ context.Context, run Run) error {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if !h.isReady {
		return ErrNotReady
	}

	n, err := h.seq.Next()
	if err != nil {
		return fmt.Errorf("ошибка последовательности: %w", err)
	}

	data, err := EncodeJSON(run)
	if err != nil {
		return err
	}

	err = h.db.Update(func(txn *badger.Txn) error {
		return txn.Set(runKey(n), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// Recent читает записи в обратном порядке ключей
func (h *BadgerHistory) Recent(_ context.Context, limit int) ([]Run, error) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if !h.isReady {
		return nil, ErrNotReady
	}

	runs := make([]Run, 0, max(limit, 0))
	err := h.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = runPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// В обратном режиме Seek ищет ключ <= заданного
		seek := append(append([]byte{}, runPrefix...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		for it.Seek(seek); it.ValidForPrefix(runPrefix); it.Next() {
			if limit > 0 && len(runs) >= limit {
				break
			}
			var run Run
			err := it.Item().Value(func(val []byte) error {
				return DecodeJSON(val, &run)
			})
			if err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения истории: %w", err)
	}
	return runs, nil
}

// Count считает записи только по ключам
func (h *BadgerHistory) Count(_ context.Context) (int, error) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if !h.isReady {
		return 0, ErrNotReady
	}

	count := 0
	err := h.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = runPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close освобождает последовательность и закрывает БД
func (h *BadgerHistory) Close() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if !h.isReady {
		return nil
	}
	h.isReady = false

	if err := h.seq.Release(); err != nil {
		logging.Warn("не удалось освободить последовательность: %v", err)
	}
	return h.db.Close()
}
