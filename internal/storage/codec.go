package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Кодеки zstd потокобезопасны для EncodeAll/DecodeAll, создаём их один раз
var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

func initCodec() {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
	})
}

// Compress сжимает данные zstd
func Compress(data []byte) ([]byte, error) {
	initCodec()
	if codecErr != nil {
		return nil, fmt.Errorf("zstd init: %w", codecErr)
	}
	return encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decompress распаковывает данные zstd
func Decompress(data []byte) ([]byte, error) {
	initCodec()
	if codecErr != nil {
		return nil, fmt.Errorf("zstd init: %w", codecErr)
	}
	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return out, nil
}

// EncodeJSON сериализует v в JSON и сжимает
func EncodeJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации: %w", err)
	}
	return Compress(data)
}

// DecodeJSON распаковывает и разбирает JSON в v
func DecodeJSON(data []byte, v any) error {
	raw, err := Decompress(data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("ошибка десериализации: %w", err)
	}
	return nil
}
