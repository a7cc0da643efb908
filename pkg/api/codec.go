package api

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeFrame кодирует кадр для бинарного сообщения WebSocket.
func EncodeFrame(f Frame) ([]byte, error) {
	data, err := msgpack.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", f.Type, err)
	}
	return data, nil
}

// DecodeFrame - обратная операция (наблюдатели, боты, тесты).
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}
