package serial

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrPayloadTooLarge 负载超过单字节长度字段的上限
var ErrPayloadTooLarge = errors.New("payload too large")

// Encode 构造一帧（与 Decode 对应）
// 负载超过 255 字节时不产生任何帧
func Encode(cmd byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	buf := make([]byte, 0, FrameSize(len(payload)))
	buf = append(buf, Header, Version, cmd, byte(len(payload)))
	buf = append(buf, payload...)
	// 校验和（小端），覆盖之前的全部字节
	return binary.LittleEndian.AppendUint16(buf, CRC16X25(buf)), nil
}

// MustEncode 用于负载长度固定的内部指令，超长直接 panic
func MustEncode(cmd byte, payload []byte) []byte {
	frame, err := Encode(cmd, payload)
	if err != nil {
		panic(err)
	}
	return frame
}
