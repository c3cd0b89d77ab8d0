package serial

import (
	"encoding/binary"
	"errors"
)

var (
	ErrFrameTooShort      = errors.New("frame too short")
	ErrInvalidHeader      = errors.New("invalid header")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrLengthMismatch     = errors.New("length mismatch")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
)

// Decode 解析一帧（严格校验：长度下限、header、version、长度字段、CRC）
// 校验顺序固定：长度不对时 CRC 没有意义，所以先校验长度
func Decode(raw []byte) (*Packet, error) {
	if len(raw) < MinFrameSize {
		return nil, ErrFrameTooShort
	}
	if raw[0] != Header {
		return nil, ErrInvalidHeader
	}
	if raw[1] != Version {
		return nil, ErrUnsupportedVersion
	}
	if len(raw) != FrameSize(int(raw[3])) {
		return nil, ErrLengthMismatch
	}
	body := raw[:len(raw)-ChecksumSize]
	got := binary.LittleEndian.Uint16(raw[len(raw)-ChecksumSize:])
	if got != CRC16X25(body) {
		return nil, ErrChecksumMismatch
	}
	payload := make([]byte, len(body)-HeaderSize)
	copy(payload, body[HeaderSize:])
	return &Packet{Cmd: raw[2], Payload: payload}, nil
}

// DecodeErrorReason 返回解码错误的简短标签（用于指标与日志）
func DecodeErrorReason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrFrameTooShort):
		return "too_short"
	case errors.Is(err, ErrInvalidHeader):
		return "bad_header"
	case errors.Is(err, ErrUnsupportedVersion):
		return "bad_version"
	case errors.Is(err, ErrLengthMismatch):
		return "bad_length"
	case errors.Is(err, ErrChecksumMismatch):
		return "bad_crc"
	default:
		return "other"
	}
}
