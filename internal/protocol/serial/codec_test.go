package serial

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Layout(t *testing.T) {
	frame, err := Encode(CmdSetPwm, []byte{0x34, 0x12})
	require.NoError(t, err)
	require.Len(t, frame, 8)
	assert.Equal(t, []byte{0xAA, 0x01, 0x10, 0x02, 0x34, 0x12}, frame[:6])

	crc := CRC16X25(frame[:6])
	assert.Equal(t, byte(crc), frame[6], "crc low byte first")
	assert.Equal(t, byte(crc>>8), frame[7])
}

func TestEncode_PayloadBoundary(t *testing.T) {
	frame, err := Encode(0x01, make([]byte, 255))
	require.NoError(t, err)
	assert.Len(t, frame, 261)

	frame, err = Encode(0x01, make([]byte, 256))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Nil(t, frame)
}

func TestRoundTrip_AllCommandsAllLengths(t *testing.T) {
	payload := make([]byte, MaxPayload)
	for i := range payload {
		payload[i] = byte(i*31 + 7)
	}
	for cmd := 0; cmd <= 255; cmd++ {
		for n := 0; n <= MaxPayload; n++ {
			frame, err := Encode(byte(cmd), payload[:n])
			if err != nil {
				t.Fatalf("encode cmd=%d len=%d: %v", cmd, n, err)
			}
			p, err := Decode(frame)
			if err != nil {
				t.Fatalf("decode cmd=%d len=%d: %v", cmd, n, err)
			}
			if p.Cmd != byte(cmd) || !bytes.Equal(p.Payload, payload[:n]) {
				t.Fatalf("round trip mismatch cmd=%d len=%d", cmd, n)
			}
		}
	}
}

func TestDecode_PayloadDoesNotAliasInput(t *testing.T) {
	frame := MustEncode(CmdSetPwm, []byte{1, 2})
	p, err := Decode(frame)
	require.NoError(t, err)
	frame[4] = 0xFF
	assert.Equal(t, []byte{1, 2}, p.Payload)
}

func TestDecode_Errors(t *testing.T) {
	valid := MustEncode(CmdSetPid, EncodePid(PidGains{Kp: 1, Ki: 0.1, Kd: 0.01}))

	mutate := func(fn func(b []byte) []byte) []byte {
		b := append([]byte(nil), valid...)
		return fn(b)
	}

	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{"空输入", nil, ErrFrameTooShort},
		{"5字节", valid[:5], ErrFrameTooShort},
		{"header错误", mutate(func(b []byte) []byte { b[0] = 0x55; return b }), ErrInvalidHeader},
		{"version错误", mutate(func(b []byte) []byte { b[1] = 0x02; return b }), ErrUnsupportedVersion},
		{"长度字段偏大", mutate(func(b []byte) []byte { b[3]++; return b }), ErrLengthMismatch},
		{"多余尾字节", mutate(func(b []byte) []byte { return append(b, 0x00) }), ErrLengthMismatch},
		{"CRC错误", mutate(func(b []byte) []byte { b[len(b)-1] ^= 0x01; return b }), ErrChecksumMismatch},
		{"负载被篡改", mutate(func(b []byte) []byte { b[5] ^= 0x80; return b }), ErrChecksumMismatch},
		// 长度与 CRC 同时错误时必须先报长度
		{"长度优先于CRC", mutate(func(b []byte) []byte { b[len(b)-1] ^= 0xFF; return b[:len(b)-1] }), ErrLengthMismatch},
		// header 错误时 version 不再检查
		{"header优先于version", mutate(func(b []byte) []byte { b[0], b[1] = 0, 0; return b }), ErrInvalidHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(tt.raw)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, p)
		})
	}
}

func TestDecode_MinimalFrame(t *testing.T) {
	frame := MustEncode(CmdRequestStatus, nil)
	require.Len(t, frame, MinFrameSize)
	p, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, CmdRequestStatus, p.Cmd)
	assert.Empty(t, p.Payload)
}

func TestDecode_SingleBitFlip(t *testing.T) {
	valid := MustEncode(CmdSetPwm, EncodePwm(1500))
	for i := range valid {
		for bit := 0; bit < 8; bit++ {
			raw := append([]byte(nil), valid...)
			raw[i] ^= 1 << bit

			_, err := Decode(raw)
			var want error
			switch i {
			case 0:
				want = ErrInvalidHeader
			case 1:
				want = ErrUnsupportedVersion
			case 3:
				want = ErrLengthMismatch
			default:
				want = ErrChecksumMismatch
			}
			if !assert.ErrorIs(t, err, want, "byte %d bit %d", i, bit) {
				return
			}
		}
	}
}

func TestDecode_Truncation(t *testing.T) {
	valid := MustEncode(CmdSetPid, EncodePid(PidGains{Kp: 2, Ki: 3, Kd: 4}))
	for n := 1; n <= len(valid); n++ {
		_, err := Decode(valid[:len(valid)-n])
		require.Error(t, err, "truncated by %d", n)
		if len(valid)-n < MinFrameSize {
			assert.ErrorIs(t, err, ErrFrameTooShort, "truncated by %d", n)
		} else {
			assert.ErrorIs(t, err, ErrLengthMismatch, "truncated by %d", n)
		}
	}
}

func TestDecode_HeaderVersionIndependentOfPayload(t *testing.T) {
	for _, payload := range [][]byte{nil, {0x00}, bytes.Repeat([]byte{0xAA}, 40)} {
		frame := MustEncode(0x42, payload)
		bad := append([]byte(nil), frame...)
		bad[0] = 0x00
		_, err := Decode(bad)
		assert.ErrorIs(t, err, ErrInvalidHeader)

		bad = append([]byte(nil), frame...)
		bad[1] = 0xFF
		_, err = Decode(bad)
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	}
}

func TestDecodeErrorReason(t *testing.T) {
	assert.Equal(t, "ok", DecodeErrorReason(nil))
	assert.Equal(t, "too_short", DecodeErrorReason(ErrFrameTooShort))
	assert.Equal(t, "bad_header", DecodeErrorReason(ErrInvalidHeader))
	assert.Equal(t, "bad_version", DecodeErrorReason(ErrUnsupportedVersion))
	assert.Equal(t, "bad_length", DecodeErrorReason(ErrLengthMismatch))
	assert.Equal(t, "bad_crc", DecodeErrorReason(ErrChecksumMismatch))
	assert.Equal(t, "other", DecodeErrorReason(ErrBadPayload))
}
