package serial

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// 各指令负载长度
const (
	PwmPayloadSize    = 2
	PidPayloadSize    = 12
	StatusPayloadSize = 2
)

var ErrBadPayload = errors.New("bad payload")

// PidGains PID 参数，线上为 3 个小端 float32
type PidGains struct {
	Kp float32 `yaml:"kp"`
	Ki float32 `yaml:"ki"`
	Kd float32 `yaml:"kd"`
}

// Status 设备状态：电量百分比与温度（摄氏度）
type Status struct {
	Battery     uint8 `yaml:"battery"`
	Temperature uint8 `yaml:"temperature"`
}

func checkSize(name string, data []byte, want int) error {
	if len(data) != want {
		return fmt.Errorf("%w: %s want %d bytes, got %d", ErrBadPayload, name, want, len(data))
	}
	return nil
}

func EncodePwm(value uint16) []byte {
	return binary.LittleEndian.AppendUint16(make([]byte, 0, PwmPayloadSize), value)
}

func DecodePwm(data []byte) (uint16, error) {
	if err := checkSize("pwm", data, PwmPayloadSize); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(data), nil
}

func EncodePid(g PidGains) []byte {
	buf := make([]byte, 0, PidPayloadSize)
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(g.Kp))
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(g.Ki))
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(g.Kd))
	return buf
}

func DecodePid(data []byte) (PidGains, error) {
	if err := checkSize("pid", data, PidPayloadSize); err != nil {
		return PidGains{}, err
	}
	return PidGains{
		Kp: math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])),
		Ki: math.Float32frombits(binary.LittleEndian.Uint32(data[4:8])),
		Kd: math.Float32frombits(binary.LittleEndian.Uint32(data[8:12])),
	}, nil
}

func EncodeStatus(s Status) []byte {
	return []byte{s.Battery, s.Temperature}
}

func DecodeStatus(data []byte) (Status, error) {
	if err := checkSize("status", data, StatusPayloadSize); err != nil {
		return Status{}, err
	}
	return Status{Battery: data[0], Temperature: data[1]}, nil
}
