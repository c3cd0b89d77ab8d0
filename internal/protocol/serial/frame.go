package serial

// Frame 串口链路帧布局：
// header[1]=0xAA | version[1]=0x01 | cmd[1] | len[1] | payload[len] | crcLE[2]
// CRC-16/X25 覆盖 header 到 payload 末尾（不含 CRC 本身）
const (
	Header  byte = 0xAA
	Version byte = 0x01

	HeaderSize   = 4
	ChecksumSize = 2
	MinFrameSize = HeaderSize + ChecksumSize
	MaxPayload   = 255
)

// Packet 解码后的逻辑报文，只能由 Decode 校验通过后产生
type Packet struct {
	Cmd     byte
	Payload []byte
}

// FrameSize 返回给定负载长度对应的整帧长度
func FrameSize(payloadLen int) int {
	return HeaderSize + payloadLen + ChecksumSize
}
