package serial

// CRC-16/X25 参数
const (
	crcPolynomial uint16 = 0x1021
	crcInit       uint16 = 0xFFFF
	crcXorOut     uint16 = 0xFFFF
)

func reflect8(b byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		if b&0x01 != 0 {
			r |= 1 << (7 - i)
		}
		b >>= 1
	}
	return r
}

func reflect16(v uint16) uint16 {
	var r uint16
	for i := 0; i < 16; i++ {
		if v&0x01 != 0 {
			r |= 1 << (15 - i)
		}
		v >>= 1
	}
	return r
}

// CRC16X25 计算 CRC-16/X25（输入输出反射，结果异或 0xFFFF）
// "123456789" 的校验值为 0x906E
func CRC16X25(data []byte) uint16 {
	crc := crcInit
	for _, b := range data {
		crc ^= uint16(reflect8(b)) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return reflect16(crc) ^ crcXorOut
}
