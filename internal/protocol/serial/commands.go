package serial

// 主机 -> 设备 指令
const (
	CmdSetPwm        byte = 0x10
	CmdSetPid        byte = 0x20
	CmdRequestStatus byte = 0x30
)

// 设备 -> 主机 应答
const (
	RspAckPwm byte = 0x81
	RspAckPid byte = 0x82
	RspStatus byte = 0x83
)

// CommandName 返回指令/应答名称，未知 id 返回 "unknown"
func CommandName(id byte) string {
	switch id {
	case CmdSetPwm:
		return "set_pwm"
	case CmdSetPid:
		return "set_pid"
	case CmdRequestStatus:
		return "request_status"
	case RspAckPwm:
		return "ack_pwm"
	case RspAckPid:
		return "ack_pid"
	case RspStatus:
		return "status"
	default:
		return "unknown"
	}
}
