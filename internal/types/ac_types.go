// internal/types/ac_types.go

package types

import "fmt"

// Mode 空调工作模式
type Mode string

const (
	ModeCool Mode = "COOL"
	ModeHeat Mode = "HEAT"
)

// Speed 风速
type Speed string

const (
	SpeedLow  Speed = "LOW"
	SpeedMid  Speed = "MID"
	SpeedHigh Speed = "HIGH"
)

// Status 房间调度状态
type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusWaiting Status = "WAITING"
	StatusServing Status = "SERVING"
)

// ParseSpeed 校验并解析风速
func ParseSpeed(s string) (Speed, error) {
	switch Speed(s) {
	case SpeedLow, SpeedMid, SpeedHigh:
		return Speed(s), nil
	}
	return "", fmt.Errorf("invalid fan speed: %q", s)
}

// ParseMode 校验并解析工作模式
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCool, ModeHeat:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid mode: %q", s)
}

// TempRange 温度范围
type TempRange struct {
	Min float64
	Max float64
}

// Contains 判断目标温度是否在范围内
func (r TempRange) Contains(t float64) bool {
	return t >= r.Min && t <= r.Max
}
