// internal/config/config.go
// Package config 提供中央空调系统的全部可调参数,启动时从配置文件加载后不再修改
package config

import (
	"fmt"
	"time"

	"hotelac/internal/types"

	"github.com/spf13/viper"
)

// SpeedParams 单档风速参数
type SpeedParams struct {
	Rate     float64 `mapstructure:"rate"`     // 费率(元/分钟)
	Delta    float64 `mapstructure:"delta"`    // 温度变化率(度/分钟)
	Priority int     `mapstructure:"priority"` // 调度优先级,数值越大越优先
}

// RoomSeed 首次启动时创建的房间
type RoomSeed struct {
	RoomID      string  `mapstructure:"room_id"`
	InitialTemp float64 `mapstructure:"initial_temp"`
	DailyRate   float64 `mapstructure:"daily_rate"`
}

// Config 系统配置
type Config struct {
	Server struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"server"`

	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`

	Auth struct {
		SigningKey string        `mapstructure:"signing_key"`
		TokenTTL   time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`

	AC struct {
		MaxServing   int     `mapstructure:"max_serving"`   // 最大同时服务对象数 K
		TickSeconds  float64 `mapstructure:"tick_seconds"`  // 调度与模拟周期
		SliceSeconds float64 `mapstructure:"slice_seconds"` // 同优先级时间片

		Ambient    float64 `mapstructure:"ambient"`    // 环境温度
		Recovery   float64 `mapstructure:"recovery"`   // 回温速率(度/分钟)
		Hysteresis float64 `mapstructure:"hysteresis"` // 回差阈值

		CoolMin float64 `mapstructure:"cool_min"`
		CoolMax float64 `mapstructure:"cool_max"`
		HeatMin float64 `mapstructure:"heat_min"`
		HeatMax float64 `mapstructure:"heat_max"`

		DefaultTarget float64 `mapstructure:"default_target"`
		DefaultSpeed  string  `mapstructure:"default_speed"`

		Low  SpeedParams `mapstructure:"low"`
		Mid  SpeedParams `mapstructure:"mid"`
		High SpeedParams `mapstructure:"high"`
	} `mapstructure:"ac"`

	Monitor struct {
		IntervalSeconds float64 `mapstructure:"interval_seconds"`
	} `mapstructure:"monitor"`

	Rooms []RoomSeed `mapstructure:"rooms"`
}

// setDefaults 写入需求规定的默认参数
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("db.path", "hotel.db")
	v.SetDefault("auth.signing_key", "hotelac-dev-key")
	v.SetDefault("auth.token_ttl", time.Hour)

	v.SetDefault("ac.max_serving", 3)
	v.SetDefault("ac.tick_seconds", 1.0)
	v.SetDefault("ac.slice_seconds", 120.0)
	v.SetDefault("ac.ambient", 20.0)
	v.SetDefault("ac.recovery", 0.5)
	v.SetDefault("ac.hysteresis", 1.0)
	v.SetDefault("ac.cool_min", 18.0)
	v.SetDefault("ac.cool_max", 25.0)
	v.SetDefault("ac.heat_min", 25.0)
	v.SetDefault("ac.heat_max", 30.0)
	v.SetDefault("ac.default_target", 25.0)
	v.SetDefault("ac.default_speed", string(types.SpeedMid))

	// 高速1元/分钟、1度/分钟;中速0.5;低速1/3
	v.SetDefault("ac.low.rate", 1.0/3.0)
	v.SetDefault("ac.low.delta", 1.0/3.0)
	v.SetDefault("ac.low.priority", 1)
	v.SetDefault("ac.mid.rate", 0.5)
	v.SetDefault("ac.mid.delta", 0.5)
	v.SetDefault("ac.mid.priority", 2)
	v.SetDefault("ac.high.rate", 1.0)
	v.SetDefault("ac.high.delta", 1.0)
	v.SetDefault("ac.high.priority", 3)

	v.SetDefault("monitor.interval_seconds", 5.0)
}

// defaultRooms 配置未给出房间时的默认房间集
func defaultRooms() []RoomSeed {
	return []RoomSeed{
		{RoomID: "101", InitialTemp: 32.0, DailyRate: 300.0},
		{RoomID: "102", InitialTemp: 28.0, DailyRate: 300.0},
		{RoomID: "103", InitialTemp: 30.0, DailyRate: 300.0},
		{RoomID: "104", InitialTemp: 29.0, DailyRate: 500.0},
		{RoomID: "105", InitialTemp: 35.0, DailyRate: 500.0},
	}
}

// Load 从 configs/config.yml 加载配置,文件不存在时使用默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath("configs")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(cfg.Rooms) == 0 {
		cfg.Rooms = defaultRooms()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default 返回全默认配置,测试用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	cfg.Rooms = defaultRooms()
	return &cfg
}

// Validate 校验配置的合法性
func (c *Config) Validate() error {
	if c.AC.MaxServing <= 0 {
		return fmt.Errorf("ac.max_serving must be positive, got %d", c.AC.MaxServing)
	}
	if c.AC.TickSeconds <= 0 {
		return fmt.Errorf("ac.tick_seconds must be positive, got %v", c.AC.TickSeconds)
	}
	if c.AC.SliceSeconds <= 0 {
		return fmt.Errorf("ac.slice_seconds must be positive, got %v", c.AC.SliceSeconds)
	}
	if c.AC.CoolMin > c.AC.CoolMax || c.AC.HeatMin > c.AC.HeatMax {
		return fmt.Errorf("invalid temperature ranges")
	}
	if _, err := types.ParseSpeed(c.AC.DefaultSpeed); err != nil {
		return err
	}
	for _, sp := range []SpeedParams{c.AC.Low, c.AC.Mid, c.AC.High} {
		if sp.Rate < 0 || sp.Delta <= 0 {
			return fmt.Errorf("speed params must be positive")
		}
	}
	return nil
}

func (c *Config) speedParams(speed types.Speed) SpeedParams {
	switch speed {
	case types.SpeedLow:
		return c.AC.Low
	case types.SpeedHigh:
		return c.AC.High
	default:
		return c.AC.Mid
	}
}

// Rate 指定风速的费率(元/分钟)
func (c *Config) Rate(speed types.Speed) float64 { return c.speedParams(speed).Rate }

// Delta 指定风速的温度变化率(度/分钟)
func (c *Config) Delta(speed types.Speed) float64 { return c.speedParams(speed).Delta }

// Priority 指定风速的调度优先级
func (c *Config) Priority(speed types.Speed) int { return c.speedParams(speed).Priority }

// TempRange 指定模式允许的目标温度范围
func (c *Config) TempRange(mode types.Mode) types.TempRange {
	if mode == types.ModeHeat {
		return types.TempRange{Min: c.AC.HeatMin, Max: c.AC.HeatMax}
	}
	return types.TempRange{Min: c.AC.CoolMin, Max: c.AC.CoolMax}
}

// Tick 调度与模拟周期
func (c *Config) Tick() time.Duration {
	return time.Duration(c.AC.TickSeconds * float64(time.Second))
}

// MonitorInterval 监控刷新周期
func (c *Config) MonitorInterval() time.Duration {
	return time.Duration(c.Monitor.IntervalSeconds * float64(time.Second))
}
