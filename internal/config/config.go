package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// HTTPConfig 观测用 HTTP 服务配置（默认关闭，模拟本身不开任何端口）
type HTTPConfig struct {
	Enable       bool          `mapstructure:"enable"`
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// PrimingConfig 启动端点循环前预先发送的 PID 指令
type PrimingConfig struct {
	Enable bool    `mapstructure:"enable"`
	Kp     float32 `mapstructure:"kp"`
	Ki     float32 `mapstructure:"ki"`
	Kd     float32 `mapstructure:"kd"`
}

// SimulationConfig 运行时长与随机种子
type SimulationConfig struct {
	Duration time.Duration `mapstructure:"duration"`
	Seed     int64         `mapstructure:"seed"` // 0 表示按时间取种
	Priming  PrimingConfig `mapstructure:"priming"`
}

// ControllerConfig 端点 A（主机）循环节奏
type ControllerConfig struct {
	WaitTimeout  time.Duration `mapstructure:"waitTimeout"`
	Idle         time.Duration `mapstructure:"idle"`
	CommandRate  float64       `mapstructure:"commandRate"` // 每秒最多随机指令数
	CommandBurst int           `mapstructure:"commandBurst"`
	PwmMax       int           `mapstructure:"pwmMax"`
}

// PeripheralConfig 端点 B（设备）循环节奏
type PeripheralConfig struct {
	WaitTimeout time.Duration `mapstructure:"waitTimeout"`
	Idle        time.Duration `mapstructure:"idle"`
}

// NoiseConfig 线路噪声注入
type NoiseConfig struct {
	Probability float64 `mapstructure:"probability"`
}

// HealthConfig 健康检查阈值
type HealthConfig struct {
	BacklogThreshold int `mapstructure:"backlogThreshold"`
}

// Config 顶层配置结构
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Controller ControllerConfig `mapstructure:"controller"`
	Peripheral PeripheralConfig `mapstructure:"peripheral"`
	Noise      NoiseConfig      `mapstructure:"noise"`
	Health     HealthConfig     `mapstructure:"health"`
}

var ErrInvalidConfig = errors.New("invalid config")

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 SIM_CONFIG 读取；否则回退到 configs/simulator.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	// 环境变量覆盖：前缀 SIM_，并将点号替换为下划线
	v.SetEnvPrefix("SIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("simulator")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验时长与概率等取值范围
func (c *Config) Validate() error {
	durations := map[string]time.Duration{
		"simulation.duration":    c.Simulation.Duration,
		"controller.waitTimeout": c.Controller.WaitTimeout,
		"controller.idle":        c.Controller.Idle,
		"peripheral.waitTimeout": c.Peripheral.WaitTimeout,
		"peripheral.idle":        c.Peripheral.Idle,
	}
	for key, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidConfig, key, d)
		}
	}
	if c.Noise.Probability < 0 || c.Noise.Probability > 1 {
		return fmt.Errorf("%w: noise.probability must be in [0,1], got %v", ErrInvalidConfig, c.Noise.Probability)
	}
	if c.Controller.CommandRate <= 0 || c.Controller.CommandBurst <= 0 {
		return fmt.Errorf("%w: controller.commandRate and commandBurst must be positive", ErrInvalidConfig)
	}
	if c.Controller.PwmMax < 0 || c.Controller.PwmMax > 0xFFFF {
		return fmt.Errorf("%w: controller.pwmMax out of range: %d", ErrInvalidConfig, c.Controller.PwmMax)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "serial-sim")
	v.SetDefault("app.env", "dev")

	v.SetDefault("http.enable", false)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("simulation.duration", "5s")
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.priming.enable", true)
	v.SetDefault("simulation.priming.kp", 1.0)
	v.SetDefault("simulation.priming.ki", 0.1)
	v.SetDefault("simulation.priming.kd", 0.01)

	v.SetDefault("controller.waitTimeout", "10ms")
	v.SetDefault("controller.idle", "100ms")
	v.SetDefault("controller.commandRate", 20)
	v.SetDefault("controller.commandBurst", 1)
	v.SetDefault("controller.pwmMax", 2000)

	v.SetDefault("peripheral.waitTimeout", "10ms")
	v.SetDefault("peripheral.idle", "10ms")

	v.SetDefault("noise.probability", 0.0)

	v.SetDefault("health.backlogThreshold", 1000)
}
