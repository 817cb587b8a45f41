// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strconv"
	"sync"

	"veritag/internal/pkg/logger"

	"gopkg.in/yaml.v3"
)

// StickerConfig 是贴纸排版的默认几何参数，单位是 PDF point (1/72 英寸)。
type StickerConfig struct {
	PageWidth         float64 `yaml:"pageWidth"`         // A4: 595.28
	PageHeight        float64 `yaml:"pageHeight"`        // A4: 841.89
	Margin            float64 `yaml:"margin"`            // 页边距
	StickerSize       float64 `yaml:"stickerSize"`       // 贴纸边长，默认 1 英寸
	BorderWidth       float64 `yaml:"borderWidth"`       // 边框线宽，不影响排版
	VerticalSpacing   float64 `yaml:"verticalSpacing"`   // 纵向间距
	HorizontalSpacing float64 `yaml:"horizontalSpacing"` // 横向间距
	Duplicate         bool    `yaml:"duplicate"`         // 是否默认成对打印
}

// Config 是整个服务的配置根。全局配置在启动时一次性加载，
// 之后通过 GetCurrentConfig() 只读访问，而不是散落的全局变量。
type Config struct {
	App struct {
		Port                int           `yaml:"port"`
		JWTSecret           string        `yaml:"jwtSecret"`
		AdminUsername       string        `yaml:"adminUsername"`
		AdminPassword       string        `yaml:"adminPassword"`
		FrontendBaseURL     string        `yaml:"frontendBaseUrl"` // 扫码落地页的基础 URL
		DefaultWarrantyDays int           `yaml:"defaultWarrantyDays"`
		Sticker             StickerConfig `yaml:"sticker"`
	} `yaml:"app"`

	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers         string `yaml:"brokers"`
			ActivationTopic string `yaml:"activationTopic"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Nacos struct {
			ServerAddrs string `yaml:"serverAddrs"` // 为空时跳过注册
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`
}

var (
	currentConfig Config
	configOnce    sync.Once
)

// Init 加载配置并初始化 logger。必须在 main 里最先调用。
func Init(serviceName string) {
	configOnce.Do(func() {
		logger.Init(serviceName)
		currentConfig = loadConfig()
	})
}

// GetCurrentConfig 返回启动时加载的配置快照。
func GetCurrentConfig() Config {
	return currentConfig
}

func loadConfig() Config {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Logger.Fatal().Err(err).Str("path", path).Msg("failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logger.Logger.Fatal().Err(err).Str("path", path).Msg("failed to parse config file")
		}
		logger.Logger.Info().Str("path", path).Msg("config file loaded")
	}

	applyEnvOverrides(&cfg)
	return cfg
}

func defaultConfig() Config {
	var cfg Config
	cfg.App.Port = 8080
	cfg.App.JWTSecret = "change-this-in-production"
	cfg.App.AdminUsername = "admin"
	cfg.App.AdminPassword = "admin123"
	cfg.App.FrontendBaseURL = "http://localhost:3000"
	cfg.App.DefaultWarrantyDays = 365
	cfg.App.Sticker = StickerConfig{
		PageWidth:         595.28, // A4 竖版
		PageHeight:        841.89,
		Margin:            40,
		StickerSize:       72, // 1 英寸
		BorderWidth:       0.5,
		VerticalSpacing:   0.05 * 72,
		HorizontalSpacing: 0,
		Duplicate:         true,
	}
	cfg.Infra.Mysql.DSN = "root:root@tcp(localhost:3306)/veritag?charset=utf8mb4&parseTime=True&loc=Local"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Kafka.Brokers = "localhost:9092"
	cfg.Infra.Kafka.ActivationTopic = "qrcode-activation-topic"
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	return cfg
}

// applyEnvOverrides 允许用环境变量覆盖关键配置，方便容器化部署。
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = port
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.App.JWTSecret = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		cfg.App.FrontendBaseURL = v
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.Infra.Mysql.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Infra.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Infra.Kafka.Brokers = v
	}
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		cfg.Infra.Jaeger.Endpoint = v
	}
	if v := os.Getenv("NACOS_SERVER_ADDRS"); v != "" {
		cfg.Infra.Nacos.ServerAddrs = v
	}
	if v := os.Getenv("NACOS_NAMESPACE"); v != "" {
		cfg.Infra.Nacos.Namespace = v
	}
	if v := os.Getenv("NACOS_GROUP"); v != "" {
		cfg.Infra.Nacos.Group = v
	}
}
