package config

import (
	"log"

	"gopkg.in/yaml.v3"

	"github.com/benbakka/imtilak2-sub000/pkg/config"
)

type Config struct {
	DB       config.DBConfig       `yaml:"db"`
	MQ       config.MQConfig       `yaml:"mq"`
	Redis    config.RedisConfig    `yaml:"redis"`
	JWT      config.JWTConfig      `yaml:"jwt"`
	Server   config.ServerConfig   `yaml:"server"`
	Schedule config.ScheduleConfig `yaml:"schedule"`
}

// Load reads the layered yaml configuration and applies environment variable
// overrides, which win over anything in the files.
func Load() *Config {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var cfg Config
	cfgData, err := yaml.Marshal(cfgMap)
	if err != nil {
		log.Fatalf("failed to marshal config: %v", err)
	}
	if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideScheduleFromEnv(&cfg.Schedule)

	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Schedule.IntervalSeconds <= 0 {
		cfg.Schedule.IntervalSeconds = 60
	}
	if cfg.Schedule.ImminentHorizonDays <= 0 {
		cfg.Schedule.ImminentHorizonDays = 2
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
}
