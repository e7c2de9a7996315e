package config

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyAddr       = errors.New("server address is empty")
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidHubSize  = errors.New("hub queue and buffer sizes must be positive")
)

type ServerConfig struct {
	Addr string `yaml:"addr" env:"SERVER_ADDR" env-default:":8080"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type GameConfig struct {
	LenientTurns bool `yaml:"lenient_turns" env:"GAME_LENIENT_TURNS"`
}

type HubConfig struct {
	EventQueue       int `yaml:"event_queue" env:"HUB_EVENT_QUEUE" env-default:"16"`
	SubscriberBuffer int `yaml:"subscriber_buffer" env:"HUB_SUBSCRIBER_BUFFER" env-default:"4"`
}

type config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Game   GameConfig   `yaml:"game"`
	Hub    HubConfig    `yaml:"hub"`
}

// New reads the yaml file at cfgPath, then lets environment variables
// override it. Fields left empty by both get their defaults.
func New(cfgPath string) (config, error) {
	cfg := config{}
	if cfgPath != "" {
		file, err := os.Open(cfgPath)
		if err != nil {
			return config{}, err
		}
		defer func() {
			_ = file.Close()
		}()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return config{}, errors.WithMessage(err, "decode yaml config")
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return config{}, errors.WithMessage(err, "read env config")
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	if c.Server.Addr == "" {
		return ErrEmptyAddr
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Hub.EventQueue <= 0 || c.Hub.SubscriberBuffer <= 0 {
		return ErrInvalidHubSize
	}
	return nil
}

func (c config) LogLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel, errors.WithMessagef(ErrInvalidLogLevel, "'%s'", c.Log.Level)
	}
	return level, nil
}
