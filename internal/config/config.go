package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Config struct {
	Listen  string  `yaml:"listen"`
	Admin   Admin   `yaml:"admin"`
	Logger  Logger  `yaml:"logger"`
	Storage Storage `yaml:"storage"`
	Auth    Auth    `yaml:"auth"`
	Scoring Scoring `yaml:"scoring"`
	CORS    CORS    `yaml:"cors"`
}

type Admin struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type Logger struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Storage struct {
	Database string `yaml:"database"`
}

type Auth struct {
	JWT       JWT       `yaml:"jwt"`
	Bootstrap Bootstrap `yaml:"bootstrap"`
}

type JWT struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

// Bootstrap defines the super-admin account seeded on first start.
type Bootstrap struct {
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

type Scoring struct {
	// MaxRetries bounds the ledger's retry loop when a gamePlayed sequence
	// collision is detected. Zero means the default of 3.
	MaxRetries int `yaml:"max_retries"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
