package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	ModeAPI    = "API"
	ModeWorker = "WORKER"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	SQS      SQSConfig
	Log      LogConfig
}

type AppConfig struct {
	Mode string
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQSConfig carries the queue transport settings. The consumer is optional:
// when any of region, credentials or queue URL is missing the service runs
// without it.
type SQSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	QueueURL        string
	Endpoint        string

	MaxMessages       int32
	WaitTimeSeconds   int32
	VisibilityTimeout int32
	ReceiveBackoff    time.Duration
	DrainInterval     time.Duration
	DrainMaxAttempts  int
}

// Enabled reports whether the transport credentials and endpoint required
// to start the consumer are all present.
func (c SQSConfig) Enabled() bool {
	return c.Region != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.QueueURL != ""
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("APP_MODE", ModeAPI)
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "production")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "production")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("SQS_MAX_MESSAGES", 10)
	viper.SetDefault("SQS_WAIT_TIME_SECONDS", 20)
	viper.SetDefault("SQS_VISIBILITY_TIMEOUT", 30)
	viper.SetDefault("SQS_RECEIVE_BACKOFF", "5s")
	viper.SetDefault("SQS_DRAIN_INTERVAL", "1s")
	viper.SetDefault("SQS_DRAIN_MAX_ATTEMPTS", 10)
	viper.SetDefault("LOG_LEVEL", "info")

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}
	receiveBackoff, err := time.ParseDuration(viper.GetString("SQS_RECEIVE_BACKOFF"))
	if err != nil {
		return nil, err
	}
	drainInterval, err := time.ParseDuration(viper.GetString("SQS_DRAIN_INTERVAL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Mode: viper.GetString("APP_MODE"),
		},
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		SQS: SQSConfig{
			Region:            viper.GetString("AWS_REGION"),
			AccessKeyID:       viper.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey:   viper.GetString("AWS_SECRET_ACCESS_KEY"),
			QueueURL:          viper.GetString("AWS_SQS_QUEUE_URL"),
			Endpoint:          viper.GetString("AWS_SQS_ENDPOINT"),
			MaxMessages:       viper.GetInt32("SQS_MAX_MESSAGES"),
			WaitTimeSeconds:   viper.GetInt32("SQS_WAIT_TIME_SECONDS"),
			VisibilityTimeout: viper.GetInt32("SQS_VISIBILITY_TIMEOUT"),
			ReceiveBackoff:    receiveBackoff,
			DrainInterval:     drainInterval,
			DrainMaxAttempts:  viper.GetInt("SQS_DRAIN_MAX_ATTEMPTS"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}
