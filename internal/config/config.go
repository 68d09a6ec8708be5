package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port     string `envconfig:"PORT"      default:"8080"`
	DBDSN    string `envconfig:"DB_DSN"    default:"marketplace.db"` // sqlite file in project root
	LogFile  string `envconfig:"LOG_FILE"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Seed     bool   `envconfig:"SEED"      default:"true"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL"    default:"12h"`

	AWSRegion        string        `envconfig:"AWS_REGION"            default:"eu-west-3"`
	ImagesBucket     string        `envconfig:"S3_IMAGES_BUCKET"`
	DocumentsBucket  string        `envconfig:"S3_DOCUMENTS_BUCKET"`
	AWSAccessKeyID   string        `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey     string        `envconfig:"AWS_SECRET_ACCESS_KEY"`
	CDNBaseURL       string        `envconfig:"CDN_BASE_URL"`
	RabbitMQURL      string        `envconfig:"RABBITMQ_URL"`
	RabbitMQExchange string        `envconfig:"RABBITMQ_EXCHANGE"     default:"marketplace.events"`
	ReaperInterval   time.Duration `envconfig:"REAPER_INTERVAL"       default:"30s"`
	BodyLimit        int           `envconfig:"BODY_LIMIT"            default:"8388608"`
}

// Load reads .env (if any) and the environment. Values are read once; there
// is no reload.
func Load(logger *logrus.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warnf("could not load .env file (continuing): %v", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return Config{}, errors.New("JWT_SECRET must be set")
	}

	logger.WithFields(logrus.Fields{
		"port":          cfg.Port,
		"db_dsn":        cfg.DBDSN,
		"log_file":      cfg.LogFile,
		"log_level":     cfg.LogLevel,
		"aws_region":    cfg.AWSRegion,
		"images_bucket": cfg.ImagesBucket,
		"docs_bucket":   cfg.DocumentsBucket,
		"cdn_base_url":  cfg.CDNBaseURL,
		"rabbitmq":      cfg.RabbitMQURL != "",
		"aws_creds_set": cfg.AWSAccessKeyID != "",
	}).Info("config loaded")
	return cfg, nil
}
