package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/table-booking/booking/internal/lock"
	"github.com/Astemirdum/table-booking/pkg/auth"
	"github.com/Astemirdum/table-booking/pkg/kafka"
	"github.com/Astemirdum/table-booking/pkg/logger"
	"github.com/Astemirdum/table-booking/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	LockNone   = "none"
	LockMemory = "memory"
	LockRedis  = "redis"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"BOOKING_HTTP_HOST"`
	Port         string        `yaml:"port" envconfig:"BOOKING_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

type Config struct {
	Server   HTTPServer       `yaml:"server"`
	Database postgres.DB      `yaml:"db"`
	Redis    lock.RedisConfig `yaml:"redis"`
	Kafka    kafka.Config     `yaml:"kafka"`
	Auth     auth.Config      `yaml:"auth"`
	Log      logger.Log       `yaml:"log"`

	// postgres | memory
	Storage string `envconfig:"BOOKING_STORAGE"`
	// none | memory | redis
	Lock           string        `envconfig:"BOOKING_LOCK"`
	RequestTimeout time.Duration `envconfig:"BOOKING_REQUEST_TIMEOUT"`
	BcryptCost     int           `envconfig:"BCRYPT_COST"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment. Options set the values used when
// the matching variable is unset.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		config := Config{
			Storage:        StoragePostgres,
			Lock:           LockNone,
			RequestTimeout: 10 * time.Second,
		}
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		if err = config.validate(); err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func (c *Config) validate() error {
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("BOOKING_STORAGE: unknown storage %q", c.Storage)
	}
	switch c.Lock {
	case LockNone, LockMemory, LockRedis:
	default:
		return fmt.Errorf("BOOKING_LOCK: unknown lock %q", c.Lock)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("BOOKING_REQUEST_TIMEOUT: must not be negative")
	}
	// a redis key that expires mid-admission lets a second caller in
	if c.Lock == LockRedis && c.RequestTimeout > 0 && c.Redis.TTL < c.RequestTimeout {
		return fmt.Errorf("BOOKING_LOCK_TTL: %s is shorter than BOOKING_REQUEST_TIMEOUT %s", c.Redis.TTL, c.RequestTimeout)
	}
	return nil
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
