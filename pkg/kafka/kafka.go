package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

const ReservationTopic = "reservation.created"

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
	Topic string   `envconfig:"KAFKA_TOPIC"`
}

// ReservationsTopic is the configured topic, ReservationTopic when unset.
func (c Config) ReservationsTopic() string {
	if c.Topic == "" {
		return ReservationTopic
	}
	return c.Topic
}

func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Retry.Max = 3
	defaultCfg.Producer.Timeout = 5 * time.Second

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}
