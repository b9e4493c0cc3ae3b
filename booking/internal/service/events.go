package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Astemirdum/table-booking/booking/internal/model"
	"github.com/Astemirdum/table-booking/pkg/circuit_breaker"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Publisher announces admitted reservations. Publishing is best effort and
// never fails a booking.
type Publisher interface {
	PublishReservationCreated(ctx context.Context, rsv model.Reservation) error
}

// ReservationCreated is the event payload. Client contact details stay out
// of the stream.
type ReservationCreated struct {
	ReservationID string    `json:"reservationId"`
	TableNumber   int       `json:"tableNumber"`
	Date          string    `json:"date"`
	SlotTimeStart string    `json:"slotTimeStart"`
	SlotTimeEnd   string    `json:"slotTimeEnd"`
	CreatedAt     time.Time `json:"createdAt"`
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
	log      *zap.Logger
	now      func() time.Time
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, log *zap.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
		cb:       circuit_breaker.New(100, time.Second, 0.2, 2),
		log:      log.Named("events"),
		now:      time.Now,
	}
}

// PublishReservationCreated returns once the broker acknowledges or ctx is
// done, whichever comes first. A send still in flight when ctx ends is left
// to finish in the background.
func (p *kafkaPublisher) PublishReservationCreated(ctx context.Context, rsv model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ReservationCreated{
		ReservationID: rsv.ID,
		TableNumber:   rsv.TableNumber,
		Date:          rsv.Date,
		SlotTimeStart: rsv.SlotTimeStart,
		SlotTimeEnd:   rsv.SlotTimeEnd,
		CreatedAt:     p.now().UTC(),
	})
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(rsv.ID),
		Value: sarama.ByteEncoder(data),
	}
	done := make(chan error, 1)
	go func() {
		done <- p.cb.Call(func() error {
			partition, offset, err := p.producer.SendMessage(msg)
			if err != nil {
				return err
			}
			p.log.Debug("reservation event sent",
				zap.String("id", rsv.ID),
				zap.Int32("partition", partition),
				zap.Int64("offset", offset))
			return nil
		})
	}()
	select {
	case err = <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
