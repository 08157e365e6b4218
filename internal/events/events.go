// Package events announces committed reservations to other services.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"slot-booking-api/internal/model"
)

const TypeReservationCreated = "reservation.created"

type Publisher interface {
	ReservationCreated(ctx context.Context, r model.Reservation) error
	Close() error
}

type Nop struct{}

func (Nop) ReservationCreated(context.Context, model.Reservation) error { return nil }
func (Nop) Close() error                                               { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Kafka struct {
	w   messageWriter
	log *zap.Logger
}

// NewKafka returns Nop when no brokers are configured.
func NewKafka(brokers, topic string, log *zap.Logger) Publisher {
	list := SplitBrokers(brokers)
	if len(list) == 0 || topic == "" {
		log.Info("event publishing disabled (no kafka brokers configured)")
		return Nop{}
	}
	return &Kafka{
		w: &kafka.Writer{
			Addr:         kafka.TCP(list...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
		log: log,
	}
}

func (k *Kafka) ReservationCreated(ctx context.Context, r model.Reservation) error {
	msg, err := buildMessage(ctx, TypeReservationCreated, r)
	if err != nil {
		return err
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		k.log.Warn("event publish failed", zap.Error(err), zap.String("reservation_id", r.ID))
		return err
	}
	return nil
}

func (k *Kafka) Close() error { return k.w.Close() }

// buildMessage keys by slot so every event for one slot lands on the same
// partition.
func buildMessage(ctx context.Context, eventType string, r model.Reservation) (kafka.Message, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return kafka.Message{}, err
	}
	msg := kafka.Message{
		Key:   []byte(r.Date + "_" + r.TimeSlot),
		Value: body,
		Time:  time.UnixMilli(r.CreatedAt),
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	carrier := &headerCarrier{headers: msg.Headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	msg.Headers = carrier.headers
	return msg, nil
}

func header(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string { return header(c.headers, key) }

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)
