// Package notify entrega eventos de agendamento ao serviço de notificações
// (push/WhatsApp) por Redis pub/sub. Entrega é best-effort: falhas são
// registradas e nunca voltam para a transação que originou o evento.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	AppointmentCreated   = "AppointmentCreated"
	AppointmentConfirmed = "AppointmentConfirmed"
	AppointmentStarted   = "AppointmentStarted"
	AppointmentFinalized = "AppointmentFinalized"
	AppointmentCancelled = "AppointmentCancelled"
	AppointmentNoShow    = "AppointmentNoShow"
)

type Event struct {
	Type          string    `json:"type"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	TutorID       uuid.UUID `json:"tutor_id"`
	Status        string    `json:"status"`
	StartTime     time.Time `json:"start_time"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventForStatus devolve o tipo de evento de um novo estado.
func EventForStatus(status string) string {
	switch status {
	case "CONFIRMED":
		return AppointmentConfirmed
	case "IN_ATTENTION":
		return AppointmentStarted
	case "FINALIZED":
		return AppointmentFinalized
	case "CANCELLED":
		return AppointmentCancelled
	case "NO_SHOW":
		return AppointmentNoShow
	default:
		return ""
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// NewRedisClient abre o cliente a partir de uma URL redis://.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}
