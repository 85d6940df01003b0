package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// EnrollmentEvent is broadcast after a submission commits, so downstream
// consumers (mailers, dashboards) can react without polling.
type EnrollmentEvent struct {
	Source        string      `json:"source"`
	FamilyID      uuid.UUID   `json:"family_id"`
	AcademicYear  string      `json:"academic_year"`
	EnrollmentIDs []uuid.UUID `json:"enrollment_ids"`
	SubmittedAt   time.Time   `json:"submitted_at"`
}

// EventPublisher fans enrollment events out to the configured brokers.
type EventPublisher interface {
	PublishEnrollment(ctx context.Context, event EnrollmentEvent) error
}

type brokerPublisher struct {
	redis   *redis.Client
	nats    *nats.Conn
	subject string
	channel string
	nodeID  string
	logger  zerolog.Logger
}

// NewEventPublisher wires the Redis and NATS connections; either may be nil
// when the broker is not configured.
func NewEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, subject string, logger zerolog.Logger) EventPublisher {
	return &brokerPublisher{
		redis:   redisClient,
		nats:    natsConn,
		subject: subject,
		channel: strings.ReplaceAll(subject, ".", ":"),
		nodeID:  uuid.NewString(),
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *brokerPublisher) PublishEnrollment(ctx context.Context, event EnrollmentEvent) error {
	if p.subject == "" || (p.redis == nil && p.nats == nil) {
		return nil
	}

	event.Source = p.nodeID
	if event.SubmittedAt.IsZero() {
		event.SubmittedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.redis != nil {
		if err := p.redis.Publish(ctx, p.channel, payload).Err(); err != nil {
			return err
		}
	}

	if p.nats != nil {
		if err := p.nats.Publish(p.subject, payload); err != nil {
			return err
		}
	}

	p.logger.Debug().
		Str("family_id", event.FamilyID.String()).
		Int("enrollments", len(event.EnrollmentIDs)).
		Msg("enrollment event published")

	return nil
}
