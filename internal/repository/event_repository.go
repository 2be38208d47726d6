package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Dahilon/Atlas/internal/domain/models"
	"github.com/Dahilon/Atlas/internal/domain/repository"
	pkgkafka "github.com/Dahilon/Atlas/pkg/kafka"
)

// ClickHouseEventStore implements EventStore for ClickHouse.
type ClickHouseEventStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseEventStore creates ClickHouse event storage.
func NewClickHouseEventStore(db *sql.DB, table string) repository.EventStore {
	return &ClickHouseEventStore{db: db, table: table}
}

func (s *ClickHouseEventStore) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

const eventColumns = "event_date, scored_at, article_id, source, country_code, category, confidence, severity_index, threat_level, sentiment"

func eventArgs(e *models.ScoredEvent) []interface{} {
	return []interface{}{
		e.EventDate,
		e.ScoredAt,
		e.ArticleID,
		e.Source,
		e.CountryCode,
		e.Category,
		e.Confidence,
		e.Record.SeverityIndex,
		e.Record.ThreatLevel,
		e.Record.SentimentPolarity,
	}
}

func (s *ClickHouseEventStore) Store(ctx context.Context, e *models.ScoredEvent) error {
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, eventColumns)
	_, err := s.db.ExecContext(ctx, q, eventArgs(e)...)
	return err
}

func (s *ClickHouseEventStore) StoreBatch(ctx context.Context, events []*models.ScoredEvent) error {
	if len(events) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	// Chunk size tuned to 2000 rows per batch.
	const chunkSize = 2000
	for start := 0; start < len(events); start += chunkSize {
		end := start + chunkSize
		if end > len(events) {
			end = len(events)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*10)
		for _, e := range events[start:end] {
			if e == nil || e.ArticleID == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, eventArgs(e)...)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, eventColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseEventStore) Query(ctx context.Context, country string, from, to time.Time, limit int) ([]*models.ScoredEvent, error) {
	q := fmt.Sprintf("SELECT event_date, scored_at, article_id, source, country_code, category, confidence, severity_index, threat_level, sentiment FROM %s WHERE country_code = ? AND event_date >= ? AND event_date <= ? ORDER BY event_date DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, country, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.ScoredEvent
	for rows.Next() {
		var e models.ScoredEvent
		if err := rows.Scan(
			&e.EventDate,
			&e.ScoredAt,
			&e.ArticleID,
			&e.Source,
			&e.CountryCode,
			&e.Category,
			&e.Confidence,
			&e.Record.SeverityIndex,
			&e.Record.ThreatLevel,
			&e.Record.SentimentPolarity,
		); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (s *ClickHouseEventStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseEventStore) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func eventPayload(e *models.ScoredEvent) map[string]interface{} {
	return map[string]interface{}{
		"article_id":   e.ArticleID,
		"source":       e.Source,
		"country_code": e.CountryCode,
		"category":     e.Category,
		"confidence":   e.Confidence,
		"event_date":   e.EventDate.Format("2006-01-02"),
		"scored_at":    e.ScoredAt.Format(time.RFC3339),
		"record":       e.Record,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e *models.ScoredEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.CountryCode), eventPayload(e))
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, events []*models.ScoredEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(events))
	for i, e := range events {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(e.CountryCode),
			Value: eventPayload(e),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
