package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Dahilon/Atlas/internal/domain/models"
	drepo "github.com/Dahilon/Atlas/internal/domain/repository"
	pkgkafka "github.com/Dahilon/Atlas/pkg/kafka"
	"github.com/Dahilon/Atlas/pkg/util"
)

// KafkaArticlesHandler consumes raw article messages, scores them, and
// writes the results to the event store.
type KafkaArticlesHandler struct {
	topic   string
	proc    *ArticleProcessor
	storage drepo.EventStore
	metrics drepo.Metrics
}

func NewKafkaArticlesHandler(topic string, proc *ArticleProcessor, storage drepo.EventStore, metrics drepo.Metrics) *KafkaArticlesHandler {
	return &KafkaArticlesHandler{topic: topic, proc: proc, storage: storage, metrics: metrics}
}

func (h *KafkaArticlesHandler) Topic() string { return h.topic }

// incoming message schema mirrors the enrichment layer's output
func (h *KafkaArticlesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		ID          string   `json:"id"`
		Source      string   `json:"source"`
		Title       string   `json:"title"`
		Text        string   `json:"text"`
		PublishedAt string   `json:"published_at"`
		CountryCode string   `json:"country_code"`
		EntityCount int      `json:"entity_count"`
		Goldstein   *float64 `json:"goldstein_scale,omitempty"`
		QuadClass   *int     `json:"quad_class,omitempty"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	// E2E latency from publication time to now (approx)
	if published, ok := util.ParseTime(m.PublishedAt); ok {
		h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(published).Seconds())
	}

	event := h.proc.Score(&models.Article{
		ID:             m.ID,
		Source:         m.Source,
		Title:          m.Title,
		Text:           m.Text,
		PublishedAt:    m.PublishedAt,
		CountryCode:    m.CountryCode,
		EntityCount:    m.EntityCount,
		GoldsteinScale: m.Goldstein,
		QuadClass:      m.QuadClass,
	})

	start := time.Now()
	err := h.storage.Store(ctx, event)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordEventScored("clickhouse", event.CountryCode, event.Record.ThreatLevel)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaArticlesHandler)(nil)
