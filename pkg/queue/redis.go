package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dahilon/Atlas/pkg/logger"
)

// QueueMode selects which halves of the queue run. Split deployments keep
// the scorer producer-only and run workers elsewhere.
type QueueMode int

const (
	ModeProducerConsumer QueueMode = iota
	ModeProducerOnly
	ModeConsumerOnly
)

const (
	pendingKey    = "atlas:queue:messages"
	retryKey      = "atlas:queue:retry"
	deadLetterKey = "atlas:queue:dlq"
)

// RedisQueue pushes messages onto a Redis list and pops them with a pool of
// workers. Failed messages park in a sorted set scored by retry time until
// the scanner moves them back.
type RedisQueue struct {
	logger *logger.Logger
	config *QueueConfig
	client *redis.Client
	mode   QueueMode

	mu      sync.RWMutex
	jobs    map[string]Job
	running bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRedisQueue(lgr *logger.Logger, config *QueueConfig, client *redis.Client, mode QueueMode) *RedisQueue {
	if config == nil {
		config = &QueueConfig{}
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RedisQueue{
		logger: lgr,
		config: config,
		client: client,
		mode:   mode,
		jobs:   make(map[string]Job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// RegisterJob adds a consumer for one message type. Duplicate registrations
// keep the first job.
func (r *RedisQueue) RegisterJob(job Job) {
	if r.mode == ModeProducerOnly {
		r.logger.Warn("job registration ignored in producer-only mode",
			logger.String("job", job.Name()))
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.Type()]; exists {
		r.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	r.jobs[job.Type()] = job
	r.logger.Info("job registered",
		logger.String("job", job.Name()),
		logger.String("type", job.Type()))
}

// Start pings Redis and launches the worker pool and retry scanner.
func (r *RedisQueue) Start() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("queue already running")
	}
	r.running = true
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		return fmt.Errorf("redis ping: %w", err)
	}

	if r.mode == ModeProducerOnly {
		r.logger.Info("queue producer started", logger.String("addr", r.client.Options().Addr))
		return nil
	}

	for i := 0; i < r.config.Workers; i++ {
		r.wg.Add(1)
		go r.runWorker(i)
	}
	r.wg.Add(1)
	go r.runRetryScanner()

	r.logger.Info("queue started",
		logger.Int("workers", r.config.Workers),
		logger.String("mode", r.modeString()),
		logger.String("addr", r.client.Options().Addr))
	return nil
}

// Stop cancels the workers and waits for them up to ctx's deadline.
func (r *RedisQueue) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	r.mu.Unlock()

	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		r.logger.Warn("queue workers did not stop in time", logger.Error(ctx.Err()))
		return fmt.Errorf("queue stop: %w", ctx.Err())
	case <-done:
		r.logger.Info("queue stopped")
		return nil
	}
}

// PublishMessage enqueues one message. In consumer-capable modes the type
// must have a registered job so misrouted publishes fail at the producer.
func (r *RedisQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.running {
		return fmt.Errorf("queue not running")
	}
	if r.mode != ModeProducerOnly {
		if _, exists := r.jobs[msgType]; !exists {
			return fmt.Errorf("no job registered for type %q", msgType)
		}
	}

	msg := Message{
		ID:        strconv.FormatInt(time.Now().UnixNano(), 10),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := r.client.LPush(ctx, pendingKey, raw).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}
	return nil
}

func (r *RedisQueue) runWorker(id int) {
	defer r.wg.Done()
	r.logger.Info("queue worker started", logger.Int("worker_id", id))

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Info("queue worker stopped", logger.Int("worker_id", id))
			return
		default:
			r.popAndDispatch()
		}
	}
}

func (r *RedisQueue) popAndDispatch() {
	ctx, cancel := context.WithTimeout(r.ctx, time.Second)
	defer cancel()

	result, err := r.client.BRPop(ctx, time.Second, pendingKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return
		}
		r.logger.Error("brpop", logger.Error(err))
		time.Sleep(time.Second)
		return
	}
	if len(result) < 2 {
		return
	}

	var msg Message
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		r.logger.Error("unmarshal message", logger.Error(err))
		return
	}
	r.dispatch(msg)
}

func (r *RedisQueue) dispatch(msg Message) {
	r.mu.RLock()
	job, exists := r.jobs[msg.Type]
	r.mu.RUnlock()
	if !exists {
		r.logger.Error("no job for message",
			logger.String("type", msg.Type),
			logger.String("id", msg.ID))
		return
	}

	// Maps from JSON become RawMessage so ParsePayload sees bytes.
	payload := msg.Payload
	if m, ok := payload.(map[string]interface{}); ok {
		if raw, err := json.Marshal(m); err == nil {
			payload = json.RawMessage(raw)
		}
	}

	err := job.Handle(r.ctx, payload)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	r.logger.Error("job failed",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(err))

	if msg.Attempts >= r.config.RetryLimit {
		r.logger.Error("max retries reached, dead-lettering",
			logger.String("id", msg.ID),
			logger.String("job", job.Name()))
		r.park(msg, deadLetterKey, 0)
		return
	}
	msg.Attempts++
	r.park(msg, retryKey, r.config.RetryDelay)
}

// park stores msg on the dead letter list, or on the retry set scored by
// the time it becomes due.
func (r *RedisQueue) park(msg Message, key string, delay time.Duration) {
	raw, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("marshal parked message", logger.Error(err))
		return
	}
	if key == deadLetterKey {
		if err := r.client.LPush(context.Background(), key, raw).Err(); err != nil {
			r.logger.Error("lpush dlq", logger.Error(err))
		}
		return
	}
	err = r.client.ZAdd(context.Background(), key, redis.Z{
		Score:  float64(time.Now().Add(delay).Unix()),
		Member: raw,
	}).Err()
	if err != nil {
		r.logger.Error("zadd retry", logger.Error(err))
	}
}

func (r *RedisQueue) runRetryScanner() {
	defer r.wg.Done()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.flushDueRetries()
		}
	}
}

func (r *RedisQueue) flushDueRetries() {
	due, err := r.client.ZRangeByScore(r.ctx, retryKey, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(time.Now().Unix(), 10),
	}).Result()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.logger.Error("scan retries", logger.Error(err))
		}
		return
	}

	for _, raw := range due {
		select {
		case <-r.ctx.Done():
			return
		default:
		}
		pipe := r.client.TxPipeline()
		pipe.ZRem(r.ctx, retryKey, raw)
		pipe.LPush(r.ctx, pendingKey, raw)
		if _, err := pipe.Exec(r.ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("requeue retry", logger.Error(err))
		}
	}
}

func (r *RedisQueue) modeString() string {
	switch r.mode {
	case ModeProducerOnly:
		return "producer-only"
	case ModeConsumerOnly:
		return "consumer-only"
	default:
		return "producer-consumer"
	}
}
