package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wsforge/wsforge/message"
)

// targetMode records which of the registry's three fan-out primitives
// produced an envelope, so a peer instance replays the same call instead of
// flattening every relayed message into a plain broadcast.
type targetMode int

const (
	targetAll targetMode = iota
	targetExcept
	targetTo
)

// redisEnvelope wraps a message with the originating instance ID, so a node
// can skip its own published messages, and with enough addressing
// information to replay the exact Broadcast/BroadcastExcept/BroadcastTo call
// that produced it.
type redisEnvelope struct {
	InstanceID string          `json:"instance_id"`
	Mode       targetMode      `json:"mode"`
	ExceptID   string          `json:"except_id,omitempty"`
	IDs        []string        `json:"ids,omitempty"`
	Message    message.Message `json:"message"`
}

// RedisBridge relays addressed broadcasts between server instances via Redis
// pub/sub. A dropped subscription is retried with exponential backoff rather
// than left dark: listen keeps reconnecting until Stop is called.
type RedisBridge struct {
	client     *redis.Client
	prefix     string
	instanceID string
	target     BroadcastTarget
	logger     zerolog.Logger
	minDelay   time.Duration
	maxDelay   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
	active bool
}

// NewRedisBridge creates a bridge that uses Redis pub/sub for cross-instance
// messaging, replaying relayed calls against target.
func NewRedisBridge(cfg *RedisConfig, target BroadcastTarget, logger zerolog.Logger) *RedisBridge {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithCancel(context.Background())

	return &RedisBridge{
		client:     client,
		prefix:     cfg.Prefix,
		instanceID: uuid.New().String(),
		target:     target,
		logger:     logger.With().Str("component", "redis-bridge").Logger(),
		minDelay:   cfg.ReconnectMinDelay,
		maxDelay:   cfg.ReconnectMaxDelay,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// subscribe opens the broadcast channel subscription and blocks until Redis
// confirms it, returning an error without marking the bridge active.
func (b *RedisBridge) subscribe() (*redis.PubSub, error) {
	if err := b.client.Ping(b.ctx).Err(); err != nil {
		return nil, err
	}

	sub := b.client.Subscribe(b.ctx, b.prefix+"broadcast")
	if _, err := sub.Receive(b.ctx); err != nil {
		sub.Close()
		return nil, err
	}
	return sub, nil
}

// Start opens the initial subscription and hands off to the reconnecting
// listen loop.
func (b *RedisBridge) Start() error {
	sub, err := b.subscribe()
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.active = true
	b.mu.Unlock()

	b.wg.Add(1)
	go b.listen(sub)

	b.logger.Info().
		Str("instance_id", b.instanceID).
		Str("channel", b.prefix+"broadcast").
		Msg("redis bridge started")
	return nil
}

// Publish relays a Broadcast(msg) call to other instances.
func (b *RedisBridge) Publish(msg message.Message) error {
	return b.publish(redisEnvelope{InstanceID: b.instanceID, Mode: targetAll, Message: msg})
}

// PublishExcept relays a BroadcastExcept(exceptID, msg) call.
func (b *RedisBridge) PublishExcept(exceptID string, msg message.Message) error {
	return b.publish(redisEnvelope{InstanceID: b.instanceID, Mode: targetExcept, ExceptID: exceptID, Message: msg})
}

// PublishTo relays a BroadcastTo(ids, msg) call.
func (b *RedisBridge) PublishTo(ids []string, msg message.Message) error {
	return b.publish(redisEnvelope{InstanceID: b.instanceID, Mode: targetTo, IDs: ids, Message: msg})
}

func (b *RedisBridge) publish(env redisEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.client.Publish(b.ctx, b.prefix+"broadcast", data).Err()
}

// Stop unsubscribes, stops any reconnect attempt in flight, and closes the
// Redis connection.
func (b *RedisBridge) Stop() error {
	b.mu.Lock()
	b.active = false
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
	return b.client.Close()
}

// Available reports whether the bridge currently holds a live subscription.
func (b *RedisBridge) Available() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.active
}

// listen drains sub until it fails, then keeps resubscribing with
// exponentially growing backoff (reset to minDelay on every successful
// resubscribe) until Stop cancels the bridge's context.
func (b *RedisBridge) listen(sub *redis.PubSub) {
	defer b.wg.Done()

	delay := b.minDelay
	for {
		if b.drain(sub) {
			return
		}

		b.mu.Lock()
		b.active = false
		b.mu.Unlock()

		for {
			select {
			case <-b.ctx.Done():
				return
			case <-time.After(delay):
			}

			next, err := b.subscribe()
			if err == nil {
				sub = next
				delay = b.minDelay
				b.mu.Lock()
				b.active = true
				b.mu.Unlock()
				b.logger.Info().Msg("redis bridge resubscribed")
				break
			}

			delay *= 2
			if delay > b.maxDelay {
				delay = b.maxDelay
			}
			b.logger.Warn().Err(err).Dur("retry_in", delay).Msg("redis resubscribe failed")
		}
	}
}

// drain reads from sub's channel until it closes or the bridge's context is
// cancelled. It returns true only on cancellation, signaling listen to stop
// reconnecting entirely.
func (b *RedisBridge) drain(sub *redis.PubSub) bool {
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			b.handleRedisMessage(msg)
		case <-b.ctx.Done():
			return true
		}
	}
}

// handleRedisMessage decodes an envelope and, for messages that did not
// originate on this instance, replays it through whichever fan-out
// primitive produced it.
func (b *RedisBridge) handleRedisMessage(msg *redis.Message) {
	var env redisEnvelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		b.logger.Error().Err(err).Msg("failed to decode redis message")
		return
	}

	// Skip messages that originated from this instance.
	if env.InstanceID == b.instanceID {
		return
	}

	b.logger.Debug().
		Str("from_instance", env.InstanceID).
		Msg("relaying message from redis")

	switch env.Mode {
	case targetExcept:
		b.target.BroadcastExcept(env.ExceptID, env.Message)
	case targetTo:
		b.target.BroadcastTo(env.IDs, env.Message)
	default:
		b.target.Broadcast(env.Message)
	}
}
