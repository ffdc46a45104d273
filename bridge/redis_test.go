package bridge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wsforge/wsforge/message"
)

// mockBroadcastTarget records which fan-out primitive the bridge replayed.
type mockBroadcastTarget struct {
	all    []message.Message
	except []struct {
		exceptID string
		msg      message.Message
	}
	to []struct {
		ids []string
		msg message.Message
	}
}

func (m *mockBroadcastTarget) Broadcast(msg message.Message) {
	m.all = append(m.all, msg)
}

func (m *mockBroadcastTarget) BroadcastExcept(exceptID string, msg message.Message) {
	m.except = append(m.except, struct {
		exceptID string
		msg      message.Message
	}{exceptID, msg})
}

func (m *mockBroadcastTarget) BroadcastTo(ids []string, msg message.Message) {
	m.to = append(m.to, struct {
		ids []string
		msg message.Message
	}{ids, msg})
}

func TestRedisEnvelopeSerialization(t *testing.T) {
	msg := message.NewTextString("hello there")

	env := redisEnvelope{
		InstanceID: "instance-abc",
		Mode:       targetAll,
		Message:    msg,
	}

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded redisEnvelope
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, env.InstanceID, decoded.InstanceID)
	assert.Equal(t, targetAll, decoded.Mode)
	text, ok := decoded.Message.AsText()
	assert.True(t, ok)
	assert.Equal(t, "hello there", text)
}

func TestRedisEnvelopeRoundTrip(t *testing.T) {
	msg := message.NewClose(1001, "going away", true)

	env := redisEnvelope{
		InstanceID: "node-1",
		Mode:       targetAll,
		Message:    msg,
	}

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var out redisEnvelope
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, "node-1", out.InstanceID)
	code, ok := out.Message.CloseCode()
	assert.True(t, ok)
	assert.Equal(t, uint16(1001), code)
	assert.Equal(t, "going away", out.Message.CloseReason())
}

func TestRedisEnvelopeExceptModeRoundTrip(t *testing.T) {
	env := redisEnvelope{
		InstanceID: "node-1",
		Mode:       targetExcept,
		ExceptID:   "conn_5",
		Message:    message.NewTextString("skip sender"),
	}

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var out redisEnvelope
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, targetExcept, out.Mode)
	assert.Equal(t, "conn_5", out.ExceptID)
}

func TestRedisEnvelopeToModeRoundTrip(t *testing.T) {
	env := redisEnvelope{
		InstanceID: "node-1",
		Mode:       targetTo,
		IDs:        []string{"conn_1", "conn_2"},
		Message:    message.NewTextString("targeted"),
	}

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var out redisEnvelope
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, targetTo, out.Mode)
	assert.Equal(t, []string{"conn_1", "conn_2"}, out.IDs)
}

func TestHandleRedisMessageDispatchesByMode(t *testing.T) {
	target := &mockBroadcastTarget{}
	cfg := DefaultRedisConfig()
	rb := NewRedisBridge(cfg, target, testLogger())
	rb.instanceID = "local"

	send := func(env redisEnvelope) {
		data, err := json.Marshal(env)
		require.NoError(t, err)
		rb.handleRedisMessage(&redis.Message{Payload: string(data)})
	}

	send(redisEnvelope{InstanceID: "peer", Mode: targetAll, Message: message.NewTextString("a")})
	send(redisEnvelope{InstanceID: "peer", Mode: targetExcept, ExceptID: "conn_1", Message: message.NewTextString("b")})
	send(redisEnvelope{InstanceID: "peer", Mode: targetTo, IDs: []string{"conn_2"}, Message: message.NewTextString("c")})
	send(redisEnvelope{InstanceID: "local", Mode: targetAll, Message: message.NewTextString("self")})

	assert.Len(t, target.all, 1)
	assert.Len(t, target.except, 1)
	assert.Equal(t, "conn_1", target.except[0].exceptID)
	assert.Len(t, target.to, 1)
	assert.Equal(t, []string{"conn_2"}, target.to[0].ids)
}

func TestDefaultRedisConfig(t *testing.T) {
	cfg := DefaultRedisConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, 0, cfg.DB)
	assert.Equal(t, "wsforge:ws:", cfg.Prefix)
	assert.Equal(t, 500*time.Millisecond, cfg.ReconnectMinDelay)
	assert.Equal(t, 30*time.Second, cfg.ReconnectMaxDelay)
}

func TestRedisConfigFromEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.example.com:6380")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_WS_PREFIX", "test:ws:")
	t.Setenv("REDIS_RECONNECT_MIN_MS", "100")
	t.Setenv("REDIS_RECONNECT_MAX_MS", "5000")

	cfg := RedisConfigFromEnv()
	assert.Equal(t, "redis.example.com:6380", cfg.Addr)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 3, cfg.DB)
	assert.Equal(t, "test:ws:", cfg.Prefix)
	assert.Equal(t, 100*time.Millisecond, cfg.ReconnectMinDelay)
	assert.Equal(t, 5*time.Second, cfg.ReconnectMaxDelay)
}

func TestRedisConfigFromEnvDefaults(t *testing.T) {
	// No env vars set, should return defaults.
	cfg := RedisConfigFromEnv()
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, 0, cfg.DB)
	assert.Equal(t, "wsforge:ws:", cfg.Prefix)
	assert.Equal(t, 500*time.Millisecond, cfg.ReconnectMinDelay)
	assert.Equal(t, 30*time.Second, cfg.ReconnectMaxDelay)
}

func TestRedisConfigFromEnvInvalidDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := RedisConfigFromEnv()
	assert.Equal(t, 0, cfg.DB) // falls back to default
}

func TestRedisConfigFromEnvInvalidReconnectDelay(t *testing.T) {
	t.Setenv("REDIS_RECONNECT_MIN_MS", "not-a-number")

	cfg := RedisConfigFromEnv()
	assert.Equal(t, 500*time.Millisecond, cfg.ReconnectMinDelay) // falls back to default
}

func TestRedisBridgeAvailableFalseBeforeStart(t *testing.T) {
	target := &mockBroadcastTarget{}
	cfg := DefaultRedisConfig()
	rb := NewRedisBridge(cfg, target, testLogger())
	assert.False(t, rb.Available())
}

func TestRedisBridgeInstanceIDUnique(t *testing.T) {
	target := &mockBroadcastTarget{}
	cfg := DefaultRedisConfig()
	b1 := NewRedisBridge(cfg, target, testLogger())
	b2 := NewRedisBridge(cfg, target, testLogger())
	assert.NotEqual(t, b1.instanceID, b2.instanceID)
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
