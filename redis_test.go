package msglog

import (
	"context"
	"encoding/json"
	stderrs "errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeList struct {
	key    string
	values [][]byte
	err    error
	closed bool
}

func (f *fakeList) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "rpush", key)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.key = key
	for _, v := range values {
		f.values = append(f.values, v.([]byte))
	}
	cmd.SetVal(int64(len(f.values)))
	return cmd
}

func (f *fakeList) Close() error {
	f.closed = true
	return nil
}

func TestRedisSink_Write(t *testing.T) {
	fake := &fakeList{}
	sink := newRedisSink(fake, "")
	assert.Equal(t, "msglog", sink.Key())

	require.NoError(t, sink.Write(sampleRecord()))
	assert.Equal(t, "msglog", fake.key)
	require.Len(t, fake.values, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(fake.values[0], &entry))
	assert.Equal(t, "hello world", entry[FieldMessage])
	assert.Equal(t, "api", entry[FieldEmitter])

	require.NoError(t, sink.Close())
	assert.True(t, fake.closed)
}

func TestRedisSink_WriteError(t *testing.T) {
	sink := newRedisSink(&fakeList{err: stderrs.New("connection refused")}, "logs")
	err := sink.Write(sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewRedisSink(t *testing.T) {
	sink := NewRedisSink(RedisConfig{Addr: "127.0.0.1:0", Key: "app"})
	assert.Equal(t, "app", sink.Key())
	require.NoError(t, sink.Close())
}
