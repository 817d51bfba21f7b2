package helpers

import (
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type typedBody struct {
	Name string `json:"name"`
}

func (typedBody) EventType() string { return "user.registered" }

func TestNewJSONPublishing(t *testing.T) {
	msg, err := NewJSONPublishing(typedBody{Name: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "user.registered", msg.Type)
	assert.NotEmpty(t, msg.MessageId)
	assert.JSONEq(t, `{"name":"alice"}`, string(msg.Body))

	plain, err := NewJSONPublishing(map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.Empty(t, plain.Type)
	assert.NotEqual(t, msg.MessageId, plain.MessageId)

	_, err = NewJSONPublishing(json.RawMessage("{"))
	assert.Error(t, err)
}
