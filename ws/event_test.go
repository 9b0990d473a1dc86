package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	in, err := decodeInbound([]byte(`{"type":"chat_message","message":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, EventChatMessage, in.Type)
	assert.Equal(t, "hi", in.Message)

	in, err = decodeInbound([]byte(`{"type":"user_typing","user_id":4,"username":"bob"}`))
	require.NoError(t, err)
	assert.Equal(t, EventUserTyping, in.Type)
	assert.EqualValues(t, 4, in.UserID)
	assert.Equal(t, "bob", in.Username)

	for _, kind := range []string{EventGetHistory, EventPing, EventUserStopTyping} {
		in, err = decodeInbound([]byte(`{"type":"` + kind + `"}`))
		require.NoError(t, err)
		assert.Equal(t, kind, in.Type)
	}
}

func TestDecodeInboundDefaultsToChatMessage(t *testing.T) {
	in, err := decodeInbound([]byte(`{"message":"no type field"}`))
	require.NoError(t, err)
	assert.Equal(t, EventChatMessage, in.Type)
	assert.Equal(t, "no type field", in.Message)
}

func TestDecodeInboundRejectsMalformedJSON(t *testing.T) {
	_, err := decodeInbound([]byte(`{not json`))
	assert.ErrorIs(t, err, errInvalidJSON)

	_, err = decodeInbound([]byte(`"just a string"`))
	assert.ErrorIs(t, err, errInvalidJSON)
}

func TestDecodeInboundRejectsUnknownType(t *testing.T) {
	// server-only event kinds are not valid inbound
	for _, kind := range []string{"pong", "history", "error", "user_online", "something_else"} {
		_, err := decodeInbound([]byte(`{"type":"` + kind + `"}`))
		assert.ErrorIs(t, err, errUnknownEvent, "type %q", kind)
	}
}

func TestTimeOfDayFormat(t *testing.T) {
	ts := time.Date(2025, 6, 1, 9, 5, 33, 0, time.UTC)
	assert.Equal(t, "09:05", timeOfDay(ts))
}
