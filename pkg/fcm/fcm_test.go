package fcm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simpled.xyz/notification-service/pkg/common"
	"simpled.xyz/notification-service/pkg/message"
	_ "simpled.xyz/notification-service/pkg/testing"
)

func TestBuildFcmMessage(t *testing.T) {
	msg := message.Message{
		Title:    "🔋 Low Battery Alert",
		Body:     "Front Door battery is at 15%. Please replace soon.",
		Data:     map[string]string{"battery_level": "15"},
		Priority: message.PriorityHigh,
	}

	out := buildFcmMessage("token-1", msg)

	assert.Equal(t, "token-1", out.Token)
	assert.Equal(t, msg.Data, out.Data)

	require.NotNil(t, out.Android)
	assert.Equal(t, "high", out.Android.Priority)

	require.NotNil(t, out.Android.Notification)
	assert.Equal(t, msg.Title, out.Android.Notification.Title)
	assert.Equal(t, msg.Body, out.Android.Notification.Body)
	assert.Equal(t, "@drawable/ic_notification", out.Android.Notification.Icon)
	assert.Equal(t, "default", out.Android.Notification.Sound)
	assert.Equal(t, "default", out.Android.Notification.ChannelID)
}

func TestBuildFcmMessage_NormalPriority(t *testing.T) {
	out := buildFcmMessage("token-1", message.Message{Priority: message.PriorityNormal})
	assert.Equal(t, "normal", out.Android.Priority)
}

func TestNewClient_EmptyCredentials(t *testing.T) {
	common.SetTestLoggerNop()

	client, err := NewClient(context.Background(), "")
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestNop(t *testing.T) {
	id, err := Nop{}.Send(context.Background(), "whatever", message.Message{})
	assert.NoError(t, err)
	assert.Empty(t, id)
}
