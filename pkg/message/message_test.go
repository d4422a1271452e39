package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, s := range []string{
		"low_battery", "device_unlock", "device_lock",
		"ekey_shared", "ekey_revoked",
		"gateway_offline", "gateway_online",
		"security_alert", "new_device_login",
	} {
		kind, err := ParseKind(s)
		assert.NoError(t, err)
		assert.Equal(t, Kind(s), kind)
	}

	_, err := ParseKind("carrier_pigeon")
	assert.Error(t, err)
}

func TestKindPriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, KindLowBattery.Priority())
	assert.Equal(t, PriorityNormal, KindDeviceUnlock.Priority())
	assert.Equal(t, PriorityNormal, KindGatewayOffline.Priority())
	assert.Equal(t, PriorityNormal, KindSecurityAlert.Priority())
}

func TestBuildLowBattery(t *testing.T) {
	msg, err := Build(KindLowBattery, Context{
		DeviceID:     "dev-1",
		DeviceName:   "Front Door",
		BatteryLevel: 15,
		Timestamp:    "2025-01-15T10:30:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "⚠️ Low Battery Alert", msg.Title)
	assert.Equal(t, "Front Door battery is at 15%. Please replace soon.", msg.Body)
	assert.Equal(t, PriorityHigh, msg.Priority)
	assert.Equal(t, "15", msg.Data["battery_level"])
	assert.Equal(t, "dev-1", msg.Data["device_id"])
	assert.Equal(t, "low_battery", msg.Data["notification_type"])
}

func TestBuildDeviceUnlock(t *testing.T) {
	msg, err := Build(KindDeviceUnlock, Context{
		DeviceID:   "dev-1",
		DeviceName: "Front Door",
		UserName:   "Alice",
		Method:     "fingerprint",
	})
	require.NoError(t, err)

	assert.Equal(t, "Front Door was unlocked by Alice via fingerprint", msg.Body)
	assert.Equal(t, PriorityNormal, msg.Priority)
}

func TestBuildFallbackWording(t *testing.T) {
	msg, err := Build(KindDeviceUnlock, Context{DeviceID: "dev-1"})
	require.NoError(t, err)
	assert.Equal(t, "Your device was unlocked by Someone via unknown", msg.Body)

	msg, err = Build(KindGatewayOffline, Context{GatewayID: "gw-1", AffectedDevices: 3})
	require.NoError(t, err)
	assert.Equal(t, "Your gateway is offline. 3 devices affected.", msg.Body)

	msg, err = Build(KindNewDeviceLogin, Context{})
	require.NoError(t, err)
	assert.Equal(t, "Login detected from Unknown device at Unknown location", msg.Body)
}

func TestBuildAllKindsDataIsComplete(t *testing.T) {
	ctx := Context{
		DeviceID:        "dev-1",
		DeviceName:      "Front Door",
		BatteryLevel:    15,
		UserName:        "Alice",
		Method:          "app",
		EKeyID:          "ekey-1",
		IssuerName:      "Bob",
		GatewayID:       "gw-1",
		GatewayName:     "Home Hub",
		AffectedDevices: 2,
		AttemptCount:    3,
		AttemptType:     "passcode",
		DeviceInfo:      "Pixel 9",
		Location:        "Berlin",
		IPAddress:       "203.0.113.9",
		Timestamp:       "2025-01-15T10:30:00Z",
	}

	for _, kind := range []Kind{
		KindLowBattery, KindDeviceUnlock, KindDeviceLock,
		KindEKeyShared, KindEKeyRevoked,
		KindGatewayOffline, KindGatewayOnline,
		KindSecurityAlert, KindNewDeviceLogin,
	} {
		msg, err := Build(kind, ctx)
		require.NoError(t, err, "kind %s", kind)
		assert.NotEmpty(t, msg.Title, "kind %s", kind)
		assert.NotEmpty(t, msg.Body, "kind %s", kind)
		assert.Equal(t, string(kind), msg.Data["notification_type"], "kind %s", kind)
		assert.Equal(t, kind.Priority(), msg.Priority, "kind %s", kind)
	}
}

func TestBuildUnknownKind(t *testing.T) {
	_, err := Build(Kind("smoke_signal"), Context{})
	assert.Error(t, err)
}
