package notify

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simpled.xyz/notification-service/pkg/common"
	"simpled.xyz/notification-service/pkg/models"
	_ "simpled.xyz/notification-service/pkg/testing"
)

func TestGetTracker_AbsentReturnsNil(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, n, _ := GetMockNotifyWithMemorySqliteDialector(t)
	defer ctrl.Finish()

	tracker, err := n.Tracker.GetTracker(uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, tracker)
}

func TestUpsertTracker_SingleRowPerDevice(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, n, _ := GetMockNotifyWithMemorySqliteDialector(t)
	defer ctrl.Finish()

	deviceID := uuid.NewString()
	first := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, n.Tracker.UpsertTracker(&models.BatteryAlertTracker{
		DeviceID:            deviceID,
		LastAlertAt:         first,
		BatteryLevelAtAlert: 18,
		AlertCount:          1,
		AlertThreshold:      20,
		CooldownHours:       24,
		MinDrop:             5,
	}))

	require.NoError(t, n.Tracker.UpsertTracker(&models.BatteryAlertTracker{
		DeviceID:            deviceID,
		LastAlertAt:         first.Add(25 * time.Hour),
		BatteryLevelAtAlert: 10,
		AlertCount:          2,
		AlertThreshold:      20,
		CooldownHours:       24,
		MinDrop:             5,
	}))

	var count int64
	n.Db.Conn.Model(&models.BatteryAlertTracker{}).Where("device_id = ?", deviceID).Count(&count)
	assert.Equal(t, int64(1), count)

	tracker, err := n.Tracker.GetTracker(deviceID)
	require.NoError(t, err)
	require.NotNil(t, tracker)
	assert.Equal(t, 2, tracker.AlertCount)
	assert.Equal(t, 10, tracker.BatteryLevelAtAlert)
	assert.Equal(t, first.Add(25*time.Hour).Unix(), tracker.LastAlertAt.Unix())
}
