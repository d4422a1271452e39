package notify

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simpled.xyz/notification-service/pkg/common"
	"simpled.xyz/notification-service/pkg/models"
	_ "simpled.xyz/notification-service/pkg/testing"
)

func TestResolveDevice(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, n, _ := GetMockNotifyWithMemorySqliteDialector(t)
	defer ctrl.Finish()

	userID, deviceID := SeedUserAndDevice(t, n, "token-1")

	rec, err := n.Recipient.ResolveDevice(deviceID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, userID, rec.UserID)
	assert.Equal(t, "token-1", rec.FcmToken)
	assert.Equal(t, "Front Door", rec.DeviceName)

	// unknown device is a silent skip, not an error
	rec, err = n.Recipient.ResolveDevice(uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestResolveUser_EmptyTokenSkips(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, n, _ := GetMockNotifyWithMemorySqliteDialector(t)
	defer ctrl.Finish()

	userID, _ := SeedUserAndDevice(t, n, "")

	rec, err := n.Recipient.ResolveUser(userID)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRegisterToken(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, n, _ := GetMockNotifyWithMemorySqliteDialector(t)
	defer ctrl.Finish()

	userID, _ := SeedUserAndDevice(t, n, "")

	require.NoError(t, n.Recipient.RegisterToken(userID, "fresh-token"))

	var user models.User
	require.NoError(t, n.Db.Conn.First(&user, "id = ?", userID).Error)
	assert.Equal(t, "fresh-token", user.FcmToken)
	assert.NotNil(t, user.FcmTokenUpdatedAt)

	err := n.Recipient.RegisterToken(uuid.NewString(), "fresh-token")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestClearToken(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, n, _ := GetMockNotifyWithMemorySqliteDialector(t)
	defer ctrl.Finish()

	userID, _ := SeedUserAndDevice(t, n, "old-token")

	require.NoError(t, n.Recipient.ClearToken(userID))

	var user models.User
	require.NoError(t, n.Db.Conn.First(&user, "id = ?", userID).Error)
	assert.Empty(t, user.FcmToken)

	// clearing a missing user is not an error
	require.NoError(t, n.Recipient.ClearToken(uuid.NewString()))
}

func TestResolveGateway(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, n, _ := GetMockNotifyWithMemorySqliteDialector(t)
	defer ctrl.Finish()

	userID, _ := SeedUserAndDevice(t, n, "token-1")
	gatewayID := uuid.NewString()
	require.NoError(t, n.Db.Conn.Create(&models.Gateway{
		ID:     gatewayID,
		Name:   "Home Hub",
		UserID: userID,
	}).Error)

	rec, err := n.Recipient.ResolveGateway(gatewayID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, userID, rec.UserID)
	assert.Equal(t, "Home Hub", rec.GatewayName)

	rec, err = n.Recipient.ResolveGateway(uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, rec)
}
