package notify

import (
	"bufio"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"simpled.xyz/notification-service/pkg/db"
	"simpled.xyz/notification-service/pkg/fcm/mocks"
	"simpled.xyz/notification-service/pkg/models"
)

func GetMockNotifyWithMemorySqliteDialector(t *testing.T) (
	*gomock.Controller,
	*Notify,
	*mocks.MockNotifier,
) {
	ctrl := gomock.NewController(t)

	mockNotifier := mocks.NewMockNotifier(ctrl)
	dialector := db.UseMemorySqliteDialector()
	dbInstance := db.GetInstance(dialector) // ensure migrations
	notifyInstance := (&Notify{Db: *dbInstance, Notifier: mockNotifier})

	notifyInstance.WithServices(ServiceOpts{
		Notification: notifyInstance.GetINotification(),
		Tracker:      notifyInstance.GetITracker(),
		Recipient:    notifyInstance.GetIRecipient(),
		Hooks:        notifyInstance.GetIHooks(),
	})

	return ctrl, notifyInstance, mockNotifier
}

// SeedUserAndDevice inserts one user (with the given token) owning one device
// and returns their ids.
func SeedUserAndDevice(t *testing.T, n *Notify, token string) (string, string) {
	userID := uuid.NewString()
	deviceID := uuid.NewString()

	require.NoError(t, n.Db.Conn.Create(&models.User{
		ID:       userID,
		Name:     "Owner",
		FcmToken: token,
	}).Error)
	require.NoError(t, n.Db.Conn.Create(&models.Device{
		ID:     deviceID,
		Name:   "Front Door",
		UserID: userID,
	}).Error)

	return userID, deviceID
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}
