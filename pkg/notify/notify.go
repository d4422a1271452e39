package notify

import (
	"context"

	"simpled.xyz/notification-service/pkg/alertgate"
	"simpled.xyz/notification-service/pkg/db"
	"simpled.xyz/notification-service/pkg/fcm"
	"simpled.xyz/notification-service/pkg/message"
	"simpled.xyz/notification-service/pkg/models"
)

// Recipient is the resolved delivery target for a device or gateway event.
type Recipient struct {
	UserID      string
	FcmToken    string
	DeviceName  string
	GatewayName string
}

type Stats struct {
	Total      int            `json:"total"`
	Unread     int            `json:"unread"`
	ByType     map[string]int `json:"by_type"`
	ByPriority map[string]int `json:"by_priority"`
}

type INotification interface {
	CreateAndSend(ctx context.Context, userID string, kind message.Kind, mctx message.Context) (*models.Notification, error)
	ListForUser(userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	MarkRead(notificationID uint, userID string) error
	MarkAllRead(userID string) (int, error)
	Stats(userID string) (*Stats, error)
}

type ITracker interface {
	GetTracker(deviceID string) (*models.BatteryAlertTracker, error)
	UpsertTracker(tracker *models.BatteryAlertTracker) error
}

type IRecipient interface {
	ResolveDevice(deviceID string) (*Recipient, error)
	ResolveGateway(gatewayID string) (*Recipient, error)
	ResolveUser(userID string) (*Recipient, error)
	RegisterToken(userID, token string) error
	ClearToken(userID string) error
}

type IHooks interface {
	CheckAndNotifyLowBattery(ctx context.Context, deviceID string, batteryLevel int, policy alertgate.Policy) (bool, error)
	NotifyDeviceUnlocked(ctx context.Context, deviceID, byUserName, method string) (bool, error)
	NotifyDeviceLocked(ctx context.Context, deviceID string) (bool, error)
	NotifyGatewayOffline(ctx context.Context, gatewayID string, affectedDevices int) (bool, error)
	NotifyGatewayOnline(ctx context.Context, gatewayID string) (bool, error)
	NotifyEKeyShared(ctx context.Context, deviceID, ekeyID, issuerName, granteeUserID string) (bool, error)
	NotifyEKeyRevoked(ctx context.Context, deviceID, ekeyID, granteeUserID string) (bool, error)
	NotifySecurityAlert(ctx context.Context, deviceID string, attemptCount int, attemptType string) (bool, error)
}

// Notify is the orchestration core: it wires the tracker store, the
// recipient directory and the push transport around the alert gate.
type Notify struct {
	Db       db.DB
	Notifier fcm.Notifier

	Notification INotification
	Tracker      ITracker
	Recipient    IRecipient
	Hooks        IHooks

	checkLocks *deviceLocks
}

type ServiceOpts struct {
	Notification INotification
	Tracker      ITracker
	Recipient    IRecipient
	Hooks        IHooks
}

func (n *Notify) WithServices(opts ServiceOpts) *Notify {
	if n.checkLocks == nil {
		n.checkLocks = newDeviceLocks()
	}
	if opts.Notification != nil {
		n.Notification = opts.Notification
	}
	if opts.Tracker != nil {
		n.Tracker = opts.Tracker
	}
	if opts.Recipient != nil {
		n.Recipient = opts.Recipient
	}
	if opts.Hooks != nil {
		n.Hooks = opts.Hooks
	}
	return n
}
