package notify

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"simpled.xyz/notification-service/pkg/common"
	"simpled.xyz/notification-service/pkg/models"
)

// resolveDevice walks device -> owning user -> delivery token. A missing
// device, missing owner or empty token yields (nil, nil): there is nobody
// to notify, which is a silent suppress rather than an error.
func (n *Notify) resolveDevice(deviceID string) (*Recipient, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameNotifyCore,
		zap.String(common.LoggerFieldNotifyCategory, common.LoggerCategoryNotifyRecipient),
	)

	var device models.Device
	if err := n.Db.Conn.First(&device, "id = ?", deviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Device not found", zap.String("device_id", deviceID))
			return nil, nil
		}
		return nil, err
	}

	rec, err := n.resolveUser(device.UserID)
	if rec != nil {
		rec.DeviceName = device.Name
	}
	return rec, err
}

func (n *Notify) resolveGateway(gatewayID string) (*Recipient, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameNotifyCore,
		zap.String(common.LoggerFieldNotifyCategory, common.LoggerCategoryNotifyRecipient),
	)

	var gateway models.Gateway
	if err := n.Db.Conn.First(&gateway, "id = ?", gatewayID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Gateway not found", zap.String("gateway_id", gatewayID))
			return nil, nil
		}
		return nil, err
	}

	rec, err := n.resolveUser(gateway.UserID)
	if rec != nil {
		rec.GatewayName = gateway.Name
	}
	return rec, err
}

func (n *Notify) resolveUser(userID string) (*Recipient, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameNotifyCore,
		zap.String(common.LoggerFieldNotifyCategory, common.LoggerCategoryNotifyRecipient),
	)

	var user models.User
	if err := n.Db.Conn.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", zap.String("user_id", userID))
			return nil, nil
		}
		return nil, err
	}

	if user.FcmToken == "" {
		logger.Debug("User has no delivery token, skipping notification",
			zap.String("user_id", userID))
		return nil, nil
	}

	return &Recipient{UserID: user.ID, FcmToken: user.FcmToken}, nil
}

// ErrUserNotFound is returned by RegisterToken for an unknown user.
var ErrUserNotFound = errors.New("notify: user not found")

// registerToken stores the delivery token the mobile app obtained after
// login. An empty token removes it (logout, uninstall).
func (n *Notify) registerToken(userID, token string) error {
	now := time.Now().UTC()
	result := n.Db.Conn.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"fcm_token":            token,
			"fcm_token_updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// clearToken drops a stale delivery token so later checks short-circuit at
// the directory instead of hitting the transport again.
func (n *Notify) clearToken(userID string) error {
	err := n.registerToken(userID, "")
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	return err
}

type IRecipientImpl struct {
	notify *Notify
}

func (ir *IRecipientImpl) ResolveDevice(deviceID string) (*Recipient, error) {
	return ir.notify.resolveDevice(deviceID)
}

func (ir *IRecipientImpl) ResolveGateway(gatewayID string) (*Recipient, error) {
	return ir.notify.resolveGateway(gatewayID)
}

func (ir *IRecipientImpl) ResolveUser(userID string) (*Recipient, error) {
	return ir.notify.resolveUser(userID)
}

func (ir *IRecipientImpl) RegisterToken(userID, token string) error {
	return ir.notify.registerToken(userID, token)
}

func (ir *IRecipientImpl) ClearToken(userID string) error {
	return ir.notify.clearToken(userID)
}

func (n *Notify) GetIRecipient() IRecipient {
	return &IRecipientImpl{notify: n}
}
