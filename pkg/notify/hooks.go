package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
	"simpled.xyz/notification-service/pkg/alertgate"
	"simpled.xyz/notification-service/pkg/common"
	"simpled.xyz/notification-service/pkg/message"
	"simpled.xyz/notification-service/pkg/models"
)

// checkAndNotifyLowBattery runs one battery reading through the alert gate
// and, on an emit decision, dispatches the push and advances the tracker.
// The tracker is written only after the transport confirms the send; a
// failed send leaves it untouched so the next poll retries from the same
// prior state. Checks for one device are serialized; devices are independent.
func (n *Notify) checkAndNotifyLowBattery(ctx context.Context, deviceID string, batteryLevel int, policy alertgate.Policy) (bool, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameNotifyCore,
		zap.String(common.LoggerFieldNotifyCategory, common.LoggerCategoryNotifyBattery),
	)

	policy = policy.OrDefaults()

	// cheap short-circuit before any store read
	if batteryLevel > policy.Threshold {
		logger.Debug("Battery level above threshold",
			zap.String("device_id", deviceID),
			zap.Int("battery_level", batteryLevel),
			zap.Int("threshold", policy.Threshold))
		return false, nil
	}

	lock := n.checkLocks.get(deviceID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := n.Recipient.ResolveDevice(deviceID)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}

	tracker, err := n.Tracker.GetTracker(deviceID)
	if err != nil {
		return false, err
	}

	var prior *alertgate.State
	if tracker != nil {
		prior = &alertgate.State{
			LastAlertAt:         tracker.LastAlertAt,
			BatteryLevelAtAlert: tracker.BatteryLevelAtAlert,
			AlertCount:          tracker.AlertCount,
		}
	}

	now := time.Now().UTC()
	decision := alertgate.Evaluate(batteryLevel, now, prior, policy)
	if !decision.Emit {
		logger.Debug("Battery alert suppressed",
			zap.String("device_id", deviceID),
			zap.Int("battery_level", batteryLevel),
			zap.String("reason", string(decision.Reason)),
			zap.Int("drop", decision.Drop))
		return false, nil
	}

	logger.Info("Battery alert eligible",
		zap.String("device_id", deviceID),
		zap.Int("battery_level", batteryLevel),
		zap.String("reason", string(decision.Reason)),
		zap.Int("drop", decision.Drop))

	notification, err := n.Notification.CreateAndSend(ctx, rec.UserID, message.KindLowBattery, message.Context{
		DeviceID:     deviceID,
		DeviceName:   rec.DeviceName,
		BatteryLevel: batteryLevel,
		Timestamp:    now.Format(time.RFC3339),
	})
	if err != nil {
		return false, err
	}
	if notification == nil || notification.Status != models.StatusSent {
		// nothing went out, keep the tracker as-is and retry next poll
		return false, nil
	}

	// fresh value with zero ID so the upsert conflicts on device_id only
	next := &models.BatteryAlertTracker{
		DeviceID:            deviceID,
		LastAlertAt:         decision.Next.LastAlertAt,
		BatteryLevelAtAlert: decision.Next.BatteryLevelAtAlert,
		AlertCount:          decision.Next.AlertCount,
		AlertThreshold:      policy.Threshold,
		CooldownHours:       int(policy.Cooldown / time.Hour),
		MinDrop:             policy.MinDrop,
	}

	if err := n.Tracker.UpsertTracker(next); err != nil {
		// The alert already went out; a duplicate later beats a silently
		// broken cooldown, so surface the failure loudly.
		logger.Error("Tracker update failed after dispatch",
			zap.String("device_id", deviceID), zap.Error(err))
		return true, err
	}

	logger.Info("Low battery notification sent",
		zap.String("device_id", deviceID),
		zap.String("device_name", rec.DeviceName),
		zap.Int("battery_level", batteryLevel),
		zap.Int("alert_count", next.AlertCount))

	return true, nil
}

func (n *Notify) notifyDeviceUnlocked(ctx context.Context, deviceID, byUserName, method string) (bool, error) {
	rec, err := n.Recipient.ResolveDevice(deviceID)
	if err != nil || rec == nil {
		return false, err
	}

	notification, err := n.Notification.CreateAndSend(ctx, rec.UserID, message.KindDeviceUnlock, message.Context{
		DeviceID:   deviceID,
		DeviceName: rec.DeviceName,
		UserName:   byUserName,
		Method:     method,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
	return err == nil && notification != nil, err
}

func (n *Notify) notifyDeviceLocked(ctx context.Context, deviceID string) (bool, error) {
	rec, err := n.Recipient.ResolveDevice(deviceID)
	if err != nil || rec == nil {
		return false, err
	}

	notification, err := n.Notification.CreateAndSend(ctx, rec.UserID, message.KindDeviceLock, message.Context{
		DeviceID:   deviceID,
		DeviceName: rec.DeviceName,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
	return err == nil && notification != nil, err
}

func (n *Notify) notifyGatewayStatus(ctx context.Context, gatewayID string, kind message.Kind, affectedDevices int) (bool, error) {
	rec, err := n.Recipient.ResolveGateway(gatewayID)
	if err != nil || rec == nil {
		return false, err
	}

	notification, err := n.Notification.CreateAndSend(ctx, rec.UserID, kind, message.Context{
		GatewayID:       gatewayID,
		GatewayName:     rec.GatewayName,
		AffectedDevices: affectedDevices,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	})
	return err == nil && notification != nil, err
}

// notifyEKeyShared notifies the grantee, not the device owner.
func (n *Notify) notifyEKeyShared(ctx context.Context, deviceID, ekeyID, issuerName, granteeUserID string) (bool, error) {
	deviceName := n.deviceName(deviceID)

	notification, err := n.Notification.CreateAndSend(ctx, granteeUserID, message.KindEKeyShared, message.Context{
		DeviceID:   deviceID,
		DeviceName: deviceName,
		EKeyID:     ekeyID,
		IssuerName: issuerName,
	})
	return err == nil && notification != nil, err
}

func (n *Notify) notifyEKeyRevoked(ctx context.Context, deviceID, ekeyID, granteeUserID string) (bool, error) {
	deviceName := n.deviceName(deviceID)

	notification, err := n.Notification.CreateAndSend(ctx, granteeUserID, message.KindEKeyRevoked, message.Context{
		DeviceID:   deviceID,
		DeviceName: deviceName,
		EKeyID:     ekeyID,
	})
	return err == nil && notification != nil, err
}

func (n *Notify) notifySecurityAlert(ctx context.Context, deviceID string, attemptCount int, attemptType string) (bool, error) {
	rec, err := n.Recipient.ResolveDevice(deviceID)
	if err != nil || rec == nil {
		return false, err
	}

	notification, err := n.Notification.CreateAndSend(ctx, rec.UserID, message.KindSecurityAlert, message.Context{
		DeviceID:     deviceID,
		DeviceName:   rec.DeviceName,
		AttemptCount: attemptCount,
		AttemptType:  attemptType,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
	return err == nil && notification != nil, err
}

func (n *Notify) deviceName(deviceID string) string {
	var device models.Device
	if err := n.Db.Conn.First(&device, "id = ?", deviceID).Error; err != nil {
		return ""
	}
	return device.Name
}

type IHooksImpl struct {
	notify *Notify
}

func (ih *IHooksImpl) CheckAndNotifyLowBattery(ctx context.Context, deviceID string, batteryLevel int, policy alertgate.Policy) (bool, error) {
	return ih.notify.checkAndNotifyLowBattery(ctx, deviceID, batteryLevel, policy)
}

func (ih *IHooksImpl) NotifyDeviceUnlocked(ctx context.Context, deviceID, byUserName, method string) (bool, error) {
	return ih.notify.notifyDeviceUnlocked(ctx, deviceID, byUserName, method)
}

func (ih *IHooksImpl) NotifyDeviceLocked(ctx context.Context, deviceID string) (bool, error) {
	return ih.notify.notifyDeviceLocked(ctx, deviceID)
}

func (ih *IHooksImpl) NotifyGatewayOffline(ctx context.Context, gatewayID string, affectedDevices int) (bool, error) {
	return ih.notify.notifyGatewayStatus(ctx, gatewayID, message.KindGatewayOffline, affectedDevices)
}

func (ih *IHooksImpl) NotifyGatewayOnline(ctx context.Context, gatewayID string) (bool, error) {
	return ih.notify.notifyGatewayStatus(ctx, gatewayID, message.KindGatewayOnline, 0)
}

func (ih *IHooksImpl) NotifyEKeyShared(ctx context.Context, deviceID, ekeyID, issuerName, granteeUserID string) (bool, error) {
	return ih.notify.notifyEKeyShared(ctx, deviceID, ekeyID, issuerName, granteeUserID)
}

func (ih *IHooksImpl) NotifyEKeyRevoked(ctx context.Context, deviceID, ekeyID, granteeUserID string) (bool, error) {
	return ih.notify.notifyEKeyRevoked(ctx, deviceID, ekeyID, granteeUserID)
}

func (ih *IHooksImpl) NotifySecurityAlert(ctx context.Context, deviceID string, attemptCount int, attemptType string) (bool, error) {
	return ih.notify.notifySecurityAlert(ctx, deviceID, attemptCount, attemptType)
}

func (n *Notify) GetIHooks() IHooks {
	return &IHooksImpl{notify: n}
}
