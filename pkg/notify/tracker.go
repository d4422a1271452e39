package notify

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"simpled.xyz/notification-service/pkg/common"
	"simpled.xyz/notification-service/pkg/models"
)

func (n *Notify) getTracker(deviceID string) (*models.BatteryAlertTracker, error) {
	var tracker models.BatteryAlertTracker
	err := n.Db.Conn.First(&tracker, "device_id = ?", deviceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// no tracker means no alert was ever emitted for this device
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tracker, nil
}

func (n *Notify) upsertTracker(tracker *models.BatteryAlertTracker) error {
	logger := common.GetLoggerWith(
		common.LoggerNameNotifyCore,
		zap.String(common.LoggerFieldNotifyCategory, common.LoggerCategoryNotifyTracker),
	)

	err := n.Db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		UpdateAll: true,
	}).Create(tracker).Error

	if err == nil {
		logger.Info("Upserted battery alert tracker", zap.Reflect("tracker", tracker))
	}

	return err
}

type ITrackerImpl struct {
	notify *Notify
}

func (it *ITrackerImpl) GetTracker(deviceID string) (*models.BatteryAlertTracker, error) {
	return it.notify.getTracker(deviceID)
}

func (it *ITrackerImpl) UpsertTracker(tracker *models.BatteryAlertTracker) error {
	return it.notify.upsertTracker(tracker)
}

func (n *Notify) GetITracker() ITracker {
	return &ITrackerImpl{notify: n}
}
