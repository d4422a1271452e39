package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"simpled.xyz/notification-service/pkg/common"
	"simpled.xyz/notification-service/pkg/fcm"
	"simpled.xyz/notification-service/pkg/message"
	"simpled.xyz/notification-service/pkg/models"
)

// ErrNotificationNotFound is returned by MarkRead when the notification does
// not exist or belongs to another user.
var ErrNotificationNotFound = errors.New("notify: notification not found")

// createAndSend persists a notification record, attempts one push delivery
// and records the outcome. Returns (nil, nil) when the user has no delivery
// token; a failed send is reported through the record's status, not an error.
func (n *Notify) createAndSend(ctx context.Context, userID string, kind message.Kind, mctx message.Context) (*models.Notification, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameNotifyCore,
		zap.String(common.LoggerFieldNotifyCategory, common.LoggerCategoryNotifyDispatch),
	)

	rec, err := n.Recipient.ResolveUser(userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	msg, err := message.Build(kind, mctx)
	if err != nil {
		return nil, err
	}

	notification := models.Notification{
		UserID:    userID,
		Kind:      string(kind),
		Priority:  models.Priority(msg.Priority),
		Title:     msg.Title,
		Body:      msg.Body,
		Data:      msg.Data,
		DeviceID:  mctx.DeviceID,
		GatewayID: mctx.GatewayID,
		EKeyID:    mctx.EKeyID,
		Status:    models.StatusPending,
	}
	if err := n.Db.Conn.Create(&notification).Error; err != nil {
		return nil, err
	}

	logger.Info("Notification created",
		zap.Uint("notification_id", notification.ID),
		zap.String("kind", string(kind)),
		zap.String("user_id", userID))

	messageID, sendErr := n.Notifier.Send(ctx, rec.FcmToken, msg)

	if sendErr == nil {
		now := time.Now().UTC()
		notification.Status = models.StatusSent
		notification.SentAt = &now
		notification.FcmMessageID = messageID
		logger.Info("Notification sent",
			zap.Uint("notification_id", notification.ID),
			zap.String("fcm_message_id", messageID))
	} else {
		notification.Status = models.StatusFailed
		logger.Error("Notification send failed",
			zap.Uint("notification_id", notification.ID),
			zap.Error(sendErr))

		if errors.Is(sendErr, fcm.ErrUnregistered) {
			if err := n.Recipient.ClearToken(userID); err != nil {
				logger.Error("Failed to clear stale token",
					zap.String("user_id", userID), zap.Error(err))
			}
		}
	}

	n.logDelivery(&notification, messageID, sendErr)

	if err := n.Db.Conn.Save(&notification).Error; err != nil {
		return nil, err
	}

	return &notification, nil
}

// logDelivery appends the audit row for one delivery attempt. A failure to
// log never fails the send itself.
func (n *Notify) logDelivery(notification *models.Notification, fcmResponse string, sendErr error) {
	entry := models.DeliveryLog{
		NotificationID: notification.ID,
		AttemptNumber:  1,
		FcmResponse:    fcmResponse,
		Status:         models.StatusSent,
		AttemptedAt:    time.Now().UTC(),
	}
	if sendErr != nil {
		entry.Status = models.StatusFailed
		entry.ErrorMessage = sendErr.Error()
	}

	if err := n.Db.Conn.Create(&entry).Error; err != nil {
		common.GetLoggerWith(
			common.LoggerNameNotifyCore,
			zap.String(common.LoggerFieldNotifyCategory, common.LoggerCategoryNotifyDispatch),
		).Error("Failed to log delivery attempt", zap.Error(err))
	}
}

func (n *Notify) listForUser(userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	query := n.Db.Conn.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var notifications []models.Notification
	err := query.
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

func (n *Notify) markRead(notificationID uint, userID string) error {
	var notification models.Notification
	if err := n.Db.Conn.First(&notification, "id = ?", notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}

	if notification.UserID != userID {
		common.GetLoggerWith(common.LoggerNameNotifyCore).Warn(
			"Read attempt on another user's notification",
			zap.Uint("notification_id", notificationID),
			zap.String("user_id", userID),
			zap.String("owner_id", notification.UserID))
		return ErrNotificationNotFound
	}

	now := time.Now().UTC()
	notification.ReadAt = &now
	notification.Status = models.StatusRead
	return n.Db.Conn.Save(&notification).Error
}

func (n *Notify) markAllRead(userID string) (int, error) {
	now := time.Now().UTC()
	result := n.Db.Conn.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Updates(map[string]any{
			"read_at": now,
			"status":  models.StatusRead,
		})
	return int(result.RowsAffected), result.Error
}

func (n *Notify) stats(userID string) (*Stats, error) {
	var notifications []models.Notification
	if err := n.Db.Conn.Find(&notifications, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}

	unread := common.Reducer(notifications, func(acc int, notification models.Notification) int {
		if notification.ReadAt == nil {
			return acc + 1
		}
		return acc
	}, 0)

	stats := Stats{
		Total:      len(notifications),
		Unread:     unread,
		ByType:     map[string]int{},
		ByPriority: map[string]int{},
	}
	for _, notification := range notifications {
		stats.ByType[notification.Kind]++
		stats.ByPriority[string(notification.Priority)]++
	}
	return &stats, nil
}

type INotificationImpl struct {
	notify *Notify
}

func (in *INotificationImpl) CreateAndSend(ctx context.Context, userID string, kind message.Kind, mctx message.Context) (*models.Notification, error) {
	return in.notify.createAndSend(ctx, userID, kind, mctx)
}

func (in *INotificationImpl) ListForUser(userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	return in.notify.listForUser(userID, unreadOnly, limit, offset)
}

func (in *INotificationImpl) MarkRead(notificationID uint, userID string) error {
	return in.notify.markRead(notificationID, userID)
}

func (in *INotificationImpl) MarkAllRead(userID string) (int, error) {
	return in.notify.markAllRead(userID)
}

func (in *INotificationImpl) Stats(userID string) (*Stats, error) {
	return in.notify.stats(userID)
}

func (n *Notify) GetINotification() INotification {
	return &INotificationImpl{notify: n}
}
