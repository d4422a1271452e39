package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"simpled.xyz/notification-service/pkg/alertgate"
	"simpled.xyz/notification-service/pkg/common"
	"simpled.xyz/notification-service/pkg/message"
	"simpled.xyz/notification-service/pkg/models"
	"simpled.xyz/notification-service/pkg/notify"
)

type BatteryRequest struct {
	BatteryLevel int `json:"battery_level"`

	// optional policy overrides, zero means default
	Threshold     int `json:"threshold"`
	CooldownHours int `json:"cooldown_hours"`
	MinDrop       int `json:"min_drop"`
}

var batteryRequestSchema = z.Struct(z.Shape{
	"BatteryLevel":  z.Int().GTE(0).LTE(100).Required(),
	"Threshold":     z.Int().GTE(0).LTE(100),
	"CooldownHours": z.Int().GTE(0),
	"MinDrop":       z.Int().GTE(0),
})

func (rs *RestfulServer) PostBattery(c *gin.Context) {
	deviceID := c.Param("device_id")

	if !rs.CheckDeviceLimiter(deviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req BatteryRequest
	if err := batteryRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	policy := alertgate.Policy{
		Threshold: req.Threshold,
		Cooldown:  time.Duration(req.CooldownHours) * time.Hour,
		MinDrop:   req.MinDrop,
	}

	emitted, err := rs.Notify.Hooks.CheckAndNotifyLowBattery(c.Request.Context(), deviceID, req.BatteryLevel, policy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"emitted": emitted})
}

type DeviceEventRequest struct {
	Type         string `json:"type"`
	UserName     string `json:"user_name"`
	Method       string `json:"method"`
	AttemptCount int    `json:"attempt_count"`
	AttemptType  string `json:"attempt_type"`
}

var deviceEventRequestSchema = z.Struct(z.Shape{
	"Type":         z.String().OneOf([]string{"unlock", "lock", "security_alert"}).Required(),
	"UserName":     z.String(),
	"Method":       z.String(),
	"AttemptCount": z.Int().GTE(0),
	"AttemptType":  z.String(),
})

func (rs *RestfulServer) PostDeviceEvent(c *gin.Context) {
	deviceID := c.Param("device_id")

	if !rs.CheckDeviceLimiter(deviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req DeviceEventRequest
	if err := deviceEventRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	var emitted bool
	var err error
	switch req.Type {
	case "unlock":
		emitted, err = rs.Notify.Hooks.NotifyDeviceUnlocked(c.Request.Context(), deviceID, req.UserName, req.Method)
	case "lock":
		emitted, err = rs.Notify.Hooks.NotifyDeviceLocked(c.Request.Context(), deviceID)
	case "security_alert":
		emitted, err = rs.Notify.Hooks.NotifySecurityAlert(c.Request.Context(), deviceID, req.AttemptCount, req.AttemptType)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"emitted": emitted})
}

type GatewayStatusRequest struct {
	Status          string `json:"status"`
	AffectedDevices int    `json:"affected_devices"`
}

var gatewayStatusRequestSchema = z.Struct(z.Shape{
	"Status":          z.String().OneOf([]string{"online", "offline"}).Required(),
	"AffectedDevices": z.Int().GTE(0),
})

func (rs *RestfulServer) PostGatewayStatus(c *gin.Context) {
	gatewayID := c.Param("gateway_id")

	var req GatewayStatusRequest
	if err := gatewayStatusRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	var emitted bool
	var err error
	if req.Status == "offline" {
		emitted, err = rs.Notify.Hooks.NotifyGatewayOffline(c.Request.Context(), gatewayID, req.AffectedDevices)
	} else {
		emitted, err = rs.Notify.Hooks.NotifyGatewayOnline(c.Request.Context(), gatewayID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"emitted": emitted})
}

type FcmTokenRequest struct {
	FcmToken string `json:"fcm_token"`
}

var fcmTokenRequestSchema = z.Struct(z.Shape{
	"FcmToken": z.String().Min(1).Required(),
})

func (rs *RestfulServer) RegisterFcmToken(c *gin.Context) {
	userID := c.Param("user_id")

	var req FcmTokenRequest
	if err := fcmTokenRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	if err := rs.Notify.Recipient.RegisterToken(userID, req.FcmToken); err != nil {
		if errors.Is(err, notify.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "FCM token registered successfully", "user_id": userID})
}

func (rs *RestfulServer) RemoveFcmToken(c *gin.Context) {
	userID := c.Param("user_id")

	if err := rs.Notify.Recipient.ClearToken(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "FCM token removed successfully"})
}

type NotificationResponse struct {
	ID           uint              `json:"id"`
	UserID       string            `json:"user_id"`
	Kind         string            `json:"notification_type"`
	Priority     string            `json:"priority"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	DeviceID     string            `json:"device_id,omitempty"`
	GatewayID    string            `json:"gateway_id,omitempty"`
	EKeyID       string            `json:"ekey_id,omitempty"`
	Status       string            `json:"status"`
	FcmMessageID string            `json:"fcm_message_id,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
	SentAt       *time.Time        `json:"sent_at"`
	ReadAt       *time.Time        `json:"read_at"`
	CreatedAt    time.Time         `json:"created_at"`
}

func toNotificationResponse(n models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:           n.ID,
		UserID:       n.UserID,
		Kind:         n.Kind,
		Priority:     string(n.Priority),
		Title:        n.Title,
		Body:         n.Body,
		DeviceID:     n.DeviceID,
		GatewayID:    n.GatewayID,
		EKeyID:       n.EKeyID,
		Status:       string(n.Status),
		FcmMessageID: n.FcmMessageID,
		Data:         n.Data,
		SentAt:       n.SentAt,
		ReadAt:       n.ReadAt,
		CreatedAt:    n.CreatedAt,
	}
}

func (rs *RestfulServer) ListNotifications(c *gin.Context) {
	userID := c.Param("user_id")

	unreadOnly := c.DefaultQuery("unread_only", "false") == "true"

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer in [1,100]"})
		return
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	notifications, err := rs.Notify.Notification.ListForUser(userID, unreadOnly, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, common.Mapper(notifications, toNotificationResponse))
}

func (rs *RestfulServer) MarkRead(c *gin.Context) {
	userID := c.Param("user_id")

	notificationID, err := strconv.ParseUint(c.Param("notification_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notification_id must be an integer"})
		return
	}

	if err := rs.Notify.Notification.MarkRead(uint(notificationID), userID); err != nil {
		if errors.Is(err, notify.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found or access denied"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read", "notification_id": notificationID})
}

func (rs *RestfulServer) MarkAllRead(c *gin.Context) {
	userID := c.Param("user_id")

	count, err := rs.Notify.Notification.MarkAllRead(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "count": count})
}

func (rs *RestfulServer) NotificationStats(c *gin.Context) {
	userID := c.Param("user_id")

	stats, err := rs.Notify.Notification.Stats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

type TestNotificationRequest struct {
	NotificationType string `json:"notification_type"`
	DeviceID         string `json:"device_id"`
	DeviceName       string `json:"device_name"`
	BatteryLevel     int    `json:"battery_level"`
	GatewayID        string `json:"gateway_id"`
	GatewayName      string `json:"gateway_name"`
}

var testNotificationRequestSchema = z.Struct(z.Shape{
	"NotificationType": z.String().Min(1).Required(),
	"DeviceID":         z.String(),
	"DeviceName":       z.String(),
	"BatteryLevel":     z.Int().GTE(0).LTE(100),
	"GatewayID":        z.String(),
	"GatewayName":      z.String(),
})

// TestNotification exercises the delivery path end to end. Debug mode only.
func (rs *RestfulServer) TestNotification(c *gin.Context) {
	if !rs.Debug {
		c.JSON(http.StatusForbidden, gin.H{"error": "test notifications are only available in debug mode"})
		return
	}

	userID := c.Param("user_id")

	var req TestNotificationRequest
	if err := testNotificationRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	kind, err := message.ParseKind(req.NotificationType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notification, err := rs.Notify.Notification.CreateAndSend(c.Request.Context(), userID, kind, message.Context{
		DeviceID:     req.DeviceID,
		DeviceName:   req.DeviceName,
		BatteryLevel: req.BatteryLevel,
		GatewayID:    req.GatewayID,
		GatewayName:  req.GatewayName,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if notification == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user has no FCM token registered"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Test notification sent",
		"notification_id":   notification.ID,
		"notification_type": notification.Kind,
		"status":            notification.Status,
	})
}

type LimiterRequest struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"rate":  z.Float64().Required(),
	"burst": z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	deviceID := c.Param("device_id")

	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.SetLimiter(deviceID, req.Rate, req.Burst)

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
