package http

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"simpled.xyz/notification-service/pkg/notify"
)

type RestfulServer struct {
	Server           *gin.Engine
	Notify           *notify.Notify
	RateLimiterStore *notify.RateLimiterStore

	// Debug gates the test-notification endpoint.
	Debug bool
}

func (rs *RestfulServer) GetLimiter(deviceID string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(deviceID)
	}
}

func (rs *RestfulServer) CheckDeviceLimiter(deviceID string) bool {
	limiter := rs.GetLimiter(deviceID)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(deviceID string, deviceRate float64, deviceBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(deviceID, rate.Limit(deviceRate), deviceBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	users := rs.Server.Group("/v1/users/:user_id")
	{
		users.POST("/fcm_token", rs.RegisterFcmToken)
		users.DELETE("/fcm_token", rs.RemoveFcmToken)
		users.GET("/notifications", rs.ListNotifications)
		users.GET("/notifications/stats", rs.NotificationStats)
		users.PUT("/notifications/read_all", rs.MarkAllRead)
		users.PUT("/notifications/:notification_id/read", rs.MarkRead)
		users.POST("/test_notification", rs.TestNotification)
	}

	devices := rs.Server.Group("/devices/:device_id")
	{
		devices.POST("/battery", rs.PostBattery)
		devices.POST("/events", rs.PostDeviceEvent)
		devices.POST("/limiter", rs.PostLimiter)
	}

	gateways := rs.Server.Group("/gateways/:gateway_id")
	{
		gateways.POST("/status", rs.PostGatewayStatus)
	}
}
