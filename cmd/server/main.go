package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"simpled.xyz/notification-service/pkg/common"
	"simpled.xyz/notification-service/pkg/db"
	"simpled.xyz/notification-service/pkg/fcm"
	notifyHttp "simpled.xyz/notification-service/pkg/http"
	"simpled.xyz/notification-service/pkg/notify"
)

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	var dbInstance *db.DB
	notifyDbType := os.Getenv(common.EnvKeyNotifyDBType)
	switch notifyDbType {
	case "file":
		dbInstance = db.GetInstance(db.UseSqliteDialector())
	case "memory":
		dbInstance = db.GetInstance(db.UseMemorySqliteDialector())
	default:
		log.Fatal("Unknown NOTIFY_DB_TYPE: " + notifyDbType)
	}

	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyNotifyHttpHostPort))

	var defaultRate float64
	var defaultBurst int64

	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeyNotifyDefaultRate), 64); err != nil {
		log.Fatal("Invalid NOTIFY_DEFAULT_RATE, or not set in .env, should be a float64 value")
	}

	if defaultBurst, err = strconv.ParseInt(os.Getenv(common.EnvKeyNotifyDefaultBurst), 10, 64); err != nil {
		log.Fatal("Invalid NOTIFY_DEFAULT_BURST, or not set in .env, should be an int value")
	}

	logger := common.GetLogger()

	// The push client is constructed here and injected; nothing below this
	// layer initializes transport state on its own.
	var notifier fcm.Notifier
	if os.Getenv(common.EnvKeyNotifyFcmEnabled) == "true" {
		credentials := strings.TrimSpace(os.Getenv(common.EnvKeyNotifyFcmCredentials))
		client, err := fcm.NewClient(context.Background(), credentials)
		if err != nil {
			log.Fatalf("failed to initialize FCM client: %v", err)
		}
		notifier = client
	} else {
		logger.Warn("FCM disabled, push delivery is a no-op")
		notifier = fcm.Nop{}
	}

	notifyCore := notify.Notify{
		Db:       *dbInstance,
		Notifier: notifier,
	}
	notifyCore.WithServices(notify.ServiceOpts{
		Notification: notifyCore.GetINotification(),
		Tracker:      notifyCore.GetITracker(),
		Recipient:    notifyCore.GetIRecipient(),
		Hooks:        notifyCore.GetIHooks(),
	})

	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	logger.Info("Starting HTTP server on port " + httpHostPort)
	rs := &notifyHttp.RestfulServer{
		Server:           gin.Default(),
		Notify:           &notifyCore,
		RateLimiterStore: notify.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst)),
		Debug:            os.Getenv(common.EnvKeyNotifyDebug) == "true",
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.Float64("default_rate", defaultRate),
		zap.Int64("default_burst", defaultBurst))

	logger.Info("Starting HTTP server on: " + httpHostPort)
	if err := rs.Server.Run(httpHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}
