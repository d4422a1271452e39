package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyNotifyDBType string = "NOTIFY_DB_TYPE"
	EnvKeyNotifyDbPath string = "NOTIFY_DB_PATH"

	EnvKeyNotifyHttpHostPort string = "NOTIFY_HTTP_HOST_PORT"

	EnvKeyNotifyFcmEnabled     string = "NOTIFY_FCM_ENABLED"
	EnvKeyNotifyFcmCredentials string = "NOTIFY_FCM_CREDENTIALS"

	EnvKeyNotifyDebug string = "NOTIFY_DEBUG"

	EnvKeyNotifyDefaultRate  string = "NOTIFY_DEFAULT_RATE"
	EnvKeyNotifyDefaultBurst string = "NOTIFY_DEFAULT_BURST"

	LoggerNameNotifyCore    string = "notify_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameFcmClient     string = "fcm_client"

	LoggerFieldNotifyCategory     string = "category"
	LoggerCategoryNotifyBattery   string = "battery"
	LoggerCategoryNotifyRecipient string = "recipient"
	LoggerCategoryNotifyDispatch  string = "dispatch"
	LoggerCategoryNotifyTracker   string = "tracker"
)
