package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusRead    Status = "read"
)

// StringMap is a map[string]string stored as a JSON text column. FCM
// requires all data payload values to be strings.
type StringMap map[string]string

func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *StringMap) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into StringMap", src)
	}
}

type User struct {
	ID                string `gorm:"primaryKey"`
	Name              string
	FcmToken          string
	FcmTokenUpdatedAt *time.Time
	CreatedAt         time.Time

	Devices  []Device  `gorm:"foreignKey:UserID;references:ID"`
	Gateways []Gateway `gorm:"foreignKey:UserID;references:ID"`
}

type Device struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	UserID    string `gorm:"index"`
	GatewayID string `gorm:"index"`
	CreatedAt time.Time
}

type Gateway struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	UserID    string `gorm:"index"`
	CreatedAt time.Time
}

type Notification struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       string `gorm:"index:idx_notification_user_created"`
	Kind         string `gorm:"type:varchar(50);index"`
	Priority     Priority
	Title        string
	Body         string
	DeviceID     string `gorm:"index"`
	GatewayID    string
	EKeyID       string
	Status       Status `gorm:"type:varchar(20);index;default:pending"`
	FcmMessageID string
	SentAt       *time.Time
	ReadAt       *time.Time
	Data         StringMap `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"index:idx_notification_user_created"`
}

// DeliveryLog is the audit trail of push delivery attempts, one row per
// attempt (the transport makes a single best-effort attempt per send).
type DeliveryLog struct {
	ID             uint `gorm:"primaryKey"`
	NotificationID uint `gorm:"index"`
	AttemptNumber  int  `gorm:"default:1"`
	FcmResponse    string
	Status         Status `gorm:"type:varchar(20)"`
	ErrorMessage   string
	AttemptedAt    time.Time
}

// BatteryAlertTracker holds the per-device state the low-battery cooldown
// logic reads and writes. At most one row exists per device; its fields
// only move when an alert is actually emitted, never on a suppressed check.
type BatteryAlertTracker struct {
	ID                  uint   `gorm:"primaryKey"`
	DeviceID            string `gorm:"uniqueIndex"`
	LastAlertAt         time.Time
	BatteryLevelAtAlert int
	AlertCount          int
	AlertThreshold      int `gorm:"default:20"`
	CooldownHours       int `gorm:"default:24"`
	MinDrop             int `gorm:"default:5"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
