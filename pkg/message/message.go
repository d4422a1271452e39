// Package message builds the push payload (title, body, data, priority)
// for each notification kind. The kind set is closed: Build switches
// exhaustively and rejects anything else, so adding a kind is a
// compile-time-visible change here and nowhere else.
package message

import (
	"fmt"
	"strconv"
)

const AppName = "Simpled Alert"

type Kind string

const (
	// Device events
	KindLowBattery   Kind = "low_battery" // only HIGH priority kind
	KindDeviceUnlock Kind = "device_unlock"
	KindDeviceLock   Kind = "device_lock"

	// E-key events
	KindEKeyShared  Kind = "ekey_shared"
	KindEKeyRevoked Kind = "ekey_revoked"

	// Gateway events
	KindGatewayOffline Kind = "gateway_offline"
	KindGatewayOnline  Kind = "gateway_online"

	// Security events
	KindSecurityAlert Kind = "security_alert"

	// User account events
	KindNewDeviceLogin Kind = "new_device_login"
)

// ParseKind validates an externally supplied kind string.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindLowBattery, KindDeviceUnlock, KindDeviceLock,
		KindEKeyShared, KindEKeyRevoked,
		KindGatewayOffline, KindGatewayOnline,
		KindSecurityAlert, KindNewDeviceLogin:
		return k, nil
	}
	return "", fmt.Errorf("unknown notification kind: %q", s)
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// Priority returns the FCM priority for the kind. Low battery is the only
// high-priority kind.
func (k Kind) Priority() Priority {
	if k == KindLowBattery {
		return PriorityHigh
	}
	return PriorityNormal
}

// Context carries the event details a builder may reference. Builders fall
// back to generic wording for fields the event did not set.
type Context struct {
	DeviceID     string
	DeviceName   string
	BatteryLevel int

	UserName string
	Method   string

	EKeyID     string
	IssuerName string

	GatewayID       string
	GatewayName     string
	AffectedDevices int

	AttemptCount int
	AttemptType  string

	DeviceInfo string
	Location   string
	IPAddress  string

	Timestamp string
}

type Message struct {
	Title    string
	Body     string
	Data     map[string]string
	Priority Priority
}

// Build renders the payload for a kind. Data values are always strings, as
// FCM requires.
func Build(kind Kind, ctx Context) (Message, error) {
	switch kind {
	case KindLowBattery:
		return buildLowBattery(ctx), nil
	case KindDeviceUnlock:
		return buildDeviceUnlock(ctx), nil
	case KindDeviceLock:
		return buildDeviceLock(ctx), nil
	case KindEKeyShared:
		return buildEKeyShared(ctx), nil
	case KindEKeyRevoked:
		return buildEKeyRevoked(ctx), nil
	case KindGatewayOffline:
		return buildGatewayOffline(ctx), nil
	case KindGatewayOnline:
		return buildGatewayOnline(ctx), nil
	case KindSecurityAlert:
		return buildSecurityAlert(ctx), nil
	case KindNewDeviceLogin:
		return buildNewDeviceLogin(ctx), nil
	default:
		return Message{}, fmt.Errorf("unknown notification kind: %q", kind)
	}
}

func deviceNameOr(ctx Context, fallback string) string {
	if ctx.DeviceName == "" {
		return fallback
	}
	return ctx.DeviceName
}

func gatewayNameOr(ctx Context, fallback string) string {
	if ctx.GatewayName == "" {
		return fallback
	}
	return ctx.GatewayName
}

func buildLowBattery(ctx Context) Message {
	deviceName := deviceNameOr(ctx, "Your device")
	return Message{
		Title: "⚠️ Low Battery Alert",
		Body:  fmt.Sprintf("%s battery is at %d%%. Please replace soon.", deviceName, ctx.BatteryLevel),
		Data: map[string]string{
			"notification_type": string(KindLowBattery),
			"device_id":         ctx.DeviceID,
			"battery_level":     strconv.Itoa(ctx.BatteryLevel),
			"device_name":       deviceName,
			"timestamp":         ctx.Timestamp,
		},
		Priority: PriorityHigh,
	}
}

func buildDeviceUnlock(ctx Context) Message {
	deviceName := deviceNameOr(ctx, "Your device")
	userName := ctx.UserName
	if userName == "" {
		userName = "Someone"
	}
	method := ctx.Method
	if method == "" {
		method = "unknown"
	}
	return Message{
		Title: "🔓 Device Unlocked",
		Body:  fmt.Sprintf("%s was unlocked by %s via %s", deviceName, userName, method),
		Data: map[string]string{
			"notification_type": string(KindDeviceUnlock),
			"device_id":         ctx.DeviceID,
			"user_name":         userName,
			"method":            method,
			"timestamp":         ctx.Timestamp,
		},
		Priority: PriorityNormal,
	}
}

func buildDeviceLock(ctx Context) Message {
	deviceName := deviceNameOr(ctx, "Your device")
	return Message{
		Title: "🔒 Device Locked",
		Body:  fmt.Sprintf("%s has been locked", deviceName),
		Data: map[string]string{
			"notification_type": string(KindDeviceLock),
			"device_id":         ctx.DeviceID,
			"device_name":       deviceName,
			"timestamp":         ctx.Timestamp,
		},
		Priority: PriorityNormal,
	}
}

func buildEKeyShared(ctx Context) Message {
	deviceName := deviceNameOr(ctx, "A device")
	issuerName := ctx.IssuerName
	if issuerName == "" {
		issuerName = "Someone"
	}
	return Message{
		Title: "🔑 Access Shared",
		Body:  fmt.Sprintf("%s shared access to %s with you", issuerName, deviceName),
		Data: map[string]string{
			"notification_type": string(KindEKeyShared),
			"device_id":         ctx.DeviceID,
			"ekey_id":           ctx.EKeyID,
			"issuer_name":       issuerName,
			"device_name":       deviceName,
		},
		Priority: PriorityNormal,
	}
}

func buildEKeyRevoked(ctx Context) Message {
	deviceName := deviceNameOr(ctx, "A device")
	return Message{
		Title: "🔑 Access Revoked",
		Body:  fmt.Sprintf("Your access to %s has been revoked", deviceName),
		Data: map[string]string{
			"notification_type": string(KindEKeyRevoked),
			"device_id":         ctx.DeviceID,
			"device_name":       deviceName,
		},
		Priority: PriorityNormal,
	}
}

func buildGatewayOffline(ctx Context) Message {
	gatewayName := gatewayNameOr(ctx, "Your gateway")
	return Message{
		Title: "📡 Gateway Offline",
		Body:  fmt.Sprintf("%s is offline. %d devices affected.", gatewayName, ctx.AffectedDevices),
		Data: map[string]string{
			"notification_type": string(KindGatewayOffline),
			"gateway_id":        ctx.GatewayID,
			"gateway_name":      gatewayName,
			"affected_devices":  strconv.Itoa(ctx.AffectedDevices),
		},
		Priority: PriorityNormal,
	}
}

func buildGatewayOnline(ctx Context) Message {
	gatewayName := gatewayNameOr(ctx, "Your gateway")
	return Message{
		Title: "📡 Gateway Online",
		Body:  fmt.Sprintf("%s is back online", gatewayName),
		Data: map[string]string{
			"notification_type": string(KindGatewayOnline),
			"gateway_id":        ctx.GatewayID,
			"gateway_name":      gatewayName,
		},
		Priority: PriorityNormal,
	}
}

func buildSecurityAlert(ctx Context) Message {
	deviceName := deviceNameOr(ctx, "Your device")
	attemptType := ctx.AttemptType
	if attemptType == "" {
		attemptType = "unknown"
	}
	return Message{
		Title: "🚨 Security Alert",
		Body:  fmt.Sprintf("Unauthorized access attempts detected on %s (%dx)", deviceName, ctx.AttemptCount),
		Data: map[string]string{
			"notification_type": string(KindSecurityAlert),
			"device_id":         ctx.DeviceID,
			"device_name":       deviceName,
			"attempt_count":     strconv.Itoa(ctx.AttemptCount),
			"attempt_type":      attemptType,
		},
		Priority: PriorityNormal,
	}
}

func buildNewDeviceLogin(ctx Context) Message {
	deviceInfo := ctx.DeviceInfo
	if deviceInfo == "" {
		deviceInfo = "Unknown device"
	}
	location := ctx.Location
	if location == "" {
		location = "Unknown location"
	}
	return Message{
		Title: "🔐 New Device Login",
		Body:  fmt.Sprintf("Login detected from %s at %s", deviceInfo, location),
		Data: map[string]string{
			"notification_type": string(KindNewDeviceLogin),
			"device_info":       deviceInfo,
			"location":          location,
			"ip_address":        ctx.IPAddress,
		},
		Priority: PriorityNormal,
	}
}
