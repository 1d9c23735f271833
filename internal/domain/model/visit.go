package model

import "strings"

// Page identifies which tracked page a visit landed on.
type Page string

// Tracked pages.
const (
	PageHome  Page = "home"
	PageStats Page = "stats"
)

// Pages lists the tracked pages in display order.
var Pages = []Page{PageHome, PageStats}

// ParsePage maps a raw page name to a Page. ok is false for untracked pages.
func ParsePage(s string) (Page, bool) {
	switch Page(strings.ToLower(strings.TrimSpace(s))) {
	case PageHome:
		return PageHome, true
	case PageStats:
		return PageStats, true
	}
	return "", false
}

// DeviceType classifies the client that produced a visit.
type DeviceType string

// Device types. Records written before device tracking existed carry no
// value and are read as DeviceUnknown.
const (
	DeviceMobile  DeviceType = "mobile"
	DeviceDesktop DeviceType = "desktop"
	DeviceUnknown DeviceType = "unknown"
)

// DeviceTypes lists the device types in display order.
var DeviceTypes = []DeviceType{DeviceMobile, DeviceDesktop, DeviceUnknown}

// ParseDeviceType maps a raw value to a DeviceType, defaulting to DeviceUnknown.
func ParseDeviceType(s string) DeviceType {
	switch DeviceType(strings.ToLower(strings.TrimSpace(s))) {
	case DeviceMobile:
		return DeviceMobile
	case DeviceDesktop:
		return DeviceDesktop
	}
	return DeviceUnknown
}

// VisitEvent is an immutable record of one page view.
type VisitEvent struct {
	ID         string     `json:"id,omitempty"`
	Timestamp  string     `json:"timestamp"` // ISO-8601, as stored
	Page       Page       `json:"page"`
	Category   string     `json:"category,omitempty"` // home page only
	DeviceType DeviceType `json:"device_type,omitempty"`
}

// Device returns the event's device type with legacy blanks normalized.
func (e VisitEvent) Device() DeviceType {
	return ParseDeviceType(string(e.DeviceType))
}
