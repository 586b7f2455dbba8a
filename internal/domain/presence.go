package domain

// DeviceClass is derived from the Device connection header; anything
// unrecognized collapses to DeviceWeb.
type DeviceClass string

const (
	DeviceWeb     DeviceClass = "Web"
	DeviceDesktop DeviceClass = "Desktop"
	DeviceMobile  DeviceClass = "Mobile"
	// DeviceOffline marks a known user with no live connection.
	DeviceOffline DeviceClass = ""
)

// ClassifyDevice maps the raw Device header to a DeviceClass.
func ClassifyDevice(header string) DeviceClass {
	switch DeviceClass(header) {
	case DeviceDesktop, DeviceMobile:
		return DeviceClass(header)
	}
	return DeviceWeb
}

// PresenceEntry is the canonical online row for one identity. A later
// connect for the same identity replaces the row, it never appends.
type PresenceEntry struct {
	Identity    Identity    `json:"username"`
	UserID      string      `json:"id"`
	DisplayName string      `json:"displayName"`
	Avatar      string      `json:"avatar"`
	CurrentRoom RoomName    `json:"currentRoom"`
	Device      DeviceClass `json:"device"`
}

// Offline returns a copy of the entry with the device cleared, the shape
// retained for the known-users view after a disconnect.
func (e *PresenceEntry) Offline() *PresenceEntry {
	cp := *e
	cp.Device = DeviceOffline
	cp.CurrentRoom = Lobby
	return &cp
}
