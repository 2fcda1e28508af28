package domain

// Action is the primary thing a user can do next with an integration card.
type Action string

const (
	ActionConnect   Action = "Connect"
	ActionReconnect Action = "Reconnect"
	ActionConfigure Action = "Configure"
)

const comingSoonLabel = "Coming Soon"

// StatusLabel maps a raw status to the text shown on a card.
func StatusLabel(status string) string {
	switch Status(status) {
	case StatusActive:
		return "In Sync"
	case StatusExpired:
		return "Action Required"
	case StatusError:
		return "Error"
	case StatusDisconnected:
		return "Disconnected"
	}
	return "Unknown"
}

// PrimaryAction maps a raw status to the next action. Unknown statuses map to
// Connect.
func PrimaryAction(status string) Action {
	switch Status(status) {
	case StatusActive:
		return ActionConfigure
	case StatusExpired, StatusError:
		return ActionReconnect
	}
	return ActionConnect
}

// ToggleOn reports whether the enable switch is shown as on for a status.
func ToggleOn(status string) bool {
	switch Status(status) {
	case StatusActive, StatusExpired, StatusError:
		return true
	}
	return false
}
