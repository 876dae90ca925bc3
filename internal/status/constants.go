// internal/status/constants.go
package status

// Report appearance constants.
// These values define what operators see in the channel and MUST NOT be configurable.

// ---- STATUS ----

// Status is the lifecycle state a report describes.
type Status int

const (
	// Starting is published once, right after the connection is ready.
	Starting Status = iota
	// Online is published on every tick and always carries a snapshot.
	Online
	// Offline is published on shutdown, or when the server stops answering polls.
	Offline
)

func (s Status) String() string {
	switch s {
	case Starting:
		return "starting"
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return "unknown"
	}
}

// ---- COLORS (24-bit RGB) ----

const ColorGreen = 0x0FFF00
const ColorRed = 0xFF0000
const ColorYellow = 0xFFE000

// ---- FIELD NAMES ----

const FieldServerName = "Server Name"
const FieldPlatform = "Platform"
const FieldIP = "IP Address"
const FieldVersion = "Version"
const FieldPlayers = "Players"
const FieldWhitelist = "Whitelist"
const FieldUptime = "Uptime"

// ---- FIXED TEXT ----

// Footer is stamped on every report next to the timestamp.
const Footer = "Last Updated"

// NotAvailable replaces display fields the operator left empty.
const NotAvailable = "N/A"

const WhitelistOn = "On"
const WhitelistOff = "Off"

// ---- APPEARANCE TABLE ----

type appearance struct {
	color        int
	title        string
	wantSnapshot bool
}

// appearances is the single status -> visual mapping.
var appearances = map[Status]appearance{
	Online:   {color: ColorGreen, title: "✅ Server is Online", wantSnapshot: true},
	Offline:  {color: ColorRed, title: "❌ Server is Offline"},
	Starting: {color: ColorYellow, title: "⏳ Server is Starting..."},
}
