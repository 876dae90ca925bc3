// internal/poller/minecraft/properties.go
package minecraft

import (
	"fmt"

	"github.com/magiconair/properties"
)

// WhitelistKey is the server.properties switch for the whitelist.
const WhitelistKey = "white-list"

// ReadWhitelist reads the whitelist flag from a server.properties file.
// The file is re-read on every call so operator edits show up live.
func ReadWhitelist(path string) (bool, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return false, fmt.Errorf("minecraft: read %s: %w", path, err)
	}
	return p.GetBool(WhitelistKey, false), nil
}
