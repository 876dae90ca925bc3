// internal/status/render.go
package status

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrMissingSnapshot means Online was requested without a snapshot.
	// This is a caller bug, not a runtime condition.
	ErrMissingSnapshot = errors.New("status: online report requires a snapshot")
	ErrUnknownStatus   = errors.New("status: unknown status")
)

// Field is one name/value row of a report.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Document is a fully rendered report, ready for delivery.
type Document struct {
	Title     string
	Color     int
	Fields    []Field
	ImageURL  string
	Timestamp time.Time
	Footer    string
}

// Render converts a status (and, for Online, a snapshot) into a Document.
// No IO. No side effects.
// Offline and Starting ignore snap entirely.
func Render(st Status, snap *Snapshot, d Display, now time.Time) (Document, error) {
	look, ok := appearances[st]
	if !ok {
		return Document{}, fmt.Errorf("%w: %d", ErrUnknownStatus, int(st))
	}
	if look.wantSnapshot && snap == nil {
		return Document{}, ErrMissingSnapshot
	}

	doc := Document{
		Title:     look.title,
		Color:     look.color,
		Timestamp: now,
		Footer:    Footer,
	}

	// Static fields, present regardless of status.
	doc.Fields = append(doc.Fields,
		Field{Name: FieldServerName, Value: orNA(d.Name), Inline: true},
		Field{Name: FieldPlatform, Value: orNA(d.Platform), Inline: true},
		Field{Name: FieldIP, Value: "`" + orNA(d.IP) + "`", Inline: true},
	)

	if look.wantSnapshot {
		whitelist := WhitelistOff
		if snap.Whitelist {
			whitelist = WhitelistOn
		}
		doc.Fields = append(doc.Fields,
			Field{Name: FieldVersion, Value: orNA(snap.Version), Inline: true},
			Field{Name: FieldPlayers, Value: fmt.Sprintf("%d / %d", snap.OnlinePlayers, snap.MaxPlayers), Inline: true},
			Field{Name: FieldWhitelist, Value: whitelist, Inline: true},
			Field{Name: FieldUptime, Value: snap.Uptime, Inline: false},
		)
	}

	if url := strings.TrimSpace(d.BannerURL); url != "" {
		doc.ImageURL = url
	}

	return doc, nil
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
