// internal/writer/types.go
package writer

import (
	"context"
	"errors"
	"time"

	"github.com/tamzrod/discord-status/internal/status"
)

// ErrReportMissing marks an edit whose target report no longer exists
// remotely. The identity is kept; operators clear it to post a new one.
var ErrReportMissing = errors.New("writer: report no longer exists")

// Remote is the exact contract the publisher uses.
// Create returns the new report's identity.
type Remote interface {
	Ready() bool
	Create(ctx context.Context, doc status.Document) (string, error)
	Edit(ctx context.Context, messageID string, doc status.Document) error
}

// IdentityStore persists the report identity.
// MessageID must reflect a saved id even when persisting it failed,
// so one run never creates two reports.
type IdentityStore interface {
	MessageID() string
	SaveMessageID(ctx context.Context, id string) error
}

// Action is what a publish did remotely.
type Action int

const (
	Skipped Action = iota
	Created
	Edited
)

func (a Action) String() string {
	switch a {
	case Skipped:
		return "skipped"
	case Created:
		return "created"
	case Edited:
		return "edited"
	default:
		return "unknown"
	}
}

// Outcome is the result of one publish.
type Outcome struct {
	Status    status.Status
	Action    Action
	MessageID string
	Err       error
	At        time.Time
}

// OK reports whether the remote report now shows Status.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Action != Skipped
}
