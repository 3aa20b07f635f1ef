package engine

import (
	"fmt"
	"strings"

	"github.com/probekit/appctl/internal/result"
)

// EmitEvents lists the desktop interaction events the emit surface
// recognizes. The surface itself is a deliberate placeholder: it
// exercises the result contract before any platform wiring exists.
var EmitEvents = []string{"tray-click", "deep-link", "file-drop", "app-focus"}

// Emit simulates a desktop interaction event.
//
// Until platform wiring lands, a recognized event yields
// error/UNIMPLEMENTED (known placeholder) in a session that could host
// one, and skip/UNSUPPORTED in a headless session where the capability
// is categorically absent. The two must stay distinguishable.
func Emit(event string, ec *Context) result.CommandResult {
	b := result.NewBuilder(ec.NewRunID(), "emit", ec.Env())

	if !isKnownEvent(event) {
		return b.Error(event, result.CodeInvalidInput,
			fmt.Sprintf("unknown event: %s (available: %s)", event, strings.Join(EmitEvents, ", ")))
	}

	if ec.Env().Headless {
		return b.Skip(event, result.CodeUnsupported,
			fmt.Sprintf("event %q unsupported in headless environment", event))
	}
	return b.Error(event, result.CodeUnimplemented,
		fmt.Sprintf("event %q is not yet implemented", event))
}

func isKnownEvent(event string) bool {
	for _, e := range EmitEvents {
		if e == event {
			return true
		}
	}
	return false
}
