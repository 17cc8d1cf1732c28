package assistant

import "context"

// AttrLocation is the session-attribute key carrying the user's selected
// location, so intents like weather risk can reference it without the user
// spelling it out.
const AttrLocation = "currentLocation"

// Fixed user-facing replies for the distinguished failure categories. Callers
// render these instead of raw errors.
const (
	ReplyAccessDenied = "Error: Access denied when calling the assistant. Check credentials."
	ReplyBotNotFound  = "Error: Assistant bot or alias not found. Check configuration."
	ReplyGeneric      = "An error occurred communicating with the assistant."
	ReplyEmpty        = "Sorry, I didn't get a response. Try again."
)

// Engine produces assistant replies for one conversation turn. The call is
// total: it always returns at least one reply string, substituting a fixed
// fallback on any engine failure.
type Engine interface {
	Converse(ctx context.Context, sessionID, text string, attrs map[string]string) []string
}
