package types

// Outcome is the decision rendered for a single password attempt.
type Outcome string

const (
	OutcomeGranted Outcome = "granted"
	OutcomeDenied  Outcome = "denied"
)

// AccessAttempt is one inbound password submission: the text the sender
// typed and the sender's messaging identity, used to address the outcome
// notification.  Attempts are ephemeral: produced by the gateway, consumed
// exactly once by the session coordinator, never stored.
type AccessAttempt struct {
	Text     string
	SenderID string
}
