//go:build event_disable_padding

package opt

// Pad_ is empty.
// Padding is force-disabled via the event_disable_padding build tag.
// Use: go build -tags=event_disable_padding
type Pad_ struct{}

const Padded_ = false
