//go:build event_enable_padding

package opt

// Pad_ fills the rest of the cache line after a 32-bit state word.
// Padding is force-enabled via the event_enable_padding build tag.
// Use: go build -tags=event_enable_padding
type Pad_ [CacheLineSize_ - wordSize_]byte

const Padded_ = true
