//go:build (amd64 || 386 || arm || mips || mipsle || wasm) && !event_disable_padding && !event_enable_padding

package opt

// Pad_ is empty by default for:
// - amd64
// - 32-bit architectures (386, arm, mips, mipsle, wasm)
type Pad_ struct{}

const Padded_ = false
