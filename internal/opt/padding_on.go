//go:build !(amd64 || 386 || arm || mips || mipsle || wasm) && !event_disable_padding && !event_enable_padding

package opt

// Pad_ fills the rest of the cache line after a 32-bit state word, so that
// lock-free readers of the word do not share a line with the slow-path mutex.
// Padding is automatically enabled for architectures that are NOT:
// - amd64 (x86_64): Hardware optimizations often make padding less critical
// - 32-bit architectures (386, arm, mips, mipsle, wasm): Smaller cache lines/memory constraints
//
// Enabled for: arm64, s390x, ppc64, ppc64le, riscv64, loong64, mips64, mips64le, etc.
type Pad_ [CacheLineSize_ - wordSize_]byte

const Padded_ = true
