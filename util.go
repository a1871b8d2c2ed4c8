package event

import "fmt"

// noCopy may be added to structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
//
// Note that it must not be embedded, due to the Lock and Unlock methods.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// badState aborts on a state word outside the three defined values. Going on
// would risk corrupting the waiter list or hanging waiters forever.
func badState(s uint32) {
	panic(fmt.Sprintf("event: invalid state %d", s))
}
