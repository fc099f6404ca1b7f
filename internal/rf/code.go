// internal/rf/code.go
package rf

// Code is one decoded remote transmission.
// The decoder emits 0 when it could not decode a transmission, so 0 is
// reserved and never a valid learned code.
type Code uint32

// None is the reserved "no signal / undecodable" value.
const None Code = 0
