/*
Package xor applies a one-shot pad to a fixed size payload with a bitwise XOR.

This is the masking step of a stream cipher: the pad must come from a keyed source (like an HMAC over a unique IV) to hide anything.
On its own, XOR is easily reversible and provides no integrity, so it should always be paired with a signature.

# How it works:

Each byte of the payload is XOR'd with the byte at the same position in the pad.
Unlike a repeating key, a pad is never reused within a payload, so the pad must be at least as long as the payload.
Applying the same pad a second time restores the original payload.
*/
package xor
