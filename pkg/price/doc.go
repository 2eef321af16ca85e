/*
Package price encrypts and decrypts winning price tokens as used in real-time bidding price confirmation.

A price is a signed 64-bit integer (typically micros of the account currency) that is hidden inside a 38 character, URL-safe token.
The token carries the price masked with a keyed pad, an initialization vector derived from the time the token was created, and a truncated integrity signature.
Both parties must hold the same encryption and integrity keys, each exactly 32 bytes.

# How it works:

On Encode, a 16 byte IV is produced from the current time as four big-endian int32 values: seconds, microseconds, seconds, microseconds.
An 8 byte pad is taken from HMAC-SHA1(encryption key, IV), and the big-endian price bytes are XOR'd with it.
A 4 byte signature is taken from HMAC-SHA1(integrity key, price bytes || IV).
The token is the URL-safe base64 encoding of IV || encrypted price || signature (28 bytes), without padding.

Decode reverses the process, recovers the price and the time embedded in the IV, and verifies the signature.
A token that fails verification returns ErrAuthentication, never a price.

# Important note:

The wire format is fixed for interoperability, so none of its parameters can be tuned.
The signature is only 4 bytes, so it detects tampering and key mismatches, but it is not a general purpose MAC.
There is no protection against replay; callers that care should track the embedded time.

# General guidelines:
  - Construct one Encoder per key pair and reuse it. It is safe for concurrent use.
  - Keys should come from a secure source, like GenKey or the keyring package.
  - Inject a Clock with WithClock for deterministic output in tests.
  - Call Wipe when the Encoder is no longer needed to zero its copy of the keys.
*/
package price
