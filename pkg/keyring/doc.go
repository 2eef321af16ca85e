/*
Package keyring persists the encryption and integrity key pair used by the price package.

A Pair may be stored in the clear (for use with a secret manager that already protects files at rest), or locked with a passphrase.

# How it works:

Every keyring starts with a small header: a magic number, a format version, and flags.
A plain keyring is followed by the 64 bytes of key material.

A locked keyring derives an AES-256 key from the passphrase with scrypt, using a random salt.
The scrypt tuning values and salt are stored after the header, so the same key can be derived later with only the passphrase.
The key material is sealed with AES-256-GCM, with the header and tuning values used as additional data so they can't be altered undetected.

# General guidelines:
  - Prefer Lock over MarshalBinary for any keyring that will be written to shared storage.
  - The default tuning values are appropriate for infrequent unlocking, like process startup. Use SetShortDelayIterations if keys are unlocked interactively.
  - If you're not an expert, then don't use SetIterations, SetCPUCost, or SetRelativeBlockSize.
  - Call Pair.Wipe once the keys have been handed to a price.Encoder.
*/
package keyring
