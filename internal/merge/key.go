package merge

import "credmerge/internal/parser"

// keySeparator cannot occur inside an identity, which ends at the first ':'.
const keySeparator = "::"

// IdentityKey is the deduplication key of a credential: identity and hash
// type, in that order.
type IdentityKey string

// KeyOf builds the key for an identity captured under hashType.
func KeyOf(identity, hashType string) IdentityKey {
	return IdentityKey(identity + keySeparator + hashType)
}

// KeyFor builds the key of a parsed credential.
func KeyFor(c parser.CapturedCredential) IdentityKey {
	return KeyOf(c.Identity, c.HashType)
}
