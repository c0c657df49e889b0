package sign

import "fmt"

// HashMismatchError is returned when a verified signature's recomputed
// hash does not match the value the signature was produced against.
type HashMismatchError struct {
	Signed []byte
	Real   []byte
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("sign: hash mismatch: signed %x, recomputed %x", e.Signed, e.Real)
}

// AuthorityMismatchError is returned when a signature's embedded
// authority does not match the public key's authority.
type AuthorityMismatchError struct {
	Signed string
	Real   string
}

func (e *AuthorityMismatchError) Error() string {
	return fmt.Sprintf("sign: authority mismatch: signature says %q, key says %q", e.Signed, e.Real)
}

// UnknownVersionError is returned for a .bisign file whose version field
// is neither 2 nor 3.
type UnknownVersionError struct {
	Version uint32
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("sign: unknown BISign version %d", e.Version)
}
