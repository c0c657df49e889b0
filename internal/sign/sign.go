// Package sign implements HEMTT's RSA-based PBO signer: 1024-bit
// BIPrivateKey/BIPublicKey generation and serialization, and the V2/V3
// .bisign signature chain, grounded on hemtt-sign/src/commands/keygen.rs
// and hemtt-sign/src/commands/sign.rs (the retrieved source pack carries
// the signer's CLI commands but not its BIPrivateKey model file, so the
// wire layout below follows the publicly documented Bohemia Interactive
// signing format directly, the same resolution internal/rapify applies
// to its own missing Class-Rapify source).
package sign

import (
	"crypto/rand"
	"crypto/rsa"
	"math/big"

	"golang.org/x/xerrors"
)

// keyMagic is the fixed marker BI's tooling writes twice in every key
// and signature file, surrounding the "TotallySecure" string.
const keyMagic = 0x06

// bits is the fixed RSA modulus size HEMTT keys use.
const bits = 1024

// PublicKey is a BIPublicKey: an authority name plus the RSA public
// parameters (N, E).
type PublicKey struct {
	Authority string
	N         *big.Int
	E         int
}

// PrivateKey is a BIPrivateKey: an authority name plus the full RSA
// private key, including the CRT components BI's wire format stores
// individually (P, Q, Dp, Dq, Qinv) rather than deriving them on load.
type PrivateKey struct {
	Authority string
	rsaKey    *rsa.PrivateKey
}

// GenerateKeyPair creates a fresh 1024-bit key pair for authority, the
// constructive counterpart to BIPrivateKey::generate.
func GenerateKeyPair(authority string) (*PrivateKey, error) {
	k, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, xerrors.Errorf("sign: generating key: %w", err)
	}
	k.Precompute()
	return &PrivateKey{Authority: authority, rsaKey: k}, nil
}

// Public returns the public half of priv.
func (priv *PrivateKey) Public() *PublicKey {
	return &PublicKey{
		Authority: priv.Authority,
		N:         priv.rsaKey.N,
		E:         priv.rsaKey.E,
	}
}

func lenPrefixedLE(v *big.Int) []byte {
	be := v.Bytes()
	le := make([]byte, len(be))
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	out := make([]byte, 4+len(le))
	putU32(out, uint32(len(le)))
	copy(out[4:], le)
	return out
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func bigFromLE(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	return new(big.Int).SetBytes(be)
}
