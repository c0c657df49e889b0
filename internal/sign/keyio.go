package sign

import (
	"bufio"
	"bytes"
	"crypto/rsa"
	"io"
	"math/big"

	"golang.org/x/xerrors"
)

const totallySecure = "TotallySecure"

// publicBlock is the shared header both the public key file and every
// signature file embed: the TotallySecure marker, a declared block
// length, the magic repeated, the modulus bit length, the exponent, and
// the modulus itself as a length-prefixed little-endian integer.
func writePublicBlock(w io.Writer, n *big.Int, e int) error {
	nBytes := lenPrefixedLE(n)

	var hdr bytes.Buffer
	putU32v(&hdr, keyMagic)
	if err := writeCString(&hdr, totallySecure); err != nil {
		return err
	}
	putU32v(&hdr, uint32(8+len(nBytes)))
	putU32v(&hdr, keyMagic)
	putU32v(&hdr, uint32(bits))
	putU32v(&hdr, uint32(e))
	hdr.Write(nBytes)

	_, err := w.Write(hdr.Bytes())
	return err
}

func putU32v(w *bytes.Buffer, v uint32) {
	var b [4]byte
	putU32(b[:], v)
	w.Write(b[:])
}

func readPublicBlock(r *bufio.Reader) (n *big.Int, e int, err error) {
	if err := expectU32(r, keyMagic); err != nil {
		return nil, 0, err
	}
	s, err := readCString(r)
	if err != nil {
		return nil, 0, err
	}
	if s != totallySecure {
		return nil, 0, xerrors.Errorf("sign: expected %q marker, got %q", totallySecure, s)
	}
	if _, err := readU32(r); err != nil { // declared block length, unused
		return nil, 0, err
	}
	if err := expectU32(r, keyMagic); err != nil {
		return nil, 0, err
	}
	if _, err := readU32(r); err != nil { // bit length, fixed at `bits`
		return nil, 0, err
	}
	eu, err := readU32(r)
	if err != nil {
		return nil, 0, err
	}
	nLen, err := readU32(r)
	if err != nil {
		return nil, 0, err
	}
	nBytes := make([]byte, nLen)
	if _, err := io.ReadFull(r, nBytes); err != nil {
		return nil, 0, err
	}
	return bigFromLE(nBytes), int(eu), nil
}

// WritePublicKey writes pub's .bikey encoding: authority cstring
// followed by the shared public block.
func WritePublicKey(w io.Writer, pub *PublicKey) error {
	if err := writeCString(w, pub.Authority); err != nil {
		return err
	}
	return writePublicBlock(w, pub.N, pub.E)
}

// ReadPublicKey parses a .bikey file.
func ReadPublicKey(r io.Reader) (*PublicKey, error) {
	br := bufio.NewReader(r)
	authority, err := readCString(br)
	if err != nil {
		return nil, xerrors.Errorf("sign: reading authority: %w", err)
	}
	n, e, err := readPublicBlock(br)
	if err != nil {
		return nil, xerrors.Errorf("sign: reading public block: %w", err)
	}
	return &PublicKey{Authority: authority, N: n, E: e}, nil
}

// WritePrivateKey writes priv's .biprivatekey encoding: the public block
// followed by the CRT components BI's format stores explicitly, each as
// a length-prefixed little-endian integer, in the order P, Q, Dp, Dq,
// Qinv, D.
func WritePrivateKey(w io.Writer, priv *PrivateKey) error {
	if err := writeCString(w, priv.Authority); err != nil {
		return err
	}
	k := priv.rsaKey
	if err := writePublicBlock(w, k.N, k.E); err != nil {
		return err
	}
	if len(k.Primes) != 2 {
		return xerrors.Errorf("sign: private key must have exactly two primes, got %d", len(k.Primes))
	}
	p, q := k.Primes[0], k.Primes[1]
	dp := new(big.Int).Mod(k.D, new(big.Int).Sub(p, big.NewInt(1)))
	dq := new(big.Int).Mod(k.D, new(big.Int).Sub(q, big.NewInt(1)))
	qinv := new(big.Int).ModInverse(q, p)

	for _, v := range []*big.Int{p, q, dp, dq, qinv, k.D} {
		if _, err := w.Write(lenPrefixedLE(v)); err != nil {
			return err
		}
	}
	return nil
}

// ReadPrivateKey parses a .biprivatekey file.
func ReadPrivateKey(r io.Reader) (*PrivateKey, error) {
	br := bufio.NewReader(r)
	authority, err := readCString(br)
	if err != nil {
		return nil, xerrors.Errorf("sign: reading authority: %w", err)
	}
	n, e, err := readPublicBlock(br)
	if err != nil {
		return nil, xerrors.Errorf("sign: reading public block: %w", err)
	}

	var comps [6]*big.Int
	for i := range comps {
		length, err := readU32(br)
		if err != nil {
			return nil, xerrors.Errorf("sign: reading private component %d length: %w", i, err)
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, xerrors.Errorf("sign: reading private component %d: %w", i, err)
		}
		comps[i] = bigFromLE(buf)
	}
	p, q, d := comps[0], comps[1], comps[5]

	k := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: n, E: e},
		D:         d,
		Primes:    []*big.Int{p, q},
	}
	k.Precompute()
	return &PrivateKey{Authority: authority, rsaKey: k}, nil
}

func writeCString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	_, err := w.Write([]byte{0})
	return err
}

func readCString(r *bufio.Reader) (string, error) {
	s, err := r.ReadString(0)
	if err != nil {
		return "", err
	}
	return s[:len(s)-1], nil
}

func readU32(r *bufio.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return getU32(b[:]), nil
}

func expectU32(r *bufio.Reader, want uint32) error {
	got, err := readU32(r)
	if err != nil {
		return err
	}
	if got != want {
		return xerrors.Errorf("sign: expected magic %#x, got %#x", want, got)
	}
	return nil
}
