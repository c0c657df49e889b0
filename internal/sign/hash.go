package sign

import (
	"bufio"
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"io"

	"golang.org/x/xerrors"

	"github.com/BrettMayson/hemtt/internal/pbo"
)

// Version selects the BISign chain: V2 signs H1/H2 only, V3 adds H3.
type Version int

const (
	V2 Version = 2
	V3 Version = 3
)

// Signature is a parsed or freshly computed .bisign file.
type Signature struct {
	Authority string
	PublicKey PublicKey
	Version   Version
	Sig1      []byte
	Sig2      []byte
	Sig3      []byte // nil for V2
}

// hashes computes H1 (sorted file table), H2 (file table plus
// concatenated file bodies), and H3 (a prefix-derived string) — the
// three byte views a BISign chain is built over.
func hashes(p *pbo.PBO, prefix string) (h1, h2, h3 [20]byte) {
	table := p.FileTable()
	h1 = sha1.Sum(table)

	var body bytes.Buffer
	body.Write(table)
	for _, f := range p.SortedFiles() {
		body.Write(f.Data)
	}
	h2 = sha1.Sum(body.Bytes())

	h3 = sha1.Sum([]byte(prefix + "\\"))
	return
}

// Sign computes a V2 or V3 signature chain over p, using prefix (the
// addon's PBOPREFIX) as H3's input.
func Sign(priv *PrivateKey, p *pbo.PBO, prefix string, version Version) (*Signature, error) {
	h1, h2, h3 := hashes(p, prefix)

	sig1, err := rsa.SignPKCS1v15(nil, priv.rsaKey, crypto.SHA1, h1[:])
	if err != nil {
		return nil, xerrors.Errorf("sign: signing H1: %w", err)
	}
	sig2, err := rsa.SignPKCS1v15(nil, priv.rsaKey, crypto.SHA1, h2[:])
	if err != nil {
		return nil, xerrors.Errorf("sign: signing H2: %w", err)
	}

	sig := &Signature{
		Authority: priv.Authority,
		PublicKey: *priv.Public(),
		Version:   version,
		Sig1:      sig1,
		Sig2:      sig2,
	}
	if version == V3 {
		sig3, err := rsa.SignPKCS1v15(nil, priv.rsaKey, crypto.SHA1, h3[:])
		if err != nil {
			return nil, xerrors.Errorf("sign: signing H3: %w", err)
		}
		sig.Sig3 = sig3
	}
	return sig, nil
}

// Verify recomputes p's hashes from scratch and checks each one against
// sig using pub, rejecting on the first mismatch.
func Verify(pub *PublicKey, p *pbo.PBO, prefix string, sig *Signature) error {
	if sig.Authority != pub.Authority {
		return &AuthorityMismatchError{Signed: sig.Authority, Real: pub.Authority}
	}
	switch sig.Version {
	case V2, V3:
	default:
		return &UnknownVersionError{Version: uint32(sig.Version)}
	}

	h1, h2, h3 := hashes(p, prefix)
	rsaPub := &rsa.PublicKey{N: pub.N, E: pub.E}

	if err := rsa.VerifyPKCS1v15(rsaPub, crypto.SHA1, h1[:], sig.Sig1); err != nil {
		return &HashMismatchError{Signed: sig.Sig1, Real: h1[:]}
	}
	if err := rsa.VerifyPKCS1v15(rsaPub, crypto.SHA1, h2[:], sig.Sig2); err != nil {
		return &HashMismatchError{Signed: sig.Sig2, Real: h2[:]}
	}
	if sig.Version == V3 {
		if err := rsa.VerifyPKCS1v15(rsaPub, crypto.SHA1, h3[:], sig.Sig3); err != nil {
			return &HashMismatchError{Signed: sig.Sig3, Real: h3[:]}
		}
	}
	return nil
}

// WriteSignature writes sig's .bisign encoding.
func WriteSignature(w io.Writer, sig *Signature) error {
	if err := writeCString(w, sig.Authority); err != nil {
		return err
	}
	if err := writePublicBlock(w, sig.PublicKey.N, sig.PublicKey.E); err != nil {
		return err
	}
	var verBuf bytes.Buffer
	putU32v(&verBuf, uint32(sig.Version))
	if _, err := w.Write(verBuf.Bytes()); err != nil {
		return err
	}
	if _, err := w.Write(lenPrefixedBE(sig.Sig1)); err != nil {
		return err
	}
	if _, err := w.Write(lenPrefixedBE(sig.Sig2)); err != nil {
		return err
	}
	if sig.Version == V3 {
		if _, err := w.Write(lenPrefixedBE(sig.Sig3)); err != nil {
			return err
		}
	}
	return nil
}

// ReadSignature parses a .bisign file.
func ReadSignature(r io.Reader) (*Signature, error) {
	br := bufio.NewReader(r)
	authority, err := readCString(br)
	if err != nil {
		return nil, xerrors.Errorf("sign: reading authority: %w", err)
	}
	n, e, err := readPublicBlock(br)
	if err != nil {
		return nil, xerrors.Errorf("sign: reading public block: %w", err)
	}
	ver, err := readU32(br)
	if err != nil {
		return nil, xerrors.Errorf("sign: reading version: %w", err)
	}

	sig1, err := readLenPrefixed(br)
	if err != nil {
		return nil, xerrors.Errorf("sign: reading sig1: %w", err)
	}
	sig2, err := readLenPrefixed(br)
	if err != nil {
		return nil, xerrors.Errorf("sign: reading sig2: %w", err)
	}

	sig := &Signature{
		Authority: authority,
		PublicKey: PublicKey{Authority: authority, N: n, E: e},
		Version:   Version(ver),
		Sig1:      sig1,
		Sig2:      sig2,
	}
	switch sig.Version {
	case V2:
	case V3:
		sig3, err := readLenPrefixed(br)
		if err != nil {
			return nil, xerrors.Errorf("sign: reading sig3: %w", err)
		}
		sig.Sig3 = sig3
	default:
		return nil, &UnknownVersionError{Version: ver}
	}
	return sig, nil
}

func lenPrefixedBE(b []byte) []byte {
	out := make([]byte, 4+len(b))
	putU32(out, uint32(len(b)))
	copy(out[4:], b)
	return out
}

func readLenPrefixed(r *bufio.Reader) ([]byte, error) {
	length, err := readU32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
