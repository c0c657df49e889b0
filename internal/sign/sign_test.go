package sign

import (
	"bytes"
	"testing"

	"github.com/BrettMayson/hemtt/internal/pbo"
)

func testPBO() *pbo.PBO {
	p := pbo.New()
	p.SetProperty("prefix", "myaddon")
	p.AddFile("config.cpp", []byte("class CfgPatches {};"), 1000)
	p.AddFile("data/texture.paa", []byte{0x01, 0x02, 0x03}, 1001)
	return p
}

func TestKeyRoundTrip(t *testing.T) {
	priv, err := GenerateKeyPair("tester")
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	var privBuf bytes.Buffer
	if err := WritePrivateKey(&privBuf, priv); err != nil {
		t.Fatalf("WritePrivateKey: %v", err)
	}
	gotPriv, err := ReadPrivateKey(&privBuf)
	if err != nil {
		t.Fatalf("ReadPrivateKey: %v", err)
	}
	if gotPriv.Authority != priv.Authority || gotPriv.rsaKey.N.Cmp(priv.rsaKey.N) != 0 {
		t.Fatalf("private key round trip mismatch")
	}

	var pubBuf bytes.Buffer
	if err := WritePublicKey(&pubBuf, priv.Public()); err != nil {
		t.Fatalf("WritePublicKey: %v", err)
	}
	gotPub, err := ReadPublicKey(&pubBuf)
	if err != nil {
		t.Fatalf("ReadPublicKey: %v", err)
	}
	if gotPub.Authority != "tester" || gotPub.N.Cmp(priv.rsaKey.N) != 0 || gotPub.E != priv.rsaKey.E {
		t.Fatalf("public key round trip mismatch")
	}
}

func TestSignVerifyV3(t *testing.T) {
	priv, err := GenerateKeyPair("tester")
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	p := testPBO()

	sig, err := Sign(priv, p, "myaddon", V3)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig.Sig3 == nil {
		t.Fatal("expected V3 signature to include Sig3")
	}

	if err := Verify(priv.Public(), p, "myaddon", sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestSignVerifyV2(t *testing.T) {
	priv, _ := GenerateKeyPair("tester")
	p := testPBO()

	sig, err := Sign(priv, p, "myaddon", V2)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig.Sig3 != nil {
		t.Fatal("expected V2 signature to omit Sig3")
	}
	if err := Verify(priv.Public(), p, "myaddon", sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	priv, _ := GenerateKeyPair("tester")
	p := testPBO()
	sig, err := Sign(priv, p, "myaddon", V3)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteSignature(&buf, sig); err != nil {
		t.Fatalf("WriteSignature: %v", err)
	}
	got, err := ReadSignature(&buf)
	if err != nil {
		t.Fatalf("ReadSignature: %v", err)
	}
	if err := Verify(priv.Public(), p, "myaddon", got); err != nil {
		t.Fatalf("Verify round-tripped signature: %v", err)
	}
}

func TestVerifyDetectsTamperedPBO(t *testing.T) {
	priv, _ := GenerateKeyPair("tester")
	p := testPBO()
	sig, err := Sign(priv, p, "myaddon", V3)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tampered := testPBO()
	tampered.AddFile("extra.sqf", []byte("hint \"evil\";"), 1002)

	if err := Verify(priv.Public(), tampered, "myaddon", sig); err == nil {
		t.Fatal("expected verification of a tampered PBO to fail")
	}
}

func TestVerifyDetectsAuthorityMismatch(t *testing.T) {
	priv, _ := GenerateKeyPair("tester")
	other, _ := GenerateKeyPair("someone-else")
	p := testPBO()
	sig, err := Sign(priv, p, "myaddon", V3)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	err = Verify(other.Public(), p, "myaddon", sig)
	if _, ok := err.(*AuthorityMismatchError); !ok {
		t.Fatalf("expected AuthorityMismatchError, got %v", err)
	}
}
