package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/BrettMayson/hemtt/internal/sign"
	"golang.org/x/xerrors"
)

// cmdkeygen writes a fresh authority.biprivatekey / authority.bikey pair
// to the current directory.
func cmdkeygen(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return xerrors.New("usage: hemtt keygen <authority>")
	}
	authority := args[0]

	priv, err := sign.GenerateKeyPair(authority)
	if err != nil {
		return xerrors.Errorf("generating key pair: %w", err)
	}

	var privBuf bytes.Buffer
	if err := sign.WritePrivateKey(&privBuf, priv); err != nil {
		return xerrors.Errorf("encoding private key: %w", err)
	}
	if err := os.WriteFile(authority+".biprivatekey", privBuf.Bytes(), 0o600); err != nil {
		return xerrors.Errorf("writing private key: %w", err)
	}

	var pubBuf bytes.Buffer
	if err := sign.WritePublicKey(&pubBuf, priv.Public()); err != nil {
		return xerrors.Errorf("encoding public key: %w", err)
	}
	if err := os.WriteFile(authority+".bikey", pubBuf.Bytes(), 0o644); err != nil {
		return xerrors.Errorf("writing public key: %w", err)
	}

	fmt.Printf("wrote %s.biprivatekey and %s.bikey\n", authority, authority)
	return nil
}
