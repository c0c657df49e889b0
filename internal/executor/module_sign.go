package executor

import (
	"bytes"
	"strings"

	"github.com/BrettMayson/hemtt/internal/addon"
	"github.com/BrettMayson/hemtt/internal/pbo"
	"github.com/BrettMayson/hemtt/internal/sign"
	"github.com/BrettMayson/hemtt/internal/workspace"
)

// keyNotFoundError reports a configured signing key path that has no
// file on disk.
type keyNotFoundError struct{ path string }

func (e *keyNotFoundError) Error() string { return "no such key file: " + e.path }

// SignModule detaches a .bisign signature for each addon's built PBO
// during PostBuild (after BuildModule has packaged it), using the
// project's configured signing authority and private key. A project
// with no signing.key configured is left unsigned.
type SignModule struct {
	KeyPath string
	Version sign.Version
}

func (SignModule) Name() string { return "sign" }

func (m SignModule) PostBuild(ctx *Context) Report {
	if m.KeyPath == "" {
		return Report{}
	}
	keyPath := ctx.Workspace.Root().Join(m.KeyPath)
	if !keyPath.Exists() {
		var r Report
		r.AddError(wrapErr("sign", "loading key", &keyNotFoundError{path: m.KeyPath}))
		return r
	}
	text, err := keyPath.ReadToString()
	if err != nil {
		var r Report
		r.AddError(wrapErr("sign", "reading key", err))
		return r
	}
	priv, err := sign.ReadPrivateKey(strings.NewReader(text))
	if err != nil {
		var r Report
		r.AddError(wrapErr("sign", "parsing key", err))
		return r
	}

	return ParallelAddons(ctx.Addons, func(a *addon.Addon) Report {
		return signAddon(priv, m.Version, ctx.BuildFolder, a)
	})
}

func signAddon(priv *sign.PrivateKey, version sign.Version, buildFolder *workspace.Path, a *addon.Addon) Report {
	var r Report
	pboPath := buildFolder.Join("addons").Join(a.PBOName())
	if !pboPath.Exists() {
		return r
	}
	text, err := pboPath.ReadToString()
	if err != nil {
		r.AddError(wrapErr(a.Name, "reading PBO for signing", err))
		return r
	}
	p, err := pbo.Read(strings.NewReader(text))
	if err != nil {
		r.AddError(wrapErr(a.Name, "parsing PBO for signing", err))
		return r
	}

	prefix, _ := a.Prefix()
	sig, err := sign.Sign(priv, p, prefix, version)
	if err != nil {
		r.AddError(wrapErr(a.Name, "signing", err))
		return r
	}

	var buf bytes.Buffer
	if err := sign.WriteSignature(&buf, sig); err != nil {
		r.AddError(wrapErr(a.Name, "encoding signature", err))
		return r
	}
	sigPath := buildFolder.Join("addons").Join(a.PBOName() + ".bisign")
	if err := sigPath.CreateFile(buf.Bytes()); err != nil {
		r.AddError(wrapErr(a.Name, "writing signature", err))
	}
	return r
}
