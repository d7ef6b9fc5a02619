package mtl

import "crypto/rand"

// UnderlyingSigner is the external SLH-DSA / SPHINCS+ collaborator a
// LibraryKey delegates expensive whole-ladder signatures to. Production
// callers wire this to liboqs or a native Go SLH-DSA implementation;
// this package never implements keygen/sign/verify itself (SPEC_FULL.md
// §1 "Out of scope").
type UnderlyingSigner interface {
	GenerateKey() (public, secret []byte, err error)
	Sign(secret, message []byte) (signature []byte, err error)
	Verify(public, message, signature []byte) (bool, error)
}

// HMACSigner is an UnderlyingSigner that "signs" by HMAC-SHA256'ing the
// message under the secret key, and treats the public key as the
// corresponding HMAC key. No post-quantum signature library appears
// anywhere in the example pack (the closest, nomasters-sphincs256, has
// no go.mod and is reference-only), so HMACSigner stands in as the
// default collaborator: it exercises the façade's plumbing (ladder
// signing, condensed vs. full assembly, CLI wiring) end-to-end without
// requiring liboqs or a native SLH-DSA implementation.
type HMACSigner struct{}

func (HMACSigner) GenerateKey() (public, secret []byte, err error) {
	secret = make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, nil, wrapErrorf(err, StatusResourceFail, "HMACSigner.GenerateKey: rand.Read failed")
	}
	public = append([]byte{}, secret...)
	return public, secret, nil
}

func (HMACSigner) Sign(secret, message []byte) ([]byte, error) {
	if secret == nil {
		return nil, errorf(StatusSignFail, "HMACSigner.Sign: secret key is required")
	}
	return hmacSHA256(secret, message), nil
}

func (HMACSigner) Verify(public, message, signature []byte) (bool, error) {
	if public == nil {
		return false, errorf(StatusIndeterminate, "HMACSigner.Verify: public key is required")
	}
	want := hmacSHA256(public, message)
	if len(want) != len(signature) {
		return false, nil
	}
	diff := byte(0)
	for i := range want {
		diff |= want[i] ^ signature[i]
	}
	return diff == 0, nil
}
