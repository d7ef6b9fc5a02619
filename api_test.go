package mtl

import "testing"

func TestKeyNewSignAndVerifyFullSig(t *testing.T) {
	var signer HMACSigner
	k, err := KeyNew("SLH-DSA-MTL-SHAKE-128S", []byte("unit-test"), signer)
	if err != nil {
		t.Fatalf("KeyNew: %v", err)
	}

	messages := [][]byte{[]byte("first"), []byte("second"), []byte("third"), []byte("fourth")}
	handles := make([]*Handle, len(messages))
	for i, m := range messages {
		h, err := k.SignAppend(m)
		if err != nil {
			t.Fatalf("SignAppend(%d): %v", i, err)
		}
		handles[i] = h
	}

	for i, m := range messages {
		sig, err := k.SignGetFullSig(handles[i])
		if err != nil {
			t.Fatalf("SignGetFullSig(%d): %v", i, err)
		}
		ok, err := k.Verify(m, sig, nil)
		if err != nil {
			t.Fatalf("Verify(%d): %v", i, err)
		}
		if !ok {
			t.Fatalf("Verify(%d) = false, want true", i)
		}
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	var signer HMACSigner
	k, err := KeyNew("SLH-DSA-MTL-SHAKE-128S", nil, signer)
	if err != nil {
		t.Fatalf("KeyNew: %v", err)
	}
	h, err := k.SignAppend([]byte("genuine"))
	if err != nil {
		t.Fatalf("SignAppend: %v", err)
	}
	sig, err := k.SignGetFullSig(h)
	if err != nil {
		t.Fatalf("SignGetFullSig: %v", err)
	}
	ok, err := k.Verify([]byte("forged"), sig, nil)
	if err == nil && ok {
		t.Fatalf("Verify accepted a tampered message")
	}
}

func TestVerifyCondensedWithTrustedLadder(t *testing.T) {
	var signer HMACSigner
	k, err := KeyNew("SLH-DSA-MTL-SHA2-128S", nil, signer)
	if err != nil {
		t.Fatalf("KeyNew: %v", err)
	}
	h, err := k.SignAppend([]byte("leaf zero"))
	if err != nil {
		t.Fatalf("SignAppend: %v", err)
	}
	condensed, err := k.SignGetCondensedSig(h)
	if err != nil {
		t.Fatalf("SignGetCondensedSig: %v", err)
	}
	signedLadder, err := k.SignGetSignedLadder()
	if err != nil {
		t.Fatalf("SignGetSignedLadder: %v", err)
	}
	wireLadder, _, err := splitSignedLadder(signedLadder)
	if err != nil {
		t.Fatalf("splitSignedLadder: %v", err)
	}
	ok, err := k.Verify([]byte("leaf zero"), condensed, wireLadder)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("Verify(condensed, trusted ladder) = false, want true")
	}
}

func TestVerifyCondensedWithoutLadderFails(t *testing.T) {
	var signer HMACSigner
	k, err := KeyNew("SLH-DSA-MTL-SHA2-128S", nil, signer)
	if err != nil {
		t.Fatalf("KeyNew: %v", err)
	}
	h, err := k.SignAppend([]byte("leaf zero"))
	if err != nil {
		t.Fatalf("SignAppend: %v", err)
	}
	condensed, err := k.SignGetCondensedSig(h)
	if err != nil {
		t.Fatalf("SignGetCondensedSig: %v", err)
	}
	if _, err := k.Verify([]byte("leaf zero"), condensed, nil); err == nil {
		t.Fatalf("expected StatusNoLadder error verifying condensed sig with no ladder")
	}
}

func TestVerifySignedLadderStandalone(t *testing.T) {
	var signer HMACSigner
	k, err := KeyNew("SLH-DSA-MTL-SHAKE-128S", nil, signer)
	if err != nil {
		t.Fatalf("KeyNew: %v", err)
	}
	if _, err := k.SignAppend([]byte("a")); err != nil {
		t.Fatalf("SignAppend: %v", err)
	}
	signedLadder, err := k.SignGetSignedLadder()
	if err != nil {
		t.Fatalf("SignGetSignedLadder: %v", err)
	}
	ok, err := k.VerifySignedLadder(signedLadder)
	if err != nil {
		t.Fatalf("VerifySignedLadder: %v", err)
	}
	if !ok {
		t.Fatalf("VerifySignedLadder = false, want true")
	}
}

func TestKeyToBufferFromBufferRoundTrip(t *testing.T) {
	var signer HMACSigner
	k, err := KeyNew("SLH-DSA-MTL-SHA2-256F", []byte("ctx"), signer)
	if err != nil {
		t.Fatalf("KeyNew: %v", err)
	}
	blob := k.KeyToBuffer()
	k2, err := KeyFromBuffer(blob, signer)
	if err != nil {
		t.Fatalf("KeyFromBuffer: %v", err)
	}
	if k2.scheme.Name != k.scheme.Name {
		t.Fatalf("scheme mismatch after round trip: got %s want %s", k2.scheme.Name, k.scheme.Name)
	}
	if len(k2.publicKey) != len(k.publicKey) {
		t.Fatalf("public key length mismatch after round trip")
	}
}

func TestKeyPubkeyFromParamsCannotSign(t *testing.T) {
	var signer HMACSigner
	full, err := KeyNew("SLH-DSA-MTL-SHAKE-128S", nil, signer)
	if err != nil {
		t.Fatalf("KeyNew: %v", err)
	}
	verifier, err := KeyPubkeyFromParams("SLH-DSA-MTL-SHAKE-128S", nil, full.publicKey, full.ctx.sid)
	if err != nil {
		t.Fatalf("KeyPubkeyFromParams: %v", err)
	}
	if _, err := verifier.SignGetSignedLadder(); err == nil {
		t.Fatalf("expected error signing a ladder with no secret key")
	}
}
