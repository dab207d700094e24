package auth

import "testing"

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher()

	digest, err := h.Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if digest == "s3cret-pass" {
		t.Fatal("digest must not equal the plaintext")
	}
	if !h.Verify("s3cret-pass", digest) {
		t.Error("Verify rejected the correct password")
	}
	if h.Verify("wrong-pass", digest) {
		t.Error("Verify accepted a wrong password")
	}
}

func TestBcryptHasherSaltsPerHash(t *testing.T) {
	h := NewBcryptHasher()

	first, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password should differ")
	}
	if !h.Verify("same-password", first) || !h.Verify("same-password", second) {
		t.Error("both digests should verify against the original password")
	}
}
