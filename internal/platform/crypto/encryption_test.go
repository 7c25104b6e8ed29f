package crypto

import (
	"strings"
	"testing"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealTextRoundTrip(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !svc.Configured() {
		t.Fatal("expected configured service")
	}

	sealed, err := svc.SealText(`[{"name":"Ana"}]`)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if !strings.HasPrefix(sealed, sealedPrefix) || strings.Contains(sealed, "Ana") {
		t.Fatalf("value not sealed: %q", sealed)
	}

	plain, err := svc.OpenText(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if plain != `[{"name":"Ana"}]` {
		t.Fatalf("unexpected plaintext %q", plain)
	}
}

func TestOpenTextPassesLegacyPlaintext(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	plain, err := svc.OpenText("[]")
	if err != nil || plain != "[]" {
		t.Fatalf("expected passthrough, got %q %v", plain, err)
	}
}

func TestUnconfiguredServiceIsPassthrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sealed, err := svc.SealText("hello")
	if err != nil || sealed != "hello" {
		t.Fatalf("expected passthrough, got %q %v", sealed, err)
	}
	if _, err := svc.OpenText(sealedPrefix + "AAAA"); err == nil {
		t.Fatal("expected error opening sealed value without key")
	}
}

func TestNewRejectsShortKey(t *testing.T) {
	if _, err := New("short"); err == nil {
		t.Fatal("expected key length error")
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sealed, err := svc.Encrypt([]byte("payload"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := svc.Decrypt(sealed); err == nil {
		t.Fatal("expected authentication failure")
	}
}
