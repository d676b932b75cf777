package hash

import (
	"testing"
)

func TestFingerprintIsStable(t *testing.T) {
	first := Fingerprint("0.client.secret:key")
	second := Fingerprint("0.client.secret:key")

	if first != second {
		t.Errorf("expected %s, got %s", first, second)
	}

	if len(first) != 32 {
		t.Errorf("expected a 32 character fingerprint, got %d", len(first))
	}
}

func TestFingerprintDiffers(t *testing.T) {
	if Fingerprint("token-a") == Fingerprint("token-b") {
		t.Errorf("different inputs should have different fingerprints")
	}
}
