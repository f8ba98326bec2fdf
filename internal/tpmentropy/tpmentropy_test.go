package tpmentropy

import "testing"

func TestOpenMissingDeviceFails(t *testing.T) {
	if _, err := Open("/dev/does-not-exist-tpm"); err == nil {
		t.Fatal("expected error opening a nonexistent TPM device")
	}
}

func TestDetectDeviceFailsWhenNoneExist(t *testing.T) {
	orig := candidateDevices
	candidateDevices = []string{"/dev/does-not-exist-tpm0", "/dev/does-not-exist-tpmrm0"}
	defer func() { candidateDevices = orig }()

	if _, err := detectDevice(); err == nil {
		t.Fatal("expected detectDevice to fail with no candidates present")
	}
}
