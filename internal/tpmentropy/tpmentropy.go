// Package tpmentropy supplies supplementary entropy from a hardware
// TPM 2.0's GetRandom command, for jitterentropyd to blend alongside
// CPU-jitter samples before feeding the OS pool. It completes the TPM
// entropy source the isolated entropy daemon this tree was adapted
// from only stubbed out (a direct, unauthenticated read of the raw
// character device, with a comment noting the real thing would use
// go-tpm).
package tpmentropy

import (
	"fmt"
	"io"
	"os"

	"github.com/google/go-tpm/tpm2"
	"github.com/google/go-tpm/tpm2/transport"
)

// maxBytesPerCall is the largest request size every TPM 2.0
// implementation in the spec is guaranteed to service in one
// TPM2_GetRandom command; larger requests are split into a loop.
const maxBytesPerCall = 32

// Source reads entropy from a TPM 2.0 device via TPM2_GetRandom.
type Source struct {
	device string
	rwc    transport.TPM
}

// candidateDevices are probed in order when Open is called with an
// empty device path.
var candidateDevices = []string{"/dev/tpmrm0", "/dev/tpm0"}

// Open opens the TPM at device, or auto-detects one from
// candidateDevices when device is empty.
func Open(device string) (*Source, error) {
	if device == "" {
		var err error
		device, err = detectDevice()
		if err != nil {
			return nil, err
		}
	}

	rwc, err := transport.OpenTPM(device)
	if err != nil {
		return nil, fmt.Errorf("tpmentropy: open %s: %w", device, err)
	}

	return &Source{device: device, rwc: rwc}, nil
}

func detectDevice() (string, error) {
	for _, candidate := range candidateDevices {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("tpmentropy: no TPM device found among %v", candidateDevices)
}

// Read implements io.Reader, filling p with TPM2_GetRandom output.
func (s *Source) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		want := len(p) - total
		if want > maxBytesPerCall {
			want = maxBytesPerCall
		}

		cmd := tpm2.GetRandom{BytesRequested: uint16(want)}
		rsp, err := cmd.Execute(s.rwc)
		if err != nil {
			return total, fmt.Errorf("tpmentropy: GetRandom: %w", err)
		}

		n := copy(p[total:], rsp.RandomBytes.Buffer)
		if n == 0 {
			return total, io.ErrNoProgress
		}
		total += n
	}
	return total, nil
}

// Device returns the TPM device path this source was opened against.
func (s *Source) Device() string {
	return s.device
}

// Close releases the underlying TPM transport.
func (s *Source) Close() error {
	return s.rwc.Close()
}
