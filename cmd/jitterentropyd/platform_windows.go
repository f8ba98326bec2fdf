//go:build windows
// +build windows

package main

import (
	"fmt"
	"log"
)

// feedEntropy has no Windows equivalent to RNDADDENTROPY; CryptoAPI's
// RNG doesn't accept external entropy injection the way Linux's does.
func feedEntropy(devPath string, data []byte, entropyBits int) error {
	return fmt.Errorf("feedEntropy: not supported on windows")
}

// readEntropyAvail has no Windows equivalent; the daemon logs the error
// at debug level and skips the watermark check on this platform.
func readEntropyAvail() (int, error) {
	return 0, fmt.Errorf("readEntropyAvail: not supported on windows")
}

// dropPrivileges on Windows requires CreateRestrictedToken and
// AdjustTokenPrivileges; left unimplemented, as in the daemon this
// one was adapted from.
func dropPrivileges(uid, gid int) error {
	return nil
}

// lockMemory requires VirtualLock plus the SE_LOCK_MEMORY_NAME
// privilege; left unimplemented, as in the daemon this one was
// adapted from.
func lockMemory() {
	log.Printf("warning: memory locking not implemented on windows")
}
