//go:build darwin || linux
// +build darwin linux

package main

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// rndAddEntropy is Linux's RNDADDENTROPY ioctl request number, from
// <linux/random.h>: _IOW('R', 0x03, int[2]). It isn't exposed by
// golang.org/x/sys/unix, so it's reproduced here the way the C rngd
// this daemon is modeled on uses it directly.
const rndAddEntropy = 0x40085203

// feedEntropy injects data into devPath's input pool via RNDADDENTROPY,
// claiming entropyBits bits of entropy for the injected bytes. devPath
// must be opened for writing and typically requires root.
func feedEntropy(devPath string, data []byte, entropyBits int) error {
	f, err := os.OpenFile(devPath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", devPath, err)
	}
	defer f.Close()

	// struct rand_pool_info { int entropy_count; int buf_size; __u32 buf[]; }
	buf := make([]byte, 8+len(data))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(entropyBits))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(data)))
	copy(buf[8:], data)

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), rndAddEntropy, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return fmt.Errorf("RNDADDENTROPY ioctl on %s: %w", devPath, errno)
	}
	return nil
}

// readEntropyAvail reads the kernel's current estimate of available
// input-pool entropy, in bits, from /proc/sys/kernel/random/entropy_avail.
func readEntropyAvail() (int, error) {
	data, err := os.ReadFile("/proc/sys/kernel/random/entropy_avail")
	if err != nil {
		return 0, fmt.Errorf("read entropy_avail: %w", err)
	}

	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse entropy_avail: %w", err)
	}
	return n, nil
}

// dropPrivileges drops root privileges after the daemon has opened
// every file it needs as root (the device node, the pidfile).
func dropPrivileges(uid, gid int) error {
	if err := syscall.Setgroups([]int{}); err != nil {
		return fmt.Errorf("setgroups: %w", err)
	}
	if err := syscall.Setgid(gid); err != nil {
		return fmt.Errorf("setgid: %w", err)
	}
	if err := syscall.Setuid(uid); err != nil {
		return fmt.Errorf("setuid: %w", err)
	}
	if os.Getuid() == 0 || os.Geteuid() == 0 {
		return fmt.Errorf("failed to drop privileges")
	}
	return nil
}

// lockMemory locks the daemon's current and future memory against swap.
func lockMemory() {
	if err := syscall.Mlockall(syscall.MCL_CURRENT | syscall.MCL_FUTURE); err != nil {
		log.Printf("warning: could not lock memory: %v", err)
	}
}
