//go:build linux

package watcher

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Statfs magic numbers from linux/magic.h.
const (
	magicNFS  = 0x6969
	magicSMB  = 0x517b
	magicSMB2 = 0xfe534d42
	magicCIFS = 0xff534d42
	magicFUSE = 0x65735546
)

func statfsType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}

	switch uint32(st.Type) {
	case magicNFS:
		return FSTypeNFS
	case magicSMB, magicSMB2, magicCIFS:
		return FSTypeSMB
	case magicFUSE:
		if mountIsSSHFS(path) {
			return FSTypeSSHFS
		}
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}

// mountIsSSHFS reports whether the longest mount covering path is an sshfs
// mount. Every userspace filesystem shares the FUSE magic number, so the
// mount table is the only way to tell sshfs apart.
func mountIsSSHFS(path string) bool {
	f, err := os.Open("/proc/self/mounts")
	if err != nil {
		return false
	}
	defer f.Close()

	best := -1
	isSSHFS := false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		mountPoint, fsType := fields[1], fields[2]
		if !strings.HasPrefix(path, mountPoint) {
			continue
		}
		if len(mountPoint) > best {
			best = len(mountPoint)
			isSSHFS = strings.HasPrefix(fsType, "fuse.sshfs")
		}
	}
	return isSSHFS
}
