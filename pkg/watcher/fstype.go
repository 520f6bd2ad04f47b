package watcher

import (
	"os"
	"path/filepath"
)

// FilesystemType classifies the filesystem backing a watched path. Remote
// filesystems do not deliver inotify events reliably, so the watcher drops
// to polling on them.
type FilesystemType int

const (
	FSTypeUnknown FilesystemType = iota
	FSTypeLocal
	FSTypeNFS
	FSTypeSMB
	FSTypeSSHFS
	FSTypeFUSE
)

func (t FilesystemType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeNFS:
		return "nfs"
	case FSTypeSMB:
		return "smb"
	case FSTypeSSHFS:
		return "sshfs"
	case FSTypeFUSE:
		return "fuse"
	default:
		return "unknown"
	}
}

func isRemoteFilesystem(t FilesystemType) bool {
	switch t {
	case FSTypeNFS, FSTypeSMB, FSTypeSSHFS, FSTypeFUSE:
		return true
	}
	return false
}

// DetectFilesystemType classifies the filesystem backing path. If the path
// does not exist yet, the parent directory is probed instead.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	probe := path
	if _, err := os.Stat(probe); err != nil {
		probe = filepath.Dir(probe)
	}
	return statfsType(probe)
}
