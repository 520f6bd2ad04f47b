//go:build !linux

package watcher

// Statfs inspection is only wired up on Linux. Other platforms treat every
// path as local, leaving fsnotify as the default backend.
func statfsType(string) FilesystemType {
	return FSTypeLocal
}
