//go:build !linux

package watcher

func statfsType(string) FilesystemType {
	return FSTypeUnknown
}
