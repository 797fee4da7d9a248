//go:build windows

package ui

import "os/exec"

// openInFileManager selects the given file in Windows Explorer
func openInFileManager(path string) error {
	return exec.Command("explorer.exe", "/select,", path).Start()
}
