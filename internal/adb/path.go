package adb

import (
	"os"
	"path/filepath"
	"runtime"
)

// ResolvePath finds the adb binary. A platform-tools directory shipped
// next to the emuwatch executable wins; otherwise adb is looked up on PATH.
func ResolvePath() string {
	exe, err := os.Executable()
	if err != nil {
		return binaryName()
	}
	return resolveFrom(filepath.Dir(exe))
}

func resolveFrom(dir string) string {
	bundled := filepath.Join(dir, "platform-tools", binaryName())
	if info, err := os.Stat(bundled); err == nil && !info.IsDir() {
		return bundled
	}
	return binaryName()
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "adb.exe"
	}
	return "adb"
}
