//go:build !windows

package progress

import "os"

// enableANSI is a no-op on non-Windows platforms
func enableANSI(f *os.File) {}
