package fsutil

import (
	"fmt"
	"io/fs"
	"os"
)

// FormatSymbolic renders the permission bits of mode in the fixed nine
// character notation, e.g. 0o754 -> "rwxr-xr--". Only the lower nine bits
// are considered.
func FormatSymbolic(mode fs.FileMode) string {
	const letters = "rwxrwxrwx"
	buf := make([]byte, 9)
	for i := 0; i < 9; i++ {
		if mode&(1<<uint(8-i)) != 0 {
			buf[i] = letters[i]
		} else {
			buf[i] = '-'
		}
	}
	return string(buf)
}

// FormatOctal renders the permission bits of mode as a four character octal
// string with a leading zero, e.g. 0o755 -> "0755".
func FormatOctal(mode fs.FileMode) string {
	return fmt.Sprintf("%04o", mode&ModeMask)
}

// IsVanished reports whether err indicates that the path no longer exists.
// Paths may be removed concurrently by other processes while a session runs.
func IsVanished(err error) bool {
	return os.IsNotExist(err)
}
