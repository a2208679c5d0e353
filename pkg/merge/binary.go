package merge

import (
	"io"

	"github.com/arthur-debert/syssetup/pkg/filesystem"
)

// SniffLen is how many leading bytes IsBinary inspects
const SniffLen = 1024

// textBytes is the allow-list of bytes found in text files: BEL, BS, TAB,
// LF, FF, CR, ESC and everything from 0x20 up except DEL.
var textBytes = func() [256]bool {
	var t [256]bool
	for _, b := range []byte{0x07, 0x08, 0x09, 0x0A, 0x0C, 0x0D, 0x1B} {
		t[b] = true
	}
	for b := 0x20; b < 0x100; b++ {
		t[b] = true
	}
	t[0x7F] = false
	return t
}()

// IsBinaryContent reports whether the first SniffLen bytes of data contain
// a byte outside the text allow-list.
func IsBinaryContent(data []byte) bool {
	if len(data) > SniffLen {
		data = data[:SniffLen]
	}
	for _, b := range data {
		if !textBytes[b] {
			return true
		}
	}
	return false
}

// IsBinary reports whether path is a regular file (symlinks followed) whose
// leading bytes look binary. Directories and missing paths are not binary.
// This is a heuristic: text in an unusual encoding may be reported as
// binary and skip merging.
func IsBinary(fsys filesystem.FS, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if isAbsent(err) {
			return false, nil
		}
		return false, err
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}

	f, err := fsys.Open(path)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, SniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}
	return IsBinaryContent(buf[:n]), nil
}
