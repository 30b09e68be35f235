package scanner

import (
	"bytes"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffSize is how many leading bytes are inspected for a NUL byte.
const sniffSize = 2048

// IsText reports whether the file at path looks like text: its first
// sniffSize bytes contain no NUL. Any I/O failure counts as "not text".
func IsText(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false
	}
	return bytes.IndexByte(buf[:n], 0) < 0
}

// ReadText reads the whole file and decodes it as UTF-8. A leading byte
// order mark is dropped and invalid sequences become U+FFFD.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return decode(data), nil
}

// decode converts raw bytes to a valid UTF-8 string without failing.
func decode(data []byte) string {
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(out)
}

// Extract returns the decoded content of path, or ok=false when the file is
// denylisted, binary, or unreadable.
func Extract(path string) (content string, ok bool) {
	if Denied(path) || !IsText(path) {
		return "", false
	}
	content, err := ReadText(path)
	if err != nil {
		return "", false
	}
	return content, true
}
