package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
)

// ChecksumError replaces a checksum that could not be computed.
const ChecksumError = "error"

const chunkSize = 4096

// Checksum returns the hex SHA-256 of the file at path, or ChecksumError if
// it cannot be read.
func Checksum(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ChecksumError
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		h.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ChecksumError
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
