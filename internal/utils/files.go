package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

const mebibyte = 1024 * 1024

// FormatFileSize renders a byte count as "12.34 KB" below one MiB and "1.50 MB" above.
func FormatFileSize(size int64) string {
	if size < mebibyte {
		return fmt.Sprintf("%.2f KB", float64(size)/1024)
	}
	return fmt.Sprintf("%.2f MB", float64(size)/mebibyte)
}

// ContentID identifies a file by the MD5 digest of its bytes, the same key the
// RAG backend uses for its document ids.
func ContentID(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
