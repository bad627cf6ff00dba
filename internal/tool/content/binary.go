// Package content holds helpers for inspecting file and command output.
package content

// binarySampleSize is the number of bytes scanned for null bytes, matching Git's heuristic.
const binarySampleSize = 8000

// IsBinaryContent reports whether content looks binary by looking for null
// bytes in the first binarySampleSize bytes. UTF-16 and UTF-32 BOMs are
// treated as text.
func IsBinaryContent(content []byte) bool {
	if len(content) >= 4 {
		if (content[0] == 0xFF && content[1] == 0xFE && content[2] == 0x00 && content[3] == 0x00) ||
			(content[0] == 0x00 && content[1] == 0x00 && content[2] == 0xFE && content[3] == 0xFF) {
			return false
		}
	}
	if len(content) >= 2 {
		if (content[0] == 0xFF && content[1] == 0xFE) ||
			(content[0] == 0xFE && content[1] == 0xFF) {
			return false
		}
	}

	sampleSize := min(len(content), binarySampleSize)
	for i := range sampleSize {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
