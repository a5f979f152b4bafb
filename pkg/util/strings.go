package util

// MaxLogBodySize is the default maximum body size for logging (2KB).
const MaxLogBodySize = 2 * 1024

// TruncateBody truncates a string to maxSize bytes, appending "...(truncated)" if truncated.
// If maxSize <= 0, uses MaxLogBodySize. The cut never splits a UTF-8 sequence.
func TruncateBody(data string, maxSize int) string {
	if maxSize <= 0 {
		maxSize = MaxLogBodySize
	}
	if len(data) <= maxSize {
		return data
	}
	cut := maxSize
	for cut > 0 && data[cut]&0xC0 == 0x80 {
		cut--
	}
	return data[:cut] + "...(truncated)"
}
