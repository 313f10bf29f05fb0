package codec

// LZSS byte expander for image payloads.
//
// A control byte announces the kind of the next eight tokens, least
// significant bit first. A set bit copies one literal byte; a clear bit is a
// two byte back-reference into the output produced so far:
//
//	b0 = distance bits 0-7
//	b1 = distance bits 8-11 (high nibble) | length-3 (low nibble)
//
// The distance is stored minus one, so 0 refers to the previous output byte.

import (
	"fmt"
)

const (
	lzssFlagBits   = 8
	lzssMinMatch   = 3
	lzssLengthMask = 0x0F
)

// Expand decodes the LZSS token stream src into dst. The output must fill dst
// exactly: len(dst) is the declared expanded size.
func Expand(dst, src []byte) error {
	srcIdx := 0
	dstIdx := 0

	for srcIdx < len(src) {
		flags := src[srcIdx]
		srcIdx++

		for bit := 0; bit < lzssFlagBits && srcIdx < len(src); bit++ {
			if flags&(1<<bit) != 0 {
				if dstIdx >= len(dst) {
					return fmt.Errorf("literal at %d exceeds %d bytes: %w", dstIdx, len(dst), ErrLengthMismatch)
				}
				dst[dstIdx] = src[srcIdx]
				dstIdx++
				srcIdx++
				continue
			}

			if srcIdx+1 >= len(src) {
				return fmt.Errorf("reference at source offset %d: %w", srcIdx, ErrTruncated)
			}

			lo, hi := src[srcIdx], src[srcIdx+1]
			srcIdx += 2

			distance := (int(lo) | int(hi&0xF0)<<4) + 1
			length := int(hi&lzssLengthMask) + lzssMinMatch

			from := dstIdx - distance
			if from < 0 {
				return fmt.Errorf("distance %d at output offset %d: %w", distance, dstIdx, ErrBadReference)
			}
			if dstIdx+length > len(dst) {
				return fmt.Errorf("match of %d at %d exceeds %d bytes: %w", length, dstIdx, len(dst), ErrLengthMismatch)
			}

			// byte by byte: the source window may overlap the bytes being written
			for i := 0; i < length; i++ {
				dst[dstIdx] = dst[from+i]
				dstIdx++
			}
		}
	}

	if dstIdx != len(dst) {
		return fmt.Errorf("produced %d of %d bytes: %w", dstIdx, len(dst), ErrLengthMismatch)
	}

	return nil
}
