// Package crc implements the CRC-32C (Castagnoli) checksum used by the
// log format, including the storage mask applied before a checksum is
// persisted.
package crc

import "hash/crc32"

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// maskDelta is added after rotation when masking a checksum for storage.
const maskDelta = 0xa282ead8

// Value returns the CRC-32C of p computed from a fresh state.
func Value(p []byte) uint32 {
	return crc32.Checksum(p, castagnoliTable)
}

// Extend continues the checksum sum over the additional bytes in p, as
// if the bytes that produced sum and p had been hashed in one pass.
func Extend(sum uint32, p []byte) uint32 {
	return crc32.Update(sum, castagnoliTable, p)
}

// Mask transforms a checksum for storage. Stored checksums are masked
// so that computing the CRC of a byte range that itself contains
// embedded CRCs does not yield degenerate values. The transform is
// reversible via Unmask.
func Mask(sum uint32) uint32 {
	return ((sum >> 15) | (sum << 17)) + maskDelta
}

// Unmask is the inverse of Mask.
func Unmask(masked uint32) uint32 {
	rot := masked - maskDelta
	return (rot >> 17) | (rot << 15)
}
