package reconcile

// SuffixKeyLength is the number of trailing identifier characters the
// packing-station scanners report. On-floor barcode labels are shorter
// than the manufacturing-side identifier, so the scanner only ever sees
// this suffix. Matching on it accepts a known precision trade-off: two
// panels of different customers sharing a suffix will falsely associate.
// That risk is taken deliberately for compatibility with the fixed-length
// scan hardware; do not "fix" it by assuming full-id matches.
const SuffixKeyLength = 5

// SuffixKey reduces an identifier to its scanner-visible suffix key.
// Identifiers already at or below the suffix length pass through unchanged,
// so applying it to a scanner-reported id is a no-op.
func SuffixKey(id string) string {
	if len(id) <= SuffixKeyLength {
		return id
	}
	return id[len(id)-SuffixKeyLength:]
}
