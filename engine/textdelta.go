package engine

import "strings"

// computeTextSuffix implements spec.md §4.4.10: given a block's existing
// buffered text and the next incoming chunk for that block — which some
// wire formats send as just the new increment and others resend as the
// full accumulated text — returns the updated buffer and the suffix that
// should actually be forwarded as a delta.
//
//   - incoming extends existing (existing is a prefix of incoming): the
//     delta is the tail of incoming beyond existing.
//   - existing already contains incoming as a prefix: a redundant
//     retransmit: no delta, buffer unchanged.
//   - otherwise: incoming is a genuinely new delta, appended as-is.
func computeTextSuffix(existing, incoming string) (updated, delta string, hasDelta bool) {
	if incoming == "" {
		return existing, "", false
	}
	if strings.HasPrefix(incoming, existing) {
		delta = incoming[len(existing):]
		return incoming, delta, delta != ""
	}
	if strings.HasPrefix(existing, incoming) {
		return existing, "", false
	}
	return existing + incoming, incoming, true
}
