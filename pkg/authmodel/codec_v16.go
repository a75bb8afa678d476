package authmodel

// V16Status enumerates the OCPP 1.6 idTagInfo.status wire values
// (spec §6: Authorize.conf / §4.1).
type V16Status string

// The OCPP 1.6 idTagInfo.status values.
const (
	V16Accepted     V16Status = "Accepted"
	V16Blocked      V16Status = "Blocked"
	V16Expired      V16Status = "Expired"
	V16Invalid      V16Status = "Invalid"
	V16ConcurrentTx V16Status = "ConcurrentTx"
)

// V16StatusToUnified maps an OCPP 1.6 idTagInfo.status to the unified
// status. Any value outside the five known wire values collapses to
// INVALID per spec §4.1.
func V16StatusToUnified(s V16Status) AuthorizationStatus {
	switch s {
	case V16Accepted:
		return StatusAccepted
	case V16Blocked:
		return StatusBlocked
	case V16ConcurrentTx:
		return StatusConcurrentTx
	case V16Expired:
		return StatusExpired
	case V16Invalid:
		return StatusInvalid
	default:
		return StatusInvalid
	}
}

// UnifiedStatusToV16 maps a unified status down to OCPP 1.6. The five
// shared values round-trip; the four 2.0-only statuses
// (NOT_AT_THIS_LOCATION, NOT_AT_THIS_TIME, PENDING, UNKNOWN) collapse to
// Invalid per spec §4.1.
func UnifiedStatusToV16(s AuthorizationStatus) V16Status {
	switch s {
	case StatusAccepted:
		return V16Accepted
	case StatusBlocked:
		return V16Blocked
	case StatusConcurrentTx:
		return V16ConcurrentTx
	case StatusExpired:
		return V16Expired
	case StatusInvalid:
		return V16Invalid
	default:
		return V16Invalid
	}
}
