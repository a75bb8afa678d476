package authmodel

// V201Status enumerates the OCPP 2.0.1 idTokenInfo.status wire values
// (spec §6).
type V201Status string

// The OCPP 2.0.1 idTokenInfo.status values.
const (
	V201Accepted            V201Status = "Accepted"
	V201Blocked             V201Status = "Blocked"
	V201ConcurrentTx        V201Status = "ConcurrentTx"
	V201Expired             V201Status = "Expired"
	V201Invalid             V201Status = "Invalid"
	V201NoCredit            V201Status = "NoCredit"
	V201NotAllowedTypeEVSE  V201Status = "NotAllowedTypeEVSE"
	V201NotAtThisLocation   V201Status = "NotAtThisLocation"
	V201NotAtThisTime       V201Status = "NotAtThisTime"
	V201Unknown             V201Status = "Unknown"
)

// V201StatusToUnified maps an OCPP 2.0.1 idTokenInfo.status to the unified
// status. NoCredit and NotAllowedTypeEVSE collapse to INVALID and
// unrecognized wire values collapse to UNKNOWN. This function records no
// diagnostic; callers that need one should retain the raw string
// themselves.
func V201StatusToUnified(s V201Status) AuthorizationStatus {
	switch s {
	case V201Accepted:
		return StatusAccepted
	case V201Blocked:
		return StatusBlocked
	case V201ConcurrentTx:
		return StatusConcurrentTx
	case V201Expired:
		return StatusExpired
	case V201Invalid:
		return StatusInvalid
	case V201NotAtThisLocation:
		return StatusNotAtThisLocation
	case V201NotAtThisTime:
		return StatusNotAtThisTime
	case V201NoCredit, V201NotAllowedTypeEVSE:
		return StatusInvalid
	case V201Unknown:
		return StatusUnknown
	default:
		return StatusUnknown
	}
}

// UnifiedStatusToV201RequestStartStop maps a unified status to the OCPP
// 2.0.1 RequestStartTransaction/RequestStopTransaction response status:
// ACCEPTED maps to Accepted, everything else to Rejected (spec §4.1).
func UnifiedStatusToV201RequestStartStop(s AuthorizationStatus) string {
	if s == StatusAccepted {
		return "Accepted"
	}
	return "Rejected"
}

// V201TokenType enumerates the OCPP 2.0.1 IdTokenEnum wire values.
type V201TokenType string

// The OCPP 2.0.1 IdTokenEnum values this core translates.
const (
	V201TokenCentral        V201TokenType = "Central"
	V201TokenEMAID          V201TokenType = "eMAID"
	V201TokenISO14443       V201TokenType = "ISO14443"
	V201TokenISO15693       V201TokenType = "ISO15693"
	V201TokenKeyCode        V201TokenType = "KeyCode"
	V201TokenLocal          V201TokenType = "Local"
	V201TokenMACAddress     V201TokenType = "MacAddress"
	V201TokenNoAuthorization V201TokenType = "NoAuthorization"
)

var v201TokenToUnified = map[V201TokenType]IdentifierType{
	V201TokenCentral:         IdentifierCentral,
	V201TokenEMAID:           IdentifierEMAID,
	V201TokenISO14443:        IdentifierISO14443,
	V201TokenISO15693:        IdentifierISO15693,
	V201TokenKeyCode:         IdentifierKeyCode,
	V201TokenLocal:           IdentifierLocal,
	V201TokenMACAddress:      IdentifierMACAddress,
	V201TokenNoAuthorization: IdentifierNoAuthorization,
}

// V201TokenTypeToUnified maps an OCPP 2.0.1 IdTokenEnum value to the
// unified identifier type, falling back to LOCAL for unrecognized wire
// values (spec §4.1).
func V201TokenTypeToUnified(t V201TokenType) IdentifierType {
	if typ, ok := v201TokenToUnified[t]; ok {
		return typ
	}
	return IdentifierLocal
}

var unifiedToV201Token = map[IdentifierType]V201TokenType{
	IdentifierCentral:         V201TokenCentral,
	IdentifierEMAID:           V201TokenEMAID,
	IdentifierISO14443:        V201TokenISO14443,
	IdentifierISO15693:        V201TokenISO15693,
	IdentifierKeyCode:         V201TokenKeyCode,
	IdentifierLocal:           V201TokenLocal,
	IdentifierMACAddress:      V201TokenMACAddress,
	IdentifierNoAuthorization: V201TokenNoAuthorization,
	IdentifierIDTag:           V201TokenLocal,
}

// UnifiedTypeToV201Token maps a unified identifier type to the OCPP 2.0.1
// IdTokenEnum value. ID_TAG and LOCAL both map to Local; any unrecognized
// type (e.g. CERTIFICATE, MOBILE_APP, BIOMETRIC, which have no 2.0.1
// IdTokenEnum counterpart) falls back to Local (spec §4.1).
func UnifiedTypeToV201Token(t IdentifierType) V201TokenType {
	if wire, ok := unifiedToV201Token[t]; ok {
		return wire
	}
	return V201TokenLocal
}
