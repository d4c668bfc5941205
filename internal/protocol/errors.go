package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Town/session auth.
	ErrAuth = "E_AUTH"

	// Unknown town, area label, or player.
	ErrNotFound = "E_NOT_FOUND"

	// Malformed bounding box, duplicate label, empty required field.
	ErrValidation = "E_VALIDATION"

	// Join-time identity lookup failure.
	ErrProfileNotFound = "E_PROFILE_NOT_FOUND"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrAuth:            {},
	ErrNotFound:        {},
	ErrValidation:      {},
	ErrProfileNotFound: {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
