package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"

	// Match routing/state.
	ErrMatchFull     = "E_MATCH_FULL"
	ErrMatchNotFound = "E_MATCH_NOT_FOUND"
	ErrMatchOver     = "E_MATCH_OVER"

	// Turn layer.
	ErrBadCommand = "E_BAD_COMMAND"
	ErrStale      = "E_STALE"
	ErrTimeout    = "E_TIMEOUT"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrProtoVersion:    {},
	ErrMatchFull:       {},
	ErrMatchNotFound:   {},
	ErrMatchOver:       {},
	ErrBadCommand:      {},
	ErrStale:           {},
	ErrTimeout:         {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
