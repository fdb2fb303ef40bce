package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared across the engine.
const (
	ErrCodeOK             ErrorCode = "OK"
	ErrCodeUnknown        ErrorCode = "COMMON_000"
	ErrCodeInternal       ErrorCode = "COMMON_001"
	ErrCodeValidation     ErrorCode = "COMMON_002"
	ErrCodeNotFound       ErrorCode = "COMMON_003"
	ErrCodeSerialization  ErrorCode = "COMMON_004"
	ErrCodeNotImplemented ErrorCode = "COMMON_005"
	ErrCodeConfig         ErrorCode = "COMMON_006"
)

// Mention / temporal-context resolution error codes.
const (
	ErrCodeMentionMalformed  ErrorCode = "MEN_001"
	ErrCodeDateUnparseable   ErrorCode = "MEN_002"
	ErrCodeAnchorMissing     ErrorCode = "MEN_003"
	ErrCodeCategoryUnknown   ErrorCode = "MEN_004"
	ErrCodeContextUnresolved ErrorCode = "MEN_005"
)

// Timeline construction error codes.
const (
	ErrCodeTimelineBuildFailed ErrorCode = "TML_001"
	ErrCodeTimelineEmpty       ErrorCode = "TML_002"
	ErrCodeMilestoneScanFailed ErrorCode = "TML_003"
)

// Relationship inference error codes.
const (
	ErrCodeInferenceFailed      ErrorCode = "REL_001"
	ErrCodeRelationshipInvalid  ErrorCode = "REL_002"
	ErrCodeRelationWindowBroken ErrorCode = "REL_003"
)

// Treatment response tracking error codes.
const (
	ErrCodeResponseTrackingFailed ErrorCode = "RSP_001"
	ErrCodeProtocolRuleInvalid    ErrorCode = "RSP_002"
)

// Functional status evolution error codes.
const (
	ErrCodeEvolutionFailed  ErrorCode = "EVO_001"
	ErrCodeScaleUnsupported ErrorCode = "EVO_002"
	ErrCodeScoreOutOfRange  ErrorCode = "EVO_003"
)

// clientErrorCodes enumerates codes caused by bad input rather than engine
// defects.  Used by logging/metrics layers to decide severity.
var clientErrorCodes = map[ErrorCode]bool{
	ErrCodeValidation:       true,
	ErrCodeNotFound:         true,
	ErrCodeMentionMalformed: true,
	ErrCodeDateUnparseable:  true,
	ErrCodeAnchorMissing:    true,
	ErrCodeCategoryUnknown:  true,
	ErrCodeScaleUnsupported: true,
	ErrCodeScoreOutOfRange:  true,
}

// IsClientError reports whether the code classifies a caller-input problem.
func IsClientError(code ErrorCode) bool {
	return clientErrorCodes[code]
}

// IsServerError reports whether the code classifies an engine-side failure.
func IsServerError(code ErrorCode) bool {
	return code != ErrCodeOK && !clientErrorCodes[code]
}
