package errors

import "testing"

func TestIsClientError(t *testing.T) {
	clientCodes := []ErrorCode{
		ErrCodeValidation, ErrCodeNotFound, ErrCodeMentionMalformed,
		ErrCodeDateUnparseable, ErrCodeAnchorMissing, ErrCodeCategoryUnknown,
		ErrCodeScaleUnsupported, ErrCodeScoreOutOfRange,
	}
	for _, c := range clientCodes {
		if !IsClientError(c) {
			t.Errorf("%s should be a client error", c)
		}
		if IsServerError(c) {
			t.Errorf("%s should not be a server error", c)
		}
	}
}

func TestIsServerError(t *testing.T) {
	serverCodes := []ErrorCode{
		ErrCodeInternal, ErrCodeTimelineBuildFailed, ErrCodeInferenceFailed,
		ErrCodeResponseTrackingFailed, ErrCodeEvolutionFailed,
	}
	for _, c := range serverCodes {
		if !IsServerError(c) {
			t.Errorf("%s should be a server error", c)
		}
	}
	if IsServerError(ErrCodeOK) {
		t.Error("OK is not an error")
	}
}

func TestErrorCodeString(t *testing.T) {
	if ErrCodeDateUnparseable.String() != "MEN_002" {
		t.Errorf("unexpected string: %s", ErrCodeDateUnparseable.String())
	}
}
