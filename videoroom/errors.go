package videoroom

import (
	"errors"
	"fmt"
)

var (
	// ErrOfferRequired rejects a publish-class request whose negotiation
	// payload is missing or not an offer. Checked before any network call.
	ErrOfferRequired = errors.New("videoroom: request requires an offer jsep")

	// ErrAnswerRequired rejects a subscriber start whose negotiation payload
	// is missing or not an answer.
	ErrAnswerRequired = errors.New("videoroom: start requires an answer jsep")
)

// Error codes reported by the gateway's videoroom plugin.
const (
	CodeNoSuchRoom       = 426
	CodeRoomExists       = 427
	CodeNoSuchFeed       = 428
	CodeMissingElement   = 429
	CodeInvalidElement   = 430
	CodeInvalidSDPType   = 431
	CodePublishersFull   = 432
	CodeUnauthorized     = 433
	CodeAlreadyPublished = 434
	CodeNotPublished     = 435
	CodeIDExists         = 436
	CodeInvalidSDP       = 437
)

// PluginError is an error reported by the remote gateway.
type PluginError struct {
	Code   int
	Reason string
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("videoroom: gateway error %d: %s", e.Code, e.Reason)
}

// needsCleanup reports whether a failed negotiation request may have left a
// half-established media session on the gateway. Already-published is the
// one code in the range that does not: the previous session is intact.
func needsCleanup(err error) bool {
	var pe *PluginError
	if !errors.As(err, &pe) {
		return false
	}
	if pe.Code == CodeAlreadyPublished {
		return false
	}
	return pe.Code >= CodeNoSuchFeed && pe.Code <= CodeInvalidSDP
}

// UnexpectedReplyError reports a reply whose normalized event does not match
// what the issuing request expected.
type UnexpectedReplyError struct {
	Request string
	Got     EventName
}

func (e *UnexpectedReplyError) Error() string {
	return fmt.Sprintf("videoroom: request %q got unexpected reply %q", e.Request, e.Got)
}
