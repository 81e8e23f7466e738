package service

import (
	"errors"
	"fmt"

	"github.com/kjstillabower/city-weather-service/internal/client"
)

// ErrorKind classifies a failed lookup.
type ErrorKind int

const (
	KindNetworkFailure ErrorKind = iota + 1
	KindAPIError
	KindDecodeFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetworkFailure:
		return "network_failure"
	case KindAPIError:
		return "api_error"
	case KindDecodeFailure:
		return "decode_failure"
	default:
		return "unknown"
	}
}

// Stage names the network call a failure happened in.
type Stage string

const (
	StageGeocode    Stage = "geocode"
	StageConditions Stage = "conditions"
)

// genericFailureMessage is shown when the upstream gave no usable message.
const genericFailureMessage = "Unable to fetch weather data"

// LookupError is the single error a failed lookup surfaces. For KindAPIError, Message is
// the upstream service's text verbatim and Code its error code.
type LookupError struct {
	Kind    ErrorKind
	Stage   Stage
	Code    string
	Message string
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// AsLookupError returns the LookupError in err's chain, if any.
func AsLookupError(err error) (*LookupError, bool) {
	var le *LookupError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// translateError maps a client error to a LookupError. Anything that is neither a
// structured API error nor a malformed body is treated as a transport failure.
func translateError(stage Stage, err error) *LookupError {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = genericFailureMessage
		}
		return &LookupError{Kind: KindAPIError, Stage: stage, Code: apiErr.Code, Message: msg, Err: err}
	}
	var malformed *client.MalformedError
	if errors.As(err, &malformed) {
		return &LookupError{Kind: KindDecodeFailure, Stage: stage, Message: genericFailureMessage, Err: err}
	}
	return &LookupError{Kind: KindNetworkFailure, Stage: stage, Message: genericFailureMessage, Err: err}
}
