package domain

import "errors"

var (
	// ErrInputValidation indicates a required user field is missing or
	// malformed. It is raised before any call to the AI service.
	ErrInputValidation = errors.New("invalid input")

	// ErrEncoding indicates a file could not be read or converted for upload.
	ErrEncoding = errors.New("media encoding failed")

	// ErrServiceCall indicates a transport failure or an error response from
	// the AI service.
	ErrServiceCall = errors.New("ai service call failed")

	// ErrMalformedPayload indicates the response is not the expected
	// structured format at all.
	ErrMalformedPayload = errors.New("malformed ai response")

	// ErrSchemaViolation indicates the response parsed but is missing
	// required fields or carries the wrong key set.
	ErrSchemaViolation = errors.New("ai response violates schema")

	// ErrOutOfRangeScore indicates a score outside the closed range [1,10].
	ErrOutOfRangeScore = errors.New("score out of range")
)

// Score bounds for every rubric criterion.
const (
	MinScore = 1
	MaxScore = 10
)

// UserMessage maps an operation failure to the message shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputValidation):
		return "Please fill in all required fields."
	case errors.Is(err, ErrEncoding):
		return "The attached file could not be read. Try another file."
	case errors.Is(err, ErrServiceCall):
		return "The AI service could not be reached. Please try again."
	case errors.Is(err, ErrMalformedPayload), errors.Is(err, ErrSchemaViolation), errors.Is(err, ErrOutOfRangeScore):
		return "The AI service returned an unexpected result. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
