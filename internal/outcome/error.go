package outcome

// Error is the uniform failure type for the service layer. It wraps
// either a known outcome code or an arbitrary message; the message is
// always usable directly as user-facing text. Store-level errors are
// re-wrapped into this type, never leaked.
type Error struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

func (e *Error) Error() string { return e.Message }

// FromCode builds an Error carrying the status, name and message of a
// known outcome code.
func FromCode(c Code) *Error {
	return &Error{
		StatusCode: c.Status(),
		ErrorCode:  c.String(),
		Message:    c.Message(),
	}
}

// New builds an Error from an arbitrary message with the default
// 400/BAD_REQUEST status.
func New(message string) *Error {
	return &Error{
		StatusCode: BadRequest.Status(),
		ErrorCode:  BadRequest.String(),
		Message:    message,
	}
}

// Wrap preserves an underlying error's message under the given code,
// keeping the original text for diagnostics.
func Wrap(c Code, err error) *Error {
	return &Error{
		StatusCode: c.Status(),
		ErrorCode:  c.String(),
		Message:    err.Error(),
	}
}

// IsCode reports whether err is an *Error carrying the given code.
func IsCode(err error, c Code) bool {
	oe, ok := err.(*Error)
	return ok && oe.ErrorCode == c.String()
}
