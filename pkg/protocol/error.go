package protocol

import (
	"errors"

	vterrors "github.com/vango-dev/vtree/internal/errors"
)

// ErrorMessage is sent when a frame cannot be processed. Code is a
// registered vtree error code ("E201").
type ErrorMessage struct {
	Code    string // Error code
	Message string // Human-readable error message
	Fatal   bool   // If true, connection should be closed
}

// EncodeErrorMessage encodes an ErrorMessage to bytes.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	EncodeErrorMessageTo(e, em)
	return e.Bytes()
}

// EncodeErrorMessageTo encodes an ErrorMessage using the provided encoder.
func EncodeErrorMessageTo(e *Encoder, em *ErrorMessage) {
	e.WriteString(em.Code)
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
}

// DecodeErrorMessage decodes an ErrorMessage from bytes.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	em, err := DecodeErrorMessageFrom(d)
	if err != nil {
		return nil, err
	}
	return em, d.finish()
}

// DecodeErrorMessageFrom decodes an ErrorMessage from a decoder.
func DecodeErrorMessageFrom(d *Decoder) (*ErrorMessage, error) {
	code, err := d.ReadString()
	if err != nil {
		return nil, err
	}

	message, err := d.ReadString()
	if err != nil {
		return nil, err
	}

	fatal, err := d.ReadBool()
	if err != nil {
		return nil, err
	}

	return &ErrorMessage{
		Code:    code,
		Message: message,
		Fatal:   fatal,
	}, nil
}

// NewError creates an ErrorMessage describing err. Structured vtree errors
// keep their code; codec errors map to the protocol codes.
func NewError(err error, fatal bool) *ErrorMessage {
	return &ErrorMessage{
		Code:    CodeFor(err),
		Message: err.Error(),
		Fatal:   fatal,
	}
}

// CodeFor returns the vtree error code that describes err.
func CodeFor(err error) string {
	if code := vterrors.Code(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, ErrUnknownPatchOp):
		return "E202"
	case errors.Is(err, ErrMaxDepthExceeded):
		return "E203"
	default:
		return "E201"
	}
}

// Error implements the error interface.
func (em *ErrorMessage) Error() string {
	if em.Fatal {
		return "fatal: " + em.Code + ": " + em.Message
	}
	return em.Code + ": " + em.Message
}

// IsFatal returns true if this error should close the connection.
func (em *ErrorMessage) IsFatal() bool {
	return em.Fatal
}
