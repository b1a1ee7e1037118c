package visitor

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a status value of the response envelope. Zero is success.
type Code int

const (
	CodeSuccess       Code = 0
	CodeGenericError  Code = 1
	CodeInvalidField  Code = 2
	CodeNoVisitorExit Code = 3
	CodeNotFound      Code = 4
	CodeDuplicate     Code = 5
	CodeUnauthorized  Code = 6
)

var codeNames = map[Code]string{
	CodeSuccess:       "SUCCESS",
	CodeGenericError:  "GENERIC_ERROR",
	CodeInvalidField:  "INVALID_FIELD",
	CodeNoVisitorExit: "NO_VISITOR_EXIT",
	CodeNotFound:      "NOT_FOUND",
	CodeDuplicate:     "DUPLICATE",
	CodeUnauthorized:  "UNAUTHORIZED",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("CODE_%d", int(c))
}

// HTTPStatus is the transport status sent alongside the envelope.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidField:
		return http.StatusBadRequest
	case CodeNoVisitorExit, CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicate:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Kind classifies a failure of the visitor rules or their collaborators.
type Kind int

const (
	KindEmptySchema Kind = iota + 1
	KindMissingField
	KindMissingAttachment
	KindInvalidTimestamp
	KindUnreadableImage
	KindDuplicateWorkbookType
	KindNotFound
	KindNoMatchingVisitors
	KindGenericPersistenceFailure
)

// Code maps a failure kind onto the envelope status catalog.
func (k Kind) Code() Code {
	switch k {
	case KindMissingField, KindMissingAttachment, KindInvalidTimestamp, KindUnreadableImage:
		return CodeInvalidField
	case KindDuplicateWorkbookType:
		return CodeDuplicate
	case KindNotFound:
		return CodeNotFound
	case KindNoMatchingVisitors:
		return CodeNoVisitorExit
	default:
		return CodeGenericError
	}
}

// Error is a classified, user-presentable failure. Message is safe to
// return to the caller; Err (if any) is the internal cause and is only logged.
type Error struct {
	Kind    Kind
	Field   Field
	Raw     string
	Entity  string
	ID      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Code is shorthand for e.Kind.Code().
func (e *Error) Code() Code { return e.Kind.Code() }

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	ve, ok := AsError(err)
	return ok && ve.Kind == k
}

func ErrEmptySchema() *Error {
	return &Error{Kind: KindEmptySchema, Message: "Entered fields are not valid!"}
}

func ErrMissingField(f Field) *Error {
	return &Error{Kind: KindMissingField, Field: f, Message: fmt.Sprintf("Missing field '%s' in request", f)}
}

func ErrMissingAttachment(f Field) *Error {
	return &Error{Kind: KindMissingAttachment, Field: f, Message: fmt.Sprintf("Missing field %s in request", f)}
}

func ErrInvalidTimestamp(f Field, raw string, cause error) *Error {
	return &Error{
		Kind:    KindInvalidTimestamp,
		Field:   f,
		Raw:     raw,
		Message: fmt.Sprintf("Field '%s' has invalid time %q, expected format %s", f, raw, TimestampLayoutHint),
		Err:     cause,
	}
}

func ErrUnreadableImage(f Field, cause error) *Error {
	return &Error{Kind: KindUnreadableImage, Field: f, Message: "Uploaded image not in correct format", Err: cause}
}

func ErrDuplicateWorkbookType() *Error {
	return &Error{Kind: KindDuplicateWorkbookType, Message: "Workbook already exists for this workbook type"}
}

func ErrNotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id, Message: fmt.Sprintf("%s doesn't exist", entity)}
}

func ErrNoMatchingVisitors() *Error {
	return &Error{Kind: KindNoMatchingVisitors, Message: "No visitors for given workbook"}
}

// ErrPersistence hides cause behind a generic message.
func ErrPersistence(message string, cause error) *Error {
	if message == "" {
		message = "Something went wrong, Please try again later."
	}
	return &Error{Kind: KindGenericPersistenceFailure, Message: message, Err: cause}
}
