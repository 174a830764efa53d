package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

var ErrNotFound = fmt.Errorf("not found")
var ErrInternal = fmt.Errorf("internal error")
var ErrRequest = fmt.Errorf("request error")
var ErrBadRequest = fmt.Errorf("bad request")
var ErrBadResponse = fmt.Errorf("bad response")
var ErrInvalidRequest = fmt.Errorf("invalid request")
var ErrUnavailable = fmt.Errorf("service unavailable")

type myError struct {
	msg    string
	target error
}

func (m myError) Error() string        { return m.msg }
func (m myError) Is(target error) bool { return target == m.target }

func NewBadRequestDataError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrBadRequest,
	}
}

func NewInvalidRequestError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrInvalidRequest,
	}
}

func NewNotFoundError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrNotFound,
	}
}

func NewUnavailableError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrUnavailable,
	}
}

const typeBase string = "https://diwise.io/exhibit/errors/"

const (
	TypeBadRequestData  string = typeBase + "BadRequestData"
	TypeInvalidRequest  string = typeBase + "InvalidRequest"
	TypeInternalError   string = typeBase + "InternalError"
	TypeNotFound        string = typeBase + "ResourceNotFound"
	TypeUnavailable     string = typeBase + "ServiceUnavailable"
	TypeTooManyRequests string = typeBase + "TooManyRequests"
)

// NewErrorFromProblemReport maps an error response from the compute server to
// one of the sentinel errors above. The compute server does not always answer
// with a problem report, so plain text bodies are accepted as the detail.
func NewErrorFromProblemReport(code int, contentType string, body []byte) error {
	report := &struct {
		Type   string `json:"type"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}{}

	if strings.Contains(contentType, "json") {
		if err := json.Unmarshal(body, report); err != nil {
			return fmt.Errorf("failed to process problem report from exhibit server: %s (%w)", err.Error(), ErrBadResponse)
		}
	} else {
		report.Detail = strings.TrimSpace(string(body))
	}

	if code == http.StatusNotFound || report.Type == TypeNotFound {
		return NewNotFoundError(report.Detail)
	}

	if report.Type == TypeBadRequestData {
		return NewBadRequestDataError(report.Detail)
	}

	if report.Type == TypeInvalidRequest {
		return NewInvalidRequestError(report.Detail)
	}

	if code == http.StatusServiceUnavailable || report.Type == TypeUnavailable {
		return NewUnavailableError(report.Detail)
	}

	if code == http.StatusBadRequest {
		return NewBadRequestDataError(report.Detail)
	}

	return &myError{
		msg: fmt.Sprintf("[code: %d] unknown problem report of type \"%s\" with detail \"%s\" received",
			code, report.Type, report.Detail,
		),
		target: ErrInternal,
	}
}
