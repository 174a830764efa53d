package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	exhibiterrors "github.com/diwise/exhibit-profiles/pkg/exhibit/errors"
)

// ProblemDetails stores details about a certain problem according to RFC7807
// See https://tools.ietf.org/html/rfc7807
type ProblemDetails interface {
	ContentType() string
	Type() string
	Title() string
	Detail() string
	MarshalJSON() ([]byte, error)
	WriteResponse(w http.ResponseWriter)
}

type ProblemDetailsImpl struct {
	typ    string
	title  string
	detail string
	code   int
}

const (
	// ProblemReportContentType as required by https://tools.ietf.org/html/rfc7807
	ProblemReportContentType string = "application/problem+json"
)

func newProblem(typ, title, detail string, code int) *ProblemDetailsImpl {
	return &ProblemDetailsImpl{
		typ:    typ,
		title:  title,
		detail: detail,
		code:   code,
	}
}

// NewBadRequestData reports that the request includes input data which does not meet the requirements of the operation
func NewBadRequestData(detail string) *ProblemDetailsImpl {
	return newProblem(exhibiterrors.TypeBadRequestData, "Bad Request Data", detail, http.StatusBadRequest)
}

func ReportNewBadRequestData(w http.ResponseWriter, detail string) {
	NewBadRequestData(detail).WriteResponse(w)
}

// NewInvalidRequest reports that the request is syntactically invalid or includes wrong content
func NewInvalidRequest(detail string) *ProblemDetailsImpl {
	return newProblem(exhibiterrors.TypeInvalidRequest, "Invalid Request", detail, http.StatusBadRequest)
}

func ReportNewInvalidRequest(w http.ResponseWriter, detail string) {
	NewInvalidRequest(detail).WriteResponse(w)
}

func NewInternalError(detail string) *ProblemDetailsImpl {
	return newProblem(exhibiterrors.TypeInternalError, "Internal Error", detail, http.StatusInternalServerError)
}

func ReportNewInternalError(w http.ResponseWriter, detail string) {
	NewInternalError(detail).WriteResponse(w)
}

func NewNotFound(detail string) *ProblemDetailsImpl {
	return newProblem(exhibiterrors.TypeNotFound, "Not Found", detail, http.StatusNotFound)
}

func ReportNotFoundError(w http.ResponseWriter, detail string) {
	NewNotFound(detail).WriteResponse(w)
}

// NewServiceUnavailable reports that the exhibit server could not be reached
func NewServiceUnavailable(detail string) *ProblemDetailsImpl {
	return newProblem(exhibiterrors.TypeUnavailable, "Service Unavailable", detail, http.StatusServiceUnavailable)
}

func ReportServiceUnavailable(w http.ResponseWriter, detail string) {
	NewServiceUnavailable(detail).WriteResponse(w)
}

func NewTooManyRequests(detail string) *ProblemDetailsImpl {
	return newProblem(exhibiterrors.TypeTooManyRequests, "Too Many Requests", detail, http.StatusTooManyRequests)
}

func ReportTooManyRequests(w http.ResponseWriter, detail string) {
	NewTooManyRequests(detail).WriteResponse(w)
}

// ReportError picks the problem type that matches err and sends it to the supplied http.ResponseWriter
func ReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exhibiterrors.ErrNotFound):
		ReportNotFoundError(w, err.Error())
	case errors.Is(err, exhibiterrors.ErrBadRequest):
		ReportNewBadRequestData(w, err.Error())
	case errors.Is(err, exhibiterrors.ErrInvalidRequest):
		ReportNewInvalidRequest(w, err.Error())
	case errors.Is(err, exhibiterrors.ErrUnavailable):
		ReportServiceUnavailable(w, err.Error())
	default:
		ReportNewInternalError(w, err.Error())
	}
}

func (p *ProblemDetailsImpl) ContentType() string {
	return ProblemReportContentType
}

func (p *ProblemDetailsImpl) Type() string {
	return p.typ
}

func (p *ProblemDetailsImpl) Title() string {
	return p.title
}

func (p *ProblemDetailsImpl) Detail() string {
	return p.detail
}

// MarshalJSON is called when a ProblemDetailsImpl instance should be serialized to JSON
func (p *ProblemDetailsImpl) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}{
		Type:   p.typ,
		Title:  p.title,
		Detail: p.detail,
	})
}

// ResponseCode returns the HTTP response code to be used when returning a specific problem
func (p *ProblemDetailsImpl) ResponseCode() int {
	if p.code != 0 {
		return p.code
	}

	return http.StatusBadRequest
}

// WriteResponse writes the contents of this instance to a http.ResponseWriter
func (p *ProblemDetailsImpl) WriteResponse(w http.ResponseWriter) {
	w.Header().Add("Content-Type", p.ContentType())
	w.Header().Add("Content-Language", "en")
	w.WriteHeader(p.ResponseCode())

	pdbytes, err := json.MarshalIndent(p, "", "  ")
	if err == nil {
		w.Write(pdbytes)
	}
}
