package emit

import (
	"fmt"
	"net/http"

	"github.com/Fy-/octypes"
	"github.com/bytedance/sonic"
	"github.com/go-playground/form/v4"
)

// APIError represents an API error with a message and HTTP status code
type APIError struct {
	Message string
	Code    int
}

// BaseResult is the standard JSON envelope
type BaseResult struct {
	Data    interface{}         `json:"data,omitempty"`
	Result  string              `json:"result"`
	Message string              `json:"message,omitempty"`
	Paging  *octypes.Pagination `json:"paging,omitempty"`
	Token   string              `json:"token,omitempty"`
}

// APIErrors is a map of error codes to APIError structs
var APIErrors = map[string]*APIError{
	"err_unknown_error":    {"Unknown error", http.StatusInternalServerError},
	"err_internal_error":   {"Internal error", http.StatusInternalServerError},
	"err_invalid_request":  {"Invalid request", http.StatusBadRequest},
	"err_unauthorized":     {"Unauthorized", http.StatusUnauthorized},
	"err_not_found":        {"Not found", http.StatusNotFound},
	"err_json_error":       {"JSON error", http.StatusInternalServerError},
	"err_form_error":       {"Form encoding error", http.StatusInternalServerError},
	"err_premature_output": {"Response already started", http.StatusInternalServerError},
}

var formEncoder = form.NewEncoder()

// NewTextResponse returns a text/plain response with a sized body.
func NewTextResponse(status int, text string) *Response {
	return NewResponse(status).
		WithHeader(HeaderContentType, ContentTypePlain).
		WithBody(NewStringStream(text))
}

func NewHTMLResponse(status int, html string) *Response {
	return NewResponse(status).
		WithHeader(HeaderContentType, ContentTypeHTML).
		WithBody(NewStringStream(html))
}

// NewJSONResponse encodes v with sonic. On encoding failure the response is
// a 500 with a JSON string describing the error.
func NewJSONResponse(status int, v interface{}) *Response {
	body, err := sonic.Marshal(v)
	if err != nil {
		return NewResponse(http.StatusInternalServerError).
			WithHeader(HeaderContentType, ContentTypeJSON).
			WithBody(NewStringStream(fmt.Sprintf(`"error encoding response: %s"`, err)))
	}
	return NewResponse(status).
		WithHeader(HeaderContentType, ContentTypeJSON).
		WithBody(NewBufferStream(body))
}

// NewFormResponse encodes a struct or map as application/x-www-form-urlencoded.
func NewFormResponse(status int, v interface{}) (*Response, error) {
	values, err := formEncoder.Encode(v)
	if err != nil {
		return nil, Wrap(err, ErrInternal, "form encoding failed")
	}
	return NewResponse(status).
		WithHeader(HeaderContentType, ContentTypeForm).
		WithBody(NewStringStream(values.Encode())), nil
}

// NewRedirectResponse sets Location. Any status is kept as given, a
// Location header does not turn a 201 or 202 into a redirect.
func NewRedirectResponse(status int, url string) *Response {
	return NewResponse(status).WithHeader(HeaderLocation, url)
}

func NewEmptyResponse(status int) *Response {
	return NewResponse(status)
}

// NewResultResponse wraps data in a successful BaseResult envelope
func NewResultResponse(data interface{}, paging *octypes.Pagination) *Response {
	return NewJSONResponse(http.StatusOK, BaseResult{
		Data:   data,
		Result: "success",
		Paging: paging,
	})
}

// NewErrorResponse builds an error envelope from the APIErrors table. Unknown
// codes fall back to err_unknown_error.
func NewErrorResponse(code string, err error) *Response {
	apiError, ok := APIErrors[code]
	if !ok {
		apiError = APIErrors["err_unknown_error"]
		code = "err_unknown_error"
	}
	message := apiError.Message
	if err != nil {
		message += ": " + err.Error()
	}
	return NewJSONResponse(apiError.Code, BaseResult{
		Result:  "error",
		Message: message,
		Token:   code,
	})
}
