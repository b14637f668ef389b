package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

type HandlerError struct {
	Status int    `json:"status,omitempty"` // HTTP status code applicable to the error
	Title  string `json:"title,omitempty"`  // A summary of the problem
	Detail string `json:"detail,omitempty"` // An explanation specific to the problem
}

type ErrorResponse struct {
	Errors []HandlerError `json:"errors"`
	// Fields carries per field validation messages when the request body was rejected
	Fields map[string][]string `json:"fields,omitempty"`
}

// Error makes it compatible with `error` interface.
func (er HandlerError) Error() string {
	return fmt.Sprintf("code=%d, title=%v, detail=%v", er.Status, er.Title, er.Detail)
}

// ErrorResponse makes it compatible with `error` interface.
func (er ErrorResponse) Error() string {
	var msg string
	for _, err := range er.Errors {
		msg += fmt.Sprintf("error: %s \n", err.Error())
	}
	return msg
}

func NewErrorResponse(code int, title string, detail string) ErrorResponse {
	return ErrorResponse{Errors: []HandlerError{
		{
			Status: code,
			Title:  title,
			Detail: detail,
		}},
	}
}

// NewErrorResponseFromError builds a response out of dao and validation errors.
// Nil entries are kept as empty errors so positions line up with the input.
func NewErrorResponseFromError(title string, errs ...error) ErrorResponse {
	if len(errs) == 0 {
		return ErrorResponse{}
	}

	resp := ErrorResponse{Errors: make([]HandlerError, len(errs))}
	for i, err := range errs {
		if err == nil {
			continue
		}
		resp.Errors[i] = HandlerError{
			Status: HttpCodeForDaoError(err),
			Title:  title,
			Detail: err.Error(),
		}
		var validationError *ValidationError
		if errors.As(err, &validationError) {
			if resp.Fields == nil {
				resp.Fields = map[string][]string{}
			}
			for field, msgs := range validationError.Fields {
				resp.Fields[field] = append(resp.Fields[field], msgs...)
			}
		}
	}
	return resp
}

// NewErrorResponseFromEchoError creates a new ErrorResponse instance from an echo.HTTPError instance
func NewErrorResponseFromEchoError(echoErr *echo.HTTPError) ErrorResponse {
	detail, ok := echoErr.Message.(string)
	if !ok {
		detail = echoErr.Error()
	}
	return NewErrorResponse(echoErr.Code, "", detail)
}

// HttpCodeForDaoError returns http code for corresponding dao error
func HttpCodeForDaoError(err error) int {
	var daoError *DaoError
	var validationError *ValidationError
	switch {
	case errors.As(err, &validationError):
		return http.StatusBadRequest
	case errors.As(err, &daoError):
		if daoError.NotFound {
			return http.StatusNotFound
		} else if daoError.BadValidation {
			return http.StatusBadRequest
		} else if daoError.Conflict {
			return http.StatusConflict
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// GetGeneralResponseCode returns the most common error code class in response
func GetGeneralResponseCode(response ErrorResponse) int {
	if len(response.Errors) == 0 {
		return http.StatusOK
	}

	if len(response.Errors) == 1 {
		return response.Errors[0].Status
	}

	highest := 2
	for _, err := range response.Errors {
		class := err.Status / 100
		if err.Status == 0 {
			class = 2
		}
		if class > 5 {
			class = 5
		}
		if class > highest {
			highest = class
		}
	}
	return highest * 100
}
