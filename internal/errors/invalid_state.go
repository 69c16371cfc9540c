package errors

import "net/http"

var ErrInvalidState = &Exception{
	Message:    "invalid state",
	StatusCode: http.StatusBadRequest,
}
