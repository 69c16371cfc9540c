package errors

import "net/http"

var ErrMissingState = &Exception{
	Message:    "missing state",
	StatusCode: http.StatusBadRequest,
}
