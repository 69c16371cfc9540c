package errors

import "net/http"

var ErrMissingUsername = &Exception{
	Message:    "missing username",
	StatusCode: http.StatusBadRequest,
}
