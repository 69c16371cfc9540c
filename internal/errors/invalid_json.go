package errors

import "net/http"

var ErrInvalidJSON = &Exception{
	Message:    "invalid json",
	StatusCode: http.StatusBadRequest,
}
