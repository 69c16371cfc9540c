package errors

import "net/http"

var ErrNotFound = &Exception{
	Message:    "not found",
	StatusCode: http.StatusNotFound,
}
