package errors

import "net/http"

var ErrStorageFailure = &Exception{
	Message:    "storage failure",
	StatusCode: http.StatusInternalServerError,
}
