package server

import (
	"errors"
	"net/http"

	"github.com/joseph-ayodele/invoice-assets/internal/common"
)

// httpStatus maps sentinel errors onto HTTP status codes, mirroring
// common.ToGRPCError.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrDegradedBill), errors.Is(err, common.ErrNoText):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
