// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"errors"
	"net/http"

	relaierrors "github.com/sirseerhq/sirseer-lens/internal/errors"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// statusFor maps an error to the HTTP status the API reports for it.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, relaierrors.ErrLoadInFlight), errors.Is(err, relaierrors.ErrNoMorePages):
		return http.StatusConflict
	case errors.Is(err, relaierrors.ErrControllerDisposed):
		return http.StatusGone
	}

	switch relaierrors.KindOf(err) {
	case relaierrors.KindValidation:
		return http.StatusUnprocessableEntity
	case relaierrors.KindTransport:
		return http.StatusBadGateway
	case relaierrors.KindRemote:
		if errors.Is(err, relaierrors.ErrRepoNotFound) {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, relaierrors.ErrLoadInFlight):
		return "load_in_flight"
	case errors.Is(err, relaierrors.ErrNoMorePages):
		return "no_more_pages"
	case errors.Is(err, relaierrors.ErrControllerDisposed):
		return "view_closed"
	case errors.Is(err, relaierrors.ErrRepoNotFound):
		return "not_found"
	case errors.Is(err, relaierrors.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, relaierrors.ErrRateLimit):
		return "rate_limited"
	}

	switch relaierrors.KindOf(err) {
	case relaierrors.KindValidation:
		return "validation_failed"
	case relaierrors.KindTransport:
		return "transport_error"
	case relaierrors.KindRemote:
		return "remote_error"
	default:
		return "internal_error"
	}
}

func errorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{
		Error:   errorCode(err),
		Message: err.Error(),
	}
	var verr *relaierrors.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	return resp
}

func invalidRequest(operation, field, message string) error {
	return &relaierrors.ValidationError{
		Operation: operation,
		Fields:    map[string]string{field: message},
	}
}
