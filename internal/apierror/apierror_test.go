/*
Copyright 2025 Veriflow Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package apierror_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veriflowhq/veriflow/internal/apierror"
)

func TestAPIError_Error(t *testing.T) {
	err := apierror.NewAPIError(apierror.ErrInvalidInput, "userAddress is malformed", nil)
	assert.Equal(t, "INVALID_INPUT: userAddress is malformed", err.Error())
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input maps to 400", apierror.NewAPIError(apierror.ErrInvalidInput, "bad", nil), http.StatusBadRequest},
		{"bad request maps to 400", apierror.NewAPIError(apierror.ErrBadRequest, "bad", nil), http.StatusBadRequest},
		{"not found maps to 404", apierror.NewAPIError(apierror.ErrNotFound, "missing", nil), http.StatusNotFound},
		{"upstream maps to 500", apierror.NewAPIError(apierror.ErrUpstream, "engine down", nil), http.StatusInternalServerError},
		{"plain error maps to 500", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apierror.MapErrorToHTTPStatus(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	apiErr := apierror.NewAPIError(apierror.ErrUpstream, "engine rejected request", nil)
	assert.Equal(t, "engine rejected request", apierror.Message(apiErr, "fallback"))
	assert.Equal(t, "boom", apierror.Message(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", apierror.Message(nil, "fallback"))
}
