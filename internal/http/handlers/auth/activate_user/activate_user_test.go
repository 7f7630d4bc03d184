package activateuser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"orderform/internal/core/domain/token"
	service "orderform/internal/core/services/activate_user"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubService struct {
	err   error
	input *service.Input
}

func (s *stubService) Run(ctx context.Context, input service.Input) (result service.Result, err error) {
	s.input = &input
	return result, s.err
}

func TestActivateUserHandler(t *testing.T) {
	cases := []struct {
		id             string
		body           string
		serviceErr     error
		expectedStatus int
		expectedBody   string
	}{
		{
			id:             "activated",
			body:           `{"token": "abc"}`,
			expectedStatus: http.StatusOK,
		},
		{
			id:             "missing token",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			id:             "expired",
			body:           `{"token": "abc"}`,
			serviceErr:     token.NewInvalidLinkError(token.ErrExpired),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"error":"invalid or expired link"}`,
		},
		{
			id:             "already used",
			body:           `{"token": "abc"}`,
			serviceErr:     token.NewInvalidLinkError(token.ErrAlreadyConsumed),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"error":"invalid or expired link"}`,
		},
		{
			id:             "storage error",
			body:           `{"token": "abc"}`,
			serviceErr:     token.NewStorageError("consume", errors.New("timeout")),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			svc := &stubService{err: testcase.serviceErr}
			handler := New(svc)

			rw := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/auth/activate", strings.NewReader(testcase.body))
			handler.ServeHTTP(rw, r)

			assert.Equal(t, testcase.expectedStatus, rw.Code)
			if testcase.expectedBody != "" {
				assert.JSONEq(t, testcase.expectedBody, rw.Body.String())
			}
		})
	}
}
