package checkpasswordresettoken

import (
	"context"
	"net/http"
	"net/http/httptest"
	"orderform/internal/core/domain/token"
	service "orderform/internal/core/services/check_password_reset_token"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type stubService struct {
	result service.Result
	err    error
	input  *service.Input
}

func (s *stubService) Run(ctx context.Context, input service.Input) (service.Result, error) {
	s.input = &input
	return s.result, s.err
}

func TestCheckPasswordResetTokenHandler(t *testing.T) {
	expiresAt := time.Date(2023, 5, 1, 12, 10, 0, 0, time.UTC)
	cases := []struct {
		id             string
		url            string
		serviceErr     error
		expectedStatus int
		expectedBody   string
		expectedInput  *service.Input
	}{
		{
			id:             "valid",
			url:            "/auth/password_reset/abc",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"valid":true,"expires_at":"2023-05-01T12:10:00Z"}`,
			expectedInput:  &service.Input{Secret: "abc"},
		},
		{
			id:             "invalid",
			url:            "/auth/password_reset/abc",
			serviceErr:     token.NewInvalidLinkError(token.ErrNotFoundOrUsed),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"error":"invalid or expired link"}`,
			expectedInput:  &service.Input{Secret: "abc"},
		},
		{
			id:             "too long",
			url:            "/auth/password_reset/" + strings.Repeat("a", TOKEN_MAX_LEN+1),
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			svc := &stubService{result: service.Result{ExpiresAt: expiresAt}, err: testcase.serviceErr}
			router := chi.NewRouter()
			router.Method(http.MethodGet, "/auth/password_reset/{token}", New(svc))

			rw := httptest.NewRecorder()
			router.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, testcase.url, nil))

			assert.Equal(t, testcase.expectedStatus, rw.Code)
			if testcase.expectedBody != "" {
				assert.JSONEq(t, testcase.expectedBody, rw.Body.String())
			}
			assert.Equal(t, testcase.expectedInput, svc.input)
		})
	}
}
