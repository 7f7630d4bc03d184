package changepassword

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"orderform/internal/core/domain/user"
	service "orderform/internal/core/services/change_password"
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

func TestChangePasswordHandler(t *testing.T) {
	body := `{"current_password": "old-password", "new_password": "new-password"}`
	cases := []struct {
		id             string
		body           string
		serviceErr     error
		expectedStatus int
	}{
		{id: "changed", body: body, expectedStatus: http.StatusOK},
		{id: "short", body: `{"current_password": "a", "new_password": "b"}`, expectedStatus: http.StatusBadRequest},
		{id: "unauthorized", body: body, serviceErr: user.ErrInvalidSessionToken, expectedStatus: http.StatusUnauthorized},
		{id: "disabled", body: body, serviceErr: user.ErrUserIsNotEnabled, expectedStatus: http.StatusForbidden},
		{id: "wrong", body: body, serviceErr: user.ErrWrongCredential, expectedStatus: http.StatusUnprocessableEntity},
		{id: "unexpected", body: body, serviceErr: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			svc := &stubService{err: testcase.serviceErr}
			handler := New(svc)

			rw := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPut, "/profile/password", strings.NewReader(testcase.body))
			handler.ServeHTTP(rw, r)

			assert.Equal(t, testcase.expectedStatus, rw.Code)
			if testcase.expectedStatus == http.StatusOK {
				assert.Equal(t, user.RawPassword("old-password"), svc.input.CurrentPassword)
				assert.Equal(t, user.RawPassword("new-password"), svc.input.NewPassword)
			}
		})
	}
}
