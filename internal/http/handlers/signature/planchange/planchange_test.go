package planchange

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gymhub/gymhub/internal/http/middlewarectx"
	"github.com/gymhub/gymhub/internal/services/signature"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ChangeGymPlan(ctx context.Context, userID, gymPlanID int64) (*signature.ChangeResult, error) {
	args := m.Called(ctx, userID, gymPlanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*signature.ChangeResult), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(h *Handler, body string, userID any) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/signatures/plan", strings.NewReader(body))
	if userID != nil {
		ctx := context.WithValue(req.Context(), middlewarectx.UserID, userID)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPlanChange_Success(t *testing.T) {
	svc := new(MockService)
	svc.On("ChangeGymPlan", mock.Anything, int64(7), int64(2)).
		Return(&signature.ChangeResult{Message: "Gym plan updated successfully without requiring payment."}, nil)

	rec := serve(New(discardLogger(), svc), `{"gymPlanId": 2}`, int64(7))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "updated successfully")
	svc.AssertExpectations(t)
}

func TestPlanChange_MissingBody(t *testing.T) {
	svc := new(MockService)

	rec := serve(New(discardLogger(), svc), `{}`, int64(7))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertNotCalled(t, "ChangeGymPlan", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlanChange_PendingPaymentsGate(t *testing.T) {
	svc := new(MockService)
	svc.On("ChangeGymPlan", mock.Anything, int64(7), int64(2)).
		Return(nil, &signature.PendingPaymentsError{Count: 2})

	rec := serve(New(discardLogger(), svc), `{"gymPlanId": 2}`, int64(7))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "2 pending payments")
}

func TestPlanChange_PlanNotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("ChangeGymPlan", mock.Anything, int64(7), int64(99)).
		Return(nil, signature.ErrPlanNotFound)

	rec := serve(New(discardLogger(), svc), `{"gymPlanId": 99}`, int64(7))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlanChange_NoActiveSignature(t *testing.T) {
	svc := new(MockService)
	svc.On("ChangeGymPlan", mock.Anything, int64(7), int64(2)).
		Return(nil, signature.ErrNoActiveSignature)

	rec := serve(New(discardLogger(), svc), `{"gymPlanId": 2}`, int64(7))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlanChange_Unauthorized(t *testing.T) {
	svc := new(MockService)

	rec := serve(New(discardLogger(), svc), `{"gymPlanId": 2}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "ChangeGymPlan", mock.Anything, mock.Anything, mock.Anything)
}
