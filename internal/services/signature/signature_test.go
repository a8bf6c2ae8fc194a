package signature

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gymhub/gymhub/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

func (m *MockRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) CountPendingPaymentsByUser(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetGymPlan(ctx context.Context, id int64) (*models.GymPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GymPlan), args.Error(1)
}

func (m *MockRepository) CurrentSignatureByUser(ctx context.Context, userID int64) (*models.SignatureWithPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SignatureWithPlan), args.Error(1)
}

func (m *MockRepository) ListSignaturesByUser(ctx context.Context, userID int64) ([]*models.SignatureWithPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SignatureWithPlan), args.Error(1)
}

func (m *MockRepository) CreatePayment(ctx context.Context, p models.Payment) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) UpdateSignaturePlan(ctx context.Context, signatureID, gymPlanID int64, isActive bool) error {
	args := m.Called(ctx, signatureID, gymPlanID, isActive)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUser(id int64) *models.User {
	return &models.User{ID: id, Email: "member@example.com"}
}

func testPlan(id int64, name, price string) *models.GymPlan {
	return &models.GymPlan{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
}

func testSignature(id, userID int64, plan *models.GymPlan) *models.SignatureWithPlan {
	return &models.SignatureWithPlan{
		Signature: models.Signature{
			ID:        id,
			UserID:    userID,
			GymPlanID: plan.ID,
			StartDate: time.Now().AddDate(0, -3, 0),
			IsActive:  true,
		},
		Plan: *plan,
	}
}

func TestChangeGymPlan_UpgradeCreatesPayment(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)

	basic := testPlan(1, "Basic", "25.00")
	premium := testPlan(2, "Premium", "50.00")
	sig := testSignature(10, 7, basic)

	repo.On("GetUser", ctx, int64(7)).Return(testUser(7), nil)
	repo.On("CountPendingPaymentsByUser", ctx, int64(7)).Return(0, nil)
	repo.On("GetGymPlan", ctx, int64(2)).Return(premium, nil)
	repo.On("CurrentSignatureByUser", ctx, int64(7)).Return(sig, nil)
	repo.On("WithinTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("CreatePayment", ctx, mock.MatchedBy(func(p models.Payment) bool {
		return p.SignatureID == 10 &&
			p.Amount.Equal(decimal.RequireFromString("25.00")) &&
			p.StatusID == models.PaymentStatusPending
	})).Return(int64(33), nil)
	repo.On("UpdateSignaturePlan", ctx, int64(10), int64(2), false).Return(nil)

	svc := New(repo, discardLogger())
	result, err := svc.ChangeGymPlan(ctx, 7, 2)

	require.NoError(t, err)
	assert.Equal(t, "Gym plan updated successfully with payment.", result.Message)
	require.NotNil(t, result.Payment)
	assert.Equal(t, int64(33), result.Payment.ID)
	assert.Equal(t, "Upgrade from Basic to Premium", result.Payment.Title)
	assert.True(t, result.Payment.Amount.Equal(decimal.RequireFromString("25.00")))
	repo.AssertExpectations(t)
}

func TestChangeGymPlan_DowngradeWithoutPayment(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)

	premium := testPlan(2, "Premium", "50.00")
	basic := testPlan(1, "Basic", "25.00")
	sig := testSignature(10, 7, premium)

	repo.On("GetUser", ctx, int64(7)).Return(testUser(7), nil)
	repo.On("CountPendingPaymentsByUser", ctx, int64(7)).Return(0, nil)
	repo.On("GetGymPlan", ctx, int64(1)).Return(basic, nil)
	repo.On("CurrentSignatureByUser", ctx, int64(7)).Return(sig, nil)
	repo.On("WithinTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("UpdateSignaturePlan", ctx, int64(10), int64(1), true).Return(nil)

	svc := New(repo, discardLogger())
	result, err := svc.ChangeGymPlan(ctx, 7, 1)

	require.NoError(t, err)
	assert.Equal(t, "Gym plan updated successfully without requiring payment.", result.Message)
	assert.Nil(t, result.Payment)
	repo.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestChangeGymPlan_EqualPriceWithoutPayment(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)

	morning := testPlan(3, "Morning", "30.00")
	evening := testPlan(4, "Evening", "30.00")
	sig := testSignature(11, 8, morning)

	repo.On("GetUser", ctx, int64(8)).Return(testUser(8), nil)
	repo.On("CountPendingPaymentsByUser", ctx, int64(8)).Return(0, nil)
	repo.On("GetGymPlan", ctx, int64(4)).Return(evening, nil)
	repo.On("CurrentSignatureByUser", ctx, int64(8)).Return(sig, nil)
	repo.On("WithinTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("UpdateSignaturePlan", ctx, int64(11), int64(4), true).Return(nil)

	svc := New(repo, discardLogger())
	result, err := svc.ChangeGymPlan(ctx, 8, 4)

	require.NoError(t, err)
	assert.Equal(t, "Gym plan updated successfully without requiring payment.", result.Message)
	assert.Nil(t, result.Payment)
	repo.AssertExpectations(t)
}

func TestChangeGymPlan_SamePlanIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)

	basic := testPlan(1, "Basic", "25.00")
	sig := testSignature(10, 7, basic)

	repo.On("GetUser", ctx, int64(7)).Return(testUser(7), nil)
	repo.On("CountPendingPaymentsByUser", ctx, int64(7)).Return(0, nil)
	repo.On("GetGymPlan", ctx, int64(1)).Return(basic, nil)
	repo.On("CurrentSignatureByUser", ctx, int64(7)).Return(sig, nil)

	svc := New(repo, discardLogger())
	result, err := svc.ChangeGymPlan(ctx, 7, 1)

	require.NoError(t, err)
	assert.Equal(t, "The selected gym plan is already active.", result.Message)
	assert.Nil(t, result.Payment)
	repo.AssertNotCalled(t, "WithinTx", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateSignaturePlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChangeGymPlan_PendingPaymentsBlockChange(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)

	repo.On("GetUser", ctx, int64(7)).Return(testUser(7), nil)
	repo.On("CountPendingPaymentsByUser", ctx, int64(7)).Return(2, nil)

	svc := New(repo, discardLogger())
	result, err := svc.ChangeGymPlan(ctx, 7, 2)

	require.Error(t, err)
	assert.Nil(t, result)
	var pendingErr *PendingPaymentsError
	require.ErrorAs(t, err, &pendingErr)
	assert.Equal(t, 2, pendingErr.Count)
	repo.AssertNotCalled(t, "GetGymPlan", mock.Anything, mock.Anything)
}

func TestChangeGymPlan_PendingPaymentFoundInsideTx(t *testing.T) {
	// A payment created between the pre-check and the transaction must
	// still block the change.
	ctx := context.Background()
	repo := new(MockRepository)

	basic := testPlan(1, "Basic", "25.00")
	premium := testPlan(2, "Premium", "50.00")
	sig := testSignature(10, 7, basic)

	repo.On("GetUser", ctx, int64(7)).Return(testUser(7), nil)
	repo.On("CountPendingPaymentsByUser", ctx, int64(7)).Return(0, nil).Once()
	repo.On("GetGymPlan", ctx, int64(2)).Return(premium, nil)
	repo.On("CurrentSignatureByUser", ctx, int64(7)).Return(sig, nil)
	repo.On("WithinTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("CountPendingPaymentsByUser", ctx, int64(7)).Return(1, nil).Once()

	svc := New(repo, discardLogger())
	result, err := svc.ChangeGymPlan(ctx, 7, 2)

	require.Error(t, err)
	assert.Nil(t, result)
	var pendingErr *PendingPaymentsError
	require.ErrorAs(t, err, &pendingErr)
	assert.Equal(t, 1, pendingErr.Count)
	repo.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateSignaturePlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChangeGymPlan_UserNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)

	repo.On("GetUser", ctx, int64(99)).Return(nil, sql.ErrNoRows)

	svc := New(repo, discardLogger())
	result, err := svc.ChangeGymPlan(ctx, 99, 2)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangeGymPlan_PlanNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)

	repo.On("GetUser", ctx, int64(7)).Return(testUser(7), nil)
	repo.On("CountPendingPaymentsByUser", ctx, int64(7)).Return(0, nil)
	repo.On("GetGymPlan", ctx, int64(99)).Return(nil, sql.ErrNoRows)

	svc := New(repo, discardLogger())
	result, err := svc.ChangeGymPlan(ctx, 7, 99)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestChangeGymPlan_NoActiveSignature(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)

	repo.On("GetUser", ctx, int64(7)).Return(testUser(7), nil)
	repo.On("CountPendingPaymentsByUser", ctx, int64(7)).Return(0, nil)
	repo.On("GetGymPlan", ctx, int64(2)).Return(testPlan(2, "Premium", "50.00"), nil)
	repo.On("CurrentSignatureByUser", ctx, int64(7)).Return(nil, sql.ErrNoRows)

	svc := New(repo, discardLogger())
	result, err := svc.ChangeGymPlan(ctx, 7, 2)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoActiveSignature)
}

func TestChangeGymPlan_CreatePaymentFails(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)

	basic := testPlan(1, "Basic", "25.00")
	premium := testPlan(2, "Premium", "50.00")
	sig := testSignature(10, 7, basic)

	repo.On("GetUser", ctx, int64(7)).Return(testUser(7), nil)
	repo.On("CountPendingPaymentsByUser", ctx, int64(7)).Return(0, nil)
	repo.On("GetGymPlan", ctx, int64(2)).Return(premium, nil)
	repo.On("CurrentSignatureByUser", ctx, int64(7)).Return(sig, nil)
	repo.On("WithinTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("CreatePayment", ctx, mock.AnythingOfType("models.Payment")).
		Return(int64(0), errors.New("insert failed"))

	svc := New(repo, discardLogger())
	result, err := svc.ChangeGymPlan(ctx, 7, 2)

	assert.Nil(t, result)
	require.Error(t, err)
	repo.AssertNotCalled(t, "UpdateSignaturePlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListUserSignatures(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)

	basic := testPlan(1, "Basic", "25.00")
	sigs := []*models.SignatureWithPlan{testSignature(10, 7, basic)}

	repo.On("GetUser", ctx, int64(7)).Return(testUser(7), nil)
	repo.On("ListSignaturesByUser", ctx, int64(7)).Return(sigs, nil)

	svc := New(repo, discardLogger())
	got, err := svc.ListUserSignatures(ctx, 7)

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(10), got[0].ID)
}

func TestListUserSignatures_UserNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)

	repo.On("GetUser", ctx, int64(99)).Return(nil, sql.ErrNoRows)

	svc := New(repo, discardLogger())
	got, err := svc.ListUserSignatures(ctx, 99)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
