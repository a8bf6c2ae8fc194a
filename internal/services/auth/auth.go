// Package auth implements member registration, login and token refresh.
// Registration provisions the full member footprint in one go: the
// account, its Stripe customer, the first signature and the pending
// registration payment.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gymhub/gymhub/internal/lib/jwt"
	"github.com/gymhub/gymhub/internal/lib/membership"
	"github.com/gymhub/gymhub/internal/lib/password"
	"github.com/gymhub/gymhub/internal/models"
	stripeclient "github.com/gymhub/gymhub/internal/stripe"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPlanNotFound       = errors.New("gym plan not found")
	ErrUserNotFound       = errors.New("user not found")
)

// EmailTakenError rejects registration with an e-mail already on file.
type EmailTakenError struct {
	Email string
}

func (e *EmailTakenError) Error() string {
	return fmt.Sprintf("email %s is already registered", e.Email)
}

// NIFTakenError rejects registration with a NIF already on file.
type NIFTakenError struct {
	NIF string
}

func (e *NIFTakenError) Error() string {
	return fmt.Sprintf("nif %s is already registered", e.NIF)
}

// Repository defines the storage methods the auth service needs.
type Repository interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	UserExistsByEmail(ctx context.Context, email string) (bool, error)
	UserExistsByNIF(ctx context.Context, nif string) (bool, error)
	MembershipNumberExists(ctx context.Context, number string) (bool, error)
	CreateUser(ctx context.Context, user models.User) (int64, error)
	CreateSignature(ctx context.Context, sig models.Signature) (int64, error)
	CreatePayment(ctx context.Context, p models.Payment) (int64, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetGymPlan(ctx context.Context, id int64) (*models.GymPlan, error)
}

// Gateway is the Stripe surface the service depends on.
type Gateway interface {
	CreateCustomer(ctx context.Context, params stripeclient.CustomerParams) (string, error)
}

// Service implements registration, login and refresh.
type Service struct {
	repo         Repository
	gateway      Gateway
	accessMaker  jwt.Maker
	refreshMaker jwt.Maker
	log          *slog.Logger
}

// New creates a Service.
func New(repo Repository, gateway Gateway, accessMaker, refreshMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		gateway:      gateway,
		accessMaker:  accessMaker,
		refreshMaker: refreshMaker,
		log:          log,
	}
}

// RegisterResult is returned after a successful registration. The first
// payment stays pending until the member settles it through Stripe.
type RegisterResult struct {
	PaymentID    int64              `json:"paymentId"`
	AmountToPay  decimal.Decimal    `json:"amountToPay"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
	User         models.UserSummary `json:"user"`
}

// SessionResult is returned by Login and Refresh.
type SessionResult struct {
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken,omitempty"`
	User         models.UserSummary `json:"user"`
}

// Register creates the member account along with its Stripe customer, the
// initial signature on the chosen plan and the pending registration
// payment. The signature stays inactive until that payment clears.
func (s *Service) Register(ctx context.Context, req models.DummyRegister) (*RegisterResult, error) {
	const op = "services.auth.Register"

	plan, err := s.repo.GetGymPlan(ctx, req.GymPlanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	taken, err := s.repo.UserExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return nil, &EmailTakenError{Email: req.Email}
	}

	taken, err = s.repo.UserExistsByNIF(ctx, req.NIF)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return nil, &NIFTakenError{NIF: req.NIF}
	}

	// Validation already checked the layout, so parsing cannot fail here.
	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var endDate *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		endDate = &parsed
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	number, err := membership.Generate(ctx, s.repo.MembershipNumberExists)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// The customer is created before the transaction; on a later rollback
	// it stays orphaned at Stripe, which is harmless.
	customerID, err := s.gateway.CreateCustomer(ctx, stripeclient.CustomerParams{
		Name:  req.FirstName + " " + req.LastName,
		Email: req.Email,
		Phone: req.PhoneNumber,
		Address: stripeclient.Address{
			Line1:      req.Address,
			Line2:      req.Address2,
			City:       req.City,
			PostalCode: req.Zipcode,
			Country:    req.Country,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	user := models.User{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		PhoneNumber:      req.PhoneNumber,
		Gender:           req.Gender,
		BirthDate:        birthDate,
		DocType:          req.DocType,
		DocNumber:        req.DocNumber,
		NIF:              req.NIF,
		Address:          req.Address,
		Address2:         req.Address2,
		Zipcode:          req.Zipcode,
		Country:          req.Country,
		City:             req.City,
		MembershipNumber: number,
		PasswordHash:     hash,
		StripeCustomerID: customerID,
		Role:             "member",
		CreatedAt:        now,
	}

	var paymentID int64
	err = s.repo.WithinTx(ctx, func(ctx context.Context) error {
		userID, err := s.repo.CreateUser(ctx, user)
		if err != nil {
			return err
		}
		user.ID = userID

		sigID, err := s.repo.CreateSignature(ctx, models.Signature{
			UserID:    userID,
			GymPlanID: plan.ID,
			StartDate: now,
			EndDate:   endDate,
			IsActive:  false,
		})
		if err != nil {
			return err
		}

		paymentID, err = s.repo.CreatePayment(ctx, models.Payment{
			SignatureID: sigID,
			Title:       fmt.Sprintf("Registration for plan %s", plan.Name),
			Amount:      plan.Price,
			Date:        now,
			StatusID:    models.PaymentStatusPending,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accessToken, err := s.accessMaker.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	refreshToken, err := s.refreshMaker.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("member registered",
		slog.Int64("user_id", user.ID),
		slog.String("membership_number", number),
		slog.Int64("payment_id", paymentID))

	return &RegisterResult{
		PaymentID:    paymentID,
		AmountToPay:  plan.Price,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         summary(&user),
	}, nil
}

// Login checks the credentials and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, req models.DummyLogin) (*SessionResult, error) {
	const op = "services.auth.Login"

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if password.CompareHash(user.PasswordHash, req.Password) != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.accessMaker.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	refreshToken, err := s.refreshMaker.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &SessionResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         summary(user),
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*SessionResult, error) {
	const op = "services.auth.Refresh"

	claims, err := s.refreshMaker.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accessToken, err := s.accessMaker.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &SessionResult{
		AccessToken: accessToken,
		User:        summary(user),
	}, nil
}

func summary(u *models.User) models.UserSummary {
	return models.UserSummary{
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		MemberSince:       u.CreatedAt.Format("2006-01-02"),
		MembershipNumber:  u.MembershipNumber,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}
