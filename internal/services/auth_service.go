package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"petcare/internal/domain"
	applog "petcare/internal/log"
	"petcare/internal/repos"
	"petcare/internal/validate"
)

var (
	ErrBadCreds = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrBadOTP   = fmt.Errorf("%w: invalid or expired code", ErrUnauthorized)
)

// OTPStore keeps short-lived login codes outside the process.
type OTPStore interface {
	Save(ctx context.Context, phone, code string, ttl time.Duration) error
	Verify(ctx context.Context, phone, code string) (bool, error)
}

// Notifier delivers a login code to a phone (WhatsApp in production).
type Notifier interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// LogNotifier writes the code to the debug log instead of sending it.
type LogNotifier struct{}

func (LogNotifier) SendOTP(_ context.Context, phone, code string) error {
	l := applog.Logger()
	l.Debug().Str("phone", phone).Str("code", code).Msg("otp issued")
	return nil
}

type RegisterInput struct {
	BusinessName string `json:"businessName"`
	Kind         string `json:"kind"`
	OwnerName    string `json:"ownerName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
}

type AuthService struct {
	DB       *sqlx.DB
	Users    *repos.UserRepo
	OTP      OTPStore
	Notifier Notifier
	OTPTTL   time.Duration
}

func NewAuthService(db *sqlx.DB, otp OTPStore, notifier Notifier, ttl time.Duration) *AuthService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AuthService{DB: db, Users: repos.NewUserRepo(db), OTP: otp, Notifier: notifier, OTPTTL: ttl}
}

// Register creates a business with its OWNER user and signs the session in.
func (s *AuthService) Register(ctx context.Context, sid string, in RegisterInput) (*domain.User, error) {
	bizName, ok := validate.Name(in.BusinessName)
	if !ok {
		return nil, invalid("business name is required")
	}
	kind, ok := validate.BusinessKind(in.Kind)
	if !ok {
		return nil, invalid("unknown business kind %q", in.Kind)
	}
	owner, ok := validate.Name(in.OwnerName)
	if !ok {
		return nil, invalid("owner name is required")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, invalid("invalid email")
	}
	var phone *string
	if strings.TrimSpace(in.Phone) != "" {
		p, ok := validate.Phone(in.Phone)
		if !ok {
			return nil, invalid("invalid phone")
		}
		phone = &p
	}
	if !validate.Password(in.Password) {
		return nil, invalid("password needs 8-64 chars with upper, lower, digit and symbol")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	biz := domain.Business{ID: uuid.NewString(), Name: bizName, Kind: kind, CreatedAt: now}
	u := domain.User{
		ID:         uuid.NewString(),
		BusinessID: biz.ID,
		Email:      strings.ToLower(email),
		Name:       owner,
		Phone:      phone,
		Hash:       string(hash),
		Role:       domain.RoleOwner,
	}
	err = inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		users := s.Users.WithTx(tx)
		if err := users.CreateBusiness(ctx, biz); err != nil {
			return err
		}
		if err := users.Create(ctx, u); err != nil {
			if repos.IsUniqueViolation(err) {
				return fmt.Errorf("%w: email or phone already registered", ErrConflict)
			}
			return err
		}
		return users.BindSession(ctx, sid, u.ID)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// RequestOTP issues a code for a registered phone. Unknown phones get the same
// silent success so the endpoint does not reveal which numbers exist.
func (s *AuthService) RequestOTP(ctx context.Context, phone string) error {
	if s.OTP == nil {
		return fmt.Errorf("%w: phone login is not configured", ErrForbidden)
	}
	p, ok := validate.Phone(phone)
	if !ok {
		return invalid("invalid phone")
	}
	if _, err := s.Users.ByPhone(ctx, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	code, err := newOTPCode()
	if err != nil {
		return err
	}
	if err := s.OTP.Save(ctx, p, code, s.OTPTTL); err != nil {
		return err
	}
	return s.Notifier.SendOTP(ctx, p, code)
}

func (s *AuthService) VerifyOTP(ctx context.Context, sid, phone, code string) (*domain.User, error) {
	if s.OTP == nil {
		return nil, fmt.Errorf("%w: phone login is not configured", ErrForbidden)
	}
	p, ok := validate.Phone(phone)
	if !ok {
		return nil, invalid("invalid phone")
	}
	c, ok := validate.OTPCode(code)
	if !ok {
		return nil, ErrBadOTP
	}
	valid, err := s.OTP.Verify(ctx, p, c)
	if errors.Is(err, repos.ErrOTPMissing) || errors.Is(err, repos.ErrOTPAttempts) {
		return nil, fmt.Errorf("%w (%v)", ErrBadOTP, err)
	}
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrBadOTP
	}
	u, err := s.Users.ByPhone(ctx, p)
	if err != nil {
		return nil, ErrBadOTP
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	return s.Users.SessionUser(ctx, sid)
}

func newOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RevokeSessions signs a user out everywhere.
func (s *AuthService) RevokeSessions(ctx context.Context, userID string) error {
	if _, err := s.Users.ByID(ctx, userID); err != nil {
		return notFound(err, "user", userID)
	}
	return s.Users.DeleteSessions(ctx, []string{userID})
}
