package accounts

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/platinummonkey/poolguide/pkg/auth"
	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/storage"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when the username or email is taken
	ErrUserExists = errors.New("user already exists")
)

// Outcome labels
const (
	outcomeSuccess  = "success"
	outcomeInvalid  = "invalid_credentials"
	outcomeConflict = "conflict"
	outcomeError    = "error"
)

// LoginResult is returned by a successful login
type LoginResult struct {
	Token string
	User  auth.PublicUser
}

// Service runs the login and registration flows
type Service struct {
	users   storage.UserStore
	hasher  *auth.PasswordHasher
	issuer  *auth.TokenIssuer
	metrics *observability.Metrics

	// compared against when the email is unknown so both failures cost a bcrypt round
	dummyHash string

	loginCounter    metric.Int64Counter
	registerCounter metric.Int64Counter
}

// NewService wires the account flows. metrics may be nil.
func NewService(users storage.UserStore, hasher *auth.PasswordHasher, issuer *auth.TokenIssuer, metrics *observability.Metrics) (*Service, error) {
	dummy, err := hasher.Hash("poolguide-unknown-account")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}

	meter := otel.Meter(observability.InstrumentationName)
	loginCounter, err := meter.Int64Counter("poolguide.auth.logins",
		metric.WithDescription("Login attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create login counter: %w", err)
	}
	registerCounter, err := meter.Int64Counter("poolguide.auth.registrations",
		metric.WithDescription("Registration attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create registration counter: %w", err)
	}

	return &Service{
		users:           users,
		hasher:          hasher,
		issuer:          issuer,
		metrics:         metrics,
		dummyHash:       dummy,
		loginCounter:    loginCounter,
		registerCounter: registerCounter,
	}, nil
}

// Login checks the credentials and issues a token
func (s *Service) Login(ctx context.Context, email, password string) (result *LoginResult, err error) {
	ctx, span := observability.Tracer().Start(ctx, "accounts.Login")
	defer span.End()
	defer func() { s.recordLogin(ctx, err) }()

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		s.hasher.Verify(password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user lookup failed")
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issue failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	observability.FromContext(ctx).WithField("user_id", user.ID).Info("User logged in")

	return &LoginResult{Token: token, User: user.Public()}, nil
}

// Register creates a non-admin account
func (s *Service) Register(ctx context.Context, username, email, password string) (user *auth.User, err error) {
	ctx, span := observability.Tracer().Start(ctx, "accounts.Register")
	defer span.End()
	defer func() { s.recordRegistration(ctx, err) }()

	_, err = s.users.FindUserByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, storage.ErrNotFound):
		span.RecordError(err)
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user = &auth.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      false,
	}

	// The unique constraints close the race with a concurrent registration
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUserExists
		}
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	observability.FromContext(ctx).WithField("user_id", user.ID).Info("User registered")

	return user, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, ErrInvalidCredentials):
		return outcomeInvalid
	case errors.Is(err, ErrUserExists):
		return outcomeConflict
	default:
		return outcomeError
	}
}

func (s *Service) recordLogin(ctx context.Context, err error) {
	outcome := outcomeOf(err)
	s.loginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if s.metrics != nil {
		s.metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) recordRegistration(ctx context.Context, err error) {
	outcome := outcomeOf(err)
	s.registerCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
}
