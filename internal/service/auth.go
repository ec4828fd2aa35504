package service

import (
	"context"
	"errors"

	"toolirent/internal/config"
	"toolirent/internal/domain"
	"toolirent/internal/logger"
	"toolirent/internal/repository"
	"toolirent/internal/security"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	userRepo     repository.UserRepository
	customerRepo repository.CustomerRepository
	tokens       security.TokenManager
	seed         config.SeedConfig
}

func NewAuthService(
	userRepo repository.UserRepository,
	customerRepo repository.CustomerRepository,
	tokens security.TokenManager,
	seed config.SeedConfig,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		tokens:       tokens,
		seed:         seed,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, []string{string(user.Role)})
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Register creates a member identity and the linked customer record
// carrying the same email, so the new member can rent immediately.
func (s *authService) Register(ctx context.Context, name, email, phone, password string) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, domain.Validationf("name, email and password are required")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.Validationf("email %s is already registered", email)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         domain.UserRoleMember,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// An admin may already have created a customer with this email;
	// link to it instead of inserting a duplicate. On a genuine insert
	// failure, undo the user write so a retry is not blocked by the
	// users.email unique constraint.
	if _, err := s.customerRepo.GetByEmail(ctx, email); errors.Is(err, domain.ErrNotFound) {
		customer := &domain.Customer{
			Name:        name,
			Email:       email,
			PhoneNumber: phone,
			IsActive:    true,
		}
		if err := s.customerRepo.Create(ctx, customer); err != nil {
			if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
				logger.Error("failed to undo user after customer insert failure",
					"user_id", user.ID, "error", delErr)
			}
			return nil, err
		}
		logger.Info("member registered", "user_id", user.ID, "customer_id", customer.ID)
		return user, nil
	} else if err != nil {
		if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
			logger.Error("failed to undo user after customer lookup failure",
				"user_id", user.ID, "error", delErr)
		}
		return nil, err
	}

	logger.Info("member registered", "user_id", user.ID)
	return user, nil
}

func (s *authService) EnsureSeedUsers(ctx context.Context) error {
	if err := s.ensureUser(ctx, s.seed.AdminEmail, s.seed.AdminPassword, "Administrator", domain.UserRoleAdmin); err != nil {
		return err
	}
	return s.ensureUser(ctx, s.seed.MemberEmail, s.seed.MemberPassword, "Member", domain.UserRoleMember)
}

func (s *authService) ensureUser(ctx context.Context, email, password, name string, role domain.UserRole) error {
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	if role == domain.UserRoleMember {
		if _, err := s.customerRepo.GetByEmail(ctx, email); errors.Is(err, domain.ErrNotFound) {
			customer := &domain.Customer{Name: name, Email: email, IsActive: true}
			if err := s.customerRepo.Create(ctx, customer); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}

	logger.Info("seeded identity", "email", email, "role", role)
	return nil
}
