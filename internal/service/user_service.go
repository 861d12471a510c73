package service

import (
	"context"
	"fmt"
	"strings"

	"tutomatics/internal/domain"
	"tutomatics/internal/events"
	"tutomatics/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// defaultEmailDomain completes bare usernames entered in the email field.
const defaultEmailDomain = "tutomatics.com"

type UserService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewUserService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// ParseEmailInput accepts either a full email address or a bare username and
// returns both forms.
func ParseEmailInput(raw string) (username, email string, err error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", "", fmt.Errorf("email is required")
	}

	if strings.Contains(value, "@") {
		parts := strings.Split(value, "@")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("invalid email format")
		}
		return parts[0], strings.ToLower(value), nil
	}

	if strings.Contains(value, " ") {
		return "", "", fmt.Errorf("invalid email format")
	}
	return value, fmt.Sprintf("%s@%s", strings.ToLower(value), defaultEmailDomain), nil
}

// Signup registers a student account in pending status. An admin must approve
// the signup before the account becomes usable.
func (s *UserService) Signup(ctx context.Context, username, rawEmail, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("all fields are required")
	}
	_, email, err := ParseEmailInput(rawEmail)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		Status:       models.UserStatusPending,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.publishUserEvent(events.EventSignupRequested, user)
	s.logger.Info().Int64("user_id", user.ID).Str("username", username).Msg("signup requested")
	return user, nil
}

// ApproveSignup moves a pending user to approved and enqueues a notification.
func (s *UserService) ApproveSignup(ctx context.Context, userID int64) error {
	if err := s.repo.ApproveUser(ctx, userID); err != nil {
		return err
	}

	n := &models.Notification{UserID: userID, Message: "Your signup request has been approved."}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("enqueue notification")
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err == nil {
		s.publishUserEvent(events.EventSignupApproved, user)
	}

	s.logger.Info().Int64("user_id", userID).Msg("signup approved")
	return nil
}

// DenySignup removes a pending user record.
func (s *UserService) DenySignup(ctx context.Context, userID int64) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Status != models.UserStatusPending {
		return fmt.Errorf("user %d is not pending", userID)
	}

	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return err
	}

	s.publishUserEvent(events.EventSignupDenied, user)
	s.logger.Info().Int64("user_id", userID).Msg("signup denied")
	return nil
}

// ListPendingSignups returns users awaiting approval.
func (s *UserService) ListPendingSignups(ctx context.Context) ([]models.User, error) {
	return s.repo.GetUsersByStatus(ctx, models.UserStatusPending)
}

// VerifyPassword checks a candidate password against the stored hash.
func (s *UserService) VerifyPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) publishUserEvent(eventType string, user *models.User) {
	if s.eventBus == nil {
		return
	}
	payload := events.UserEventPayload{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Status:   user.Status,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("publish event")
	}
}
