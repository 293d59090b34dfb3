package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/barber-loyalty/internal/audit"
	"github.com/BruksfildServices01/barber-loyalty/internal/auth"
	"github.com/BruksfildServices01/barber-loyalty/internal/domain"
	"github.com/BruksfildServices01/barber-loyalty/internal/domain/loyalty"
	userdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/user"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/validators"
)

// bcrypt ignores input past 72 bytes and newer versions reject it.
const maxPasswordBytes = 72

type Options struct {
	AllowAdminSignup  bool
	VerifyEmailDomain bool
	Policy            loyalty.Policy
}

type SignUpInput struct {
	Username  string
	Password  string
	Email     string
	Name      string
	FirstName string
	Phone     string
	Roles     []string
}

// Session is what a successful sign-in hands back.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type Service struct {
	users  userdomain.Repository
	tokens *auth.Issuer
	opts   Options
	audit  *audit.Dispatcher
	log    *zap.Logger
}

func NewService(
	users userdomain.Repository,
	tokens *auth.Issuer,
	opts Options,
	dispatcher *audit.Dispatcher,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:  users,
		tokens: tokens,
		opts:   opts,
		audit:  dispatcher,
		log:    log,
	}
}

func (s *Service) Policy() loyalty.Policy {
	return s.opts.Policy
}

// ======================================================
// SIGN UP
// ======================================================

// SignUp registers an account. A guest created earlier at booking time
// is upgraded in place, keeping its history and loyalty counters, only
// when both its phone and email equal the ones given here. Any other
// contact overlap yields a fresh account.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.Phone)

	if len(in.Password) > maxPasswordBytes {
		return nil, httperr.ErrBusiness("password_too_long")
	}

	role, err := s.resolveRole(in.Roles)
	if err != nil {
		return nil, err
	}

	if s.opts.VerifyEmailDomain && email != "" && !validators.IsEmailDomainValid(ctx, email) {
		return nil, httperr.ErrBusiness("invalid_email_domain")
	}

	// 1. username must be free
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, httperr.ErrBusiness("username_taken")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// 2. email must not belong to a registered account
	if email != "" {
		owner, err := s.users.FindByContact(ctx, "", email)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if owner != nil && !owner.IsGuest() {
			return nil, httperr.ErrBusiness("email_taken")
		}
	}

	// 3. guest with exactly these contacts is upgraded
	guest, err := s.users.FindByContact(ctx, phone, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if guest != nil && (!guest.IsGuest() || !sameContacts(guest, phone, email)) {
		guest = nil
	}

	u := guest
	if u == nil {
		u = &models.User{Email: email, Phone: phone}
	}

	u.Username = username
	u.PasswordHash = string(hashed)
	u.Role = role
	u.Name = firstNonEmpty(strings.TrimSpace(in.Name), u.Name)
	u.FirstName = firstNonEmpty(strings.TrimSpace(in.FirstName), u.FirstName)

	// 4. persist
	if u.ID == 0 {
		err = s.users.Create(ctx, u)
	} else {
		err = s.users.Save(ctx, u)
	}
	if err != nil {
		return nil, httperr.TranslateUnique(err)
	}

	s.audit.Dispatch(audit.Event{
		UserID:   &u.ID,
		Action:   "user_signed_up",
		Entity:   "user",
		EntityID: &u.ID,
		Metadata: map[string]any{"role": u.Role, "upgraded_guest": guest != nil},
	})
	s.log.Info("user registered",
		zap.Uint("user_id", u.ID),
		zap.String("role", u.Role),
		zap.Bool("upgraded_guest", guest != nil),
	)

	return u, nil
}

func (s *Service) resolveRole(roles []string) (string, error) {
	for _, r := range roles {
		if strings.Contains(strings.ToLower(r), "admin") {
			if !s.opts.AllowAdminSignup {
				return "", httperr.ErrBusiness("admin_signup_disabled")
			}
			return models.RoleAdmin, nil
		}
	}
	return models.RoleClient, nil
}

// ======================================================
// SIGN IN / PROFILE
// ======================================================

func (s *Service) SignIn(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, httperr.ErrBusiness("invalid_credentials")
	}
	if err != nil {
		return nil, err
	}

	if u.IsGuest() {
		return nil, httperr.ErrBusiness("invalid_credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, httperr.ErrBusiness("invalid_credentials")
	}

	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *Service) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, httperr.ErrBusiness("user_not_found")
	}
	return u, err
}

// sameContacts reports whether u holds exactly the given phone and email.
func sameContacts(u *models.User, phone, email string) bool {
	return strings.TrimSpace(u.Phone) == phone &&
		strings.EqualFold(strings.TrimSpace(u.Email), email)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
