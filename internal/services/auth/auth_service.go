package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/db"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/utils"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/validation"
)

var errInvalidCredentials = apperr.Auth("Invalid credentials")

// bcrypt menolak input lebih dari 72 byte; validator max menghitung rune
const maxPasswordBytes = 72

type AuthService struct {
	DB        *gorm.DB
	JWTSecret string
	Expires   int // menit
}

func NewAuthService(db *gorm.DB, jwtSecret string, expiresMin int) *AuthService {
	return &AuthService{DB: db, JWTSecret: jwtSecret, Expires: expiresMin}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns it. Emails are stored lower-cased.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if len(in.Password) > maxPasswordBytes {
		fields := apperr.FieldErrors{}
		fields.Add("password", "length should be less or equal than 72 bytes")
		return nil, apperr.InvalidFields(fields)
	}

	var existing models.User
	err := s.DB.WithContext(ctx).Where("email = ?", in.Email).First(&existing).Error
	if err == nil {
		return nil, apperr.Conflict("User already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pw, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: pw,
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, err
	}
	return &u, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password return the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, "", err
	}

	var u models.User
	err := s.DB.WithContext(ctx).Where("email = ?", in.Email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", errInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if !utils.CheckPassword(u.Password, in.Password) {
		return nil, "", errInvalidCredentials
	}

	token, err := s.IssueToken(&u)
	if err != nil {
		return nil, "", err
	}
	return &u, token, nil
}

func (s *AuthService) IssueToken(u *models.User) (string, error) {
	return utils.SignJWT(s.JWTSecret, u.ID.String(), s.Expires)
}

// CurrentUser resolves a session token to the user id it was issued for.
func (s *AuthService) CurrentUser(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, apperr.Auth("Not Authenticated")
	}
	claims, err := utils.ParseJWT(s.JWTSecret, token)
	if err != nil {
		return uuid.Nil, apperr.Auth("Token is not valid")
	}
	uid, err := uuid.Parse(strings.TrimSpace(claims.UserID))
	if err != nil {
		return uuid.Nil, apperr.Auth("Token is not valid")
	}
	return uid, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.DB.WithContext(ctx).First(&u, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindOrCreateExternal returns the account for email, creating one with an
// unusable password when it does not exist yet. Used by Google sign-in.
func (s *AuthService) FindOrCreateExternal(ctx context.Context, email, name string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperr.Validation("email is required")
	}

	var u models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	pw, err := utils.HashPassword(randomSecret(32))
	if err != nil {
		return nil, err
	}
	u = models.User{Name: name, Email: email, Password: pw}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if !db.IsUniqueViolation(err) {
			return nil, err
		}
		// created concurrently by another request
		if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
			return nil, err
		}
	}
	return &u, nil
}

func randomSecret(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
