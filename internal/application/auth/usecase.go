package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Agromercado-api/internal/application/dto"
	"github.com/jhoicas/Agromercado-api/internal/application/ports"
	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
	"github.com/jhoicas/Agromercado-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// LockedError bloqueo vigente; envuelve domain.ErrAccountLocked.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s hasta %s", domain.ErrAccountLocked.Error(), e.Until.Format(time.RFC3339))
}

func (e *LockedError) Unwrap() error { return domain.ErrAccountLocked }

// AuthUseCase casos de uso de autenticación: registro y login con bloqueo escalonado.
type AuthUseCase struct {
	userRepo repository.UserRepository
	throttle ports.LoginThrottle
	jwtCfg   JWTConfig
	log      zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, throttle ports.LoginThrottle, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, throttle: throttle, jwtCfg: jwtCfg, log: log}
}

// Register autoregistro de clientes.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	return uc.createUser(ctx, in.Email, in.Password, in.Name, entity.RoleCustomer)
}

// CreateUser alta de usuarios internos (staff, member, logistic, admin). Solo admin.
func (uc *AuthUseCase) CreateUser(ctx context.Context, p Principal, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !p.HasRole(entity.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	return uc.createUser(ctx, in.Email, in.Password, in.Name, in.Role)
}

// createUser hashea password con bcrypt y persiste. ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) createUser(ctx context.Context, email, password, name, role string) (*dto.UserResponse, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < 8 || !entity.IsValidRole(role) {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("role", role).Msg("usuario creado")
	return toUserResponse(user), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Tras MaxAttempts fallos dentro de la ventana la cuenta queda bloqueada (LockedError).
// Email inexistente y password incorrecto cuentan igual y devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	key := normalizeEmail(in.Email)
	if until, locked, err := uc.throttle.LockedUntil(ctx, key); err != nil {
		return nil, err
	} else if locked {
		return nil, &LockedError{Until: until}
	}

	user, err := uc.userRepo.FindByEmail(ctx, key)
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, uc.fail(ctx, key)
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	if err := uc.throttle.Reset(ctx, key); err != nil {
		uc.log.Warn().Err(err).Msg("login: no se pudo limpiar el contador")
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

func (uc *AuthUseCase) fail(ctx context.Context, key string) error {
	until, locked, err := uc.throttle.RegisterFailure(ctx, key)
	if err != nil {
		return errors.Join(domain.ErrUnauthorized, err)
	}
	if locked {
		uc.log.Warn().Str("email", key).Time("until", until).Msg("login: cuenta bloqueada")
		return &LockedError{Until: until}
	}
	return domain.ErrUnauthorized
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
