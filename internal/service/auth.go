package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/packvault/platform/internal/auth"
	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/ledger"
	"github.com/packvault/platform/internal/repository"
)

// AuthService handles registration and login.
type AuthService struct {
	pool          *pgxpool.Pool
	accounts      repository.AccountRepository
	outbox        repository.OutboxRepository
	engine        *ledger.Engine
	jwtMgr        *auth.JWTManager
	startingCoins int64
	logger        *slog.Logger
}

// NewAuthService creates an AuthService. New accounts are seeded with
// startingCoins so they can open packs immediately.
func NewAuthService(
	pool *pgxpool.Pool,
	accounts repository.AccountRepository,
	outbox repository.OutboxRepository,
	engine *ledger.Engine,
	jwtMgr *auth.JWTManager,
	startingCoins int64,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		pool:          pool,
		accounts:      accounts,
		outbox:        outbox,
		engine:        engine,
		jwtMgr:        jwtMgr,
		startingCoins: startingCoins,
		logger:        logger,
	}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is returned by both Register and Login.
type AuthResult struct {
	Token     string    `json:"token"`
	AccountID uuid.UUID `json:"account_id"`
	Username  string    `json:"username"`
	Coins     int64     `json:"coins"`
}

// Register creates an account with the starting balance and returns a JWT.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}

	existing, err := s.accounts.FindByUsername(ctx, s.pool, input.Username)
	if err != nil {
		return nil, domain.ErrInternal("find account", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           uuid.New(),
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, tx, account); err != nil {
		return nil, domain.ErrInternal("create account", err)
	}

	// The starting balance goes through the ledger so the wallet history
	// explains where the coins came from.
	if s.startingCoins > 0 {
		_, updated, err := s.engine.ExecuteCredit(ctx, tx, domain.PostEntryParams{
			AccountID: account.ID,
			Type:      domain.EntrySignupGrant,
			Amount:    s.startingCoins,
		})
		if err != nil {
			return nil, err
		}
		account.Coins = updated.Coins
	}

	event := domain.NewAccountCreatedEvent(account.ID, account.Username, account.Role)
	if err := s.outbox.Insert(ctx, tx, event); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	token, err := s.jwtMgr.GenerateToken(account.ID, account.Username, account.Role)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{
		Token:     token,
		AccountID: account.ID,
		Username:  account.Username,
		Coins:     account.Coins,
	}, nil
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an account and returns a JWT.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	account, err := s.accounts.FindByUsername(ctx, s.pool, input.Username)
	if err != nil {
		return nil, domain.ErrInternal("find account", err)
	}
	if account == nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	token, err := s.jwtMgr.GenerateToken(account.ID, account.Username, account.Role)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{
		Token:     token,
		AccountID: account.ID,
		Username:  account.Username,
		Coins:     account.Coins,
	}, nil
}
