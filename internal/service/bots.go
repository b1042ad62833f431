package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/ledger"
	"github.com/packvault/platform/internal/repository"
)

// BotProvisioner supplies funded bot accounts for simulated battles. Existing
// bots are reused before new ones are created; every returned bot is topped up
// to at least the required balance so the subsequent seat debit cannot fail.
type BotProvisioner struct {
	accounts repository.AccountRepository
	engine   *ledger.Engine
}

// NewBotProvisioner creates a BotProvisioner.
func NewBotProvisioner(accounts repository.AccountRepository, engine *ledger.Engine) *BotProvisioner {
	return &BotProvisioner{accounts: accounts, engine: engine}
}

// EnsureBots returns n funded bot accounts, creating and topping up within the
// caller's transaction. Bots already seated in the battle are never handed out
// twice.
func (p *BotProvisioner) EnsureBots(ctx context.Context, tx pgx.Tx, battleID uuid.UUID, n int, requiredCoins int64) ([]domain.Account, error) {
	if n <= 0 {
		return nil, nil
	}

	existing, err := p.accounts.ListBots(ctx, tx, battleID, n)
	if err != nil {
		return nil, domain.ErrInternal("list bots", err)
	}

	bots := make([]domain.Account, 0, n)
	bots = append(bots, existing...)

	for len(bots) < n {
		bot, err := p.createBot(ctx, tx)
		if err != nil {
			return nil, err
		}
		bots = append(bots, *bot)
	}

	for i := range bots {
		if bots[i].Coins >= requiredCoins {
			continue
		}
		topUp := requiredCoins - bots[i].Coins
		_, updated, err := p.engine.ExecuteCredit(ctx, tx, domain.PostEntryParams{
			AccountID: bots[i].ID,
			Type:      domain.EntryBotTopUp,
			Amount:    topUp,
			Metadata:  mustJSON(map[string]interface{}{"required": requiredCoins}),
		})
		if err != nil {
			return nil, err
		}
		bots[i] = *updated
	}

	return bots, nil
}

func (p *BotProvisioner) createBot(ctx context.Context, tx pgx.Tx) (*domain.Account, error) {
	id := uuid.New()

	// Bots never log in; the hash only has to be valid bcrypt.
	hash, err := bcrypt.GenerateFromPassword([]byte(id.String()), bcrypt.MinCost)
	if err != nil {
		return nil, domain.ErrInternal("hash bot password", err)
	}

	now := time.Now().UTC()
	bot := &domain.Account{
		ID:           id,
		Username:     fmt.Sprintf("bot_%s", id.String()[:8]),
		PasswordHash: string(hash),
		Role:         domain.RoleBot,
		IsBot:        true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.accounts.Create(ctx, tx, bot); err != nil {
		return nil, domain.ErrInternal("create bot", err)
	}
	return bot, nil
}
