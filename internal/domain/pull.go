package domain

import (
	"time"

	"github.com/google/uuid"
)

// Pull is one owned, drawn inventory unit. Created only by a draw-and-commit
// transaction, destroyed only by a sell transaction. The display fields and
// CoinValue are snapshotted at draw time so the pull stays stable even if the
// box definition changes later.
type Pull struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	BoxID     uuid.UUID `json:"box_id"`
	ItemID    uuid.UUID `json:"item_id"`
	Kind      ItemKind  `json:"kind"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url,omitempty"`
	SetName   string    `json:"set_name,omitempty"`
	Rarity    string    `json:"rarity,omitempty"`
	CoinValue int64     `json:"coin_value"`
	CreatedAt time.Time `json:"created_at"`
}
