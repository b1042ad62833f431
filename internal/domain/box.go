package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItemKind tags the two item kinds sharing one weighted pool.
type ItemKind string

const (
	ItemCard   ItemKind = "card"
	ItemSealed ItemKind = "sealed"
)

// BoxItem is one weighted entry in a box's pool. Cards and sealed products
// live in the same table distinguished by Kind; the draw engine consumes them
// uniformly through the id/weight/value projection.
type BoxItem struct {
	ID        uuid.UUID `json:"id"`
	BoxID     uuid.UUID `json:"box_id"`
	Kind      ItemKind  `json:"kind"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url,omitempty"`
	SetName   string    `json:"set_name,omitempty"`
	Rarity    string    `json:"rarity,omitempty"`
	PullRate  float64   `json:"pull_rate"`
	CoinValue int64     `json:"coin_value"`
}

// Box is a pack configuration: a price per pack, an item count per pack, and
// a weighted pool. Read-only to the engine; a draw always works on a snapshot
// loaded inside its own transaction.
type Box struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Price        int64     `json:"price"`
	ItemsPerPack int       `json:"items_per_pack"`
	Active       bool      `json:"active"`
	OpensCount   int64     `json:"opens_count"`
	CreatedAt    time.Time `json:"created_at"`
	Items        []BoxItem `json:"items,omitempty"`
}

// HasDrawableItem reports whether the pool contains at least one positively
// weighted item.
func (b *Box) HasDrawableItem() bool {
	for _, item := range b.Items {
		if item.PullRate > 0 {
			return true
		}
	}
	return false
}
