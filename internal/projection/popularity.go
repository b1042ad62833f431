package projection

import (
	"context"
	"fmt"
	"time"
)

// BoxPopularity is a running count of pack opens per box, fed from pack
// opened events. Approximate by design; the boxes table stays authoritative.
type BoxPopularity struct {
	BoxID     string `json:"box_id"`
	Opens     int64  `json:"opens"`
	UpdatedAt string `json:"updated_at"`
}

// AddBoxOpens bumps a box's open counter by n.
func AddBoxOpens(ctx context.Context, store Store, boxID string, n int64) error {
	key := fmt.Sprintf("projection:box_opens:%s", boxID)

	var p BoxPopularity
	if err := GetJSON(ctx, store, key, &p); err != nil {
		p = BoxPopularity{BoxID: boxID}
	}
	p.Opens += n
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return SetJSON(ctx, store, key, p, 0)
}

// GetBoxOpens retrieves a box's open counter.
func GetBoxOpens(ctx context.Context, store Store, boxID string) (*BoxPopularity, error) {
	key := fmt.Sprintf("projection:box_opens:%s", boxID)
	var p BoxPopularity
	if err := GetJSON(ctx, store, key, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
