package domain

import (
	"fmt"
	"regexp"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

// allowedPackQuantities is the fixed allow-list of packs per opening.
var allowedPackQuantities = map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}

// ValidateUsername checks the account username format.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-32 characters of letters, digits or underscore")
	}
	return nil
}

// ValidatePositiveAmount checks that a coin amount is positive.
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}

// ValidatePackQuantity checks the pack quantity against the allow-list.
func ValidatePackQuantity(quantity int) error {
	if !allowedPackQuantities[quantity] {
		return fmt.Errorf("quantity must be between 1 and 5 packs, got %d", quantity)
	}
	return nil
}

// ValidateBattleConfig checks a battle creation request. Team battles must
// factor their seats exactly into teamSize x teamCount.
func ValidateBattleConfig(b *Battle) error {
	switch b.Format {
	case FormatSolo, FormatTeam:
	default:
		return fmt.Errorf("unknown battle format: %s", b.Format)
	}
	switch b.Mode {
	case ModeNormal, ModeUpsideDown, ModeJackpot:
	default:
		return fmt.Errorf("unknown battle mode: %s", b.Mode)
	}
	if b.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", b.Rounds)
	}
	if b.MaxParticipants < 2 {
		return fmt.Errorf("battle needs at least 2 seats, got %d", b.MaxParticipants)
	}
	if b.EntryFee < 0 {
		return fmt.Errorf("entry fee cannot be negative, got %d", b.EntryFee)
	}
	if b.Format == FormatTeam {
		if b.TeamSize < 1 || b.TeamCount < 2 {
			return fmt.Errorf("team battles need team_size >= 1 and team_count >= 2")
		}
		if b.TeamSize*b.TeamCount != b.MaxParticipants {
			return fmt.Errorf("team_size %d x team_count %d must equal max_participants %d",
				b.TeamSize, b.TeamCount, b.MaxParticipants)
		}
	}
	return nil
}
