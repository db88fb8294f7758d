package model

import (
	"sort"
	"time"
)

// Wallet and Savings are only ever replaced wholesale by server responses.
type Wallet struct {
	Balance     int `json:"balance"`
	TotalEarned int `json:"totalEarned"`
	TotalSpent  int `json:"totalSpent"`
}

type Savings struct {
	Balance        int        `json:"balance"`
	TotalDeposited int        `json:"totalDeposited"`
	TotalEarned    int        `json:"totalEarned"`
	LastDepositAt  *time.Time `json:"lastDepositAt"`
}

type Badge struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IconName    string     `json:"iconName"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt"`
}

type Gamification struct {
	CurrentLevel         int     `json:"currentLevel"`
	CurrentXP            int     `json:"currentXp"`
	XPForNextLevel       int     `json:"xpForNextLevel"`
	XPNeededForNextLevel int     `json:"xpNeededForNextLevel"`
	Badges               []Badge `json:"badges"`
}

// XPProgress returns currentXp / xpForNextLevel, or 0 when the threshold is unknown.
func (g Gamification) XPProgress() float64 {
	if g.XPForNextLevel <= 0 {
		return 0
	}
	return float64(g.CurrentXP) / float64(g.XPForNextLevel)
}

func (g Gamification) UnlockedCount() int {
	n := 0
	for _, b := range g.Badges {
		if b.Unlocked {
			n++
		}
	}
	return n
}

// LastUnlockedBadge returns the unlocked badge with the latest unlockedAt.
// Badges without a timestamp keep their relative position.
func (g Gamification) LastUnlockedBadge() (Badge, bool) {
	var unlocked []Badge
	for _, b := range g.Badges {
		if b.Unlocked {
			unlocked = append(unlocked, b)
		}
	}
	if len(unlocked) == 0 {
		return Badge{}, false
	}
	sort.SliceStable(unlocked, func(i, j int) bool {
		a, b := unlocked[i].UnlockedAt, unlocked[j].UnlockedAt
		if a == nil || b == nil {
			return false
		}
		return a.After(*b)
	})
	return unlocked[0], true
}
