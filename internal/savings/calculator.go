// Package savings computes the client-side previews for the savings account:
// the time-tiered withdrawal bonus and the simulated weekly compound interest.
// Nothing here touches the network or persists a balance.
package savings

import (
	"math"
	"time"

	"github.com/dukerupert/kidscoin/internal/model"
)

const (
	// WeeklyRate is the fixed compounding rate used by the interest simulation.
	WeeklyRate = 0.02
	// Goal is the savings target shown on the progress bar.
	Goal = 500

	shortTermDays = 7
	longTermDays  = 30

	shortTermBonus = 2
	longTermBonus  = 10
)

// DaysSaved is the number of whole days since the last deposit, 0 if there
// never was one.
func DaysSaved(lastDepositAt *time.Time, now time.Time) int {
	if lastDepositAt == nil {
		return 0
	}
	diff := now.Sub(*lastDepositAt)
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}

// BonusForDays is the step function 0 / 2 / 10 percent at 7 and 30 days.
func BonusForDays(days int) int {
	switch {
	case days >= longTermDays:
		return longTermBonus
	case days >= shortTermDays:
		return shortTermBonus
	default:
		return 0
	}
}

func TimeBonusPercent(lastDepositAt *time.Time, now time.Time) int {
	return BonusForDays(DaysSaved(lastDepositAt, now))
}

// Bonus is the coins added on top of a withdrawal of amount.
func Bonus(amount, bonusPercent int) int {
	return round(float64(amount) * (float64(bonusPercent) / 100))
}

// PreviewWithdrawal is what the child receives in the wallet for withdrawing amount.
func PreviewWithdrawal(amount, bonusPercent int) int {
	return amount + Bonus(amount, bonusPercent)
}

// PreviewCompoundInterest simulates the interest earned on balance after
// weeks of weekly compounding.
func PreviewCompoundInterest(balance, weeks int) int {
	b := float64(balance)
	return round(b*math.Pow(1+WeeklyRate, float64(weeks)) - b)
}

// GoalProgress is balance/Goal clamped to [0, 1].
func GoalProgress(balance int) float64 {
	if balance <= 0 {
		return 0
	}
	return math.Min(float64(balance)/Goal, 1)
}

func GoalPercent(balance int) int {
	return round(GoalProgress(balance) * 100)
}

// round is half-up to the nearest coin: 0.5 → 1, 2.5 → 3, -0.5 → 0.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Preview is a projected wallet/savings pair. It is never persisted and is
// replaced by the server's figures on the next fetch.
type Preview struct {
	Wallet  model.Wallet
	Savings model.Savings
	Bonus   int
}

// PreviewDeposit projects moving amount from the wallet into savings.
func PreviewDeposit(amount int, wallet model.Wallet, acct model.Savings, now time.Time) Preview {
	wallet.Balance -= amount
	acct.Balance += amount
	acct.TotalDeposited += amount
	at := now
	acct.LastDepositAt = &at
	return Preview{Wallet: wallet, Savings: acct}
}

// PreviewWithdraw projects moving amount out of savings with the time bonus applied.
func PreviewWithdraw(amount int, wallet model.Wallet, acct model.Savings, now time.Time) Preview {
	pct := TimeBonusPercent(acct.LastDepositAt, now)
	acct.Balance -= amount
	wallet.Balance += PreviewWithdrawal(amount, pct)
	return Preview{Wallet: wallet, Savings: acct, Bonus: Bonus(amount, pct)}
}
