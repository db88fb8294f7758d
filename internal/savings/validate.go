package savings

import (
	"strconv"
	"strings"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/model"
)

// ParseAmount accepts a positive whole number of coins.
func ParseAmount(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n <= 0 {
		return 0, apperr.Validation("Digite um valor válido")
	}
	return n, nil
}

// ValidateDeposit rejects deposits the wallet cannot cover.
func ValidateDeposit(amount int, wallet model.Wallet) error {
	if amount <= 0 {
		return apperr.Validation("Digite um valor válido")
	}
	if amount > wallet.Balance {
		return apperr.Validation("Saldo insuficiente na carteira")
	}
	return nil
}

// ValidateWithdrawal rejects withdrawals larger than the savings balance.
func ValidateWithdrawal(amount int, acct model.Savings) error {
	if amount <= 0 {
		return apperr.Validation("Digite um valor válido")
	}
	if amount > acct.Balance {
		return apperr.Validation("Saldo insuficiente na poupança")
	}
	return nil
}

// MaxSimulationWeeks caps the interest simulation horizon at ten years.
const MaxSimulationWeeks = 520

// ValidateWeeks accepts a simulation horizon of 1 to MaxSimulationWeeks weeks.
func ValidateWeeks(weeks int) error {
	if weeks <= 0 || weeks > MaxSimulationWeeks {
		return apperr.Validation("Semanas deve estar entre 1 e %d", MaxSimulationWeeks)
	}
	return nil
}
