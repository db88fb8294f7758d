package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/kidscoin/internal/model"
	"github.com/dukerupert/kidscoin/internal/savings"
	"github.com/dukerupert/kidscoin/internal/workflow"
)

func (c *cli) walletCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wallet",
		Short: "Show the coin wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := c.app.Engine.Wallet(c.actorCtx(cmd))
			if err != nil {
				return err
			}
			c.printWallet(w)
			return nil
		},
	}
}

func (c *cli) printWallet(w model.Wallet) {
	c.printf("Saldo:   %s\n", c.style.Coins.Render(fmt.Sprintf("%d moedas", w.Balance)))
	c.printf("Ganhou:  %d\n", w.TotalEarned)
	c.printf("Gastou:  %d\n", w.TotalSpent)
}

func (c *cli) savingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Show and move coins in the savings account",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the savings balance, bonus tier and goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.actorCtx(cmd)
			acct, err := c.app.Engine.Savings(ctx)
			if err != nil {
				return err
			}
			w, err := c.app.Engine.Wallet(ctx)
			if err != nil {
				return err
			}
			c.printSavings(acct, w)
			return nil
		},
	}

	deposit := &cobra.Command{
		Use:   "deposit AMOUNT",
		Short: "Move coins from the wallet into savings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := savings.ParseAmount(args[0])
			if err != nil {
				return err
			}
			ctx := c.actorCtx(cmd)
			acct, err := c.app.Engine.Savings(ctx)
			if err != nil {
				return err
			}
			w, err := c.app.Engine.Wallet(ctx)
			if err != nil {
				return err
			}
			if err := savings.ValidateDeposit(amount, w); err != nil {
				return err
			}
			p := c.app.Engine.PreviewDeposit(amount, w, acct)
			c.printf("%s carteira %d → %d, poupança %d → %d\n",
				c.style.Muted.Render("Prévia:"), w.Balance, p.Wallet.Balance, acct.Balance, p.Savings.Balance)
			b, err := c.app.Engine.Deposit(ctx, amount, w)
			if err != nil {
				return err
			}
			c.printBalances("Depósito realizado", b)
			return nil
		},
	}

	withdraw := &cobra.Command{
		Use:   "withdraw AMOUNT",
		Short: "Move coins from savings back to the wallet with the time bonus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := savings.ParseAmount(args[0])
			if err != nil {
				return err
			}
			ctx := c.actorCtx(cmd)
			acct, err := c.app.Engine.Savings(ctx)
			if err != nil {
				return err
			}
			w, err := c.app.Engine.Wallet(ctx)
			if err != nil {
				return err
			}
			if err := savings.ValidateWithdrawal(amount, acct); err != nil {
				return err
			}
			p := c.app.Engine.PreviewWithdraw(amount, w, acct)
			c.printf("%s você recebe %d (+%d de bônus)\n",
				c.style.Muted.Render("Prévia:"), amount+p.Bonus, p.Bonus)
			b, err := c.app.Engine.Withdraw(ctx, amount, acct, w)
			if err != nil {
				return err
			}
			c.printBalances("Resgate realizado", b)
			return nil
		},
	}

	var weeks []int
	simulate := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate weekly compound interest on the current balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, n := range weeks {
				if err := savings.ValidateWeeks(n); err != nil {
					return err
				}
			}
			acct, err := c.app.Engine.Savings(c.actorCtx(cmd))
			if err != nil {
				return err
			}
			t := c.style.table("Semanas", "Juros", "Total")
			for _, n := range weeks {
				interest := savings.PreviewCompoundInterest(acct.Balance, n)
				t.Row(fmt.Sprint(n), fmt.Sprintf("+%d", interest), fmt.Sprint(acct.Balance+interest))
			}
			c.printf("Simulação com %.0f%% por semana sobre %d moedas\n", savings.WeeklyRate*100, acct.Balance)
			c.printf("%s\n", t.String())
			return nil
		},
	}
	simulate.Flags().IntSliceVar(&weeks, "weeks", []int{4, 8, 12}, "horizons in weeks")

	cmd.AddCommand(show, deposit, withdraw, simulate)
	return cmd
}

func (c *cli) printSavings(acct model.Savings, w model.Wallet) {
	days := savings.DaysSaved(acct.LastDepositAt, time.Now())
	pct := savings.GoalPercent(acct.Balance)

	c.printf("%s\n", c.style.Title.Render("Poupança"))
	c.printf("Saldo:       %s\n", c.style.Coins.Render(fmt.Sprintf("%d moedas", acct.Balance)))
	c.printf("Carteira:    %d moedas\n", w.Balance)
	c.printf("Depositado:  %d\n", acct.TotalDeposited)
	c.printf("Rendeu:      %d\n", acct.TotalEarned)
	c.printf("Guardando há %d dias, bônus de saque %d%%\n", days, c.app.Engine.TimeBonusPercent(acct))
	c.printf("Meta %d: %s %d%%\n", savings.Goal, progressBar(pct, 20), pct)
}

func (c *cli) printBalances(title string, b workflow.Balances) {
	c.printf("%s\n", c.style.Success.Render(title))
	c.printf("Poupança: %d moedas\n", b.Savings.Balance)
	if !b.WalletFresh {
		c.printf("%s\n", c.style.Warning.Render("Carteira não atualizada. Rode \"kidscoin wallet\" para ver o saldo"))
		return
	}
	c.printf("Carteira: %d moedas\n", b.Wallet.Balance)
}

func progressBar(pct, width int) string {
	filled := pct * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
