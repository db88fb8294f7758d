package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/live"
	"github.com/dukerupert/kidscoin/internal/workflow"
)

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow live changes and print fresh figures as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ok := c.app.Session.Actor()
			if !ok {
				return apperr.New(apperr.KindAuthentication, "Faça login para continuar")
			}
			ctx, cancel := context.WithCancel(c.actorCtx(cmd))
			defer cancel()

			hub := live.NewHub(c.app.Logger)
			defer hub.Close()
			sub := hub.Subscribe()
			defer hub.Unsubscribe(sub)
			listener := live.NewListener(c.app.Config.LiveURL, hub, c.app.Logger)

			errc := make(chan error, 1)
			go func() { errc <- listener.Listen(ctx, a.Token) }()

			c.printf("%s\n", c.style.Muted.Render("Acompanhando mudanças. Ctrl+C para sair"))
			for {
				select {
				case err := <-errc:
					if err != nil && !errors.Is(err, context.Canceled) {
						return apperr.Wrap(apperr.KindNetwork, "Conexão ao vivo perdida", err)
					}
					return nil
				case msg, ok := <-sub.C:
					if !ok {
						return nil
					}
					if err := c.refresh(ctx, msg); err != nil {
						c.app.Logger.Warn("refresh after live change", "type", msg.Type, "error", err)
						c.printf("%s\n", c.style.Error.Render(apperr.Message(err)))
					}
				}
			}
		},
	}
}

// refresh re-fetches whatever msg says changed.
func (c *cli) refresh(ctx context.Context, msg live.Message) error {
	c.printf("%s %s\n", c.style.Title.Render("●"), msg.Type)
	switch msg.Entity {
	case live.EntityAssignment:
		list, err := c.app.Engine.ListAssignments(ctx)
		if err != nil {
			return err
		}
		counts := workflow.CountByStatus(list)
		c.printf("%d tarefas, %d aguardando aprovação\n", len(list), counts.NeedsApproval())
	case live.EntityRedemption:
		list, err := c.app.Engine.Redemptions(ctx, "")
		if err != nil {
			return err
		}
		c.printRedemptions(list)
	case live.EntityReward:
		list, err := c.app.Engine.Rewards(ctx)
		if err != nil {
			return err
		}
		c.printRewards(list)
	case live.EntityWallet:
		w, err := c.app.Engine.Wallet(ctx)
		if err != nil {
			return err
		}
		c.printWallet(w)
	case live.EntitySavings:
		acct, err := c.app.Engine.Savings(ctx)
		if err != nil {
			return err
		}
		c.printf("Poupança: %s\n", c.style.Coins.Render(fmt.Sprintf("%d moedas", acct.Balance)))
	}
	return nil
}
