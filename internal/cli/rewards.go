package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/model"
	"github.com/dukerupert/kidscoin/internal/workflow"
)

func (c *cli) rewardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "Manage the family reward catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List rewards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rewards, err := c.app.Engine.Rewards(c.actorCtx(cmd))
			if err != nil {
				return err
			}
			c.printRewards(rewards)
			return nil
		},
	}

	var in model.NewReward
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a reward",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.app.Engine.CreateReward(c.actorCtx(cmd), in)
			if err != nil {
				return err
			}
			c.printf("%s %s por %s\n", c.style.Success.Render("Recompensa criada:"), r.Name, c.style.Coins.Render(fmt.Sprintf("%d moedas", r.CoinCost)))
			return nil
		},
	}
	create.Flags().StringVar(&in.Name, "name", "", "reward name")
	create.Flags().StringVar(&in.Description, "description", "", "optional description")
	create.Flags().IntVar(&in.CoinCost, "cost", 0, "price in coins")

	toggle := &cobra.Command{
		Use:   "toggle REWARD_ID",
		Short: "Activate or deactivate a reward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.app.Engine.ToggleReward(c.actorCtx(cmd), args[0])
			if err != nil {
				return err
			}
			state := "desativada"
			if r.IsActive {
				state = "ativada"
			}
			c.printf("%s %s\n", r.Name, state)
			return nil
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete REWARD_ID",
		Short: "Delete a reward and its redemption history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return apperr.Validation("Excluir remove também o histórico de resgates. Use --yes para confirmar")
			}
			if err := c.app.Engine.DeleteReward(c.actorCtx(cmd), args[0]); err != nil {
				return err
			}
			c.printf("Recompensa excluída\n")
			return nil
		},
	}
	del.Flags().BoolVar(&yes, "yes", false, "confirm the irreversible delete")

	cmd.AddCommand(list, create, toggle, del)
	return cmd
}

func (c *cli) printRewards(rewards []model.Reward) {
	if len(rewards) == 0 {
		c.printf("%s\n", c.style.Muted.Render("Nenhuma recompensa"))
		return
	}
	t := c.style.table("ID", "Recompensa", "Custo", "Ativa", "Descrição")
	for _, r := range rewards {
		active := "não"
		if r.IsActive {
			active = "sim"
		}
		t.Row(r.ID, r.Name, fmt.Sprint(r.CoinCost), active, r.Description)
	}
	c.printf("%s\n", t.String())
}

func (c *cli) redemptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redemptions",
		Short: "Request and review reward redemptions",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List redemptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var st model.RedemptionStatus
			if status != "" {
				parsed, err := model.ParseRedemptionStatus(strings.ToUpper(status))
				if err != nil {
					return apperr.Validation("Status inválido: %s", status)
				}
				st = parsed
			}
			list, err := c.app.Engine.Redemptions(c.actorCtx(cmd), st)
			if err != nil {
				return err
			}
			c.printRedemptions(list)
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "only this status (PENDING, APPROVED, REJECTED)")

	request := &cobra.Command{
		Use:   "request REWARD_ID",
		Short: "Spend coins on a reward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.actorCtx(cmd)
			rewards, err := c.app.Engine.Rewards(ctx)
			if err != nil {
				return err
			}
			var reward model.Reward
			for _, r := range rewards {
				if r.ID == args[0] {
					reward = r
				}
			}
			if reward.ID == "" {
				return apperr.New(apperr.KindNotFound, "Recompensa não encontrada")
			}
			wallet, err := c.app.Engine.Wallet(ctx)
			if err != nil {
				return err
			}
			r, err := c.app.Engine.RequestRedemption(ctx, reward, wallet)
			if err != nil {
				return err
			}
			c.printf("%s %s aguardando aprovação\n", c.style.Success.Render("Resgate solicitado:"), r.Reward.Name)
			return nil
		},
	}

	approve := c.redemptionActionCmd("approve", "Approve a pending redemption", func(ctx context.Context, r model.Redemption, _ string) (model.Redemption, error) {
		return c.app.Engine.ApproveRedemption(ctx, r)
	})
	reject := c.redemptionActionCmd("reject", "Reject a pending redemption with a reason", func(ctx context.Context, r model.Redemption, reason string) (model.Redemption, error) {
		return c.app.Engine.RejectRedemption(ctx, r, reason)
	})

	cmd.AddCommand(list, request, approve, reject)
	return cmd
}

func (c *cli) printRedemptions(list []model.Redemption) {
	if len(list) == 0 {
		c.printf("%s\n", c.style.Muted.Render("Nenhum resgate"))
		return
	}
	t := c.style.table("ID", "Status", "Recompensa", "Custo", "Criança", "Pedido em", "Motivo")
	for _, r := range list {
		t.Row(
			r.ID,
			c.style.redemptionStatus(r.Status),
			r.Reward.Name,
			fmt.Sprint(r.Reward.CoinCost),
			r.ChildName,
			r.RequestedAt.Local().Format("02/01/2006 15:04"),
			r.RejectionReason,
		)
	}
	c.printf("%s\n", t.String())
}

type redemptionAction func(ctx context.Context, r model.Redemption, reason string) (model.Redemption, error)

func (c *cli) redemptionActionCmd(name, short string, act redemptionAction) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   name + " REDEMPTION_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == string(workflow.ActionReject) {
				if _, err := workflow.NormalizeReason(reason); err != nil {
					return err
				}
			}
			ctx := c.actorCtx(cmd)
			list, err := c.app.Engine.Redemptions(ctx, "")
			if err != nil {
				return err
			}
			var target model.Redemption
			for _, r := range list {
				if r.ID == args[0] {
					target = r
				}
			}
			if target.ID == "" {
				return apperr.New(apperr.KindNotFound, "Resgate não encontrado")
			}
			got, err := act(ctx, target, reason)
			if apperr.IsKind(err, apperr.KindConflict) && got.ID != "" {
				c.printf("%s %s está agora %s\n", c.style.Muted.Render(apperr.Message(err)), got.Reward.Name, c.style.redemptionStatus(got.Status))
				return nil
			}
			if err != nil {
				return err
			}
			c.printf("%s: %s\n", got.Reward.Name, c.style.redemptionStatus(got.Status))
			return nil
		},
	}
	if name == "reject" {
		cmd.Flags().StringVar(&reason, "reason", "", "why the redemption is rejected (required)")
	}
	return cmd
}
