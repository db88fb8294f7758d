package cli

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/model"
	"github.com/dukerupert/kidscoin/internal/workflow"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a parent with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := workflow.ParentCredentials(email, password)
			if err != nil {
				return err
			}
			u, err := c.app.Session.SignIn(cmd.Context(), creds)
			if err != nil {
				return err
			}
			c.welcome(u)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "parent email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func (c *cli) childLoginCmd() *cobra.Command {
	var username, pin string
	cmd := &cobra.Command{
		Use:   "child-login",
		Short: "Sign in as a child with username and 4-digit PIN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := workflow.ChildCredentials(username, pin)
			if err != nil {
				return err
			}
			u, err := c.app.Session.SignIn(cmd.Context(), creds)
			if err != nil {
				return err
			}
			c.welcome(u)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "child username")
	cmd.Flags().StringVar(&pin, "pin", "", "4-digit PIN")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var in model.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a family and its first parent account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := workflow.PrepareRegistration(in)
			if err != nil {
				return err
			}
			u, err := c.app.Session.SignUp(cmd.Context(), reg)
			if err != nil {
				return err
			}
			c.welcome(u)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "parent email")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	cmd.Flags().StringVar(&in.FullName, "name", "", "your full name")
	cmd.Flags().StringVar(&in.FamilyName, "family", "", "family name")
	return cmd
}

func (c *cli) welcome(u model.User) {
	c.printf("%s\n", c.style.Title.Render(fmt.Sprintf("Bem-vindo(a), %s!", u.FirstName())))
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Session.SignOut(cmd.Context()); err != nil {
				return err
			}
			c.printf("Sessão encerrada\n")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and their dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, ok := c.app.Session.Current()
			if !ok {
				return apperr.New(apperr.KindAuthentication, "Faça login para continuar")
			}
			c.printf("%s\n", c.style.Title.Render(u.FullName))
			c.printf("Login:   %s\n", u.Login())
			c.printf("Perfil:  %s\n", u.Role)
			ctx := c.actorCtx(cmd)
			if u.IsChild() {
				return c.childDashboard(ctx)
			}
			return c.parentDashboard(ctx)
		},
	}
}

func (c *cli) childDashboard(ctx context.Context) error {
	w, err := c.app.Engine.Wallet(ctx)
	if err != nil {
		return err
	}
	g, err := c.app.Engine.Gamification(ctx)
	if err != nil {
		return err
	}
	list, err := c.app.Engine.ListAssignments(ctx)
	if err != nil {
		return err
	}
	counts := workflow.CountByStatus(list)

	c.printf("Moedas:  %s\n", c.style.Coins.Render(fmt.Sprint(w.Balance)))
	c.printf("Nível:   %d (%d/%d XP, %d%%)\n", g.CurrentLevel, g.CurrentXP, g.XPForNextLevel, int(math.Round(g.XPProgress()*100)))
	c.printf("Medalhas: %d\n", g.UnlockedCount())
	if b, ok := g.LastUnlockedBadge(); ok {
		c.printf("Última medalha: %s\n", b.Name)
	}
	c.printf("Tarefas: %d disponíveis, %d aguardando aprovação\n",
		counts[model.AssignmentPending], counts[model.AssignmentCompleted])
	return nil
}

func (c *cli) parentDashboard(ctx context.Context) error {
	children, err := c.app.Engine.Children(ctx)
	if err != nil {
		return err
	}
	list, err := c.app.Engine.ListAssignments(ctx)
	if err != nil {
		return err
	}
	rewards, err := c.app.Engine.Rewards(ctx)
	if err != nil {
		return err
	}
	active := 0
	for _, r := range rewards {
		if r.IsActive {
			active++
		}
	}

	c.printf("Crianças: %d   Recompensas ativas: %d   Aguardando aprovação: %s\n",
		len(children), active, c.style.Warning.Render(fmt.Sprint(workflow.CountByStatus(list).NeedsApproval())))
	t := c.style.table("Criança", "Disponíveis", "Aguardando", "Aprovadas", "Rejeitadas")
	for _, s := range workflow.SummarizeChildren(children, list) {
		t.Row(s.Child.FullName, fmt.Sprint(s.Pending), fmt.Sprint(s.Completed), fmt.Sprint(s.Approved), fmt.Sprint(s.Rejected))
	}
	c.printf("%s\n", t.String())
	return nil
}
