package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/model"
	"github.com/dukerupert/kidscoin/internal/workflow"
)

func (c *cli) childrenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "children",
		Short: "Manage the children in the family",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List children",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			children, err := c.app.Engine.Children(c.actorCtx(cmd))
			if err != nil {
				return err
			}
			if len(children) == 0 {
				c.printf("%s\n", c.style.Muted.Render("Nenhuma criança cadastrada"))
				return nil
			}
			t := c.style.table("ID", "Nome", "Login")
			for _, ch := range children {
				t.Row(ch.ID, ch.FullName, ch.Login())
			}
			c.printf("%s\n", t.String())
			return nil
		},
	}

	var in model.NewChild
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a child who signs in with username and PIN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.PIN = workflow.SanitizePIN(in.PIN)
			u, err := c.app.Engine.CreateChild(c.actorCtx(cmd), in)
			if err != nil {
				return err
			}
			c.printf("%s %s entra com %q\n", c.style.Success.Render("Criança cadastrada:"), u.FullName, u.Login())
			return nil
		},
	}
	f := create.Flags()
	f.StringVar(&in.FullName, "name", "", "full name")
	f.StringVar(&in.Username, "username", "", "login username (letters, digits, - and _)")
	f.IntVar(&in.Age, "age", 0, "age in years")
	f.StringVar(&in.PIN, "pin", "", "4-digit PIN")
	f.StringVar(&in.AvatarURL, "avatar", "", "optional avatar URL")

	var yes bool
	del := &cobra.Command{
		Use:   "delete CHILD_ID",
		Short: "Remove a child and everything they own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return apperr.Validation("Excluir remove tarefas, moedas e resgates da criança. Use --yes para confirmar")
			}
			if err := c.app.Engine.DeleteChild(c.actorCtx(cmd), args[0]); err != nil {
				return err
			}
			c.printf("%s\n", fmt.Sprintf("Criança %s removida", args[0]))
			return nil
		},
	}
	del.Flags().BoolVar(&yes, "yes", false, "confirm the irreversible delete")

	cmd.AddCommand(list, create, del)
	return cmd
}
