package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/model"
	"github.com/dukerupert/kidscoin/internal/recurrence"
	"github.com/dukerupert/kidscoin/internal/workflow"
)

func (c *cli) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List, create and move tasks through approval",
	}
	cmd.AddCommand(
		c.tasksListCmd(),
		c.tasksCreateCmd(),
		c.assignmentActionCmd("complete", "Mark a task done", func(ctx context.Context, a model.TaskAssignment, _ string) (model.TaskAssignment, error) {
			return c.app.Engine.Complete(ctx, a)
		}),
		c.assignmentActionCmd("approve", "Approve a completed task and credit the child", func(ctx context.Context, a model.TaskAssignment, _ string) (model.TaskAssignment, error) {
			return c.app.Engine.Approve(ctx, a)
		}),
		c.assignmentActionCmd("reject", "Send a completed task back with a reason", func(ctx context.Context, a model.TaskAssignment, reason string) (model.TaskAssignment, error) {
			return c.app.Engine.Reject(ctx, a, reason)
		}),
		c.assignmentActionCmd("retry", "Reopen a rejected task", func(ctx context.Context, a model.TaskAssignment, _ string) (model.TaskAssignment, error) {
			return c.app.Engine.Retry(ctx, a)
		}),
		c.tasksDeleteCmd(),
	)
	return cmd
}

func (c *cli) tasksListCmd() *cobra.Command {
	var category, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assignments, actionable ones first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.app.Engine.ListAssignments(c.actorCtx(cmd))
			if err != nil {
				return err
			}
			if category != "" {
				cat, err := model.ParseCategory(strings.ToUpper(category))
				if err != nil {
					return apperr.Validation("Categoria inválida: %s", category)
				}
				list = workflow.FilterByCategory(list, cat)
			}
			if status != "" {
				st, err := model.ParseAssignmentStatus(strings.ToUpper(status))
				if err != nil {
					return apperr.Validation("Status inválido: %s", status)
				}
				list = workflow.FilterByStatus(list, st)
			}
			c.printAssignments(workflow.SortForDisplay(list))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only this category (LIMPEZA, ORGANIZACAO, ESTUDOS, CUIDADOS, OUTRAS)")
	cmd.Flags().StringVar(&status, "status", "", "only this status (PENDING, COMPLETED, APPROVED, REJECTED)")
	return cmd
}

func (c *cli) printAssignments(list []model.TaskAssignment) {
	if len(list) == 0 {
		c.printf("%s\n", c.style.Muted.Render("Nenhuma tarefa"))
		return
	}
	u, _ := c.app.Session.Current()
	t := c.style.table("ID", "Status", "Tarefa", "Categoria", "Moedas", "XP", "Criança", "Repetição", "Motivo", "Ações")
	for _, a := range list {
		repeat := "-"
		if a.Task.Recurrence != nil {
			repeat = a.Task.Recurrence.Describe()
		}
		t.Row(
			a.ID,
			c.style.assignmentStatus(a.Status),
			a.Task.Title,
			a.Task.Category.Label(),
			fmt.Sprint(a.CoinValue()),
			fmt.Sprint(a.XPValue()),
			a.ChildName,
			repeat,
			a.RejectionReason,
			actionList(workflow.AllowedActionsFor(a.Status, u.Role)),
		)
	}
	c.printf("%s\n", t.String())
}

func (c *cli) tasksCreateCmd() *cobra.Command {
	var (
		in       model.NewTask
		category string
		repeat   string
		days     string
		until    string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task for one or more children",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Category = model.Category(strings.ToUpper(category))
			rule, err := parseRecurrence(repeat, days, until)
			if err != nil {
				return err
			}
			in.Recurrence = rule
			task, err := c.app.Engine.CreateTask(c.actorCtx(cmd), in)
			if err != nil {
				return err
			}
			c.printf("%s %s (%s)\n", c.style.Success.Render("Tarefa criada:"), task.Title, task.ID)
			if r := task.Recurrence; r != nil {
				c.printf("%s\n", r.Describe())
				if next, ok := r.Next(task.CreatedAt, time.Now()); ok {
					c.printf("Próxima: %s\n", next.Format("02/01/2006"))
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "task title")
	f.StringVar(&in.Description, "description", "", "optional description")
	f.IntVar(&in.CoinValue, "coins", 0, "coins awarded on approval")
	f.IntVar(&in.XPValue, "xp", 0, "XP awarded on approval")
	f.StringVar(&category, "category", string(model.CategoryCleaning), "LIMPEZA, ORGANIZACAO, ESTUDOS, CUIDADOS or OUTRAS")
	f.StringSliceVar(&in.ChildrenIDs, "child", nil, "child ID to assign (repeatable)")
	f.StringVar(&repeat, "repeat", "", "DAILY or WEEKLY; empty for a one-off task")
	f.StringVar(&days, "days", "", "weekdays for WEEKLY, e.g. MON,WED,FRI")
	f.StringVar(&until, "until", "", "last day of the recurrence (YYYY-MM-DD)")
	return cmd
}

// actionList names the subcommands the signed-in user can run next.
func actionList(actions []workflow.Action) string {
	if len(actions) == 0 {
		return "-"
	}
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

func parseRecurrence(repeat, days, until string) (*recurrence.Rule, error) {
	if repeat == "" {
		if days != "" || until != "" {
			return nil, apperr.Validation("Use --repeat para definir a repetição")
		}
		return nil, nil
	}
	typ, err := recurrence.ParseType(repeat)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Repetição deve ser DAILY ou WEEKLY", err)
	}
	set, err := recurrence.ParseWeekdays(days)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Dia da semana inválido", err)
	}
	rule := &recurrence.Rule{Type: typ, Days: set}
	if until != "" {
		end, err := time.Parse(recurrence.DateLayout, until)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "Data final deve ser AAAA-MM-DD", err)
		}
		rule.EndDate = &end
	}
	return rule, nil
}

type assignmentAction func(ctx context.Context, a model.TaskAssignment, reason string) (model.TaskAssignment, error)

func (c *cli) assignmentActionCmd(name, short string, act assignmentAction) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   name + " ASSIGNMENT_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == string(workflow.ActionReject) {
				if _, err := workflow.NormalizeReason(reason); err != nil {
					return err
				}
			}
			ctx := c.actorCtx(cmd)
			a, err := c.findAssignment(ctx, args[0])
			if err != nil {
				return err
			}
			got, err := act(ctx, a, reason)
			if apperr.IsKind(err, apperr.KindConflict) && got.ID != "" {
				c.printf("%s %s está agora %s\n", c.style.Muted.Render(apperr.Message(err)), got.Task.Title, c.style.assignmentStatus(got.Status))
				return nil
			}
			if err != nil {
				return err
			}
			c.printf("%s: %s\n", got.Task.Title, c.style.assignmentStatus(got.Status))
			return nil
		},
	}
	if name == "reject" {
		cmd.Flags().StringVar(&reason, "reason", "", "why the task is sent back (required)")
	}
	return cmd
}

func (c *cli) findAssignment(ctx context.Context, id string) (model.TaskAssignment, error) {
	list, err := c.app.Engine.ListAssignments(ctx)
	if err != nil {
		return model.TaskAssignment{}, err
	}
	for _, a := range list {
		if a.ID == id {
			return a, nil
		}
	}
	return model.TaskAssignment{}, apperr.New(apperr.KindNotFound, "Tarefa não encontrada")
}

func (c *cli) tasksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TASK_ID",
		Short: "Delete a task and its assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Engine.DeleteTask(c.actorCtx(cmd), args[0]); err != nil {
				return err
			}
			c.printf("Tarefa excluída\n")
			return nil
		},
	}
}
