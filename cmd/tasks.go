package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/blum-farm-cli/internal/application"
	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newTasksCmd(app *app) *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and complete in-game tasks",
	}
	cmd.PersistentFlags().StringVar(&accountID, "account", "", "Account ID")
	_ = cmd.MarkPersistentFlagRequired("account")

	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks and their status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := app.taskService().ListTasks(cmd.Context(), domain.AccountID(accountID))
			if err != nil {
				return err
			}
			writeTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}

	cmd.AddCommand(
		list,
		newTaskActionCmd(app, "start", "Start a task", &accountID, (*application.TaskService).StartTask),
		newTaskActionCmd(app, "check", "Ask the server to verify a started task", &accountID, (*application.TaskService).CheckTask),
		newTaskClaimCmd(app, &accountID),
	)

	return cmd
}

type taskAction func(s *application.TaskService, ctx context.Context, id domain.AccountID, taskID string) (domain.Task, error)

func newTaskActionCmd(app *app, use, short string, accountID *string, action taskAction) *cobra.Command {
	var taskID string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			task, err := action(app.taskService(), cmd.Context(), domain.AccountID(*accountID), taskID)
			if err != nil {
				return err
			}
			writeTasks(cmd.OutOrStdout(), []domain.Task{task})
			return nil
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "Task ID")
	_ = cmd.MarkFlagRequired("task")

	return cmd
}

func newTaskClaimCmd(app *app, accountID *string) *cobra.Command {
	var taskID string

	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim one task, or every task ready for claim when --task is empty",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service := app.taskService()
			id := domain.AccountID(*accountID)

			if taskID != "" {
				task, err := service.ClaimTask(cmd.Context(), id, taskID)
				if err != nil {
					return err
				}
				writeTasks(cmd.OutOrStdout(), []domain.Task{task})
				return nil
			}

			claimed, err := service.ClaimReady(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(claimed) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "no tasks ready for claim")
				return err
			}
			writeTasks(cmd.OutOrStdout(), claimed)
			return nil
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "Task ID (default: all claimable)")

	return cmd
}

func writeTasks(w io.Writer, tasks []domain.Task) {
	for _, task := range tasks {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", task.ID, task.Status, orDash(task.Reward), orDash(task.Title))
	}
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
