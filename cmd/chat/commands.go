package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reinai/internal/models"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "chat",
		Short:        "Terminal client for the ReinAI relay",
		SilenceUsage: true,
	}

	root.AddCommand(
		newSendCmd(),
		newNewCmd(),
		newListCmd(),
		newShowCmd(),
		newClearCmd(),
		newModelCmd(),
		newModelsCmd(),
		newReplCmd(),
	)
	return root
}

// withApp opens the client for the duration of one command.
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <message...>",
		Short: "Send a message in the active chat and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			ex, err := a.manager.Send(cmd.Context(), strings.Join(args, " "))
			if ex != nil {
				printMessage(cmd.OutOrStdout(), ex.Reply)
			}
			return err
		}),
	}
}

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new chat and make it active",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			s, err := a.manager.NewSession(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started %s (%s)\n", s.Name, s.ID)
			return nil
		}),
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List chats, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			active, _ := a.manager.Active()
			printSessions(cmd.OutOrStdout(), a.manager.Sessions(), active.ID)
			return nil
		}),
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active chat",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			active, ok := a.manager.Active()
			if !ok {
				return fmt.Errorf("no active chat")
			}
			printSession(cmd.OutOrStdout(), active, a.manager.Model())
			return nil
		}),
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all messages from the active chat",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.manager.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared.")
			return nil
		}),
	}
}

func newModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "model [id]",
		Short: "Show or select the model used for new messages",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if len(args) == 1 {
				if err := a.manager.SetModel(cmd.Context(), args[0]); err != nil {
					return err
				}
			}
			model := a.manager.Model()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", models.DisplayName(model), model)
			return nil
		}),
	}
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the selectable models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printCatalog(cmd.OutOrStdout(), "")
			return nil
		},
	}
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Chat interactively",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			return runREPL(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.manager)
		}),
	}
}
