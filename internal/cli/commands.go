package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo-client/internal/controller"
	"github.com/idilsaglam/todo-client/internal/model"
	"github.com/idilsaglam/todo-client/internal/tui"
	"github.com/idilsaglam/todo-client/internal/ui"
	"github.com/idilsaglam/todo-client/internal/version"
)

const lsHint = "run `todo ls` to see valid ids"

// loaded returns a controller holding the current remote list.
func (a *app) loaded(cmd *cobra.Command) (*controller.Controller, error) {
	ctl, err := a.controller()
	if err != nil {
		return nil, failf(ExitUsage, "%s", err)
	}
	if ctl.Load(cmd.Context()) == controller.Failed {
		return nil, failf(ExitError, "load: %s", ctl.State().LastError)
	}
	return ctl, nil
}

func newListCmd(a *app) *cobra.Command {
	var group, asJSON bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := a.loaded(cmd)
			if err != nil {
				return err
			}
			items := ctl.State().Items
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			ui.Panel(a.out, ui.ListLines(items, group))
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print items as JSON")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "add <text...>",
		Short:   "Add a new item (text can be multiple words)",
		Example: `  todo add "Buy milk"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := a.controller()
			if err != nil {
				return failf(ExitUsage, "%s", err)
			}
			switch ctl.Create(cmd.Context(), strings.Join(args, " ")) {
			case controller.Skipped:
				return failf(ExitUsage, "add: empty text")
			case controller.Failed:
				return failf(ExitError, "add: %s", ctl.State().LastError)
			}
			st := ctl.State()
			it := st.Items[len(st.Items)-1]
			ui.OK(a.out, fmt.Sprintf("added %s", it.ID))
			return nil
		},
	}
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle done for the item with id",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := a.loaded(cmd)
			if err != nil {
				return err
			}
			id := model.ID(args[0])
			switch ctl.Toggle(cmd.Context(), id) {
			case controller.Skipped:
				return failf(ExitUsage, "no item with id %s", id).withHint(lsHint)
			case controller.Failed:
				return failf(ExitError, "done: %s", ctl.State().LastError)
			}
			it, _ := ctl.Find(id)
			if it.Completed {
				ui.OK(a.out, "marked done")
			} else {
				ui.OK(a.out, "marked pending")
			}
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "edit <id> <text...>",
		Short:   "Change the text of the item with id",
		Example: `  todo edit 3 "Buy oat milk"`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := a.loaded(cmd)
			if err != nil {
				return err
			}
			id := model.ID(args[0])
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if _, ok := ctl.Find(id); !ok {
				return failf(ExitUsage, "no item with id %s", id).withHint(lsHint)
			}
			if text == "" {
				return failf(ExitUsage, "edit: empty text")
			}
			switch ctl.Update(cmd.Context(), id, text) {
			case controller.Skipped:
				ui.OK(a.out, "unchanged")
			case controller.Failed:
				return failf(ExitError, "edit: %s", ctl.State().LastError)
			default:
				ui.OK(a.out, "saved")
			}
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove the item with id",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := a.controller()
			if err != nil {
				return failf(ExitUsage, "%s", err)
			}
			if ctl.Remove(cmd.Context(), model.ID(args[0])) == controller.Failed {
				return failf(ExitError, "rm: %s", ctl.State().LastError).withHint(lsHint)
			}
			ui.OK(a.out, "removed")
			return nil
		},
	}
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit items interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stderr belongs to the alt screen now
			logOut := io.Discard
			if a.cfg.LogFile != "" {
				f, err := tea.LogToFile(a.cfg.LogFile, "todo")
				if err != nil {
					return failf(ExitError, "open log file: %s", err)
				}
				defer f.Close()
				logOut = f
			}
			lvl, _ := a.cfg.Level()
			a.logger = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: lvl}))

			ctl, err := a.controller()
			if err != nil {
				return failf(ExitUsage, "%s", err)
			}
			if err := tui.Run(cmd.Context(), ctl, a.cfg.NoColor); err != nil {
				return failf(ExitError, "tui: %s", err)
			}
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.cfg.Marshal()
			if err != nil {
				return failf(ExitError, "config: %s", err)
			}
			fmt.Fprint(a.out, string(b))
			fmt.Fprintln(a.out)
			for _, k := range []string{"base_url", "timeout", "theme", "log_level", "log_file", "no_color"} {
				if src, ok := a.cfg.Sources[k]; ok {
					fmt.Fprintf(a.out, "%s\n", ui.Dim(fmt.Sprintf("# %s: %s", k, src)))
				}
			}
			if _, err := os.Stat(a.configPath); err != nil {
				fmt.Fprintln(a.out, ui.Dim("# no config file at "+a.configPath))
			}
			return nil
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.out, version.Full())
			return nil
		},
	}
}
