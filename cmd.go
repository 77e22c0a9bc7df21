package main

import (
	"fmt"
	"strconv"

	"github.com/nexidian/gocliselect"
	"github.com/spf13/cobra"
)

// chooser asks the user to pick one of labels and returns its index,
// or -1 when the user backed out.
type chooser func(labels []string) (int, error)

// chooseFromMenu shows labels in an arrow-key menu. Escape makes the menu
// return "" instead of an item id, which counts as a cancel.
func chooseFromMenu(labels []string) (int, error) {
	menu := gocliselect.NewMenu("Choose a meal to delete")
	for i, label := range labels {
		menu.AddItem(label, i)
	}

	raw, err := menu.Display()
	if err != nil {
		return -1, err
	}

	position, ok := raw.(int)
	if !ok {
		return -1, nil
	}
	return position, nil
}

func SetupCommands() *cobra.Command {
	return setupCommands(chooseFromMenu)
}

func setupCommands(choose chooser) *cobra.Command {
	var (
		cfgFile string
		app     *App
		view    = &tableView{}
	)

	// opens the store and initializes the app around a single command
	withApp := func(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cfgFile)
			if err != nil {
				return err
			}

			log := NewLogger(cfg.Log)

			store, err := OpenStore(cfg.Storage, log)
			if err != nil {
				return err
			}
			defer store.Close()

			view.out = cmd.OutOrStdout()
			app = NewApp(cfg, store, view, log)
			view.app = app

			if err := app.Initialize(); err != nil {
				return err
			}

			return run(cmd, args)
		}
	}

	showList := func(cmd *cobra.Command, args []string) error {
		view.Reload()
		return nil
	}

	// root command, shows the meal list
	rootCmd := &cobra.Command{
		Use:           "mealtime",
		Short:         "A meal time log",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          withApp(showList),
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/mealtime/config.yaml)")

	// command for listing meals
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show recorded meals",
		Args:  cobra.NoArgs,
		RunE:  withApp(showList),
	}

	// command for recording a meal now
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a meal at the current time",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			return app.OnAddTriggered()
		}),
	}

	// command for deleting a meal by its position in the list
	deleteCmd := &cobra.Command{
		Use:   "delete [position]",
		Short: "Delete a meal, pick it from a menu when no position is given",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}

			var positions []string
			err := withApp(func(cmd *cobra.Command, args []string) error {
				for i := 1; i <= app.MealCount(); i++ {
					positions = append(positions, strconv.Itoa(i))
				}
				return nil
			})(cmd, args)
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			return positions, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			count := app.MealCount()

			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid position %q", args[0])
				}
				if n < 1 || n > count {
					return fmt.Errorf("no meal #%d, positions go from 1 to %d: %w", n, count, ErrOutOfRange)
				}
				return app.OnDeleteTriggered(n - 1)
			}

			if count == 0 {
				return fmt.Errorf("no meals to delete")
			}

			labels := make([]string, count)
			for i := range labels {
				labels[i] = app.RowLabel(i)
			}

			position, err := choose(labels)
			if err != nil {
				return err
			}
			if position < 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted")
				return nil
			}
			return app.OnDeleteTriggered(position)
		}),
	}

	var format string

	// command for exporting the log
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write all meals as json or yaml",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string) error {
			return app.Export(cmd.OutOrStdout(), format)
		}),
	}
	exportCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: json or yaml")

	// add commands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)

	return rootCmd
}
