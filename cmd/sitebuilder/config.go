package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/thatcatcamp/sitebuilder/internal/config"
	"github.com/thatcatcamp/sitebuilder/internal/console"
	"github.com/thatcatcamp/sitebuilder/internal/db"
	"github.com/thatcatcamp/sitebuilder/internal/export"
	"github.com/thatcatcamp/sitebuilder/internal/questions"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sitebuilder configuration",
	Long:  "View and modify sitebuilder configuration values, and export the content model",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.GetString(args[0]))
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(args[0], args[1]); err != nil {
			return fmt.Errorf("setting config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Run: func(cmd *cobra.Command, args []string) {
		all := flatten("", config.GetAll())

		keys := make([]string, 0, len(all))
		for key := range all {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", key, all[key])
		}
	},
}

var configExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the content model as YAML configuration files",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initDB(); err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = config.GetString("export.dir")
		}

		written, err := export.NewExporter(dir).ExportAll(db.GetDB())
		if err != nil {
			return err
		}

		io := newIO(cmd)
		for _, name := range written {
			io.Writeln(name + ".yml")
		}
		io.Success(fmt.Sprintf("Exported %d configuration files to %s.", len(written), dir))
		return nil
	},
}

func init() {
	configExportCmd.Flags().String("dir", "", "Directory to write to (default export.dir)")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configExportCmd)
	rootCmd.AddCommand(configCmd)
}

// flatten turns nested settings into dotted keys
func flatten(prefix string, settings map[string]interface{}) map[string]interface{} {
	flat := make(map[string]interface{})
	for key, value := range settings {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			for k, v := range flatten(key, nested) {
				flat[k] = v
			}
			continue
		}
		flat[key] = value
	}
	return flat
}

// initConfig initializes the configuration system
func initConfig() error {
	configPath := os.Getenv("SITEBUILDER_CONFIG")
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".sitebuilder", "config.yaml")
	}

	return config.InitConfig(configPath)
}

// initDB opens the configured entity store
func initDB() error {
	return db.InitDB(config.GetString("database.type"), config.GetString("database.path"))
}

// newIO creates the console for a command; questions are only asked on a terminal
func newIO(cmd *cobra.Command) *console.IO {
	interactive := !noInteraction && term.IsTerminal(int(os.Stdin.Fd()))
	return console.New(cmd.InOrStdin(), cmd.OutOrStdout(), interactive)
}

// newAsker opens the entity store and creates an Asker for a command
func newAsker(cmd *cobra.Command) (*questions.Asker, error) {
	if err := initDB(); err != nil {
		return nil, err
	}
	return questions.New(newIO(cmd), db.GetDB()), nil
}
