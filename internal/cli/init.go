// init.go implements the "tars init" command.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tars-dev/tars/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize tars in the current project",
	Long: `Initialize the .tars/ directory with configuration and empty
context files (ARCHITECTURE.md, decisions.md) that seed intake research.`,
	RunE: runInit,
}

var projectName string

func init() {
	initCmd.Flags().StringVar(&projectName, "name", "", "Project name (defaults to directory name)")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	tarsDir := filepath.Join(dir, ".tars")
	if info, statErr := os.Stat(tarsDir); statErr == nil && info.IsDir() {
		fmt.Println("Warning: .tars/ directory already exists.")
		fmt.Print("Reinitialize? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	cfg.Project.Name = projectName
	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(dir)
	}

	if err := config.WriteConfig(dir, cfg); err != nil {
		return err
	}

	// Seed the optional context files so intake retrievals find them.
	for _, name := range []string{"ARCHITECTURE.md", "decisions.md"} {
		path := filepath.Join(tarsDir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		header := fmt.Sprintf("# %s\n", strings.TrimSuffix(name, ".md"))
		if err := os.WriteFile(path, []byte(header), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	fmt.Printf("Initialized .tars/ for project %q.\n", cfg.Project.Name)
	fmt.Println("Start a session with: tars, then /issue or /feature")
	return nil
}
