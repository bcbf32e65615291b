package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/quantmind-br/treepack/internal/config"
	"github.com/quantmind-br/treepack/internal/utils"
	"github.com/quantmind-br/treepack/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// exitError carries an exit code through cobra. A nil err prints nothing.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// execute runs the CLI and returns the process exit code
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, "Error:", ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

// cli holds the state shared by every subcommand of one invocation
type cli struct {
	v         *viper.Viper
	cfgFile   string
	verbose   bool
	logFormat string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "treepack",
		Short: "Materialize a source tree from a single encoded manifest",
		Long: `treepack reconstructs a multi-file source tree from one compact manifest of
(path, base64 payload) entries, then removes the manifest and the generator
scripts that came with it once every file has been written.

Exit codes: 0 success, 1 manifest or usage error, 2 partial failure,
3 success with cleanup warnings.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ~/.treepack/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&c.logFormat, "log-format", utils.FormatAuto, "Log format: pretty, json or auto")

	// Bind flags to viper
	_ = c.v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(
		newMaterializeCmd(c),
		newFinalizeCmd(c),
		newInspectCmd(c),
		newPackCmd(c),
		newDoctorCmd(c),
		newVersionCmd(),
	)

	return rootCmd
}

// loadConfig reads configuration through the invocation's viper instance
func (c *cli) loadConfig() (*config.Config, error) {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	}
	cfg, err := config.LoadFrom(c.v)
	if err != nil {
		return nil, &exitError{code: 1, err: fmt.Errorf("failed to load config: %w", err)}
	}
	return cfg, nil
}

// newLogger builds the stderr logger for cfg
func (c *cli) newLogger(cfg *config.Config, stderr io.Writer) *utils.Logger {
	return utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  stderr,
		Verbose: c.verbose,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}
