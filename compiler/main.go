package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xiaobogaga/jackc/compiler/internal"
)

var red = color.New(color.FgRed).SprintFunc()

var rootCmd = &cobra.Command{
	Use:           "jackc [path]",
	Short:         "Compile jack classes to vm code",
	Long:          "Compile a .jack file, or every .jack file of a directory, into .vm files.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringP("out", "o", "", "directory for the .vm files, defaults to the source directory")
	flags.Bool("keep-going", false, "keep compiling the other files of a directory after an error")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.Bool("no-color", false, "disable colored output")

	viper.SetEnvPrefix("JACKC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flags); err != nil {
		fatal(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	if viper.GetBool("no-color") || !isatty.IsTerminal(os.Stderr.Fd()) {
		color.NoColor = true
	}
	logger, err := newLogger(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	outputs, err := internal.Compile(path,
		internal.WithOutputDir(viper.GetString("out")),
		internal.WithContinueOnError(viper.GetBool("keep-going")),
		internal.WithLogger(logger),
	)
	for _, output := range outputs {
		fmt.Fprintln(cmd.OutOrStdout(), output)
	}
	return err
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: color.NoColor}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger(), nil
}

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatal(err)
	}
}
