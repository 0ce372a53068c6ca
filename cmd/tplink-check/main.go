package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/common/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/swoga/tplink-check/api"
	"github.com/swoga/tplink-check/config"
	"github.com/swoga/tplink-check/parser"
	"github.com/swoga/tplink-check/report"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const program = "tplink-check"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	status := report.OK
	cmd := rootCommand(stdout, stderr, &status)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stdout, report.Failure(err))
		return int(report.Unknown)
	}
	return int(status)
}

func rootCommand(stdout, stderr io.Writer, status *report.Status) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("tplink")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           program,
		Short:         "Check the port statistics of a TP-Link easy smart switch",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), v, stdout, stderr, status)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.Flags()
	flags.StringP("hostname", "H", "", "switch hostname or address")
	flags.StringP("username", "u", config.DefaultUsername, "login user name")
	flags.StringP("authentication", "a", "", "login password, falls back to the password files")
	flags.String("password-dir", ".", "directory holding .<hostname>_password and .tplink")
	flags.Duration("timeout", 0, "timeout per HTTP request, 0 disables it")
	flags.Bool("send-cpassword", false, "send an empty cpassword field on login")
	flags.Bool("debug", false, "log requests to stderr")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(exporterCommand(stderr))
	return rootCmd
}

// newLogger logs to stderr only, stdout carries the plugin output.
func newLogger(stderr io.Writer, level zapcore.Level) *zap.Logger {
	return zap.New(
		zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.AddSync(stderr), zap.NewAtomicLevelAt(level)),
	)
}

func runCheck(ctx context.Context, v *viper.Viper, stdout, stderr io.Writer, status *report.Status) error {
	level := zap.WarnLevel
	if v.GetBool("debug") {
		level = zap.DebugLevel
	}
	log := newLogger(stderr, level)
	defer log.Sync()

	hostname := v.GetString("hostname")
	if hostname == "" {
		return fmt.Errorf("no hostname given, use --hostname or TPLINK_HOSTNAME")
	}

	var explicit *string
	if v.IsSet("authentication") {
		password := v.GetString("authentication")
		explicit = &password
	}
	password, err := config.ResolvePassword(v.GetString("password-dir"), hostname, explicit)
	if err != nil {
		return err
	}

	opts := api.Options{
		Address:       hostname,
		Username:      v.GetString("username"),
		Password:      password,
		SendCPassword: v.GetBool("send-cpassword"),
		Timeout:       v.GetDuration("timeout"),
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	out, err := check(ctx, log, opts)
	if err != nil {
		log.Error("check failed", zap.String("hostname", hostname), zap.Error(err))
		*status = report.StatusFor(err)
		fmt.Fprintln(stdout, report.Failure(err))
		return nil
	}
	log.Debug("check done", zap.String("hostname", hostname), zap.Duration("duration", time.Since(start)))

	*status = report.OK
	fmt.Fprintln(stdout, out)
	return nil
}

// check runs one fetch, parse and render cycle against a switch.
func check(ctx context.Context, log *zap.Logger, opts api.Options) (string, error) {
	client, err := api.NewClient(log, opts)
	if err != nil {
		return "", err
	}
	body, err := client.FetchStatusPage(ctx)
	if err != nil {
		return "", err
	}
	statistics, err := parser.New().Parse(body)
	if err != nil {
		return "", err
	}
	return report.Render(statistics), nil
}
