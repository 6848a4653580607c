package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opensvc/check-ceph-osd-frag/core/fragcheck"
	"github.com/opensvc/check-ceph-osd-frag/core/nagios"
	"github.com/opensvc/check-ceph-osd-frag/util/logging"
)

const version = "1.1.0"

var (
	configFlag   string
	debugFlag    bool
	logFileFlag  string
	versionFlag  bool
	exeFlag      string
	admExeFlag   string
	confFlag     string
	monFlag      string
	idFlag       string
	keyringFlag  string
	hostFlag     string
	criticalFlag float64
	cephadmFlag  bool
	timeoutFlag  time.Duration

	exitCode int
)

var rootCmd = &cobra.Command{
	Use:           "check_ceph_osd_frag",
	Short:         "Report the bluestore allocator fragmentation of the ceph osds bound to a host.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	Run:           run,
}

func run(_ *cobra.Command, _ []string) {
	if versionFlag {
		fmt.Printf("check_ceph_osd_frag %s\n", version)
		exitCode = nagios.Ok.ExitCode()
		return
	}
	check := newCheck(newLogger())
	status, body := check.Run()
	fmt.Println(nagios.Line(status, body))
	exitCode = status.ExitCode()
}

// Execute runs the probe and returns the process exit code expected by the
// monitoring scheduler. Flag usage errors map to UNKNOWN.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(nagios.Line(nagios.Unknown, err.Error()))
		return nagios.Unknown.ExitCode()
	}
	return exitCode
}

func newLogger() *zerolog.Logger {
	if debugFlag {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return logging.Configure(logging.Config{
		WithConsoleLog: debugFlag,
		WithColor:      false,
		Filename:       logFileFlag,
		MaxSize:        5,
		MaxBackups:     1,
		MaxAge:         30,
	})
}

// newCheck merges the explicit flags, the config file and the environment
// into the probe configuration. Explicit flags win.
func newCheck(log *zerolog.Logger) *fragcheck.T {
	return &fragcheck.T{
		Exe:        viper.GetString("exe"),
		AdmExe:     viper.GetString("admexe"),
		Conf:       viper.GetString("conf"),
		MonAddress: viper.GetString("monaddress"),
		ID:         viper.GetString("id"),
		Keyring:    viper.GetString("keyring"),
		Host:       viper.GetString("host"),
		Critical:   viper.GetFloat64("critical"),
		Cephadm:    viper.GetBool("cephadm"),
		Timeout:    viper.GetDuration("timeout"),
		Log:        log,
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()
	flags.StringVarP(&exeFlag, "exe", "e", fragcheck.DefaultExe, "ceph executable")
	flags.StringVarP(&admExeFlag, "admexe", "A", fragcheck.DefaultAdmExe, "cephadm executable, used with --cephadm")
	flags.StringVarP(&confFlag, "conf", "c", "", "alternative ceph conf file")
	flags.StringVarP(&monFlag, "monaddress", "m", "", "ceph monitor address[:port]")
	flags.StringVarP(&idFlag, "id", "i", "", "ceph client id")
	flags.StringVarP(&keyringFlag, "keyring", "k", "", "ceph client keyring file")
	flags.StringVarP(&hostFlag, "host", "H", "", "osd host to probe")
	flags.Float64VarP(&criticalFlag, "critical", "C", fragcheck.DefaultCritical, "critical fragmentation percentage threshold")
	flags.BoolVarP(&versionFlag, "version", "V", false, "show version and exit")
	flags.BoolVarP(&cephadmFlag, "cephadm", "a", false, "run ceph through cephadm shell")
	flags.DurationVar(&timeoutFlag, "timeout", 0, "per ceph command timeout, 0 disables")
	flags.BoolVar(&debugFlag, "debug", false, "show debug log on stderr")
	flags.StringVar(&logFileFlag, "log-file", "", "debug log file path")
	flags.StringVar(&configFlag, "config", "", "config file (default \"$HOME/.check_ceph_osd_frag.yaml\")")

	for _, name := range []string{"exe", "admexe", "conf", "monaddress", "id", "keyring", "host", "critical", "cephadm", "timeout"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// initConfig reads in the config file and environment variables if set.
func initConfig() {
	if configFlag != "" {
		viper.SetConfigFile(configFlag)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(nagios.Line(nagios.Unknown, err.Error()))
			os.Exit(nagios.Unknown.ExitCode())
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".check_ceph_osd_frag")
	}

	viper.SetEnvPrefix("check_ceph")
	viper.AutomaticEnv()

	// a missing config file is fine, the flags carry the defaults
	_ = viper.ReadInConfig()
}
