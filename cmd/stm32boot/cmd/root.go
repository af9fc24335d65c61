package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/allbin/stm32boot"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	log     = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "stm32boot",
	Short: "Drive STM32 RESET/BOOT0 lines and the bootloader UART",
	Long: `Control an STM32 target wired to a Linux host: RESET and BOOT0 on GPIO
pins, the system bootloader on a serial port.

Settings are read from flags, STM32BOOT_* environment variables and
$HOME/.stm32boot.yaml, in that order of precedence.

Examples:
  stm32boot boot /dev/ttyAMA0                 # Start the system bootloader
  stm32boot run /dev/ttyAMA0                  # Reset into the flash application
  stm32boot send --hex 7F /dev/ttyAMA0 -r 1   # Autobaud byte, wait for ACK
  stm32boot line boot0 on                     # Drive a single line
  stm32boot console /dev/ttyAMA0              # Interactive terminal`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := stm32boot.DefaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default $HOME/.stm32boot.yaml)")
	pf.IntP("baud", "b", defaults.BaudRate, "Baud rate")
	pf.String("parity", "even", "Parity: none, odd, even, mark, space")
	pf.Duration("timeout", defaults.Timeout, "Read timeout (-1ns blocks forever)")
	pf.Int("reset-pin", defaults.ResetPin, "Pin wired to NRST")
	pf.Int("boot0-pin", defaults.Boot0Pin, "Pin wired to BOOT0")
	pf.Bool("reset-active-high", false, "RESET is asserted by a HIGH level")
	pf.Bool("boot0-active-low", false, "BOOT0 selects the bootloader with a LOW level")
	pf.String("numbering", defaults.Numbering.String(), "Pin numbering: board or bcm")
	pf.Bool("simulate", false, "Use an in-memory GPIO backend instead of real pins")
	pf.BoolP("verbose", "v", false, "Debug logging")

	if err := bindFlags(); err != nil {
		panic(err)
	}
}

// bindFlags makes the persistent flags visible through viper
func bindFlags() error {
	return viper.BindPFlags(rootCmd.PersistentFlags())
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".stm32boot")
	}

	viper.SetEnvPrefix("STM32BOOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	if viper.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := viper.ReadInConfig(); err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	} else if cfgFile != "" {
		log.WithError(err).Warn("could not read config file")
	}
}

// controllerOptions turns the persistent settings into controller options
func controllerOptions() ([]stm32boot.Option, error) {
	parity, err := stm32boot.ParseParity(viper.GetString("parity"))
	if err != nil {
		return nil, err
	}
	numbering, err := stm32boot.ParseNumberingMode(viper.GetString("numbering"))
	if err != nil {
		return nil, err
	}

	return []stm32boot.Option{
		stm32boot.WithBaudRate(viper.GetInt("baud")),
		stm32boot.WithParity(parity),
		stm32boot.WithTimeout(viper.GetDuration("timeout")),
		stm32boot.WithResetPin(viper.GetInt("reset-pin")),
		stm32boot.WithBoot0Pin(viper.GetInt("boot0-pin")),
		stm32boot.WithNumbering(numbering),
		stm32boot.WithResetActiveHigh(viper.GetBool("reset-active-high")),
		stm32boot.WithBoot0ActiveLow(viper.GetBool("boot0-active-low")),
		stm32boot.WithLogger(log),
	}, nil
}

func newGPIO() stm32boot.GPIO {
	if viper.GetBool("simulate") {
		log.Debug("using simulated GPIO")
		return stm32boot.NewSimulatedGPIO()
	}
	return stm32boot.NewPeriphGPIO()
}

// newController builds a controller for portPath; extra options apply last
func newController(portPath string, extra ...stm32boot.Option) (*stm32boot.Controller, error) {
	opts, err := controllerOptions()
	if err != nil {
		return nil, err
	}
	return stm32boot.New(portPath, newGPIO(), append(opts, extra...)...)
}

// connect builds a controller for portPath and opens the serial port
func connect(portPath string, extra ...stm32boot.Option) (*stm32boot.Controller, error) {
	ctrl, err := newController(portPath, extra...)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Connect(); err != nil {
		ctrl.Close()
		return nil, err
	}
	return ctrl, nil
}

// addTimingFlags registers the reset pulse timing flags on cmd
func addTimingFlags(cmd *cobra.Command) {
	defaults := stm32boot.DefaultTiming()
	cmd.Flags().Duration("hold", defaults.ResetHold, "How long RESET stays asserted")
	cmd.Flags().Duration("settle", defaults.Settle, "Wait after RESET is released")
}

func timingFromFlags(cmd *cobra.Command) (stm32boot.Timing, error) {
	hold, err := cmd.Flags().GetDuration("hold")
	if err != nil {
		return stm32boot.Timing{}, err
	}
	settle, err := cmd.Flags().GetDuration("settle")
	if err != nil {
		return stm32boot.Timing{}, err
	}
	if hold < 0 || settle < 0 {
		return stm32boot.Timing{}, fmt.Errorf("%w: negative delay", stm32boot.ErrInvalidConfig)
	}
	return stm32boot.Timing{ResetHold: hold, Settle: settle}, nil
}

func formatTimeout(d time.Duration) string {
	if d == stm32boot.Forever {
		return "forever"
	}
	return d.String()
}
