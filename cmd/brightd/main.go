// Package main provides the brightd command line tool and daemon for
// unified display brightness control.
package main

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brightctl/bright"
	"github.com/brightctl/bright/platform"
)

var (
	flagVerbose    bool
	flagMethod     string
	flagDisplay    string
	flagDuplicates bool
	flagConfig     string

	rootCmd = &cobra.Command{
		Use:   "brightd",
		Short: "Query and adjust display brightness across backends",
		Long: `brightd provides one interface over the brightness mechanisms available
on this system: /sys/class/backlight, DDC/CI via ddcutil, xrandr, the light
program and USB HID displays. Displays reported by several mechanisms are
deduplicated by EDID, serial or name, and can be addressed by index, name,
model, serial or EDID.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
			loadConfig()
		},
		SilenceUsage: true,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging and detailed error messages")
	pf.StringVarP(&flagMethod, "method", "m", "", "restrict operations to one brightness method")
	pf.StringVarP(&flagDisplay, "display", "d", "", "the display to address (index, name, model, serial or EDID)")
	pf.BoolVarP(&flagDuplicates, "allow-duplicates", "a", false, "keep displays reported by several methods")
	pf.StringVar(&flagConfig, "config", "", "config file (default ~/.config/brightd/config.yaml)")

	rootCmd.AddCommand(getCmd, setCmd, fadeCmd, listCmd, infoCmd, methodsCmd, serveCmd)
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if flagVerbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func loadConfig() {
	if flagConfig != "" {
		viper.SetConfigFile(flagConfig)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "brightd"))
		}
		viper.AddConfigPath("/etc/brightd")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("fade.interval", "10ms")
	viper.SetDefault("fade.increment", 1)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn().Err(err).Msg("failed to read config file")
		}
		return
	}
	log.Debug().Str("file", viper.ConfigFileUsed()).Msg("config loaded")
}

// newController assembles the controller from the probed platform methods
// and the effective configuration.
func newController() *bright.Controller {
	method := flagMethod
	if method == "" {
		method = viper.GetString("method")
	}

	return bright.New(
		platform.Methods(log.Logger),
		bright.WithLogger(log.Logger),
		bright.WithConfig(bright.Config{
			Method:          method,
			AllowDuplicates: flagDuplicates || viper.GetBool("allow-duplicates"),
			VerboseErrors:   flagVerbose,
			CacheTTL:        time.Second,
			EnumRetries:     3,
			RetryDelay:      400 * time.Millisecond,
		}),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
