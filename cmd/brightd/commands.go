package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brightctl/bright"
	"github.com/brightctl/bright/internal/hotplug"
	"github.com/brightctl/bright/internal/service"
	"github.com/brightctl/bright/platform"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current brightness of the selected displays",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := newController()
		readings, err := ctrl.GetBrightness(bright.GetOpts{
			Display: bright.ParseIdentifier(flagDisplay),
			Method:  flagMethod,
		})
		if err != nil {
			return err
		}
		for _, r := range readings {
			if r.Err != nil {
				fmt.Printf("%s -> error: %v\n", r.Display.Label(), r.Err)
				continue
			}
			fmt.Printf("%s -> %d%%\n", r.Display.Label(), r.Percent)
		}
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <value>",
	Short: "Set the brightness of the selected displays",
	Long: `Set the brightness of the selected displays to an absolute percentage
or adjust it by a relative amount:

  brightd set 50    set to 50%
  brightd set +10   raise by 10 percentage points
  brightd set -- -10  lower by 10 percentage points`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := bright.ParseValue(args[0])
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		ctrl := newController()
		readings, err := ctrl.SetBrightness(value, bright.SetOpts{
			Display: bright.ParseIdentifier(flagDisplay),
			Method:  flagMethod,
			Force:   force,
		})
		if err != nil {
			return err
		}
		for _, r := range readings {
			if r.Err != nil {
				fmt.Printf("%s -> error: %v\n", r.Display.Label(), r.Err)
				continue
			}
			fmt.Printf("%s -> %d%%\n", r.Display.Label(), r.Percent)
		}
		return nil
	},
}

var fadeCmd = &cobra.Command{
	Use:   "fade <value>",
	Short: "Fade the brightness of the selected displays to a new level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		finish, err := bright.ParseValue(args[0])
		if err != nil {
			return err
		}
		interval, _ := cmd.Flags().GetDuration("interval")
		if !cmd.Flags().Changed("interval") {
			interval = viper.GetDuration("fade.interval")
		}
		increment, _ := cmd.Flags().GetInt("increment")
		if !cmd.Flags().Changed("increment") {
			increment = viper.GetInt("fade.increment")
		}
		logarithmic, _ := cmd.Flags().GetBool("logarithmic")
		force, _ := cmd.Flags().GetBool("force")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ctrl := newController()
		readings, err := ctrl.FadeBrightness(ctx, finish, bright.FadeOpts{
			Display:     bright.ParseIdentifier(flagDisplay),
			Method:      flagMethod,
			Interval:    interval,
			Increment:   increment,
			Force:       force,
			Logarithmic: logarithmic,
		})
		if err != nil {
			return err
		}
		for _, r := range readings {
			if r.Err != nil {
				fmt.Printf("%s -> error: %v\n", r.Display.Label(), r.Err)
				continue
			}
			fmt.Printf("%s -> %d%%\n", r.Display.Label(), r.Percent)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the detected displays",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := newController()
		records, err := ctrl.ListMonitorsInfo(flagMethod, flagDuplicates)
		if err != nil {
			return err
		}
		for _, rec := range records {
			fmt.Printf("Display %d: %s\n", rec.GlobalIndex, rec.Label())
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print detailed information about the detected displays",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := newController()
		records, err := ctrl.Resolve(bright.ParseIdentifier(flagDisplay), flagMethod)
		if err != nil {
			return err
		}
		for i, rec := range records {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("Display %d (%s):\n", rec.GlobalIndex, rec.Method.Name())
			printField("Name", rec.Name)
			printField("Model", rec.Model)
			printField("Manufacturer", rec.Manufacturer)
			printField("Manufacturer ID", rec.ManufacturerID)
			printField("Serial", rec.Serial)
			if rec.EDID != "" {
				fmt.Println("\tEDID:")
				printEDID(rec.EDID)
			}
		}
		return nil
	},
}

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the brightness methods available on this system",
	Run: func(cmd *cobra.Command, args []string) {
		set := platform.Methods(log.Logger)
		for _, name := range set.Names() {
			fmt.Println(name)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the D-Bus brightness service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := newController()

		srv := service.NewServer(ctrl)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("failed to start D-Bus service: %w", err)
		}
		defer srv.Stop()

		mon := hotplug.NewMonitor(func(ev hotplug.Event) {
			log.Debug().
				Stringer("type", ev.Type).
				Str("subsystem", ev.Subsystem).
				Msg("hotplug event, invalidating display cache")
			ctrl.InvalidateCache()
		})
		if err := mon.Start(); err != nil {
			log.Warn().Err(err).Msg("hotplug monitoring unavailable, display cache will only expire by TTL")
		} else {
			defer mon.Stop()
		}

		log.Info().Msg("brightness service started")

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		log.Info().Msg("shutting down")
		return nil
	},
}

func init() {
	setCmd.Flags().Bool("force", false, "allow 0% even where that turns the backlight off")

	fadeCmd.Flags().Duration("interval", 10*time.Millisecond, "delay between fade steps")
	fadeCmd.Flags().Int("increment", 1, "fade step size in percentage points")
	fadeCmd.Flags().Bool("logarithmic", false, "fade along a logarithmic curve instead of linearly")
	fadeCmd.Flags().Bool("force", false, "allow 0% even where that turns the backlight off")
}

func printField(name, value string) {
	if value == "" {
		return
	}
	fmt.Printf("\t%s: %s\n", name, value)
}

func printEDID(edid string) {
	for _, row := range edidRows(edid) {
		fmt.Printf("\t\t%s\n", row)
	}
}

// edidRows splits the hex dump into 32-character rows, matching the layout
// of the sysfs edid file rendered through hexdump.
func edidRows(edid string) []string {
	edid = strings.ToLower(edid)
	var rows []string
	for i := 0; i < len(edid); i += 32 {
		end := i + 32
		if end > len(edid) {
			end = len(edid)
		}
		rows = append(rows, edid[i:end])
	}
	return rows
}
