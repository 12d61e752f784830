package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-hateep/builder"
	"github.com/moffa90/go-hateep/config"
)

const defaultOutput = "out.eep"

type buildOptions struct {
	templateDir  string
	serial       prefixedUint
	edate        dateValue
	mac          macValue
	export       string
	noSecondBank bool
	noVerify     bool
}

func newBuildCmd(global *globalOptions) *cobra.Command {
	opts := &buildOptions{serial: newPrefixedUint(32)}

	cmd := &cobra.Command{
		Use:   "build CONFIG [OUTPUT]",
		Short: "Build an EEPROM image from a JSON configuration",
		Long: `Build an EEPROM image from a JSON configuration.

The serial, end test date and MAC address may be given on the command line;
they override the values from the configuration file. OUTPUT defaults to ` + defaultOutput + `.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := defaultOutput
			if len(args) > 1 {
				output = args[1]
			}
			return runBuild(cmd, global, opts, args[0], output)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.templateDir, "template-dir", "templates", "directory with templates")
	f.Var(&opts.serial, "serial", "serial number of the device (0x, 0o and 0b prefixes accepted)")
	f.Var(&opts.edate, "edate", "end test date as YYYY-MM-DD, or \"today\"")
	f.Var(&opts.mac, "mac", "first MAC address of the device")
	f.StringVar(&opts.export, "export", "", "write the fully resolved configuration as JSON to this file")
	f.BoolVar(&opts.noSecondBank, "no-second-bank", false, "reject configurations with a second gpio bank")
	f.BoolVar(&opts.noVerify, "no-verify", false, "skip decoding the built image again")
	return cmd
}

func runBuild(cmd *cobra.Command, global *globalOptions, opts *buildOptions, configPath, output string) error {
	def, err := config.ParseFile(configPath)
	if err != nil {
		return fmt.Errorf("invalid config file `%s': %w", configPath, err)
	}

	bopts := []builder.Option{
		builder.WithLogger(glogLogger{}),
		builder.WithTemplateDir(opts.templateDir),
		builder.WithChecksum(global.checksum.Checksum()),
		builder.WithSecondBank(!opts.noSecondBank),
		builder.WithVerifyAfterBuild(!opts.noVerify),
		builder.WithOverrideCallback(func(key, from, to string) {
			glog.Warningf("overriding %s from the config file (`%s`) with the %s from the program arguments (`%s`)",
				key, from, key, to)
		}),
	}
	if opts.serial.set {
		bopts = append(bopts, builder.WithSerial(uint32(opts.serial.value)))
	}
	if opts.edate.set {
		bopts = append(bopts, builder.WithEndTestDate(opts.edate.date))
	}
	if opts.mac.set {
		bopts = append(bopts, builder.WithMAC(opts.mac.mac))
	}

	res, err := builder.New(bopts...).Build(cmd.Context(), def)
	if err != nil {
		return fmt.Errorf("can't create EEP: %w", err)
	}

	if opts.export != "" {
		if err := exportConfig(res.Config, opts.export); err != nil {
			return err
		}
	}

	if err := os.WriteFile(output, res.Image, 0o644); err != nil {
		return fmt.Errorf("can't write output file `%s': %w", output, err)
	}

	printSummary(cmd.OutOrStdout(), res, output)
	return nil
}

func exportConfig(cfg *config.Resolved, path string) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("export config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("can't write json export file `%s': %w", path, err)
	}
	return nil
}

func printSummary(w io.Writer, res *builder.Result, output string) {
	cfg := res.Config
	rows := []struct{ key, value string }{
		{"PID", fmt.Sprintf("%d", cfg.PID)},
		{"PVER", res.Version.String()},
		{"PREV", fmt.Sprintf("%d", cfg.Prev)},
		{"Vendor", cfg.Vstr},
		{"Product", cfg.Pstr},
		{"Serial", fmt.Sprintf("%d", cfg.Serial)},
		{"End test date", cfg.EDate.String()},
		{"MAC", cfg.MAC.String()},
		{"UUID", res.UUID.String()},
		{"Product number", res.ProductNumber},
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Wrote %s (%d bytes)", output, len(res.Image))))
	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", keyStyle.Width(16).Render(r.key+":"), r.value)
	}
}
