package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/moffa90/go-hateep/atoms"
	"github.com/moffa90/go-hateep/builder"
	"github.com/moffa90/go-hateep/gpio"
)

type inspectOptions struct {
	strict bool
	plain  bool
}

func newInspectCmd(global *globalOptions) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect IMAGE",
		Short: "Decode an EEPROM image and print its attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, global, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.strict, "strict", false, "fail if the stored UUID is not the derived one")
	f.BoolVar(&opts.plain, "plain", false, "print name=value lines even on a terminal")
	return cmd
}

func runInspect(cmd *cobra.Command, global *globalOptions, opts *inspectOptions, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	b := builder.New(
		builder.WithLogger(glogLogger{}),
		builder.WithChecksum(global.checksum.Checksum()),
	)
	report, err := b.InspectReader(f)
	if err != nil {
		return fmt.Errorf("invalid image `%s': %w", path, err)
	}

	identityErr := builder.CheckIdentity(report)
	if identityErr != nil && opts.strict {
		return identityErr
	}

	w := cmd.OutOrStdout()
	if opts.plain || !isTerminal(w) {
		printPlain(w, report)
		return nil
	}
	printStyled(w, report, identityErr)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printPlain(w io.Writer, r *atoms.Report) {
	for _, a := range r.Attributes() {
		fmt.Fprintf(w, "%s=%s\n", a.Name, a.Value)
	}
	fmt.Fprintf(w, "dtstr=%s\n", r.DeviceTree)
	for _, m := range maps(r) {
		fmt.Fprintf(w, "%s=%s\n", m.Bank, bankSummary(m))
		for _, p := range m.Used() {
			fmt.Fprintf(w, "%s.gpio%d=%s\n", m.Bank, p.Pin, pinSummary(p))
		}
	}
}

func printStyled(w io.Writer, r *atoms.Report, identityErr error) {
	var keys, values []string
	add := func(k, v string) {
		keys = append(keys, keyStyle.Render(k))
		values = append(values, v)
	}
	for _, a := range r.Attributes() {
		add(a.Name, a.Value)
	}
	add("dtstr", string(r.DeviceTree))
	add("product_number", r.ProductNumber())
	add("version", r.Version.String())

	table := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().PaddingRight(2).Render(strings.Join(keys, "\n")),
		strings.Join(values, "\n"),
	)
	fmt.Fprintln(w, titleStyle.Render("Attributes"))
	fmt.Fprintln(w, table)

	if identityErr != nil {
		fmt.Fprintln(w, errorStyle.Render(identityErr.Error()))
	}

	for _, m := range maps(r) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("GPIO %s", m.Bank)))
		fmt.Fprintln(w, dimStyle.Render(bankSummary(m)))
		for _, p := range m.Used() {
			fmt.Fprintf(w, "%s %s\n", keyStyle.Width(8).Render(fmt.Sprintf("gpio%d", p.Pin)), pinSummary(p))
		}
	}
}

func maps(r *atoms.Report) []*gpio.Map {
	out := []*gpio.Map{r.GPIO}
	if r.GPIOBank1 != nil {
		out = append(out, r.GPIOBank1)
	}
	return out
}

func bankSummary(m *gpio.Map) string {
	s := m.Settings
	return fmt.Sprintf("drive=%s slew=%s hysteresis=%s back_power=%s", s.Drive, s.Slew, s.Hysteresis, s.BackPower)
}

func pinSummary(p gpio.PinSetting) string {
	return fmt.Sprintf("fsel=%s pull=%s", p.Fsel, p.Pull)
}
