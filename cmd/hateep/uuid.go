package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-hateep/identity"
)

type uuidOptions struct {
	pid, pver, prev prefixedUint
	serial          prefixedUint
	stored          bool
}

func newUUIDCmd() *cobra.Command {
	opts := &uuidOptions{
		pid:    newPrefixedUint(16),
		pver:   newPrefixedUint(16),
		prev:   newPrefixedUint(16),
		serial: newPrefixedUint(32),
	}

	cmd := &cobra.Command{
		Use:   "uuid",
		Short: "Print the UUID derived from product id, versions and serial",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := identity.Derive(uint16(opts.pid.value), uint16(opts.pver.value),
				uint16(opts.prev.value), uint32(opts.serial.value))
			if opts.stored {
				r := identity.Reversed(id)
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(r[:]))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	f := cmd.Flags()
	f.Var(&opts.pid, "pid", "product id")
	f.Var(&opts.pver, "pver", "product version")
	f.Var(&opts.prev, "prev", "product revision")
	f.Var(&opts.serial, "serial", "serial number")
	f.BoolVar(&opts.stored, "stored", false, "print the bytes in image order")
	for _, name := range []string{"pid", "pver", "prev", "serial"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
