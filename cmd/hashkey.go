package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kodekulture/tokenlink/service/hasher"
)

// newHashKeyCmd prints the ISSUER_KEY_HASH value for an issuer key.
func newHashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key [key]",
		Short: "Hash an issuer key for ISSUER_KEY_HASH",
		Long:  "Hash an issuer key for ISSUER_KEY_HASH. The key is read from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := hashKey(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hashed)
			return err
		},
	}
}

func hashKey(in io.Reader, args []string) (string, error) {
	var key string
	if len(args) > 0 {
		key = args[0]
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		key = strings.TrimSpace(line)
	}
	if key == "" {
		return "", errors.New("issuer key is empty")
	}
	var h hasher.Bcrypt
	return h.Hash(key)
}
