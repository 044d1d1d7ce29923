package main

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/kodekulture/tokenlink/client"
	"github.com/kodekulture/tokenlink/internal/config"
	"github.com/kodekulture/tokenlink/login"
	"github.com/kodekulture/tokenlink/service/random"
)

type mintOptions struct {
	playerUUID string
	playerName string
	ttl        time.Duration
}

// newMintCmd does what the in-game /login command does: mint a token,
// register it with the issue endpoint and hand out the login link.
func newMintCmd() *cobra.Command {
	var opts mintOptions
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a login link for a player",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			link, err := mint(cmd, client.New(cfg.IssuerURL, cfg.IssuerKey, nil), cfg.LoginURL, opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), link)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.playerUUID, "uuid", "", "player uuid")
	cmd.Flags().StringVar(&opts.playerName, "name", "", "player name")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", random.DefaultLifetime, "link lifetime")
	return cmd
}

func mint(cmd *cobra.Command, cl *client.Client, loginURL string, opts mintOptions) (string, error) {
	if opts.playerUUID == "" || opts.playerName == "" {
		return "", errors.New("--uuid and --name are required")
	}
	tok, err := random.Token()
	if err != nil {
		return "", err
	}
	req := login.IssueRequest{
		PlayerUUID: opts.playerUUID,
		PlayerName: opts.playerName,
		Token:      tok,
		ExpiresAt:  random.ExpiresAt(time.Now(), opts.ttl),
	}
	if err = cl.StoreToken(cmd.Context(), req); err != nil {
		return "", fmt.Errorf("failed to generate login link: %w", err)
	}
	return loginURL + "?token=" + url.QueryEscape(tok), nil
}
