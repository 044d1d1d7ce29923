package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodekulture/tokenlink/client"
	"github.com/kodekulture/tokenlink/handler"
	"github.com/kodekulture/tokenlink/repository/temp"
	"github.com/kodekulture/tokenlink/service"
)

func TestMintRoundTrip(t *testing.T) {
	store := temp.New()
	srv := httptest.NewServer(handler.New(service.New(store, store), nil, handler.Config{}))
	defer srv.Close()

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	link, err := mint(cmd, client.New(srv.URL, "", srv.Client()), "https://mc.example.org/login", mintOptions{
		playerUUID: "u-1",
		playerName: "Alice",
		ttl:        time.Minute,
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "https://mc.example.org/login?token="))

	tok := strings.TrimPrefix(link, "https://mc.example.org/login?token=")
	got, err := store.Get(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.PlayerName)
	assert.False(t, got.Used)
	assert.InDelta(t, time.Now().Add(time.Minute).Unix(), got.ExpiresAt, 2)
}

func TestMintRequiresPlayer(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	_, err := mint(cmd, client.New("http://127.0.0.1:0", "", nil), "https://mc.example.org/login", mintOptions{playerName: "Alice"})
	assert.Error(t, err)
}
