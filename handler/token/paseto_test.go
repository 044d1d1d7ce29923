package token

import (
	"context"
	"testing"
	"time"

	"github.com/lordvidex/x/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodekulture/tokenlink/login"
)

var testKey = []byte("12345678901234567890123456789012")

func TestNew(t *testing.T) {
	type args struct {
		key      []byte
		footer   string
		validity time.Duration
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{
			name: "valid key len",
			args: args{
				key:      testKey,
				footer:   "footer",
				validity: 24 * time.Hour,
			},
			wantErr: false,
		},
		{
			name: "invalid key len",
			args: args{
				key:      []byte("key"),
				footer:   "footer",
				validity: 24 * time.Hour,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.args.key, tt.args.footer, tt.args.validity)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
		})
	}
}

func TestPasetoRoundTrip(t *testing.T) {
	p := newPasetoTest(t)
	id := login.Identity{PlayerUUID: "u-1", PlayerName: "Alice"}

	tok, err := p.Generate(context.Background(), id)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := p.Validate(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestPasetoValidate(t *testing.T) {
	p := newPasetoTest(t)
	id := login.Identity{PlayerUUID: "u-1", PlayerName: "Alice"}

	other, err := New([]byte("abcdefghijabcdefghijabcdefghij12"), "footer", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Generate(context.Background(), id)
	require.NoError(t, err)

	stale, err := p.Generate(context.Background(), id)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  auth.Token
		before func()
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "other key", token: foreign},
		{
			name:  "expired",
			token: stale,
			before: func() {
				p.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.before != nil {
				tt.before()
			}
			_, err := p.Validate(context.Background(), tt.token)
			assert.Error(t, err)
		})
	}
}

// newPasetoTest creates a new paseto instance for testing purposes
func newPasetoTest(t *testing.T) *Paseto {
	p, err := New(testKey, "footer", 24*time.Hour)
	if err != nil {
		t.Errorf("Failed to create paseto: %v", err)
	}
	return p
}
