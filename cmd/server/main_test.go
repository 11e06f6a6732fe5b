package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/battleship-backend/internal/config"
)

func TestCommandRejectsInvalidConfig(t *testing.T) {
	cases := [][]string{
		{"battleship-server", "--log-level", "loud"},
		{"battleship-server", "--outbox-size", "0"},
		{"battleship-server", "--lobby-grace", "0s"},
	}
	for _, args := range cases {
		err := newCommand().Run(context.Background(), args)
		require.ErrorIs(t, err, config.ErrInvalid, "args %v", args)
	}
}

func TestCommandReadsEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "shout")
	err := newCommand().Run(context.Background(), []string{"battleship-server"})
	require.ErrorIs(t, err, config.ErrInvalid)
}
