package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/config"
)

func TestNewSessionStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		Session: config.Session{Store: "redis"},
		Redis:   config.Redis{Addr: mr.Addr()},
	}

	store, closeStore, err := NewSessionStore(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, store)
	closeStore()
}

func TestNewSessionStore_Unknown(t *testing.T) {
	cfg := &config.Config{
		Session: config.Session{Store: "etcd"},
	}

	_, _, err := NewSessionStore(context.Background(), cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "etcd")
}
