package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdminNotifierDisabledWithoutChatID(t *testing.T) {
	n := newAdminNotifier(0)
	require.NoError(t, n.Notify(context.Background(), "hello"))
}

func TestAdminNotifierErrorsBeforeBotStarts(t *testing.T) {
	n := newAdminNotifier(123)
	err := n.Notify(context.Background(), "hello")
	require.ErrorContains(t, err, "bot not started")
}
