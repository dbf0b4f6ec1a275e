package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kropbot/core/telegram/state"
)

func TestPresenterSendsWhenNoLiveMessage(t *testing.T) {
	gw := &fakeGateway{}
	sessions := state.NewMemoryManager()
	p := NewPresenter(gw, sessions)

	require.NoError(t, p.Show(42, 42, "hello", nil))

	assert.Equal(t, 1, gw.sendCount)
	assert.Equal(t, 0, gw.editCount)
	live, ok := sessions.LiveMessage(42)
	require.True(t, ok)
	assert.Equal(t, 1, live)
}

func TestPresenterEditsInPlace(t *testing.T) {
	gw := &fakeGateway{}
	sessions := state.NewMemoryManager()
	sessions.SetLiveMessage(42, 7)
	p := NewPresenter(gw, sessions)

	require.NoError(t, p.Show(42, 42, "hello", nil))

	assert.Equal(t, 0, gw.sendCount)
	assert.Equal(t, 1, gw.editCount)
	live, _ := sessions.LiveMessage(42)
	assert.Equal(t, 7, live, "live message id must not change on edit")
}

func TestPresenterTreatsUnchangedContentAsSuccess(t *testing.T) {
	gw := &fakeGateway{editErr: tele.ErrSameMessageContent}
	sessions := state.NewMemoryManager()
	sessions.SetLiveMessage(42, 7)
	p := NewPresenter(gw, sessions)

	require.NoError(t, p.Show(42, 42, "hello", nil))

	assert.Equal(t, 0, gw.sendCount, "unchanged content must not trigger a resend")
}

func TestPresenterFallsBackToSendOnEditFailure(t *testing.T) {
	gw := &fakeGateway{editErr: errors.New("message to edit not found")}
	sessions := state.NewMemoryManager()
	sessions.SetLiveMessage(42, 7)
	p := NewPresenter(gw, sessions)

	require.NoError(t, p.Show(42, 42, "hello", nil))

	assert.Equal(t, 1, gw.sendCount)
	live, ok := sessions.LiveMessage(42)
	require.True(t, ok)
	assert.Equal(t, 1, live, "live message id follows the replacement message")
}

func TestPresenterSwallowsSendFailure(t *testing.T) {
	gw := &fakeGateway{sendErr: errors.New("forbidden: bot was blocked by the user")}
	sessions := state.NewMemoryManager()
	p := NewPresenter(gw, sessions)

	require.NoError(t, p.Show(42, 42, "hello", nil))

	_, ok := sessions.LiveMessage(42)
	assert.False(t, ok, "failed send must not record a live message")
}

func TestPresenterDiscardDeletesLiveMessage(t *testing.T) {
	gw := &fakeGateway{}
	sessions := state.NewMemoryManager()
	sessions.SetLiveMessage(42, 7)
	p := NewPresenter(gw, sessions)

	p.Discard(42, 42)

	assert.Equal(t, []int{7}, gw.deletes)
	_, ok := sessions.LiveMessage(42)
	assert.False(t, ok)
}
