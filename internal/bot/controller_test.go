package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/kropbot/core/config"
	"github.com/m3rciful/kropbot/core/telegram/state"
	"github.com/m3rciful/kropbot/internal/board"
)

var testBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig() coreconfig.BoardConfig {
	return coreconfig.BoardConfig{
		MyPageSize:        5,
		ViewPageSize:      5,
		EditWindowMinutes: 15,
		RetentionDays:     30,
		Categories:        append([]string(nil), coreconfig.DefaultCategories...),
		KindGlyphs:        coreconfig.DefaultKindGlyphs,
	}
}

type testEnv struct {
	ctl      *Controller
	store    *fakeStore
	gw       *fakeGateway
	sessions state.Manager
	now      time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:    newFakeStore(),
		gw:       &fakeGateway{},
		sessions: state.NewMemoryManager(),
		now:      testBase,
	}
	env.ctl = NewController(env.store, env.sessions, env.gw, testConfig())
	env.ctl.now = func() time.Time { return env.now }
	return env
}

func (e *testEnv) handle(t *testing.T, ev *Event) {
	t.Helper()
	require.NoError(t, e.ctl.Handle(context.Background(), ev))
}

func cbEvent(userID int64, a Action) *Event {
	return &Event{ChatID: userID, UserID: userID, UserDisplay: "@tester", CallbackID: "cb", Action: a}
}

func textEvent(userID int64, text string) *Event {
	return &Event{ChatID: userID, UserID: userID, UserDisplay: "@tester", MessageID: 100, Action: Action{Type: ActionText}, Text: text}
}

func (e *testEnv) seedListing(id, ownerID int64, createdAt time.Time) {
	e.store.listings[id] = board.Listing{
		ID:          id,
		OwnerID:     ownerID,
		Kind:        board.KindJob,
		Category:    coreconfig.DefaultCategories[0],
		Description: fmt.Sprintf("listing %d", id),
		CreatedAt:   createdAt,
	}
	if id > e.store.seq {
		e.store.seq = id
	}
}

func TestAddFlowPublishes(t *testing.T) {
	env := newTestEnv()
	const user = int64(42)

	env.handle(t, &Event{ChatID: user, UserID: user, UserDisplay: "@tester", Action: Action{Type: ActionStart}})
	assert.Equal(t, StepMainMenu, env.sessions.Step(user))

	env.handle(t, cbEvent(user, Action{Type: ActionAddListing}))
	assert.Equal(t, StepAddType, env.sessions.Step(user))

	env.handle(t, cbEvent(user, Action{Type: ActionPickKind, Kind: board.KindJob}))
	assert.Equal(t, StepAddCategory, env.sessions.Step(user))

	env.handle(t, cbEvent(user, Action{Type: ActionPickCategory, Int: 0}))
	assert.Equal(t, StepAddDescription, env.sessions.Step(user))

	env.handle(t, textEvent(user, "walk my dog twice a day"))
	assert.Equal(t, StepAddContact, env.sessions.Step(user))
	assert.Contains(t, env.gw.deletes, 100, "input message should be removed")

	env.handle(t, cbEvent(user, Action{Type: ActionSkip}))
	assert.Equal(t, StepAddConfirm, env.sessions.Step(user))
	assert.Contains(t, env.gw.lastScreen().text, "Preview")

	env.handle(t, cbEvent(user, Action{Type: ActionConfirm}))

	require.Len(t, env.store.listings, 1)
	published := env.store.listings[1]
	assert.Equal(t, user, published.OwnerID)
	assert.Equal(t, "@tester", published.OwnerDisplay)
	assert.Equal(t, board.KindJob, published.Kind)
	assert.Equal(t, coreconfig.DefaultCategories[0], published.Category)
	assert.Equal(t, "walk my dog twice a day", published.Description)
	assert.Empty(t, published.Contact)

	toast, ok := env.gw.lastAlert()
	require.True(t, ok)
	assert.Contains(t, toast.text, "#1")
	assert.False(t, toast.alert)

	assert.Equal(t, StepMyListings, env.sessions.Step(user))
	last := env.gw.lastScreen()
	assert.Contains(t, last.text, "walk my dog twice a day")
	assert.True(t, markupHasUnique(last.markup, cbEdit), "fresh listing should be editable")
	assert.True(t, markupHasUnique(last.markup, cbDelete))
}

func TestContactValidationLoops(t *testing.T) {
	env := newTestEnv()
	const user = int64(42)

	env.handle(t, cbEvent(user, Action{Type: ActionStart}))
	env.handle(t, cbEvent(user, Action{Type: ActionAddListing}))
	env.handle(t, cbEvent(user, Action{Type: ActionPickKind, Kind: board.KindService}))
	env.handle(t, cbEvent(user, Action{Type: ActionPickCategory, Int: 1}))
	env.handle(t, textEvent(user, "fixing leaky taps"))

	env.handle(t, textEvent(user, "call me maybe"))
	assert.Equal(t, StepAddContact, env.sessions.Step(user), "invalid contact keeps the step")
	assert.Contains(t, env.gw.lastScreen().text, "phone number")

	env.handle(t, textEvent(user, "+380671234567"))
	assert.Equal(t, StepAddConfirm, env.sessions.Step(user))
}

func TestEditRejectedAfterWindow(t *testing.T) {
	env := newTestEnv()
	const user = int64(42)
	env.seedListing(7, user, testBase)
	env.sessions.SetStep(user, StepMyListings)
	env.sessions.SetInt(user, keyMyOffset, 0)

	env.now = testBase.Add(20 * time.Minute)
	env.handle(t, cbEvent(user, Action{Type: ActionEdit, Int: 7}))

	alert, ok := env.gw.lastAlert()
	require.True(t, ok)
	assert.Equal(t, noticeEditExpired, alert.text)
	assert.True(t, alert.alert)
	assert.Equal(t, StepMyListings, env.sessions.Step(user))
	assert.Equal(t, "listing 7", env.store.listings[7].Description)

	assert.False(t, markupHasUnique(env.gw.lastScreen().markup, cbEdit),
		"expired listing should not offer the edit button")
}

func TestEditWithinWindow(t *testing.T) {
	env := newTestEnv()
	const user = int64(42)
	env.seedListing(7, user, testBase)
	env.sessions.SetStep(user, StepMyListings)
	env.sessions.SetInt(user, keyMyOffset, 0)

	env.now = testBase.Add(5 * time.Minute)
	env.handle(t, cbEvent(user, Action{Type: ActionEdit, Int: 7}))
	assert.Equal(t, StepEditDesc, env.sessions.Step(user))

	env.handle(t, textEvent(user, "updated description"))
	assert.Equal(t, StepMyListings, env.sessions.Step(user))
	assert.Equal(t, "updated description", env.store.listings[7].Description)
	_, hasEditID := env.sessions.Int(user, keyEditID)
	assert.False(t, hasEditID)
}

func TestEditOtherOwnersListingDenied(t *testing.T) {
	env := newTestEnv()
	env.seedListing(7, 99, testBase)
	const user = int64(42)
	env.sessions.SetStep(user, StepMyListings)

	env.handle(t, cbEvent(user, Action{Type: ActionEdit, Int: 7}))

	alert, ok := env.gw.lastAlert()
	require.True(t, ok)
	assert.Equal(t, noticeListingGone, alert.text)
	assert.Equal(t, "listing 7", env.store.listings[7].Description)
}

func TestDeleteLastItemOnPageStepsBack(t *testing.T) {
	env := newTestEnv()
	const user = int64(42)
	for i := int64(1); i <= 11; i++ {
		env.seedListing(i, user, testBase.Add(time.Duration(i)*time.Minute))
	}
	env.sessions.SetStep(user, StepMyListings)
	// Page 3 holds only the oldest listing.
	env.sessions.SetInt(user, keyMyOffset, 10)

	env.handle(t, cbEvent(user, Action{Type: ActionDelete, Int: 1}))
	assert.Equal(t, StepDeleteConfirm, env.sessions.Step(user))

	env.handle(t, cbEvent(user, Action{Type: ActionConfirm}))
	assert.Equal(t, StepMyListings, env.sessions.Step(user))
	assert.NotContains(t, env.store.listings, int64(1))

	offset, ok := env.sessions.Int(user, keyMyOffset)
	require.True(t, ok)
	assert.Equal(t, int64(5), offset, "empty last page should step back")
	assert.Contains(t, env.gw.lastScreen().text, "Page 2 of 2")
}

func TestBrowsePagination(t *testing.T) {
	env := newTestEnv()
	for i := int64(1); i <= 12; i++ {
		env.seedListing(i, 1000+i, testBase.Add(time.Duration(i)*time.Minute))
	}
	const user = int64(42)

	env.handle(t, cbEvent(user, Action{Type: ActionStart}))
	env.handle(t, cbEvent(user, Action{Type: ActionViewBoard}))
	env.handle(t, cbEvent(user, Action{Type: ActionViewKind, Kind: board.KindJob}))
	env.handle(t, cbEvent(user, Action{Type: ActionViewCategory, Int: 0}))

	assert.Equal(t, StepViewListing, env.sessions.Step(user))
	assert.Contains(t, env.gw.lastScreen().text, "Page 1 of 3")

	env.handle(t, cbEvent(user, Action{Type: ActionPage, Int: 10}))
	last := env.gw.lastScreen()
	assert.Contains(t, last.text, "Page 3 of 3")
	assert.Contains(t, last.text, "listing 2", "oldest listings land on the last page")
	assert.True(t, markupHasUnique(last.markup, cbPage), "pager stays for going back")
}

func TestStaleCallbackRestartsSession(t *testing.T) {
	env := newTestEnv()
	const user = int64(42)

	env.handle(t, cbEvent(user, Action{Type: ActionConfirm}))

	alert, ok := env.gw.lastAlert()
	require.True(t, ok)
	assert.Equal(t, noticeSessionExpired, alert.text)
	assert.Equal(t, StepMainMenu, env.sessions.Step(user))
	assert.Contains(t, env.gw.lastScreen().text, "Community Board")
}

func TestMismatchedActionRerendersStep(t *testing.T) {
	env := newTestEnv()
	const user = int64(42)
	env.handle(t, cbEvent(user, Action{Type: ActionStart}))
	before := len(env.gw.screens)

	env.handle(t, cbEvent(user, Action{Type: ActionConfirm}))

	alert, ok := env.gw.lastAlert()
	require.True(t, ok)
	assert.Equal(t, noticeActionMismatch, alert.text)
	assert.Equal(t, StepMainMenu, env.sessions.Step(user))
	assert.Greater(t, len(env.gw.screens), before, "current screen is redrawn")
}

func TestStoreFailureParksOnMainMenu(t *testing.T) {
	env := newTestEnv()
	const user = int64(42)
	env.handle(t, cbEvent(user, Action{Type: ActionStart}))
	env.store.err = errors.New("connection reset")

	env.handle(t, cbEvent(user, Action{Type: ActionMyListings}))

	alert, ok := env.gw.lastAlert()
	require.True(t, ok)
	assert.Equal(t, noticeGenericFailure, alert.text)
	assert.Equal(t, StepMainMenu, env.sessions.Step(user))
}

func TestBackWalksTheAddFlow(t *testing.T) {
	env := newTestEnv()
	const user = int64(42)
	env.handle(t, cbEvent(user, Action{Type: ActionStart}))
	env.handle(t, cbEvent(user, Action{Type: ActionAddListing}))
	env.handle(t, cbEvent(user, Action{Type: ActionPickKind, Kind: board.KindJob}))
	assert.Equal(t, StepAddCategory, env.sessions.Step(user))

	env.handle(t, cbEvent(user, Action{Type: ActionBack}))
	assert.Equal(t, StepAddType, env.sessions.Step(user))

	env.handle(t, cbEvent(user, Action{Type: ActionBack}))
	assert.Equal(t, StepMainMenu, env.sessions.Step(user))
}

func TestEveryCallbackGetsAnswered(t *testing.T) {
	env := newTestEnv()
	const user = int64(42)

	env.handle(t, cbEvent(user, Action{Type: ActionStart}))
	env.handle(t, cbEvent(user, Action{Type: ActionNoop}))
	env.handle(t, cbEvent(user, Action{Type: ActionAddListing}))

	assert.Len(t, env.gw.responds, 3)
}
