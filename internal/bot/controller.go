package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/kropbot/core/config"
	"github.com/m3rciful/kropbot/core/logger"
	"github.com/m3rciful/kropbot/core/telegram/state"
	"github.com/m3rciful/kropbot/internal/board"
)

// Controller drives the classifieds dialogue: it owns step transitions and
// the store, and renders every screen through the presenter. All user intent
// arrives as decoded events, so the controller is testable without Telegram.
type Controller struct {
	store    board.Store
	sessions state.Manager
	gw       Gateway
	present  *Presenter
	cfg      coreconfig.BoardConfig

	now func() time.Time
}

// NewController wires the dialogue controller.
func NewController(store board.Store, sessions state.Manager, gw Gateway, cfg coreconfig.BoardConfig) *Controller {
	return &Controller{
		store:    store,
		sessions: sessions,
		gw:       gw,
		present:  NewPresenter(gw, sessions),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Handle processes one decoded event. Callback queries are always answered,
// either with a notice raised during handling or with a silent ack.
func (ctl *Controller) Handle(ctx context.Context, ev *Event) error {
	defer ctl.ack(ev)

	step := ctl.sessions.Step(ev.UserID)

	switch ev.Action.Type {
	case ActionNoop:
		return nil
	case ActionStart, ActionHome, ActionCancel:
		return ctl.toMainMenu(ev)
	case ActionHelp:
		return ctl.present.Show(ev.UserID, ev.ChatID,
			helpText(ctl.cfg.EditWindow(), ctl.cfg.Retention()), helpMarkup())
	case ActionBack:
		return ctl.goBack(ctx, ev, step)
	}

	// A button press with no session behind it means the session expired or
	// the process restarted under an old keyboard. The old message cannot be
	// trusted anymore, so start a fresh one.
	if ev.FromCallback() && step == state.StepNone {
		ctl.alert(ev, noticeSessionExpired)
		ctl.present.Discard(ev.UserID, ev.ChatID)
		return ctl.toMainMenu(ev)
	}

	switch ev.Action.Type {
	case ActionAddListing:
		return ctl.guarded(ctx, ev, step, StepMainMenu, ctl.startAdd)
	case ActionPickKind:
		return ctl.guarded(ctx, ev, step, StepAddType, ctl.pickKind)
	case ActionPickCategory:
		return ctl.guarded(ctx, ev, step, StepAddCategory, ctl.pickCategory)
	case ActionSkip:
		return ctl.guarded(ctx, ev, step, StepAddContact, ctl.skipContact)
	case ActionConfirm:
		// Confirm serves both the publish preview and the delete prompt;
		// the step decides which.
		if step == StepDeleteConfirm {
			return ctl.guarded(ctx, ev, step, StepDeleteConfirm, ctl.deleteListing)
		}
		return ctl.guarded(ctx, ev, step, StepAddConfirm, ctl.publish)
	case ActionViewBoard:
		return ctl.guarded(ctx, ev, step, StepMainMenu, ctl.startView)
	case ActionViewKind:
		return ctl.guarded(ctx, ev, step, StepViewType, ctl.viewKind)
	case ActionViewCategory:
		return ctl.guarded(ctx, ev, step, StepViewCategory, ctl.viewCategory)
	case ActionPage:
		return ctl.guarded(ctx, ev, step, StepViewListing, ctl.viewPage)
	case ActionMyListings:
		return ctl.guarded(ctx, ev, step, StepMainMenu, ctl.openMyListings)
	case ActionMyPage:
		return ctl.guarded(ctx, ev, step, StepMyListings, ctl.myPage)
	case ActionEdit:
		return ctl.guarded(ctx, ev, step, StepMyListings, ctl.startEdit)
	case ActionDelete:
		return ctl.guarded(ctx, ev, step, StepMyListings, ctl.startDelete)
	case ActionText:
		return ctl.handleText(ctx, ev, step)
	}
	return nil
}

type handlerFunc func(ctx context.Context, ev *Event) error

// guarded rejects actions that do not match the current step. That happens
// when the user taps buttons on a screen the dialogue already moved past.
func (ctl *Controller) guarded(ctx context.Context, ev *Event, current, want state.Step, h handlerFunc) error {
	if current != want {
		ctl.alert(ev, noticeActionMismatch)
		return ctl.renderStep(ctx, ev, current)
	}
	return h(ctx, ev)
}

func (ctl *Controller) toMainMenu(ev *Event) error {
	ctl.sessions.Reset(ev.UserID)
	ctl.sessions.SetStep(ev.UserID, StepMainMenu)
	return ctl.present.Show(ev.UserID, ev.ChatID, mainMenuText(), mainMenuMarkup())
}

func (ctl *Controller) goBack(ctx context.Context, ev *Event, step state.Step) error {
	prev, ok := backEdges[step]
	if !ok {
		return ctl.toMainMenu(ev)
	}
	ctl.sessions.SetStep(ev.UserID, prev)
	return ctl.renderStep(ctx, ev, prev)
}

// renderStep redraws the screen for the given step from session data. Used
// by back navigation and by mismatch recovery.
func (ctl *Controller) renderStep(ctx context.Context, ev *Event, step state.Step) error {
	switch step {
	case StepAddType:
		return ctl.present.Show(ev.UserID, ev.ChatID, kindPromptText(), kindMarkup(cbKind))
	case StepAddCategory:
		return ctl.present.Show(ev.UserID, ev.ChatID, categoryPromptText(), categoryMarkup(cbCat, ctl.cfg.Categories))
	case StepAddDescription:
		return ctl.present.Show(ev.UserID, ev.ChatID, descriptionPromptText(""), textInputMarkup())
	case StepAddContact:
		return ctl.present.Show(ev.UserID, ev.ChatID, contactPromptText(""), contactMarkup())
	case StepAddConfirm:
		return ctl.showConfirm(ev)
	case StepViewType:
		return ctl.present.Show(ev.UserID, ev.ChatID, viewKindPromptText(), kindMarkup(cbViewKind))
	case StepViewCategory:
		kind, _ := ctl.sessions.Value(ev.UserID, keyViewKind)
		return ctl.present.Show(ev.UserID, ev.ChatID,
			viewCategoryPromptText(board.Kind(kind)), categoryMarkup(cbViewCat, ctl.cfg.Categories))
	case StepViewListing:
		return ctl.renderBoardPage(ctx, ev)
	case StepMyListings, StepEditDesc, StepDeleteConfirm:
		ctl.sessions.SetStep(ev.UserID, StepMyListings)
		return ctl.renderMyPage(ctx, ev)
	default:
		return ctl.toMainMenu(ev)
	}
}

func (ctl *Controller) startAdd(_ context.Context, ev *Event) error {
	ctl.sessions.SetStep(ev.UserID, StepAddType)
	return ctl.present.Show(ev.UserID, ev.ChatID, kindPromptText(), kindMarkup(cbKind))
}

func (ctl *Controller) pickKind(_ context.Context, ev *Event) error {
	ctl.sessions.SetValue(ev.UserID, keyDraftKind, string(ev.Action.Kind))
	ctl.sessions.SetStep(ev.UserID, StepAddCategory)
	return ctl.present.Show(ev.UserID, ev.ChatID, categoryPromptText(), categoryMarkup(cbCat, ctl.cfg.Categories))
}

func (ctl *Controller) pickCategory(ctx context.Context, ev *Event) error {
	// Indexes come from our own keyboards, so an out-of-range one means a
	// stale markup or a config shrink, not user error.
	if _, ok := ctl.category(ev.Action.Int); !ok {
		return ctl.failGeneric(ev, fmt.Errorf("category index %d out of range", ev.Action.Int))
	}
	ctl.sessions.SetInt(ev.UserID, keyDraftCat, ev.Action.Int)
	ctl.sessions.SetStep(ev.UserID, StepAddDescription)
	return ctl.present.Show(ev.UserID, ev.ChatID, descriptionPromptText(""), textInputMarkup())
}

func (ctl *Controller) skipContact(_ context.Context, ev *Event) error {
	ctl.sessions.SetValue(ev.UserID, keyDraftContact, "")
	ctl.sessions.SetStep(ev.UserID, StepAddConfirm)
	return ctl.showConfirm(ev)
}

func (ctl *Controller) showConfirm(ev *Event) error {
	kind, _ := ctl.sessions.Value(ev.UserID, keyDraftKind)
	catIdx, _ := ctl.sessions.Int(ev.UserID, keyDraftCat)
	desc, _ := ctl.sessions.Value(ev.UserID, keyDraftDesc)
	contact, _ := ctl.sessions.Value(ev.UserID, keyDraftContact)
	category, _ := ctl.category(catIdx)

	text := confirmText(ctl.glyph(board.Kind(kind)), board.Kind(kind), category, desc, contact)
	return ctl.present.Show(ev.UserID, ev.ChatID, text, confirmMarkup())
}

func (ctl *Controller) publish(ctx context.Context, ev *Event) error {
	kindRaw, _ := ctl.sessions.Value(ev.UserID, keyDraftKind)
	catIdx, _ := ctl.sessions.Int(ev.UserID, keyDraftCat)
	desc, _ := ctl.sessions.Value(ev.UserID, keyDraftDesc)
	contact, _ := ctl.sessions.Value(ev.UserID, keyDraftContact)

	kind, ok := board.ParseKind(kindRaw)
	if !ok {
		return ctl.failGeneric(ev, errors.New("draft kind missing"))
	}
	category, ok := ctl.category(catIdx)
	if !ok {
		return ctl.failGeneric(ev, errors.New("draft category missing"))
	}
	// The draft was validated on input; config could have changed since.
	if err := board.ValidateDescription(desc); err != nil {
		ctl.sessions.SetStep(ev.UserID, StepAddDescription)
		return ctl.present.Show(ev.UserID, ev.ChatID, descriptionPromptText("description expired, send it again"), textInputMarkup())
	}
	if err := board.ValidateContact(contact); err != nil {
		ctl.sessions.SetStep(ev.UserID, StepAddContact)
		return ctl.present.Show(ev.UserID, ev.ChatID, contactPromptText("contact looks wrong, send it again"), contactMarkup())
	}

	id, err := ctl.store.NextID(ctx, board.PostIDSequence)
	if err != nil {
		return ctl.failGeneric(ev, err)
	}
	listing := board.Listing{
		ID:           id,
		OwnerID:      ev.UserID,
		OwnerDisplay: ev.UserDisplay,
		Kind:         kind,
		Category:     category,
		Description:  desc,
		Contact:      contact,
		CreatedAt:    ctl.now().UTC(),
	}
	if err := ctl.store.Insert(ctx, listing); err != nil {
		return ctl.failGeneric(ev, err)
	}

	logger.SVCBoard.Info("listing published",
		slog.String("event", "listing.published"),
		slog.Int64("listing_id", id),
		slog.Int64("owner_id", ev.UserID),
		slog.String("kind", string(kind)),
		slog.String("category", category),
	)

	ctl.notify(ev, publishedNotice(id))
	ctl.sessions.Reset(ev.UserID)
	ctl.sessions.SetInt(ev.UserID, keyMyOffset, 0)
	ctl.sessions.SetStep(ev.UserID, StepMyListings)
	return ctl.renderMyPage(ctx, ev)
}

func (ctl *Controller) startView(_ context.Context, ev *Event) error {
	ctl.sessions.SetStep(ev.UserID, StepViewType)
	return ctl.present.Show(ev.UserID, ev.ChatID, viewKindPromptText(), kindMarkup(cbViewKind))
}

func (ctl *Controller) viewKind(_ context.Context, ev *Event) error {
	ctl.sessions.SetValue(ev.UserID, keyViewKind, string(ev.Action.Kind))
	ctl.sessions.SetStep(ev.UserID, StepViewCategory)
	return ctl.present.Show(ev.UserID, ev.ChatID,
		viewCategoryPromptText(ev.Action.Kind), categoryMarkup(cbViewCat, ctl.cfg.Categories))
}

func (ctl *Controller) viewCategory(ctx context.Context, ev *Event) error {
	if _, ok := ctl.category(ev.Action.Int); !ok {
		return ctl.failGeneric(ev, fmt.Errorf("category index %d out of range", ev.Action.Int))
	}
	ctl.sessions.SetInt(ev.UserID, keyViewCat, ev.Action.Int)
	ctl.sessions.SetInt(ev.UserID, keyViewOffset, 0)
	ctl.sessions.SetStep(ev.UserID, StepViewListing)
	return ctl.renderBoardPage(ctx, ev)
}

func (ctl *Controller) viewPage(ctx context.Context, ev *Event) error {
	ctl.sessions.SetInt(ev.UserID, keyViewOffset, ev.Action.Int)
	return ctl.renderBoardPage(ctx, ev)
}

func (ctl *Controller) renderBoardPage(ctx context.Context, ev *Event) error {
	kindRaw, _ := ctl.sessions.Value(ev.UserID, keyViewKind)
	catIdx, _ := ctl.sessions.Int(ev.UserID, keyViewCat)
	offset, _ := ctl.sessions.Int(ev.UserID, keyViewOffset)
	category, ok := ctl.category(catIdx)
	if !ok {
		return ctl.toMainMenu(ev)
	}

	filter := board.Filter{Category: category, Kind: board.Kind(kindRaw)}
	perPage := int64(ctl.cfg.ViewPageSize)

	items, total, err := ctl.fetchPage(ctx, ev, filter, &offset, perPage, keyViewOffset)
	if err != nil {
		return ctl.failGeneric(ev, err)
	}
	p := board.Paginate(total, offset, perPage)
	text := boardPageText(ctl.glyph(board.Kind(kindRaw)), category, p, items)
	return ctl.present.Show(ev.UserID, ev.ChatID, text, boardPageMarkup(p))
}

func (ctl *Controller) openMyListings(ctx context.Context, ev *Event) error {
	ctl.sessions.SetInt(ev.UserID, keyMyOffset, 0)
	ctl.sessions.SetStep(ev.UserID, StepMyListings)
	return ctl.renderMyPage(ctx, ev)
}

func (ctl *Controller) myPage(ctx context.Context, ev *Event) error {
	ctl.sessions.SetInt(ev.UserID, keyMyOffset, ev.Action.Int)
	return ctl.renderMyPage(ctx, ev)
}

func (ctl *Controller) renderMyPage(ctx context.Context, ev *Event) error {
	offset, _ := ctl.sessions.Int(ev.UserID, keyMyOffset)
	filter := board.Filter{OwnerID: ev.UserID}
	perPage := int64(ctl.cfg.MyPageSize)

	items, total, err := ctl.fetchPage(ctx, ev, filter, &offset, perPage, keyMyOffset)
	if err != nil {
		return ctl.failGeneric(ev, err)
	}
	p := board.Paginate(total, offset, perPage)
	now := ctl.now()
	window := ctl.cfg.EditWindow()
	markup := myPageMarkup(p, items, func(l board.Listing) bool {
		return l.EditableAt(now, window)
	})
	return ctl.present.Show(ev.UserID, ev.ChatID, myPageText(ctl.cfg.KindGlyphs, p, items), markup)
}

// fetchPage loads one page, stepping the offset back when listings expired
// or were deleted underneath it and the requested page is now empty.
func (ctl *Controller) fetchPage(ctx context.Context, ev *Event, f board.Filter, offset *int64, perPage int64, offsetKey string) ([]board.Listing, int64, error) {
	items, total, err := ctl.store.FindPage(ctx, f, *offset, perPage)
	if err != nil {
		return nil, 0, err
	}
	for len(items) == 0 && *offset > 0 && total > 0 {
		*offset = board.StepBack(*offset, perPage)
		ctl.sessions.SetInt(ev.UserID, offsetKey, *offset)
		items, total, err = ctl.store.FindPage(ctx, f, *offset, perPage)
		if err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (ctl *Controller) startEdit(ctx context.Context, ev *Event) error {
	listing, err := ctl.store.FindOne(ctx, ev.Action.Int, ev.UserID)
	if errors.Is(err, board.ErrNotFound) {
		ctl.alert(ev, noticeListingGone)
		return ctl.renderMyPage(ctx, ev)
	}
	if err != nil {
		return ctl.failGeneric(ev, err)
	}
	if !listing.EditableAt(ctl.now(), ctl.cfg.EditWindow()) {
		ctl.alert(ev, noticeEditExpired)
		return ctl.renderMyPage(ctx, ev)
	}
	ctl.sessions.SetInt(ev.UserID, keyEditID, listing.ID)
	ctl.sessions.SetStep(ev.UserID, StepEditDesc)
	return ctl.present.Show(ev.UserID, ev.ChatID, editPromptText(listing, ""), textInputMarkup())
}

func (ctl *Controller) startDelete(ctx context.Context, ev *Event) error {
	listing, err := ctl.store.FindOne(ctx, ev.Action.Int, ev.UserID)
	if errors.Is(err, board.ErrNotFound) {
		ctl.alert(ev, noticeListingGone)
		return ctl.renderMyPage(ctx, ev)
	}
	if err != nil {
		return ctl.failGeneric(ev, err)
	}
	ctl.sessions.SetInt(ev.UserID, keyDeleteID, listing.ID)
	ctl.sessions.SetStep(ev.UserID, StepDeleteConfirm)
	return ctl.present.Show(ev.UserID, ev.ChatID,
		deleteConfirmText(ctl.glyph(listing.Kind), listing), deleteConfirmMarkup())
}

func (ctl *Controller) deleteListing(ctx context.Context, ev *Event) error {
	id, ok := ctl.sessions.Int(ev.UserID, keyDeleteID)
	if !ok {
		ctl.sessions.SetStep(ev.UserID, StepMyListings)
		return ctl.renderMyPage(ctx, ev)
	}
	deleted, err := ctl.store.Delete(ctx, id, ev.UserID)
	if err != nil {
		return ctl.failGeneric(ev, err)
	}
	if !deleted {
		ctl.alert(ev, noticeListingGone)
	} else {
		ctl.notify(ev, noticeDeleted)
		logger.SVCBoard.Info("listing deleted",
			slog.String("event", "listing.deleted"),
			slog.Int64("listing_id", id),
			slog.Int64("owner_id", ev.UserID),
		)
	}
	ctl.sessions.ClearValue(ev.UserID, keyDeleteID)
	ctl.sessions.SetStep(ev.UserID, StepMyListings)
	return ctl.renderMyPage(ctx, ev)
}

func (ctl *Controller) handleText(ctx context.Context, ev *Event, step state.Step) error {
	// Input messages are removed so the live interface message stays the
	// bottom-most thing in the chat.
	if ev.MessageID != 0 {
		_ = ctl.gw.Delete(ev.ChatID, ev.MessageID)
	}

	switch step {
	case StepAddDescription:
		if err := board.ValidateDescription(ev.Text); err != nil {
			reason := validationReason(err)
			return ctl.present.Show(ev.UserID, ev.ChatID, descriptionPromptText(reason), textInputMarkup())
		}
		ctl.sessions.SetValue(ev.UserID, keyDraftDesc, ev.Text)
		ctl.sessions.SetStep(ev.UserID, StepAddContact)
		return ctl.present.Show(ev.UserID, ev.ChatID, contactPromptText(""), contactMarkup())

	case StepAddContact:
		if err := board.ValidateContact(ev.Text); err != nil {
			reason := validationReason(err)
			return ctl.present.Show(ev.UserID, ev.ChatID, contactPromptText(reason), contactMarkup())
		}
		ctl.sessions.SetValue(ev.UserID, keyDraftContact, ev.Text)
		ctl.sessions.SetStep(ev.UserID, StepAddConfirm)
		return ctl.showConfirm(ev)

	case StepEditDesc:
		return ctl.applyEdit(ctx, ev)
	}
	return nil
}

func (ctl *Controller) applyEdit(ctx context.Context, ev *Event) error {
	id, ok := ctl.sessions.Int(ev.UserID, keyEditID)
	if !ok {
		ctl.sessions.SetStep(ev.UserID, StepMyListings)
		return ctl.renderMyPage(ctx, ev)
	}

	listing, err := ctl.store.FindOne(ctx, id, ev.UserID)
	if errors.Is(err, board.ErrNotFound) {
		ctl.sessions.ClearValue(ev.UserID, keyEditID)
		ctl.sessions.SetStep(ev.UserID, StepMyListings)
		return ctl.renderMyPage(ctx, ev)
	}
	if err != nil {
		return ctl.failGeneric(ev, err)
	}

	if err := board.ValidateDescription(ev.Text); err != nil {
		return ctl.present.Show(ev.UserID, ev.ChatID, editPromptText(listing, validationReason(err)), textInputMarkup())
	}
	// The window is re-checked at apply time, not when the edit started.
	if !listing.EditableAt(ctl.now(), ctl.cfg.EditWindow()) {
		ctl.sessions.ClearValue(ev.UserID, keyEditID)
		ctl.sessions.SetStep(ev.UserID, StepMyListings)
		return ctl.renderMyPage(ctx, ev)
	}

	updated, err := ctl.store.UpdateDescription(ctx, id, ev.UserID, ev.Text)
	if err != nil {
		return ctl.failGeneric(ev, err)
	}
	if updated {
		logger.SVCBoard.Info("listing updated",
			slog.String("event", "listing.updated"),
			slog.Int64("listing_id", id),
			slog.Int64("owner_id", ev.UserID),
		)
	}
	ctl.sessions.ClearValue(ev.UserID, keyEditID)
	ctl.sessions.SetStep(ev.UserID, StepMyListings)
	return ctl.renderMyPage(ctx, ev)
}

// failGeneric handles store failures: log, notify, and park the user back on
// the main menu with a clean session.
func (ctl *Controller) failGeneric(ev *Event, err error) error {
	logger.SVCBoard.Error("board operation failed",
		slog.String("event", "board.failure"),
		slog.Int64("user_id", ev.UserID),
		slog.String("err", err.Error()),
	)
	ctl.alert(ev, noticeGenericFailure)
	return ctl.toMainMenu(ev)
}

func (ctl *Controller) category(idx int64) (string, bool) {
	if idx < 0 || idx >= int64(len(ctl.cfg.Categories)) {
		return "", false
	}
	return ctl.cfg.Categories[idx], true
}

func (ctl *Controller) glyph(k board.Kind) string {
	return ctl.cfg.KindGlyphs[string(k)]
}

func validationReason(err error) string {
	if ve, ok := board.AsValidation(err); ok {
		return ve.Reason
	}
	return err.Error()
}

// alert answers the callback with a popup notice.
func (ctl *Controller) alert(ev *Event, text string) {
	if !ev.FromCallback() || ev.acked {
		return
	}
	_ = ctl.gw.Respond(ev.CallbackID, text, true)
	ev.acked = true
}

// notify answers the callback with a toast.
func (ctl *Controller) notify(ev *Event, text string) {
	if !ev.FromCallback() || ev.acked {
		return
	}
	_ = ctl.gw.Respond(ev.CallbackID, text, false)
	ev.acked = true
}

// ack silently answers the callback when nothing else did, so the button
// stops spinning.
func (ctl *Controller) ack(ev *Event) {
	if !ev.FromCallback() || ev.acked {
		return
	}
	_ = ctl.gw.Respond(ev.CallbackID, "", false)
	ev.acked = true
}
