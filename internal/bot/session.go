package bot

import "github.com/m3rciful/kropbot/core/telegram/state"

// Dialogue steps. Step transitions happen only in the controller.
const (
	StepMainMenu       state.Step = "MAIN_MENU"
	StepAddType        state.Step = "ADD_TYPE"
	StepAddCategory    state.Step = "ADD_CATEGORY"
	StepAddDescription state.Step = "ADD_DESCRIPTION"
	StepAddContact     state.Step = "ADD_CONTACT"
	StepAddConfirm     state.Step = "ADD_CONFIRM"
	StepViewType       state.Step = "VIEW_TYPE"
	StepViewCategory   state.Step = "VIEW_CATEGORY"
	StepViewListing    state.Step = "VIEW_LISTING"
	StepMyListings     state.Step = "MY_LISTINGS"
	StepEditDesc       state.Step = "EDIT_DESCRIPTION"
	StepDeleteConfirm  state.Step = "DELETE_CONFIRM"
)

// Session data keys. Draft keys accumulate a listing in progress; view keys
// hold the current browse position; edit and delete keys pin the target id.
const (
	keyDraftKind    = "draft_kind"
	keyDraftCat     = "draft_cat"
	keyDraftDesc    = "draft_desc"
	keyDraftContact = "draft_contact"
	keyViewKind     = "view_kind"
	keyViewCat      = "view_cat"
	keyViewOffset   = "view_offset"
	keyMyOffset     = "my_offset"
	keyEditID       = "edit_id"
	keyDeleteID     = "delete_id"
)

// backEdges maps each step to the step the back button returns to.
var backEdges = map[state.Step]state.Step{
	StepAddType:        StepMainMenu,
	StepAddCategory:    StepAddType,
	StepAddDescription: StepAddCategory,
	StepAddContact:     StepAddDescription,
	StepAddConfirm:     StepAddContact,
	StepViewType:       StepMainMenu,
	StepViewCategory:   StepViewType,
	StepViewListing:    StepViewCategory,
	StepMyListings:     StepMainMenu,
	StepEditDesc:       StepMyListings,
	StepDeleteConfirm:  StepMyListings,
}
