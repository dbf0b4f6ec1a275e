package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/kropbot/internal/board"
)

func TestListingBlockEscapesUserContent(t *testing.T) {
	l := board.Listing{
		ID:           3,
		Kind:         board.KindJob,
		Description:  "cash_only! *urgent* [today]",
		Contact:      "@some_handle",
		OwnerDisplay: "@under_score",
		CreatedAt:    time.Now(),
	}
	out := listingBlock("💼", l)

	assert.Contains(t, out, `cash\_only\!`)
	assert.Contains(t, out, `\*urgent\*`)
	assert.Contains(t, out, `\[today\]`)
	assert.Contains(t, out, `@some\_handle`)
	assert.NotContains(t, out, "*urgent*")
}

func TestListingBlockHidesMissingFields(t *testing.T) {
	l := board.Listing{ID: 4, Kind: board.KindService, Description: "tutoring"}
	out := listingBlock("🤝", l)

	assert.NotContains(t, out, "📞")
	assert.Contains(t, out, "private user")
}

func TestBoardPageTextEmptyState(t *testing.T) {
	p := board.Paginate(0, 0, 5)
	out := boardPageText("💼", "🧩 Other", p, nil)

	assert.Contains(t, out, "Nothing here yet")
	assert.False(t, strings.Contains(out, "Page"), "empty state has no pager line")
}

func TestStatsTextListsAllCategories(t *testing.T) {
	cats := []string{"A", "B"}
	out := statsText(3, map[string]int64{"A": 3}, cats)

	assert.Contains(t, out, "A: 3")
	assert.Contains(t, out, "B: 0")
	assert.Contains(t, out, "Total: 3")
}
