package bot

import (
	"context"
	"sort"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kropbot/internal/board"
)

type sentScreen struct {
	chatID int64
	text   string
	markup *tele.ReplyMarkup
}

type respondCall struct {
	callbackID string
	text       string
	alert      bool
}

// fakeGateway records outbound traffic instead of talking to Telegram.
// screens holds every rendered screen in order, sends and edits alike.
type fakeGateway struct {
	screens   []sentScreen
	sendCount int
	editCount int
	deletes   []int
	responds  []respondCall

	nextMsgID int
	editErr   error
	sendErr   error
}

func (g *fakeGateway) Send(chatID int64, text string, markup *tele.ReplyMarkup) (int, error) {
	if g.sendErr != nil {
		return 0, g.sendErr
	}
	g.screens = append(g.screens, sentScreen{chatID: chatID, text: text, markup: markup})
	g.sendCount++
	g.nextMsgID++
	return g.nextMsgID, nil
}

func (g *fakeGateway) Edit(chatID int64, messageID int, text string, markup *tele.ReplyMarkup) error {
	if g.editErr != nil {
		return g.editErr
	}
	g.screens = append(g.screens, sentScreen{chatID: chatID, text: text, markup: markup})
	g.editCount++
	return nil
}

func (g *fakeGateway) Delete(chatID int64, messageID int) error {
	g.deletes = append(g.deletes, messageID)
	return nil
}

func (g *fakeGateway) Respond(callbackID, text string, alert bool) error {
	g.responds = append(g.responds, respondCall{callbackID: callbackID, text: text, alert: alert})
	return nil
}

// lastScreen returns the most recent rendered screen.
func (g *fakeGateway) lastScreen() sentScreen {
	if len(g.screens) == 0 {
		return sentScreen{}
	}
	return g.screens[len(g.screens)-1]
}

// lastAlert returns the most recent non-silent callback answer.
func (g *fakeGateway) lastAlert() (respondCall, bool) {
	for i := len(g.responds) - 1; i >= 0; i-- {
		if g.responds[i].text != "" {
			return g.responds[i], true
		}
	}
	return respondCall{}, false
}

// markupHasUnique reports whether any inline button carries the callback
// unique.
func markupHasUnique(m *tele.ReplyMarkup, unique string) bool {
	if m == nil {
		return false
	}
	for _, row := range m.InlineKeyboard {
		for _, btn := range row {
			if btn.Unique == unique {
				return true
			}
		}
	}
	return false
}

// fakeStore is an in-memory board.Store.
type fakeStore struct {
	listings map[int64]board.Listing
	seq      int64
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{listings: make(map[int64]board.Listing)}
}

func (s *fakeStore) NextID(context.Context, string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.seq++
	return s.seq, nil
}

func (s *fakeStore) Insert(_ context.Context, l board.Listing) error {
	if s.err != nil {
		return s.err
	}
	if _, dup := s.listings[l.ID]; dup {
		return board.ErrDuplicateID
	}
	s.listings[l.ID] = l
	return nil
}

func (s *fakeStore) matches(f board.Filter) []board.Listing {
	var out []board.Listing
	for _, l := range s.listings {
		if f.Category != "" && l.Category != f.Category {
			continue
		}
		if f.Kind != "" && l.Kind != f.Kind {
			continue
		}
		if f.OwnerID != 0 && l.OwnerID != f.OwnerID {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *fakeStore) FindPage(_ context.Context, f board.Filter, offset, limit int64) ([]board.Listing, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	all := s.matches(f)
	total := int64(len(all))
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *fakeStore) FindOne(_ context.Context, id, ownerID int64) (board.Listing, error) {
	if s.err != nil {
		return board.Listing{}, s.err
	}
	l, ok := s.listings[id]
	if !ok || l.OwnerID != ownerID {
		return board.Listing{}, board.ErrNotFound
	}
	return l, nil
}

func (s *fakeStore) UpdateDescription(_ context.Context, id, ownerID int64, description string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	l, ok := s.listings[id]
	if !ok || l.OwnerID != ownerID {
		return false, nil
	}
	l.Description = description
	s.listings[id] = l
	return true, nil
}

func (s *fakeStore) Delete(_ context.Context, id, ownerID int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	l, ok := s.listings[id]
	if !ok || l.OwnerID != ownerID {
		return false, nil
	}
	delete(s.listings, id)
	return true, nil
}

func (s *fakeStore) CountByCategory(context.Context) (map[string]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	counts := make(map[string]int64)
	for _, l := range s.listings {
		counts[l.Category]++
	}
	return counts, nil
}
