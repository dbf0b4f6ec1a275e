package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/kropbot/core/telegram/format"
	"github.com/m3rciful/kropbot/internal/board"
)

// esc shortens the MarkdownV2 escape used on every piece of dynamic text.
var esc = format.EscapeMarkdownV2

func kindLabel(k board.Kind) string {
	if k == board.KindService {
		return "Service"
	}
	return "Job"
}

func mainMenuText() string {
	var b strings.Builder
	b.WriteString("*" + esc("📌 Community Board") + "*\n\n")
	b.WriteString(esc("Post a job or a service, or browse what others offer."))
	return b.String()
}

func helpText(editWindow time.Duration, retention time.Duration) string {
	var b strings.Builder
	b.WriteString("*" + esc("ℹ️ How it works") + "*\n\n")
	b.WriteString(esc("➕ Post — publish a job or a service under one of the fixed categories.") + "\n")
	b.WriteString(esc("📋 Browse — look through listings by type and category, newest first.") + "\n")
	b.WriteString(esc("🗂 My listings — manage what you posted.") + "\n\n")
	b.WriteString(esc(fmt.Sprintf("You can edit a listing within %d minutes of posting. Listings disappear automatically after %d days.",
		int(editWindow.Minutes()), int(retention.Hours()/24))))
	return b.String()
}

func kindPromptText() string {
	return "*" + esc("➕ New listing") + "*\n\n" + esc("What are you posting?")
}

func categoryPromptText() string {
	return "*" + esc("➕ New listing") + "*\n\n" + esc("Pick a category:")
}

func descriptionPromptText(reason string) string {
	var b strings.Builder
	b.WriteString("*" + esc("➕ New listing") + "*\n\n")
	if reason != "" {
		b.WriteString(esc("⚠️ "+capitalize(reason)) + "\n\n")
	}
	b.WriteString(esc(fmt.Sprintf("Describe your listing in a message (up to %d characters).", board.MaxDescriptionLen)))
	return b.String()
}

func contactPromptText(reason string) string {
	var b strings.Builder
	b.WriteString("*" + esc("➕ New listing") + "*\n\n")
	if reason != "" {
		b.WriteString(esc("⚠️ "+capitalize(reason)) + "\n\n")
	}
	b.WriteString(esc("Send a contact: a phone number (0XXXXXXXXX or +380XXXXXXXXX) or a @handle."))
	b.WriteString("\n" + esc("Or skip it and people will reach you through your profile."))
	return b.String()
}

func confirmText(glyph string, kind board.Kind, category, description, contact string) string {
	var b strings.Builder
	b.WriteString("*" + esc("👀 Preview") + "*\n\n")
	b.WriteString(fmt.Sprintf("%s *%s* %s %s\n", esc(glyph), esc(kindLabel(kind)), esc("·"), esc(category)))
	b.WriteString(esc("🔹 "+description) + "\n")
	if contact != "" {
		b.WriteString(esc("📞 "+contact) + "\n")
	}
	b.WriteString("\n" + esc("Publish it?"))
	return b.String()
}

func publishedNotice(id int64) string {
	return fmt.Sprintf("✅ Published as #%d", id)
}

func viewKindPromptText() string {
	return "*" + esc("📋 Browse listings") + "*\n\n" + esc("What are you looking for?")
}

func viewCategoryPromptText(kind board.Kind) string {
	return "*" + esc("📋 Browse listings") + "*\n\n" +
		esc(fmt.Sprintf("%s listings. Pick a category:", kindLabel(kind)))
}

// listingBlock renders one listing entry shared by the public and the owner
// views. Dynamic fields pass through the MarkdownV2 escape.
func listingBlock(glyph string, l board.Listing) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("*\\#%d* %s %s\n", l.ID, esc(glyph), esc(kindLabel(l.Kind))))
	b.WriteString(esc("🔹 "+l.Description) + "\n")
	if l.Contact != "" {
		b.WriteString(esc("📞 "+l.Contact) + "\n")
	}
	if l.OwnerDisplay != "" {
		b.WriteString(esc("👤 "+l.OwnerDisplay) + "\n")
	} else {
		b.WriteString(esc("👤 private user") + "\n")
	}
	return b.String()
}

func boardPageText(glyph string, category string, p board.Page, items []board.Listing) string {
	var b strings.Builder
	b.WriteString("*" + esc(category) + "*\n\n")
	if p.Total == 0 {
		b.WriteString(esc("Nothing here yet. Be the first to post!"))
		return b.String()
	}
	for _, l := range items {
		b.WriteString(listingBlock(glyph, l))
		b.WriteString(esc("———") + "\n")
	}
	b.WriteString("\n" + esc(fmt.Sprintf("Page %d of %d · %d total", p.Current, p.Pages, p.Total)))
	return b.String()
}

func myPageText(glyphs map[string]string, p board.Page, items []board.Listing) string {
	var b strings.Builder
	b.WriteString("*" + esc("🗂 My listings") + "*\n\n")
	if p.Total == 0 {
		b.WriteString(esc("You have no active listings."))
		return b.String()
	}
	for i, l := range items {
		b.WriteString(esc(fmt.Sprintf("%d.", i+1)) + " ")
		b.WriteString(listingBlock(glyphs[string(l.Kind)], l))
		b.WriteString(esc("📂 "+l.Category) + "\n")
		b.WriteString(esc("———") + "\n")
	}
	b.WriteString("\n" + esc(fmt.Sprintf("Page %d of %d · %d total", p.Current, p.Pages, p.Total)))
	return b.String()
}

func editPromptText(l board.Listing, reason string) string {
	var b strings.Builder
	b.WriteString("*" + esc(fmt.Sprintf("✏️ Edit listing #%d", l.ID)) + "*\n\n")
	if reason != "" {
		b.WriteString(esc("⚠️ "+capitalize(reason)) + "\n\n")
	}
	b.WriteString(esc("Current description:") + "\n")
	b.WriteString(esc(l.Description) + "\n\n")
	b.WriteString(esc("Send the new description in a message."))
	return b.String()
}

func deleteConfirmText(glyph string, l board.Listing) string {
	var b strings.Builder
	b.WriteString("*" + esc("🗑 Delete listing") + "*\n\n")
	b.WriteString(listingBlock(glyph, l))
	b.WriteString("\n" + esc("Delete it for good?"))
	return b.String()
}

func statsText(total int64, byCategory map[string]int64, categories []string) string {
	var b strings.Builder
	b.WriteString("*" + esc("📊 Board stats") + "*\n\n")
	for _, cat := range categories {
		b.WriteString(esc(fmt.Sprintf("%s: %d", cat, byCategory[cat])) + "\n")
	}
	b.WriteString("\n" + esc(fmt.Sprintf("Total: %d", total)))
	return b.String()
}

const (
	noticeSessionExpired = "Session expired, starting over"
	noticeActionMismatch = "This button is not active right now"
	noticeEditExpired    = "The edit window for this listing has closed"
	noticeListingGone    = "This listing no longer exists"
	noticeDeleted        = "🗑 Listing deleted"
	noticeUpdated        = "✏️ Listing updated"
	noticeGenericFailure = "Something went wrong, please try again"
	unknownTextReply     = "Please use the buttons below the board message."
	rateLimitedReply     = "Too fast, give it a second."
)

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
