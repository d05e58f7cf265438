package telegram

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/putcall/internal/models"
	"github.com/rewired-gh/putcall/internal/storage"
	"github.com/rewired-gh/putcall/internal/tracker"
)

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "Hello World"},
		{"Hello_World", "Hello\\_World"},
		{"Test*bold*", "Test\\*bold\\*"},
		{"Price: $100.50", "Price: $100\\.50"},
		{"[link](url)", "\\[link\\]\\(url\\)"},
		{"~strikethrough~", "\\~strikethrough\\~"},
		{"`code`", "\\`code\\`"},
		{">blockquote", "\\>blockquote"},
		{"#header", "\\#header"},
		{"+plus-minus", "\\+plus\\-minus"},
		{"=equal|pipe", "\\=equal\\|pipe"},
		{"{brace}", "\\{brace\\}"},
		{"end!", "end\\!"},
		{"", ""},
		{"_*[]()~`>#+-=|{}.!", "\\_\\*\\[\\]\\(\\)\\~\\`\\>\\#\\+\\-\\=\\|\\{\\}\\.\\!"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := escapeMarkdownV2(tt.input)
			if result != tt.expected {
				t.Errorf("escapeMarkdownV2(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewClient_InvalidChatID(t *testing.T) {
	// The chat ID is parsed before the bot token is checked, so no network call happens here.
	_, err := NewClient("", "not-a-number", 3, time.Second, nil)
	if err == nil {
		t.Error("Expected error for invalid chat ID, got nil")
	}
}

func TestFormatRow(t *testing.T) {
	row := models.Row{
		Number: 2, Time: "10:31", Put: 110, Call: 85, Difference: 25, DifferenceChange: "+15",
		PutChange: "+10", CallChange: "-5", Signal: "Bullish", Weakness: "Call is weaker by 5",
		TradeSignal: string(models.TradeWait),
	}
	got := formatRow(row)

	for _, want := range []string{
		"*2\\. 10:31* 📈",
		"Put: 110, Call: 85 \\(Difference: 25 \\(\\+15\\)\\)",
		"Put Change: \\+10",
		"Call Change: \\-5",
		"Weakness: Call is weaker by 5",
		"Trading Signal: *No Trade \\(Waiting for trend confirmation\\)*",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("formatRow missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatRow_NegativeValuesEscaped(t *testing.T) {
	got := formatRow(models.Row{Number: 1, Time: "09:00", Put: -3, Call: 4, Difference: -7, PutChange: "0", CallChange: "0"})
	if !strings.Contains(got, "Put: \\-3, Call: 4 \\(Difference: \\-7\\)") {
		t.Errorf("negative values not escaped:\n%s", got)
	}
}

func TestChunk(t *testing.T) {
	parts := []string{strings.Repeat("a", 40), strings.Repeat("b", 40), strings.Repeat("c", 40)}

	got := chunk(parts, 90)
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2", len(got))
	}
	if got[0] != parts[0]+"\n\n"+parts[1] || got[1] != parts[2] {
		t.Errorf("unexpected chunks: %q", got)
	}
	for _, c := range got {
		if len(c) > 90 {
			t.Errorf("chunk exceeds limit: %d", len(c))
		}
	}

	if got := chunk(nil, 90); len(got) != 0 {
		t.Errorf("empty input should yield no chunks, got %q", got)
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	now := time.Date(2026, 10, 17, 10, 30, 0, 0, time.UTC)
	tr := tracker.New(storage.NewMemory(), tracker.Config{Location: time.UTC})
	return &Client{session: tracker.NewSession(context.Background(), tr, func() time.Time { return now })}
}

func TestRespond(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	if got := c.respond(ctx, "ping", ""); got[0] != "Pong" {
		t.Errorf("ping = %q", got)
	}
	if got := c.respond(ctx, "history", ""); !strings.Contains(got[0], "No entries yet") {
		t.Errorf("empty history = %q", got)
	}
	if got := c.respond(ctx, "analyze", "100"); !strings.Contains(got[0], "Usage") {
		t.Errorf("analyze without call = %q", got)
	}
	if got := c.respond(ctx, "analyze", "abc 50"); !strings.Contains(got[0], "Please enter valid numeric values") {
		t.Errorf("bad input reply = %q", got)
	}
	if c.session.Len() != 0 {
		t.Fatalf("bad input must not add entries")
	}

	if got := c.respond(ctx, "analyze", "100 90"); !strings.Contains(got[0], "Difference: 10") {
		t.Errorf("analyze reply = %q", got)
	}
	_ = c.respond(ctx, "analyze", "110 85")
	got := c.respond(ctx, "history", "")
	if len(got) != 1 || !strings.Contains(got[0], "*1\\. 10:30*") || !strings.Contains(got[0], "*2\\. 10:30*") {
		t.Errorf("history reply = %q", got)
	}

	if got := c.respond(ctx, "reset", ""); !strings.Contains(got[0], "History cleared") {
		t.Errorf("reset reply = %q", got)
	}
	if c.session.Len() != 0 {
		t.Errorf("reset left %d entries", c.session.Len())
	}

	if got := c.respond(ctx, "start", ""); !strings.Contains(got[0], "Usage") {
		t.Errorf("unknown command reply = %q", got)
	}
}

func TestRespond_LongHistoryIsChunked(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	for i := 0; i < 50; i++ {
		if _, err := c.session.Analyze(ctx, "100", "90"); err != nil {
			t.Fatalf("Analyze: %v", err)
		}
	}

	got := c.respond(ctx, "history", "")
	if len(got) < 2 {
		t.Fatalf("expected multiple messages for 50 entries, got %d", len(got))
	}
	total := 0
	for _, m := range got {
		if len(m) > maxMessageLen {
			t.Errorf("message of %d bytes exceeds limit", len(m))
		}
		total += strings.Count(m, "Trading Signal:")
	}
	if total != 50 {
		t.Errorf("got %d rows across messages, want 50", total)
	}
}

func commandUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func TestListen_DoneAfterCancel(t *testing.T) {
	c := newTestClient(t)
	c.chatID = 42

	updates := make(chan tgbotapi.Update)
	stopped := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	done := c.listen(ctx, updates, func() { close(stopped) })

	// Commands from other chats are dropped without a reply.
	updates <- commandUpdate(7, "/reset")
	updates <- tgbotapi.Update{}

	select {
	case <-done:
		t.Fatal("listener stopped before cancel")
	default:
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop after cancel")
	}
	select {
	case <-stopped:
	default:
		t.Error("update polling was not stopped")
	}
}

func TestListen_DoneWhenUpdatesClose(t *testing.T) {
	c := newTestClient(t)
	updates := make(chan tgbotapi.Update)
	done := c.listen(context.Background(), updates, func() {})

	close(updates)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop after updates closed")
	}
}
