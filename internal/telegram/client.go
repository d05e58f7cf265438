// Package telegram exposes the tracker as a Telegram bot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/putcall/internal/logger"
	"github.com/rewired-gh/putcall/internal/models"
	"github.com/rewired-gh/putcall/internal/tracker"
)

// Telegram rejects messages longer than 4096 characters.
const maxMessageLen = 4000

const usage = "Usage: /analyze <put> <call>\n/history shows all entries\n/reset clears the history"

// Client answers bot commands from a single chat.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
	session        *tracker.Session
}

// NewClient creates a new Telegram client.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration, session *tracker.Session) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
		session:        session,
	}, nil
}

// ListenForCommands starts a goroutine that polls for Telegram updates and handles bot commands.
// It returns immediately. The returned channel is closed once the goroutine has stopped,
// after ctx is cancelled and any command in flight has been answered.
func (c *Client) ListenForCommands(ctx context.Context) <-chan struct{} {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)
	return c.listen(ctx, updates, c.bot.StopReceivingUpdates)
}

func (c *Client) listen(ctx context.Context, updates tgbotapi.UpdatesChannel, stop func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message == nil || !update.Message.IsCommand() {
					continue
				}
				if update.Message.Chat.ID != c.chatID {
					logger.Debug("Ignoring command from chat %d", update.Message.Chat.ID)
					continue
				}
				c.handleCommand(ctx, update.Message)
			}
		}
	}()
	return done
}

func (c *Client) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	for _, part := range c.respond(ctx, msg.Command(), msg.CommandArguments()) {
		if err := c.sendMarkdownV2(msg.Chat.ID, part); err != nil {
			logger.Error("Failed to reply to /%s: %v", msg.Command(), err)
			return
		}
	}
}

// respond runs a command against the session and returns the MarkdownV2 reply, split to fit Telegram's limit.
func (c *Client) respond(ctx context.Context, command, args string) []string {
	switch command {
	case "ping":
		return []string{"Pong"}

	case "analyze":
		fields := strings.Fields(args)
		if len(fields) != 2 {
			return []string{escapeMarkdownV2(usage)}
		}
		rows, err := c.session.Analyze(ctx, fields[0], fields[1])
		if errors.Is(err, tracker.ErrNotNumeric) {
			return []string{"⚠️ " + escapeMarkdownV2("Please enter valid numeric values!")}
		}
		if err != nil {
			logger.Error("Analyze failed: %v", err)
			return []string{formatRow(rows[0]) + "\n\n⚠️ " + escapeMarkdownV2("History could not be saved: "+err.Error())}
		}
		return []string{formatRow(rows[0])}

	case "history":
		rows := c.session.Rows()
		if len(rows) == 0 {
			return []string{escapeMarkdownV2("No entries yet.")}
		}
		parts := make([]string, len(rows))
		for i, r := range rows {
			parts[i] = formatRow(r)
		}
		return chunk(parts, maxMessageLen)

	case "reset":
		c.session.Reset(ctx)
		return []string{escapeMarkdownV2("History cleared.")}

	default:
		return []string{escapeMarkdownV2(usage)}
	}
}

// sendMarkdownV2 sends a MarkdownV2 message with linear-backoff retry.
func (c *Client) sendMarkdownV2(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if _, err := c.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

// formatRow formats one history row as a MarkdownV2 block.
func formatRow(r models.Row) string {
	diff := strconv.FormatInt(r.Difference, 10)
	if r.DifferenceChange != "" {
		diff += " (" + r.DifferenceChange + ")"
	}

	directionEmoji := "➖"
	switch r.Signal {
	case string(models.SignalBullish):
		directionEmoji = "📈"
	case string(models.SignalBearish):
		directionEmoji = "📉"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s* %s\n", escapeMarkdownV2(fmt.Sprintf("%d. %s", r.Number, r.Time)), directionEmoji)
	fmt.Fprintf(&b, "%s\n", escapeMarkdownV2(fmt.Sprintf("Put: %d, Call: %d (Difference: %s)", r.Put, r.Call, diff)))
	fmt.Fprintf(&b, "Put Change: %s\n", escapeMarkdownV2(r.PutChange))
	fmt.Fprintf(&b, "Call Change: %s\n", escapeMarkdownV2(r.CallChange))
	fmt.Fprintf(&b, "Signal: %s\n", escapeMarkdownV2(r.Signal))
	fmt.Fprintf(&b, "Weakness: %s\n", escapeMarkdownV2(r.Weakness))
	fmt.Fprintf(&b, "Trading Signal: *%s*", escapeMarkdownV2(r.TradeSignal))
	return b.String()
}

// chunk joins parts with blank lines into messages no longer than limit.
// A single part longer than limit is sent on its own.
func chunk(parts []string, limit int) []string {
	var out []string
	var cur strings.Builder
	for _, p := range parts {
		if cur.Len() > 0 && cur.Len()+2+len(p) > limit {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(p)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4) // pre-allocate with room for escapes
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
