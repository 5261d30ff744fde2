// Package bot routes incoming Telegram commands to the lead-capture and
// report-generation workflow steps.
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/beitans8/telegram-ig-agent/internal/errors"
	"github.com/beitans8/telegram-ig-agent/internal/lead"
	"github.com/beitans8/telegram-ig-agent/internal/report"
	"github.com/beitans8/telegram-ig-agent/internal/telegram"
)

// Reply texts for the command surface.
const (
	replyStart       = "Use /analyze @username"
	replyHelp        = "Commands: /analyze @username, then /report"
	replyPasteBio    = "Now paste ONE message with:\nBIO: ...\nLINK: ...\nPOSTS: ...\nNOTES: ..."
	replyNoLead      = "Run /analyze first."
	replySearchDown  = "Web search failed. Try /report again in a moment."
	replyCatalogDown = "The offer catalog is unavailable. Contact the administrator."
	replyModelDown   = "Report generation failed. Try /report again in a moment."
)

// gpt-4.1-mini list price per one million tokens.
const (
	inputCostPerMTok  = 0.40
	outputCostPerMTok = 1.60
)

// Sender delivers a message to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Poller fetches incoming updates.
type Poller interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
}

// Generator produces the sales-fit report for a captured lead.
type Generator interface {
	Generate(ctx context.Context, l lead.Lead) (*report.Report, error)
}

// Recorder appends usage rows to the ledger.
type Recorder interface {
	Append(provider string, units int64, cost float64) error
}

// Bot dispatches commands for all chats. State is per-chat in the lead
// store; one chat's provider failure never affects another chat.
type Bot struct {
	Sender Sender
	Poller Poller
	Leads  *lead.Store
	Synth  Generator
	Ledger Recorder
	Log    *logrus.Logger
}

// Run polls for updates until ctx is cancelled. Handler errors are logged
// and the loop keeps serving.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64

	b.Log.Info("bot polling loop started")
	for {
		select {
		case <-ctx.Done():
			b.Log.Info("bot polling loop stopped")
			return ctx.Err()
		default:
		}

		updates, err := b.Poller.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.Log.WithError(err).Warn("failed to get updates")
			time.Sleep(5 * time.Second)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Chat == nil {
				continue
			}
			if err := b.HandleMessage(ctx, u.Message); err != nil {
				b.Log.WithFields(logrus.Fields{
					"chat_id": u.Message.Chat.ID,
				}).WithError(err).Error("message handling failed")
			}
		}
	}
}

// HandleMessage dispatches one incoming message. Validation problems become
// short user replies; provider and storage failures are returned to the
// caller after the user gets a short notice.
func (b *Bot) HandleMessage(ctx context.Context, msg *telegram.Message) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if !strings.HasPrefix(text, "/") {
		// Free-form text after /analyze is the pasted bio block. It is
		// stored verbatim and not parsed; nothing consumes it yet.
		if text != "" {
			b.Leads.AttachBio(chatID, text)
		}
		return nil
	}

	fields := strings.Fields(text)
	cmd := fields[0]
	// Commands in groups arrive as /cmd@botname
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	args := fields[1:]

	switch cmd {
	case "/start":
		return b.Sender.SendMessage(ctx, chatID, replyStart)
	case "/help":
		return b.Sender.SendMessage(ctx, chatID, replyHelp)
	case "/analyze":
		return b.handleAnalyze(ctx, chatID, args)
	case "/report":
		return b.handleReport(ctx, chatID)
	default:
		return b.Sender.SendMessage(ctx, chatID, replyHelp)
	}
}

// handleAnalyze creates or overwrites the lead record for the chat.
func (b *Bot) handleAnalyze(ctx context.Context, chatID int64, args []string) error {
	if len(args) != 1 {
		return b.Sender.SendMessage(ctx, chatID, replyStart)
	}

	username := lead.NormalizeUsername(args[0])
	b.Leads.Put(chatID, lead.Lead{
		Username:   username,
		CapturedAt: time.Now().UTC(),
	})

	b.Log.WithFields(logrus.Fields{
		"chat_id":  chatID,
		"username": username,
	}).Info("lead captured")

	return b.Sender.SendMessage(ctx, chatID, replyPasteBio)
}

// handleReport runs the synthesis pipeline for the chat's current lead.
func (b *Bot) handleReport(ctx context.Context, chatID int64) error {
	l, ok := b.Leads.Get(chatID)
	if !ok {
		return b.Sender.SendMessage(ctx, chatID, replyNoLead)
	}

	rep, err := b.Synth.Generate(ctx, l)
	if err != nil {
		_ = b.Sender.SendMessage(ctx, chatID, userReply(err))
		return err
	}

	if err := b.Sender.SendMessage(ctx, chatID, rep.Text); err != nil {
		return err
	}

	return b.recordUsage(chatID, rep)
}

// recordUsage appends the completion and search usage for one report.
// A ledger write failure is returned so it is never silently dropped.
func (b *Bot) recordUsage(chatID int64, rep *report.Report) error {
	cost := float64(rep.Usage.PromptTokens)*inputCostPerMTok/1e6 +
		float64(rep.Usage.CompletionTokens)*outputCostPerMTok/1e6

	if err := b.Ledger.Append("openai", rep.Usage.TotalTokens, cost); err != nil {
		return err
	}
	if err := b.Ledger.Append("brave", 1, 0.0); err != nil {
		return err
	}

	b.Log.WithFields(logrus.Fields{
		"chat_id": chatID,
		"tokens":  rep.Usage.TotalTokens,
		"cost":    cost,
	}).Info("usage recorded")

	return nil
}

// userReply maps a pipeline error to the short user-visible message.
func userReply(err error) string {
	switch {
	case errors.Is(err, errors.ErrEnrichmentFailed):
		return replySearchDown
	case errors.Is(err, errors.ErrCatalogUnavailable):
		return replyCatalogDown
	default:
		return replyModelDown
	}
}
