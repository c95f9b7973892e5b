// Command tgbot answers Telegram messages with simulation reports. Each text
// message is run through intake, so a pasted model answer or a bare JSON
// document both work.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"StructFlow/internal/config"
	"StructFlow/internal/export"
	"StructFlow/internal/intake"
	"StructFlow/internal/logging"
	"StructFlow/internal/sim"
)

const apiBase = "https://api.telegram.org"

type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int    `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type UpdateResponse struct {
	OK     bool     `json:"ok"`
	Result []Update `json:"result"`
}

type bot struct {
	base   string
	token  string
	client *http.Client
	engine sim.Simulator
	log    *zap.Logger
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Bot.Token == "" {
		log.Fatal("TOKEN_BOT missing")
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b := &bot{
		base:   apiBase,
		token:  cfg.Bot.Token,
		client: &http.Client{Timeout: 30 * time.Second},
		engine: sim.New(),
		log:    logger,
	}
	b.loop(ctx)
}

func (b *bot) loop(ctx context.Context) {
	offset := 0
	for ctx.Err() == nil {
		updates, err := b.getUpdates(ctx, offset)
		if err != nil {
			b.log.Warn("getUpdates", zap.Error(err))
			sleep(ctx, 2*time.Second)
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message != nil && strings.TrimSpace(u.Message.Text) != "" {
				b.sendMessage(ctx, u.Message.Chat.ID, b.reply(u.Message.Text))
			}
		}
		sleep(ctx, time.Second)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// reply runs intake and the simulation and renders the answer text.
func (b *bot) reply(text string) string {
	if strings.HasPrefix(text, "/start") || strings.HasPrefix(text, "/help") {
		return "Send pipe parameters as JSON, for example:\n" +
			`{"pipe": {"diameter_mm": 600, "material": "pvc", "slope": 0.01}}` +
			"\nMissing fields get conservative defaults."
	}
	schema, outcome, err := intake.Parse(text, nil)
	var vf *intake.ValidationFailure
	switch {
	case errors.Is(err, intake.ErrNoJSON):
		return "No JSON parameters found in the message. Send /help for an example."
	case errors.Is(err, intake.ErrExtractionFailed):
		return "Parameters could not be extracted: " + schema.ExtractionFailReason
	case errors.As(err, &vf):
		return "Invalid parameters:\n- " + strings.Join(outcome.Errors, "\n- ")
	case err != nil:
		return "Could not read the parameters: " + err.Error()
	}
	return export.Text(b.engine.Run(&schema))
}

func (b *bot) getUpdates(ctx context.Context, offset int) ([]Update, error) {
	url := fmt.Sprintf("%s/bot%s/getUpdates?timeout=20&offset=%d", b.base, b.token, offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	var out UpdateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, fmt.Errorf("telegram: getUpdates not ok (HTTP %d)", res.StatusCode)
	}
	return out.Result, nil
}

func (b *bot) sendMessage(ctx context.Context, chatID int64, text string) {
	url := fmt.Sprintf("%s/bot%s/sendMessage", b.base, b.token)
	payload, _ := json.Marshal(map[string]any{"chat_id": chatID, "text": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := b.client.Do(req)
	if err != nil {
		b.log.Warn("sendMessage", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	res.Body.Close()
}
