package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/umputun/feedpost/pkg/config"
	"github.com/umputun/feedpost/pkg/domain"
)

// telegram caps message text at 4096 characters
const maxMessageLen = 4096

// DeliveryError describes a failed send with its retry classification.
// Rate limiting, server-side errors and transport failures are retryable,
// the rest of the client-side error class is terminal.
type DeliveryError struct {
	StatusCode int
	Retryable  bool
	RetryAfter time.Duration // suggested by the sink on rate limiting, advisory
	Err        error
}

func (e *DeliveryError) Error() string {
	kind := "non-retryable"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("delivery failed (%s, status %d): %v", kind, e.StatusCode, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Telegram delivers entries to a Telegram channel via the Bot API
type Telegram struct {
	token          string
	chatID         string
	api            string
	disablePreview bool
	client         *http.Client
}

// NewTelegram creates a new Telegram sink
func NewTelegram(cfg config.TelegramConfig) *Telegram {
	return &Telegram{
		token:          cfg.Token,
		chatID:         cfg.ChatID,
		api:            strings.TrimSuffix(cfg.API, "/"),
		disablePreview: cfg.DisableWebPreview,
		client:         &http.Client{Timeout: cfg.Timeout},
	}
}

// sendMessageRequest is the Bot API sendMessage payload
type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// apiResponse is the subset of the Bot API response we care about
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// Send renders the entry and posts it to the configured chat. The returned
// error, if any, is a *DeliveryError carrying the retry classification.
func (t *Telegram) Send(ctx context.Context, entry domain.Entry, summary string) error {
	payload := sendMessageRequest{
		ChatID:                t.chatID,
		Text:                  t.render(entry, summary),
		ParseMode:             "HTML",
		DisableWebPagePreview: t.disablePreview,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Retryable: false, Err: fmt.Errorf("marshal message: %w", err)}
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.api, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Retryable: false, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return &DeliveryError{Retryable: true, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	var apiResp apiResponse
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(respBody, &apiResp) // best effort, description may be absent

	desc := apiResp.Description
	if desc == "" {
		desc = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &DeliveryError{
			StatusCode: resp.StatusCode,
			Retryable:  true,
			RetryAfter: time.Duration(apiResp.Parameters.RetryAfter) * time.Second,
			Err:        fmt.Errorf("rate limited: %s", desc),
		}
	case resp.StatusCode >= http.StatusInternalServerError:
		return &DeliveryError{StatusCode: resp.StatusCode, Retryable: true, Err: fmt.Errorf("server error: %s", desc)}
	default:
		return &DeliveryError{StatusCode: resp.StatusCode, Retryable: false, Err: fmt.Errorf("rejected: %s", desc)}
	}
}

// render builds the Telegram HTML message for an entry
func (t *Telegram) render(entry domain.Entry, summary string) string {
	head := fmt.Sprintf("<b>%s</b>\n<a href=%q>Read more</a>", SanitizeHTML(entry.Title), entry.Link)
	text := head
	if summary != "" {
		text = head + "\n\n" + SanitizeHTML(summary)
	}
	if utf8.RuneCountInString(text) <= maxMessageLen {
		return text
	}

	// over the limit. a cut inside a tag pair is rejected by the API as
	// unparsable entities, which the classifier treats as terminal, so the
	// summary loses its markup and is cut at a rune boundary instead
	if utf8.RuneCountInString(head) > maxMessageLen {
		return truncate(PlainText(entry.Title), maxMessageLen)
	}
	budget := maxMessageLen - utf8.RuneCountInString(head) - 2 // separating blank line
	if budget <= 1 {
		return head
	}
	return head + "\n\n" + truncate(PlainText(summary), budget)
}

// truncate cuts s to at most limit runes, marking the cut with an ellipsis
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := runes[:limit-1]
	// don't leave a dangling half of an escaped entity like "&amp;"
	for i := len(cut) - 1; i >= 0 && i >= len(cut)-6; i-- {
		if cut[i] == ';' {
			break
		}
		if cut[i] == '&' {
			cut = cut[:i]
			break
		}
	}
	return string(cut) + "…"
}
