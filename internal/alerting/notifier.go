package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"crypto-dashboard/internal/report"
)

// Digest is one scheduled refresh summarised for delivery.
type Digest struct {
	Slot     time.Time
	Views    []report.View
	Failures map[string]string
}

// Notifier delivers digests to a channel.
type Notifier interface {
	Notify(ctx context.Context, digest Digest) error
}

// TelegramNotifier pushes digests through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier builds a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify calls sendMessage with the rendered digest.
func (n *TelegramNotifier) Notify(ctx context.Context, digest Digest) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    RenderDigest(digest),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && !result.OK {
		return fmt.Errorf("telegram returned ok=false: %s", result.Description)
	}

	n.logger.Info().Time("slot", digest.Slot).
		Int("assets", len(digest.Views)).
		Int("failures", len(digest.Failures)).
		Msg("digest sent (Telegram)")
	return nil
}

// RenderDigest formats a digest as plain text.
func RenderDigest(d Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Crypto Dashboard] %s UTC\n", d.Slot.UTC().Format(time.RFC3339))
	for _, v := range d.Views {
		fmt.Fprintf(&b, "\n%s (%d months)\n", v.Asset, v.Months)
		if s := v.Statistics; s != nil {
			fmt.Fprintf(&b, "Total return: %s  ATH: %s  Max DD: %s\n", s.TotalReturn, s.ATHReturn, s.MaxDrawdown)
			fmt.Fprintf(&b, "Sharpe: %s  Sortino: %s  Calmar: %s\n", s.SharpeRatio, s.SortinoRatio, s.CalmarRatio)
		}
		if n := len(v.Correlations); n > 0 {
			top := v.Correlations[n-1]
			fmt.Fprintf(&b, "Most correlated: %s (R² %s)\n", top.Asset, top.Score)
		}
		for _, w := range v.Warnings {
			fmt.Fprintf(&b, "Warning: %s\n", w)
		}
	}
	for _, asset := range slices.Sorted(maps.Keys(d.Failures)) {
		fmt.Fprintf(&b, "\n%s failed: %s\n", asset, d.Failures[asset])
	}
	return b.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
