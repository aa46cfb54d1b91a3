package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"TweetSentiment/internal/ports"
	"TweetSentiment/internal/report"
)

// DefaultEndpoint is the Bot API host.
const DefaultEndpoint = "https://api.telegram.org"

// Notifier sends run summaries to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	endpoint string
	client   *http.Client
}

var _ ports.Presenter = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. An empty endpoint
// uses DefaultEndpoint.
func NewNotifier(botToken, chatID, endpoint string) *Notifier {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Present posts a Markdown summary of the run.
func (n *Notifier) Present(ctx context.Context, p report.Presentation) error {
	if err := n.Publish(ctx, Summary(p)); err != nil {
		return eris.Wrapf(err, "notify run %s", p.RunID)
	}
	return nil
}

// Publish posts a Markdown message to the configured chat.
func (n *Notifier) Publish(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" {
		return eris.New("telegram notifier misconfigured")
	}
	return n.call(ctx, "sendMessage", url.Values{
		"chat_id":    {n.chatID},
		"text":       {text},
		"parse_mode": {"Markdown"},
	})
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// call invokes a Bot API method with a form body. A non-200 status or an
// envelope with ok=false is an error carrying the API description.
func (n *Notifier) call(ctx context.Context, method string, form url.Values) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", n.endpoint, n.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return eris.Wrapf(err, "build %s request", method)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return eris.Wrapf(err, "telegram %s", method)
	}
	defer resp.Body.Close()

	var body apiResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)

	switch {
	case resp.StatusCode != http.StatusOK && body.Description != "":
		return eris.Errorf("telegram %s: %s: %s", method, resp.Status, body.Description)
	case resp.StatusCode != http.StatusOK:
		return eris.Errorf("telegram %s: %s", method, resp.Status)
	case decodeErr == nil && !body.OK:
		return eris.Errorf("telegram %s rejected: %s", method, body.Description)
	}
	return nil
}

// Summary formats the label distribution of a run as a Markdown message.
func Summary(p report.Presentation) string {
	var sb strings.Builder
	sb.WriteString("*Sentiment analysis*")
	if p.Keyword != "" {
		fmt.Fprintf(&sb, " for `%s`", p.Keyword)
	}
	sb.WriteString("\n")

	rows := 0
	if p.Table != nil {
		rows = p.Table.Len()
	}
	fmt.Fprintf(&sb, "Posts: %d\n", rows)

	if !p.Resolution.Resolved() {
		sb.WriteString("_No sentiment labels could be derived._\n")
		return sb.String()
	}
	for _, s := range p.Distribution {
		fmt.Fprintf(&sb, "- %s: %d (%.1f%%)\n", s.Label, s.Count, s.Percent)
	}
	return sb.String()
}
