// Package notify posts a short run summary to a chat webhook when a merge
// added new credentials.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"credmerge/internal/parser"
	"credmerge/internal/types"
)

// maxListed caps the identities named in one message
const maxListed = 10

// Webhook sends Discord-compatible {"content": ...} messages
type Webhook struct {
	URL    string
	client *http.Client
}

// NewWebhook creates a webhook sink posting to url
func NewWebhook(url string) *Webhook {
	return &Webhook{
		URL:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Report implements report.Reporter. Only committed runs with new records
// produce a message; payloads are never sent.
func (w *Webhook) Report(rep *types.RunReport) error {
	if rep.Outcome != types.OutcomeCommitted || rep.UniqueNew == 0 {
		return nil
	}

	type discordMsg struct {
		Content string `json:"content"`
	}
	body, err := json.Marshal(discordMsg{Content: Message(rep)})
	if err != nil {
		return err
	}

	resp, err := w.client.Post(w.URL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

// Message renders the summary text: counts plus the new identities with
// their hash type.
func Message(rep *types.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**[%s] credmerge**: %d new credential(s), %d machine account(s), %d records total\n",
		rep.FinishedAt.Format("15:04:05"), rep.UniqueNew, rep.MachineAccountNew, rep.OutputRecords)

	for i, line := range rep.NewRecords {
		if i == maxListed {
			fmt.Fprintf(&b, "... and %d more\n", len(rep.NewRecords)-maxListed)
			break
		}
		rec, ok := parser.ParseOutputLine(line)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- `%s` (%s)\n", rec.Identity, rec.HashType)
	}
	return b.String()
}
