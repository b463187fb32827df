package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"credmerge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func committed(lines ...string) *types.RunReport {
	return &types.RunReport{
		FinishedAt:        time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC),
		Outcome:           types.OutcomeCommitted,
		UniqueNew:         len(lines),
		MachineAccountNew: 1,
		OutputRecords:     7,
		NewRecords:        lines,
	}
}

func TestWebhook_PostsSummaryWithoutPayloads(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL).Report(committed(
		"[SMB-NTLMv2-SSP] Alice::CORP:1122:AAAA:0101",
		"[HTTP-NTLMv1] Bob$::CORP:CCCC:DDDD",
	))
	require.NoError(t, err)

	content := got["content"]
	assert.Contains(t, content, "2 new credential(s)")
	assert.Contains(t, content, "`Alice` (SMB-NTLMv2-SSP)")
	assert.Contains(t, content, "`Bob$` (HTTP-NTLMv1)")
	assert.NotContains(t, content, "AAAA")
}

func TestWebhook_SkipsRunsWithoutNewRecords(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL)
	require.NoError(t, hook.Report(committed()))
	require.NoError(t, hook.Report(&types.RunReport{Outcome: types.OutcomeDryRun, UniqueNew: 3}))
	require.NoError(t, hook.Report(&types.RunReport{Outcome: types.OutcomeNoInput}))
	assert.Zero(t, calls)
}

func TestWebhook_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL).Report(committed("[T] a::b"))
	assert.ErrorContains(t, err, "429")
}

func TestMessage_Truncates(t *testing.T) {
	var lines []string
	for i := 0; i < maxListed+3; i++ {
		lines = append(lines, fmt.Sprintf("[T] user%02d::CORP:x", i))
	}
	msg := Message(committed(lines...))

	assert.Contains(t, msg, "user09")
	assert.NotContains(t, msg, "user10")
	assert.Contains(t, msg, "... and 3 more")
}
