package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Exit Codes Tests
// =============================================================================

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{CodeUsage, ExitUsage},
		{CodeNotFound, ExitNotFound},
		{CodeAuth, ExitAuth},
		{CodeForbidden, ExitForbidden},
		{CodeRateLimit, ExitRateLimit},
		{CodeNetwork, ExitNetwork},
		{CodeAPI, ExitAPI},
		{CodeCanceled, ExitCanceled},
		{"unknown_code", ExitAPI},
		{"", ExitAPI},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCodeFor(tt.code))
		})
	}
}

// =============================================================================
// Error Tests
// =============================================================================

func TestErrorMessageIncludesHint(t *testing.T) {
	err := ErrUsageHint("No to-do specified", "Pass a to-do ID")
	assert.Equal(t, "No to-do specified: Pass a to-do ID", err.Error())
	assert.Equal(t, ExitUsage, err.ExitCode())
}

func TestAsErrorWrapsPlainErrors(t *testing.T) {
	plain := errors.New("boom")
	e := AsError(plain)
	assert.Equal(t, CodeAPI, e.Code)
	assert.Equal(t, "boom", e.Message)
	assert.ErrorIs(t, e, plain)
}

func TestAsErrorFindsWrappedError(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), ErrNotFound("Todo", "7"))
	e := AsError(wrapped)
	assert.Equal(t, CodeNotFound, e.Code)
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(errors.New("other")))
}

func TestErrNetworkIsRetryable(t *testing.T) {
	cause := errors.New("connection refused")
	e := ErrNetwork(cause)
	assert.True(t, e.Retryable)
	assert.Equal(t, "connection refused", e.Hint)
	assert.ErrorIs(t, e, cause)
}

func TestErrRateLimitHint(t *testing.T) {
	assert.Equal(t, "Try again in 30 seconds", ErrRateLimit(30).Hint)
	assert.Equal(t, "Try again later", ErrRateLimit(0).Hint)
}

// =============================================================================
// Writer Tests
// =============================================================================

type sample struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type samplePage struct {
	Name  string   `json:"name"`
	Items []sample `json:"items"`
}

func (p samplePage) IDList() any { return p.Items }

func (p samplePage) Markdown() string {
	var b strings.Builder
	b.WriteString("# " + p.Name + "\n")
	for _, s := range p.Items {
		b.WriteString("- " + s.Title + "\n")
	}
	return b.String()
}

func TestWriterJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf})

	require.NoError(t, w.OK([]sample{{ID: 1, Title: "milk"}}, WithSummary("1 item")))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "1 item", resp["summary"])
	assert.Len(t, resp["data"], 1)
}

func TestWriterErrEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf})

	require.NoError(t, w.Err(ErrNotFound("Todo", "9")))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, CodeNotFound, resp.Code)
	assert.Equal(t, "Todo not found: 9", resp.Error)
}

func TestWriterQuietWritesDataOnly(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatQuiet, Writer: &buf})

	require.NoError(t, w.OK(sample{ID: 3, Title: "eggs"}))

	var got sample
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample{ID: 3, Title: "eggs"}, got)
}

func TestWriterIDsUsesIDLister(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatIDs, Writer: &buf})

	page := samplePage{Name: "Groceries", Items: []sample{{ID: 10, Title: "a"}, {ID: 11, Title: "b"}}}
	require.NoError(t, w.OK(page))
	assert.Equal(t, "10\n11\n", buf.String())
}

func TestWriterCount(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatCount, Writer: &buf})

	page := samplePage{Items: []sample{{ID: 1}, {ID: 2}, {ID: 3}}}
	require.NoError(t, w.OK(page))
	assert.Equal(t, "3\n", buf.String())
}

func TestWriterMarkdownUsesMarkdowner(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatMarkdown, Writer: &buf})

	page := samplePage{Name: "Groceries", Items: []sample{{ID: 1, Title: "milk"}}}
	require.NoError(t, w.OK(page, WithSummary("Groceries"), WithNotice("refresh failed")))

	out := buf.String()
	assert.Contains(t, out, "## Groceries")
	assert.Contains(t, out, "- milk")
	assert.Contains(t, out, "**Warning:** refresh failed")
}

func TestWriterMarkdownFallsBackToJSONBlock(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatMarkdown, Writer: &buf})

	require.NoError(t, w.OK(map[string]any{"base_url": "http://localhost"}))
	assert.Contains(t, buf.String(), "```json")
	assert.Contains(t, buf.String(), `"base_url": "http://localhost"`)
}

func TestWriterAutoFallsBackToJSONWhenNotTTY(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Writer: &buf})
	assert.Equal(t, FormatJSON, w.Format())
}

func TestWriterJQFilter(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf, JQ: ".data[].title"})

	require.NoError(t, w.OK([]sample{{ID: 1, Title: "milk"}, {ID: 2, Title: "bread"}}))
	assert.Equal(t, "\"milk\"\n\"bread\"\n", buf.String())
}

func TestWriterJQInvalidExpression(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf, JQ: ".data[["})

	err := w.OK([]sample{{ID: 1}})
	require.Error(t, err)
	assert.Equal(t, CodeUsage, AsError(err).Code)
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatMarkdown, ParseFormat("md"))
	assert.Equal(t, FormatQuiet, ParseFormat("quiet"))
	assert.Equal(t, FormatAuto, ParseFormat("auto"))
	assert.Equal(t, FormatAuto, ParseFormat("bogus"))
}
