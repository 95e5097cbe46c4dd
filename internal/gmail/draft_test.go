package gmail_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/hal9000y/research-mail/internal/fault"
	"github.com/hal9000y/research-mail/internal/gmail"
)

const credentialsJSON = `{
	"installed": {
		"client_id": "client-id",
		"client_secret": "client-secret",
		"redirect_uris": ["http://localhost"],
		"auth_uri": "https://accounts.google.com/o/oauth2/auth",
		"token_uri": "https://oauth2.googleapis.com/token"
	}
}`

func writeCredentials(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(credentialsJSON), 0600))
	return path
}

func writeToken(t *testing.T, dir string, tok *oauth2.Token) string {
	t.Helper()
	path := filepath.Join(dir, "token.json")
	b, err := json.Marshal(tok)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0600))
	return path
}

func validToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: "access-token",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}
}

type draftCapture struct {
	Message struct {
		Raw string `json:"raw"`
	} `json:"message"`
}

func newGmailStub(t *testing.T, response string, status int) (*httptest.Server, *draftCapture) {
	t.Helper()
	captured := &draftCapture{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Contains(t, r.URL.Path, "/drafts")
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))

	return srv, captured
}

func TestCreateDraft(t *testing.T) {
	dir := t.TempDir()
	credsPath := writeCredentials(t, dir)
	tokenPath := writeToken(t, dir, validToken())

	srv, captured := newGmailStub(t, `{"id":"draft-1","message":{"id":"msg-1","threadId":"thread-1"}}`, http.StatusOK)
	defer srv.Close()

	client := gmail.NewDraftClient(gmail.WithServiceOptions(option.WithEndpoint(srv.URL)))

	result, err := client.CreateDraft(context.Background(), credsPath, tokenPath, gmail.DraftRequest{
		Recipient: "jane@example.com",
		Subject:   "Quarterly research",
		Body:      "Hi Jane,\n\nFindings attached below.\n",
		CC:        []string{"team@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, gmail.DraftResult{DraftID: "draft-1", MessageID: "msg-1", ThreadID: "thread-1"}, result)

	raw, err := base64.RawURLEncoding.DecodeString(captured.Message.Raw)
	require.NoError(t, err, "raw message must be base64url without padding")

	msg := string(raw)
	assert.Contains(t, msg, "To: jane@example.com\r\n")
	assert.Contains(t, msg, "Cc: team@example.com\r\n")
	assert.Contains(t, msg, "Subject: Quarterly research\r\n")
	assert.Contains(t, msg, "Content-Type: text/plain")
	assert.Contains(t, msg, "\r\n\r\nHi Jane,")
}

func TestCreateDraftThreadIDDefaultsEmpty(t *testing.T) {
	dir := t.TempDir()
	credsPath := writeCredentials(t, dir)
	tokenPath := writeToken(t, dir, validToken())

	srv, _ := newGmailStub(t, `{"id":"draft-2","message":{"id":"msg-2"}}`, http.StatusOK)
	defer srv.Close()

	client := gmail.NewDraftClient(gmail.WithServiceOptions(option.WithEndpoint(srv.URL)))

	result, err := client.CreateDraft(context.Background(), credsPath, tokenPath, gmail.DraftRequest{
		Recipient: "jane@example.com",
		Subject:   "s",
		Body:      "b",
	})
	require.NoError(t, err)
	assert.Equal(t, "", result.ThreadID)
	assert.Equal(t, "msg-2", result.MessageID)
}

func TestCreateDraftMissingCredentials(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "nope", "credentials.json")

	client := gmail.NewDraftClient()

	_, err := client.CreateDraft(context.Background(), missing, filepath.Join(dir, "token.json"), gmail.DraftRequest{
		Recipient: "jane@example.com",
		Subject:   "s",
		Body:      "b",
	})

	require.Error(t, err)
	assert.Equal(t, fault.KindConfig, fault.KindOf(err))
	assert.Contains(t, err.Error(), missing, "error must name the missing path")
}

func TestCreateDraftNoAuthorizer(t *testing.T) {
	dir := t.TempDir()
	credsPath := writeCredentials(t, dir)

	client := gmail.NewDraftClient()

	_, err := client.CreateDraft(context.Background(), credsPath, filepath.Join(dir, "token.json"), gmail.DraftRequest{
		Recipient: "jane@example.com",
		Subject:   "s",
		Body:      "b",
	})

	require.Error(t, err)
	assert.Equal(t, fault.KindAuth, fault.KindOf(err))
}

func TestCreateDraftValidation(t *testing.T) {
	client := gmail.NewDraftClient()

	cases := []struct {
		name string
		req  gmail.DraftRequest
	}{
		{name: "bad recipient", req: gmail.DraftRequest{Recipient: "not-an-address", Subject: "s", Body: "b"}},
		{name: "empty subject", req: gmail.DraftRequest{Recipient: "a@b.example", Subject: " ", Body: "b"}},
		{name: "empty body", req: gmail.DraftRequest{Recipient: "a@b.example", Subject: "s", Body: ""}},
		{name: "bad cc", req: gmail.DraftRequest{Recipient: "a@b.example", Subject: "s", Body: "b", CC: []string{"broken"}}},
		{name: "bad bcc", req: gmail.DraftRequest{Recipient: "a@b.example", Subject: "s", Body: "b", BCC: []string{"@@"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.CreateDraft(context.Background(), "unused", "unused", tc.req)
			require.Error(t, err)
			assert.Equal(t, fault.KindInvalidArgument, fault.KindOf(err))
		})
	}
}

func TestCreateDraftUpstreamError(t *testing.T) {
	dir := t.TempDir()
	credsPath := writeCredentials(t, dir)
	tokenPath := writeToken(t, dir, validToken())

	cases := []struct {
		name     string
		status   int
		expected fault.Kind
	}{
		{name: "forbidden", status: http.StatusForbidden, expected: fault.KindAuth},
		{name: "server error", status: http.StatusInternalServerError, expected: fault.KindUpstream},
		{name: "rate limited", status: http.StatusTooManyRequests, expected: fault.KindRateLimited},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newGmailStub(t, fmt.Sprintf(`{"error":{"code":%d,"message":"denied"}}`, tc.status), tc.status)
			defer srv.Close()

			client := gmail.NewDraftClient(gmail.WithServiceOptions(option.WithEndpoint(srv.URL)))

			_, err := client.CreateDraft(context.Background(), credsPath, tokenPath, gmail.DraftRequest{
				Recipient: "jane@example.com",
				Subject:   "s",
				Body:      "b",
			})
			require.Error(t, err)
			assert.Equal(t, tc.expected, fault.KindOf(err))
		})
	}
}
