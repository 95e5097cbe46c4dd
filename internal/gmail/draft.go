package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/mail"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/hal9000y/research-mail/internal/fault"
)

// DraftRequest describes a draft to create. It is validated before any
// network call.
type DraftRequest struct {
	Recipient string
	Subject   string
	Body      string
	CC        []string
	BCC       []string
}

// Validate checks addresses and required fields.
func (r DraftRequest) Validate() error {
	if _, err := mail.ParseAddress(r.Recipient); err != nil {
		return fault.Invalidf("invalid recipient address %q", r.Recipient)
	}
	for _, addr := range r.CC {
		if _, err := mail.ParseAddress(addr); err != nil {
			return fault.Invalidf("invalid cc address %q", addr)
		}
	}
	for _, addr := range r.BCC {
		if _, err := mail.ParseAddress(addr); err != nil {
			return fault.Invalidf("invalid bcc address %q", addr)
		}
	}
	if strings.TrimSpace(r.Subject) == "" {
		return fault.Invalidf("subject cannot be empty")
	}
	if strings.TrimSpace(r.Body) == "" {
		return fault.Invalidf("body cannot be empty")
	}

	return nil
}

// DraftResult identifies the created draft. ThreadID is empty when the
// provider omits it.
type DraftResult struct {
	DraftID   string `json:"draft_id"`
	MessageID string `json:"message_id"`
	ThreadID  string `json:"thread_id"`
}

// Authorizer runs an interactive OAuth2 authorization flow and yields a
// valid token. The CLI provides one backed by a local callback server;
// non-interactive callers leave it unset and get an auth error instead.
type Authorizer interface {
	Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)
}

// DraftClient creates Gmail drafts on behalf of the authenticated user.
type DraftClient struct {
	authorizer Authorizer
	svcOpts    []option.ClientOption
}

// DraftOption configures a DraftClient.
type DraftOption func(*DraftClient)

// WithAuthorizer enables the interactive authorization fallback.
func WithAuthorizer(a Authorizer) DraftOption {
	return func(c *DraftClient) { c.authorizer = a }
}

// WithServiceOptions appends Gmail service client options, primarily
// endpoint overrides for tests.
func WithServiceOptions(opts ...option.ClientOption) DraftOption {
	return func(c *DraftClient) { c.svcOpts = append(c.svcOpts, opts...) }
}

// NewDraftClient creates a draft client.
func NewDraftClient(opts ...DraftOption) *DraftClient {
	c := &DraftClient{}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CreateDraft authenticates against Gmail and creates a plain-text draft.
//
// Authentication order: a cached token at tokenPath is used if valid, or
// refreshed in place when expired but refreshable. Otherwise the
// credentials file must exist so the interactive flow can run; a missing
// credentials file yields a config error naming the path.
func (c *DraftClient) CreateDraft(ctx context.Context, credentialsPath, tokenPath string, req DraftRequest) (DraftResult, error) {
	if err := req.Validate(); err != nil {
		return DraftResult{}, err
	}

	cfg, tokSrc, err := c.credential(ctx, credentialsPath, tokenPath)
	if err != nil {
		return DraftResult{}, err
	}

	svc, err := c.newService(ctx, cfg, tokSrc)
	if err != nil {
		return DraftResult{}, fault.Upstreamf(err, "gmail.NewService failed")
	}

	draft := &gmailapi.Draft{
		Message: &gmailapi.Message{Raw: encodeMessage(req)},
	}

	created, err := svc.Users.Drafts.Create("me", draft).Context(ctx).Do()
	if err != nil {
		return DraftResult{}, mapAPIError(err)
	}

	result := DraftResult{DraftID: created.Id}
	if created.Message != nil {
		result.MessageID = created.Message.Id
		result.ThreadID = created.Message.ThreadId
	}

	return result, nil
}

func (c *DraftClient) credential(ctx context.Context, credentialsPath, tokenPath string) (*oauth2.Config, *oauth2.Token, error) {
	cfg, cfgErr := configFromFile(credentialsPath)

	tok, err := NewToken(cfg, tokenPath)
	if err != nil {
		return nil, nil, fault.Authf("cannot load token from %s: %v", tokenPath, err)
	}

	if tok.Usable() {
		if cfg == nil {
			// Cached token without client credentials: usable only while valid.
			t, _ := tok.OAuthToken()
			if t.Valid() {
				return nil, t, nil
			}
		} else {
			if err := tok.Refresh(ctx); err != nil {
				return nil, nil, fault.Authf("token refresh failed: %v", err)
			}
			t, _ := tok.OAuthToken()

			return cfg, t, nil
		}
	}

	if cfg == nil {
		if errors.Is(cfgErr, fs.ErrNotExist) {
			return nil, nil, fault.Configf("Gmail credentials not found at %s, download credentials.json from Google Cloud Console", credentialsPath)
		}

		return nil, nil, fault.Configf("cannot read Gmail credentials at %s: %v", credentialsPath, cfgErr)
	}

	if c.authorizer == nil {
		return nil, nil, fault.Authf("no valid Gmail token at %s and no interactive authorization available", tokenPath)
	}

	fresh, err := c.authorizer.Authorize(ctx, cfg)
	if err != nil {
		return nil, nil, fault.Authf("Gmail authorization failed: %v", err)
	}

	tok.SetToken(fresh)
	if err := tok.Persist(); err != nil {
		return nil, nil, fmt.Errorf("tok.Persist failed: %w", err)
	}

	return cfg, fresh, nil
}

func (c *DraftClient) newService(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (*gmailapi.Service, error) {
	var httpClient *http.Client
	if cfg != nil {
		httpClient = cfg.Client(ctx, tok)
	} else {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, c.svcOpts...)

	return gmailapi.NewService(ctx, opts...)
}

func configFromFile(credentialsPath string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, err
	}

	cfg, err := google.ConfigFromJSON(b, gmailapi.GmailComposeScope)
	if err != nil {
		return nil, fmt.Errorf("google.ConfigFromJSON failed: %w", err)
	}

	return cfg, nil
}

// encodeMessage renders the RFC 2822 plain-text message and applies the
// transport encoding Gmail requires: URL-safe base64 without padding.
func encodeMessage(req DraftRequest) string {
	var b strings.Builder

	b.WriteString("To: " + req.Recipient + "\r\n")
	if len(req.CC) > 0 {
		b.WriteString("Cc: " + strings.Join(req.CC, ", ") + "\r\n")
	}
	if len(req.BCC) > 0 {
		b.WriteString("Bcc: " + strings.Join(req.BCC, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + req.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(req.Body)

	return base64.RawURLEncoding.EncodeToString([]byte(b.String()))
}

func mapAPIError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fault.Authf("Gmail API rejected credentials: %v", apiErr)
		case http.StatusTooManyRequests:
			return fault.RateLimitedf("Gmail API rate limit exceeded: %v", apiErr)
		}
	}

	return fault.Upstreamf(err, "drafts.Create failed")
}
