package mcptool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/research-mail/internal/gmail"
)

type CreateDraftRequest struct {
	Recipient string   `json:"recipient" jsonschema:"recipient email address"`
	Subject   string   `json:"subject" jsonschema:"email subject line"`
	Body      string   `json:"body" jsonschema:"complete email body"`
	CC        []string `json:"cc,omitempty" jsonschema:"optional CC addresses"`
	BCC       []string `json:"bcc,omitempty" jsonschema:"optional BCC addresses"`
}

type CreateDraftResponse struct {
	DraftID   string `json:"draft_id" jsonschema:"ID of the created draft"`
	MessageID string `json:"message_id" jsonschema:"ID of the draft message"`
	ThreadID  string `json:"thread_id,omitempty" jsonschema:"thread the draft belongs to"`
}

type createDraftSvc interface {
	CreateDraft(ctx context.Context, credentialsPath, tokenPath string, req gmail.DraftRequest) (gmail.DraftResult, error)
}

func NewCreateDraft(svc createDraftSvc, credentialsPath, tokenPath string) *CreateDraft {
	return &CreateDraft{
		svc:             svc,
		credentialsPath: credentialsPath,
		tokenPath:       tokenPath,
	}
}

type CreateDraft struct {
	svc             createDraftSvc
	credentialsPath string
	tokenPath       string
}

func (t *CreateDraft) CreateDraft(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CreateDraftRequest,
) (*mcp.CallToolResult, CreateDraftResponse, error) {
	result, err := t.svc.CreateDraft(ctx, t.credentialsPath, t.tokenPath, gmail.DraftRequest{
		Recipient: input.Recipient,
		Subject:   input.Subject,
		Body:      input.Body,
		CC:        input.CC,
		BCC:       input.BCC,
	})
	if err != nil {
		return nil, CreateDraftResponse{}, fmt.Errorf("svc.CreateDraft failed: %w", err)
	}

	return nil, CreateDraftResponse{
		DraftID:   result.DraftID,
		MessageID: result.MessageID,
		ThreadID:  result.ThreadID,
	}, nil
}
