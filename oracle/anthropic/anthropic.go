// Package anthropic provides an oracle backed by the Anthropic Claude API.
package anthropic

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/solvegrid/solvegrid/oracle"
)

// Options configures the Anthropic oracle adapter (model id, max tokens,
// API key). Extend via functional options to preserve stability.
type Options struct {
	Model     anthropic.Model
	MaxTokens int64
	APIKey    string
}

// Oracle wraps the Anthropic Messages API behind the generic oracle.Oracle interface.
type Oracle struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic oracle using the official client.
func New(optFns ...func(o *Options)) *Oracle {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Oracle{
		client: &client,
		opts:   opts,
	}
}

// NewFromClient creates a new Anthropic oracle from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Oracle {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Oracle{
		client: client,
		opts:   opts,
	}
}

// Complete implements oracle.Oracle. The request temperature overrides the
// provider default; per-call deadlines arrive via ctx.
func (o *Oracle) Complete(ctx context.Context, req oracle.Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       o.opts.Model,
		MaxTokens:   o.opts.MaxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	resp, err := o.client.Messages.New(ctx, params)
	if err != nil {
		return "", oracle.Classify(ctx, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	return sb.String(), nil
}

// Info returns metadata describing this Anthropic oracle implementation.
func (o *Oracle) Info() oracle.Info {
	return oracle.Info{
		Name:     string(o.opts.Model),
		Provider: "anthropic",
	}
}
