// Package openai provides an oracle backed by the OpenAI Chat Completions
// API. It adapts solvegrid's normalized Request into the SDK's message format
// and extracts the completion text back out.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/solvegrid/solvegrid/oracle"
)

// Options configure the OpenAI oracle adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	MaxCompletionTokens int64
}

// Oracle wraps the OpenAI Chat Completions API behind the generic oracle.Oracle interface.
type Oracle struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI oracle using the official client.
func New(optFns ...func(o *Options)) *Oracle {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI oracle from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Oracle {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Oracle{client: client, opts: opts}
}

// Complete implements oracle.Oracle.
func (o *Oracle) Complete(ctx context.Context, req oracle.Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:               o.opts.Model,
		Temperature:         openai.Float(req.Temperature),
		MaxCompletionTokens: openai.Int(o.opts.MaxCompletionTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", oracle.Classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", oracle.Classify(ctx, fmt.Errorf("empty completion response"))
	}

	return resp.Choices[0].Message.Content, nil
}

// Info returns metadata describing this OpenAI oracle implementation.
func (o *Oracle) Info() oracle.Info {
	return oracle.Info{
		Name:     o.opts.Model,
		Provider: "openai",
	}
}
