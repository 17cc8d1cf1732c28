package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/emmalund/plantwatch/backend/internal/config"
)

const arkSystemPrompt = "You are a plant-health assistant for a crop monitoring dashboard. " +
	"Answer questions about plant disease risk, watering, and care, concisely. " +
	"When the user mentions an uploaded image filename, acknowledge it and describe what you would check."

// ArkEngine generates replies with an Ark chat model through an eino chain.
// Alternative to the Lex engine, selected with ASSISTANT_PROVIDER=ark.
type ArkEngine struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewArkEngine compiles the prompt-template + chat-model chain.
func NewArkEngine(ctx context.Context, cfg config.ArkConfig) (*ArkEngine, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating chat model: %w", err)
	}

	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compiling chat chain: %w", err)
	}

	return &ArkEngine{chain: runnable}, nil
}

// Converse runs one turn, conditioning the system prompt on the session
// attributes. Model failures map to the generic fallback reply.
func (e *ArkEngine) Converse(ctx context.Context, sessionID, text string, attrs map[string]string) []string {
	response, err := e.chain.Invoke(ctx, map[string]any{
		"system": buildArkSystem(attrs),
		"query":  text,
	})
	if err != nil {
		log.Printf("[assistant] ark chain failed for session=%s: %v", sessionID, err)
		return []string{ReplyGeneric}
	}

	content := strings.TrimSpace(response.Content)
	if content == "" {
		return []string{ReplyEmpty}
	}

	log.Printf("[assistant] ark reply for session=%s, length=%d", sessionID, len(content))
	return []string{content}
}

func buildArkSystem(attrs map[string]string) string {
	var builder strings.Builder
	builder.WriteString(arkSystemPrompt)
	if loc := attrs[AttrLocation]; loc != "" {
		builder.WriteString(fmt.Sprintf(" The user's monitored location is %s.", loc))
	}
	return builder.String()
}
