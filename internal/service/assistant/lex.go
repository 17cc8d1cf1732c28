package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimev2"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimev2/types"

	"github.com/emmalund/plantwatch/backend/internal/config"
)

const converseTimeout = 10 * time.Second

// LexEngine talks to an AWS Lex v2 bot.
type LexEngine struct {
	client     *lexruntimev2.Client
	botID      string
	botAliasID string
	locale     string
}

// NewLexEngine resolves AWS credentials from the default chain and binds the
// configured bot and alias.
func NewLexEngine(ctx context.Context, awsCfg config.AWSConfig, assistantCfg config.AssistantConfig) (*LexEngine, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &LexEngine{
		client:     lexruntimev2.NewFromConfig(cfg),
		botID:      awsCfg.BotID,
		botAliasID: awsCfg.BotAliasID,
		locale:     assistantCfg.Locale,
	}, nil
}

// Converse sends the text with the session attributes and collects the
// plain-text replies. Engine failures map to the fixed fallback replies.
func (e *LexEngine) Converse(ctx context.Context, sessionID, text string, attrs map[string]string) []string {
	ctx, cancel := context.WithTimeout(ctx, converseTimeout)
	defer cancel()

	out, err := e.client.RecognizeText(ctx, &lexruntimev2.RecognizeTextInput{
		BotId:      aws.String(e.botID),
		BotAliasId: aws.String(e.botAliasID),
		LocaleId:   aws.String(e.locale),
		SessionId:  aws.String(sessionID),
		Text:       aws.String(text),
		SessionState: &types.SessionState{
			SessionAttributes: attrs,
		},
	})
	if err != nil {
		log.Printf("[assistant] lex call failed for session=%s: %v", sessionID, err)
		return []string{classifyLexFailure(err)}
	}

	var replies []string
	for _, msg := range out.Messages {
		if msg.ContentType == types.MessageContentTypePlainText && msg.Content != nil {
			replies = append(replies, *msg.Content)
		}
	}

	if len(replies) == 0 {
		replies = append(replies, ReplyEmpty)
	}
	return replies
}

// classifyLexFailure maps known Lex error categories to their fixed replies.
func classifyLexFailure(err error) string {
	var denied *types.AccessDeniedException
	if errors.As(err, &denied) {
		return ReplyAccessDenied
	}

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return ReplyBotNotFound
	}

	return ReplyGeneric
}
