package assistant

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/lexruntimev2/types"
)

func TestClassifyLexFailureAccessDenied(t *testing.T) {
	err := fmt.Errorf("operation error: %w", &types.AccessDeniedException{})
	if got := classifyLexFailure(err); got != ReplyAccessDenied {
		t.Fatalf("classify = %q, want access-denied reply", got)
	}
}

func TestClassifyLexFailureBotNotFound(t *testing.T) {
	err := fmt.Errorf("operation error: %w", &types.ResourceNotFoundException{})
	if got := classifyLexFailure(err); got != ReplyBotNotFound {
		t.Fatalf("classify = %q, want bot-not-found reply", got)
	}
}

func TestClassifyLexFailureGeneric(t *testing.T) {
	if got := classifyLexFailure(errors.New("connection reset")); got != ReplyGeneric {
		t.Fatalf("classify = %q, want generic reply", got)
	}
}
