package advisor

import (
	"context"
	"fmt"
	"log"

	"coinsight/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// MarketReader provides the market context the advisor grounds its replies in.
type MarketReader interface {
	GetMarketData(ctx context.Context) *domain.MarketSnapshot
	Recommendations(ctx context.Context, profile domain.RiskProfile) *domain.RecommendationSet
}

// ConversationStore persists and retrieves conversation messages.
type ConversationStore interface {
	AppendMessage(ctx context.Context, chatID int64, role, content string) error
	RecentMessages(ctx context.Context, chatID int64, limit int) ([]domain.ConversationMessage, error)
}

// AdvisorService answers free-form market questions. When no LLM is configured
// or the LLM call fails it degrades to a templated reply built from the
// current recommendation set, so Ask never returns an empty answer.
type AdvisorService struct {
	tracer     trace.Tracer
	llm        LLMClient
	market     MarketReader
	convStore  ConversationStore
	model      string
	maxHistory int
}

func NewAdvisorService(
	tracer trace.Tracer,
	llm LLMClient,
	market MarketReader,
	convStore ConversationStore,
	model string,
	maxHistory int,
) *AdvisorService {
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &AdvisorService{
		tracer:     tracer,
		llm:        llm,
		market:     market,
		convStore:  convStore,
		model:      model,
		maxHistory: maxHistory,
	}
}

func (s *AdvisorService) Ask(ctx context.Context, chatID int64, userMessage string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.ask")
	defer span.End()
	span.SetAttributes(attribute.Int64("chat_id", chatID))

	// 1. Persist the user message
	if s.convStore != nil {
		if err := s.convStore.AppendMessage(ctx, chatID, "user", userMessage); err != nil {
			log.Printf("failed to store user message: %v", err)
		}
	}

	// 2. Extract mentioned symbols for targeted context
	mentionedSymbols := ExtractSymbols(userMessage)

	// 3. Gather market context
	snapshot := s.market.GetMarketData(ctx)
	recs := s.market.Recommendations(ctx, domain.ProfileModerate)

	// 4. No LLM configured: answer from the recommendation set directly
	if s.llm == nil {
		reply := TemplatedReply(recs)
		s.storeReply(ctx, chatID, reply)
		return reply, nil
	}

	// 5. Build system prompt with live data
	systemPrompt := BuildSystemPrompt(FormatMarketContext(snapshot, recs, mentionedSymbols))

	// 6. Load conversation history
	var history []domain.ConversationMessage
	if s.convStore != nil {
		var err error
		history, err = s.convStore.RecentMessages(ctx, chatID, s.maxHistory)
		if err != nil {
			log.Printf("failed to load conversation history: %v", err)
			history = nil
		}
	}

	// 7. Call LLM, degrading to the templated reply on failure
	reply, err := s.callLLM(ctx, s.buildMessages(systemPrompt, userMessage, history))
	if err != nil {
		span.RecordError(err)
		log.Printf("LLM call failed, using templated reply: %v", err)
		reply = TemplatedReply(recs)
	}

	// 8. Persist the assistant reply
	s.storeReply(ctx, chatID, reply)
	return reply, nil
}

func (s *AdvisorService) storeReply(ctx context.Context, chatID int64, reply string) {
	if s.convStore == nil {
		return
	}
	if err := s.convStore.AppendMessage(ctx, chatID, "assistant", reply); err != nil {
		log.Printf("failed to store assistant reply: %v", err)
	}
}

func (s *AdvisorService) buildMessages(
	systemPrompt string,
	userMessage string,
	history []domain.ConversationMessage,
) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)

	// System prompt always first
	messages = append(messages, openai.SystemMessage(systemPrompt))

	// Conversation history (already limited by RecentMessages query)
	for _, msg := range history {
		switch msg.Role {
		case "user":
			messages = append(messages, openai.UserMessage(msg.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}

	// The current question was persisted before the history load, so with a
	// working store it is already the last entry. Without a store, or when
	// the load failed, append it here so the LLM actually sees it.
	if n := len(history); n == 0 || history[n-1].Role != "user" || history[n-1].Content != userMessage {
		messages = append(messages, openai.UserMessage(userMessage))
	}

	return messages
}

func (s *AdvisorService) callLLM(
	ctx context.Context,
	messages []openai.ChatCompletionMessageParamUnion,
) (string, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.llm-call")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", s.model),
		attribute.Int("llm.message_count", len(messages)),
	)

	completion, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	reply := completion.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
