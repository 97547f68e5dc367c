package ai

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Oracle produces raw JSON interpretations of contracts and edit
// instructions. Implementations are untrusted: every response must pass
// ParseExtraction or ParseChatUpdate before any field is used, and financial
// figures are always recomputed server-side.
type Oracle interface {
	ExtractContract(ctx context.Context, contractText string) ([]byte, error)
	InterpretEdit(ctx context.Context, clientJSON []byte, instruction string) ([]byte, error)
}

// OracleConfig configures the OpenAI-backed oracle.
type OracleConfig struct {
	Model       string
	Temperature float32
	MaxRetries  int
}

// OpenAIOracle implements Oracle against the OpenAI chat completion API.
type OpenAIOracle struct {
	client *openai.Client
	config OracleConfig
	log    zerolog.Logger
}

// NewOpenAIOracle builds an oracle from the environment. OPENAI_API_KEY is
// required; OPENAI_MODEL defaults to gpt-4o-mini.
func NewOpenAIOracle(log zerolog.Logger) (*OpenAIOracle, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIOracle{
		client: openai.NewClient(apiKey),
		config: OracleConfig{Model: model, Temperature: 0.1, MaxRetries: 3},
		log:    log,
	}, nil
}

// NewOpenAIOracleWithDeps is the injection point for tests.
func NewOpenAIOracleWithDeps(client *openai.Client, config OracleConfig, log zerolog.Logger) *OpenAIOracle {
	return &OpenAIOracle{client: client, config: config, log: log}
}

const extractSystemPrompt = `You are a contract analyst for a SaaS billing system.
Extract the customer's pricing terms from the contract text and answer with a single JSON object using these keys:
customer_name, pricing_model (per_seat|flat_mrr|one_time_only), per_seat_cost, seat_count, flat_amount, discount_percent, one_time_revenue, billing_frequency (monthly|quarterly|annual|one_time), billing_phases (array of {cycle, duration_months, amount, note}).
Omit keys you cannot determine. Use plain numbers for every amount. Answer with JSON only, no prose.`

const editSystemPrompt = `You are an assistant maintaining client billing records.
Given the current client record and an instruction, answer with a single JSON object:
{"updates": {changed fields only}, "computed_mrr": number, "computed_annual_run_rate": number, "reasoning": string, "clarification_needed": bool, "clarification_question": string}.
MRR formulas: per_seat = per_seat_cost * seat_count * (1 - discount_percent/100); flat_mrr = flat_amount * (1 - discount_percent/100); one_time_only = 0. annual_run_rate = mrr * 12 + one_time_revenue.
If the instruction is ambiguous set clarification_needed and ask one question. Answer with JSON only.`

// ExtractContract asks the model for structured pricing terms. The returned
// bytes are raw and unvalidated.
func (o *OpenAIOracle) ExtractContract(ctx context.Context, contractText string) ([]byte, error) {
	return o.complete(ctx, extractSystemPrompt, contractText)
}

// InterpretEdit asks the model to translate an instruction into a partial
// client update.
func (o *OpenAIOracle) InterpretEdit(ctx context.Context, clientJSON []byte, instruction string) ([]byte, error) {
	user := "Current client record:\n" + string(clientJSON) + "\n\nInstruction:\n" + instruction
	return o.complete(ctx, editSystemPrompt, user)
}

func (o *OpenAIOracle) complete(ctx context.Context, system, user string) ([]byte, error) {
	requestID := uuid.New().String()
	log := o.log.With().Str("request_id", requestID).Str("model", o.config.Model).Logger()

	var lastErr error
	for attempt := 0; attempt <= o.config.MaxRetries; attempt++ {
		resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       o.config.Model,
			Temperature: o.config.Temperature,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
		})
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("oracle completion failed")
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("oracle returned no choices")
			continue
		}
		return []byte(resp.Choices[0].Message.Content), nil
	}
	return nil, fmt.Errorf("oracle completion failed after %d attempts: %w", o.config.MaxRetries+1, lastErr)
}
