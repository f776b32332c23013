package feedback

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"gradeflow/internal/config"
)

// systemPrompt frames the model as a grader that distinguishes genuine
// student errors from text-extraction artifacts.
const systemPrompt = "You are a teaching assistant who carefully distinguishes between genuine student errors and text extraction artifacts."

// userPromptFormat carries the task instructions and the extracted
// document text. Extraction output is noisy (broken words, stray spaces),
// so the prompt forbids penalizing anything that looks like an artifact,
// and forbids grammar corrections and em/en dashes in the reply.
const userPromptFormat = `You are reviewing a student assignment. The text below was extracted from a PDF or Word document.

The extracted text contains decoding artifacts such as extra spaces inside words, broken words, and missing spaces. These are technical artifacts, not student mistakes. Do not mention, reference, or penalize any spacing or word-breaking issue.

Do not point out or correct grammar or spelling. Focus on the content and ideas only.

Do not use em dashes or en dashes. Use regular hyphens, parentheses, or commas instead.

Focus only on the actual content and ideas, whether the assignment meets the objectives, the quality and originality of the work, and whether the required elements are present.

Review the following student assignment and provide short feedback using simple language based on these instructions:

%s

Student's text:
%s`

// Model wraps a langchaingo LLM for feedback generation.
type Model struct {
	llm       llms.Model
	modelName string
}

// NewModel creates an LLM model based on configuration.
func NewModel(ctx context.Context, cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		model, err = bedrock.New(
			bedrock.WithClient(client),
			bedrock.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
	}, nil
}

// Feedback generates raw feedback for one document. The instruction
// payload is an opaque document passed into the prompt unmodified.
func (m *Model) Feedback(ctx context.Context, text string, instructions []byte) (string, error) {
	userPrompt := fmt.Sprintf(userPromptFormat, instructions, text)

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate feedback: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return response.Choices[0].Content, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}
