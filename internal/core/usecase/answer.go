package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/matkgb/mat-assistant/internal/core/domain"
	"github.com/matkgb/mat-assistant/internal/core/ports"
)

// FallbackResponse is returned whenever generation fails or produces
// nothing usable.
const FallbackResponse = "I apologize, but I'm having trouble generating a response right now. Please try again."

type AnswerUseCase struct {
	retriever ports.Retriever
	facts     ports.FactStore
	generator ports.Generator
	logger    *slog.Logger

	topK    int
	genOpts domain.GenerationOptions
}

func NewAnswerUseCase(
	retriever ports.Retriever,
	facts ports.FactStore,
	generator ports.Generator,
	logger *slog.Logger,
	topK int,
	genOpts domain.GenerationOptions,
) *AnswerUseCase {
	if topK <= 0 {
		topK = 3
	}
	return &AnswerUseCase{
		retriever: retriever,
		facts:     facts,
		generator: generator,
		logger:    logger,
		topK:      topK,
		genOpts:   genOpts,
	}
}

// Answer runs the full pipeline: retrieve, gather graph facts, compose the
// context, generate, post-process. Runtime failures degrade to a fallback
// response; the only hard error is an unfit index.
func (uc *AnswerUseCase) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	retrieved, err := uc.retriever.Retrieve(question, uc.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve documents: %w", err)
	}

	graphFacts := graphFactsFor(ctx, uc.facts, question, uc.logger)
	composed := composeContext(retrieved, graphFacts)

	response := uc.generate(ctx, question, composed)

	sources := make([]string, 0, len(retrieved))
	for _, res := range retrieved {
		if res.Document.SourceURL != "" {
			sources = append(sources, res.Document.SourceURL)
		}
	}

	return &domain.Answer{
		Response:    response,
		Sources:     sources,
		ContextUsed: !composed.Empty(),
		KGContext:   graphFacts != "",
	}, nil
}

func (uc *AnswerUseCase) generate(ctx context.Context, question string, composed domain.Context) string {
	prompt := buildAnswerPrompt(question, composed.Render())

	raw, err := uc.generator.Generate(ctx, prompt, uc.genOpts)
	if err != nil {
		uc.logger.Error("generation failed", "error", err)
		return FallbackResponse
	}
	// Some models echo the prompt back; keep only the continuation.
	response := postprocessResponse(ExtractAnswerText(raw))
	if response == "" {
		uc.logger.Warn("generator returned empty output")
		return FallbackResponse
	}
	return response
}

func buildAnswerPrompt(question, contextText string) string {
	return fmt.Sprintf("Context: %s\n\nQuestion: %s\n\nAnswer: ", contextText, question)
}

func (uc *AnswerUseCase) Statistics() domain.CollectionStats {
	return uc.retriever.Statistics()
}

func (uc *AnswerUseCase) SystemInfo(ctx context.Context) domain.SystemInfo {
	info := domain.SystemInfo{
		RetrieverFitted: uc.retriever.Fitted(),
		DocumentStats:   uc.retriever.Statistics(),
	}
	if uc.facts != nil {
		info.FactStoreReady = uc.facts.Ready(ctx)
	}
	return info
}

// ExtractAnswerText pulls the generated continuation out of a completion
// that may echo the prompt back.
func ExtractAnswerText(completion string) string {
	const marker = "Answer: "
	if idx := strings.LastIndex(completion, marker); idx >= 0 {
		return strings.TrimSpace(completion[idx+len(marker):])
	}
	return strings.TrimSpace(completion)
}
