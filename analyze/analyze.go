// Package analyze implements stage 3: AI classification against the fixed
// label vocabulary plus academic Chinese translation of title and abstract.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"paperbot/ai"
	"paperbot/config"
	"paperbot/executor"
	"paperbot/types"
)

// maxAbstractChars bounds the abstract passed to the classifier.
const maxAbstractChars = 5000

const systemPromptFormat = `You are an expert scientific editor and translator. Your task is to analyze a research article and provide two pieces of information:
1. Labels: assign 1-3 relevant labels from the provided list. If no labels are relevant, assign ONLY ["Others"].
2. Translation: translate the title and abstract into academic-style Simplified Chinese.

Label list:
%s

Rules:
- Return ONLY valid JSON.
- The JSON output MUST have three keys: "labels", "title_cn", "abstract_cn".`

type analysisResult struct {
	Labels     []string `json:"labels"`
	TitleCN    *string  `json:"title_cn"`
	AbstractCN *string  `json:"abstract_cn"`
}

func systemPrompt() string {
	labels, _ := json.Marshal(config.OfficialLabels)
	return fmt.Sprintf(systemPromptFormat, labels)
}

func userPrompt(article *types.Article) string {
	text := article.Abstract
	if text == "" {
		text = article.Summary
	}
	return fmt.Sprintf("Title: %s\nAbstract: %s\n\nAnalyze and translate now. Return JSON only.",
		article.Title, ai.Truncate(text, maxAbstractChars))
}

// analyzeOne classifies and translates a single article in place. Responses
// missing required keys are retried as validation failures; labels outside
// the official vocabulary are discarded, falling back to ["Others"] when
// none survive.
func analyzeOne(ctx context.Context, article *types.Article, completer ai.Completer, retry executor.Policy) error {
	system := systemPrompt()
	user := userPrompt(article)

	return retry.Do(ctx, "classify", func(ctx context.Context) error {
		content, err := completer.CompleteJSON(ctx, system, user)
		if err != nil {
			return err
		}

		var result analysisResult
		if err := ai.DecodeJSON(content, &result); err != nil {
			return err
		}
		if result.Labels == nil || result.TitleCN == nil || result.AbstractCN == nil {
			return &executor.ValidationError{Reason: "classification response missing required keys"}
		}

		valid := make([]string, 0, len(result.Labels))
		for _, label := range result.Labels {
			if config.IsOfficialLabel(label) {
				valid = append(valid, label)
			}
		}
		if len(valid) == 0 {
			valid = []string{config.OthersLabel}
		}

		article.Labels = valid
		article.TitleCN = *result.TitleCN
		article.AbstractCN = *result.AbstractCN
		return nil
	})
}

// Run classifies and translates the batch under the concurrency cap.
// Articles whose calls exhaust retries are dropped; the batch completes
// regardless.
func Run(ctx context.Context, articles []*types.Article, completer ai.Completer, retry executor.Policy, concurrency int, reporter executor.ProgressReporter) []*types.Article {
	results := executor.Map(ctx, articles, concurrency, reporter, func(ctx context.Context, article *types.Article) (*types.Article, error) {
		if err := analyzeOne(ctx, article, completer, retry); err != nil {
			slog.Warn("classification failed", "title", article.Title, "error", err)
			return nil, err
		}
		return article, nil
	})

	analyzed := make([]*types.Article, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			analyzed = append(analyzed, res.Value)
		}
	}
	slog.Info("analysis complete", "attempted", len(articles), "succeeded", len(analyzed))
	return analyzed
}
