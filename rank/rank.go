// Package rank implements stage 4: grouping analyzed articles by label,
// scoring each group and truncating to the per-label report limit.
package rank

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"paperbot/ai"
	"paperbot/config"
	"paperbot/executor"
	"paperbot/types"
)

// maxAbstractChars bounds the abstract passed to the relevance scorer.
const maxAbstractChars = 2000

const scoreSystemPromptFormat = `You are an expert scientist specializing in %s.
On a scale of 1 to 10, how RELEVANT is this article to your field?
- 1 = irrelevant or minor mention.
- 5 = relevant, but standard work.
- 10 = a "must-read" breakthrough paper for this specific field.

Analyze the title and abstract, then return ONLY valid JSON with a single key: "relevance_score".`

type relevanceResult struct {
	RelevanceScore *int `json:"relevance_score"`
}

// ReporterFactory creates a progress reporter for one label's scoring
// batch. May be nil for silent operation.
type ReporterFactory func(total int, label string) executor.ProgressReporter

// Run groups the record set by label and produces the ranked output. Every
// article is copied into each of its label groups, so scoring one group
// never mutates another. The catch-all label is excluded entirely. Groups
// at or under the report limit skip AI scoring: priority is the journal
// weight alone. Larger groups get one bounded-concurrency scoring call per
// article, with journal-weight fallback when a call exhausts its retries.
func Run(ctx context.Context, articles []*types.Article, completer ai.Completer, retry executor.Policy, concurrency int, reporters ReporterFactory) types.RankedSet {
	groups := groupByLabel(articles)
	slog.Info("grouped articles", "articles", len(articles), "labels", len(groups))

	ranked := make(types.RankedSet, len(groups))
	for label, group := range groups {
		if label == config.OthersLabel {
			continue
		}

		if len(group) <= config.ReportLimit {
			slog.Debug("skipping AI scoring", "label", label, "count", len(group))
			for _, article := range group {
				article.PriorityScore = config.JournalWeight(article.Journal)
				article.AIRelevance = types.RelevanceSkipped
			}
		} else {
			var reporter executor.ProgressReporter
			if reporters != nil {
				reporter = reporters(len(group), label)
			}
			scoreGroup(ctx, label, group, completer, retry, concurrency, reporter)
		}

		sortByPriority(group)
		if len(group) > config.ReportLimit {
			group = group[:config.ReportLimit]
		}
		ranked[label] = group
		slog.Debug("label ranked", "label", label, "kept", len(ranked[label]))
	}

	return ranked
}

// groupByLabel copies every article into the group of each label it
// carries.
func groupByLabel(articles []*types.Article) map[string][]*types.Article {
	groups := make(map[string][]*types.Article)
	for _, article := range articles {
		labels := article.Labels
		if len(labels) == 0 {
			labels = []string{config.OthersLabel}
		}
		for _, label := range labels {
			groups[label] = append(groups[label], article.Clone())
		}
	}
	return groups
}

// scoreGroup issues one relevance call per article. Scoring failure is not
// exclusion: an article whose call fails keeps its journal weight as the
// priority and is marked as failed.
func scoreGroup(ctx context.Context, label string, group []*types.Article, completer ai.Completer, retry executor.Policy, concurrency int, reporter executor.ProgressReporter) {
	system := fmt.Sprintf(scoreSystemPromptFormat, label)

	executor.Map(ctx, group, concurrency, reporter, func(ctx context.Context, article *types.Article) (struct{}, error) {
		weight := config.JournalWeight(article.Journal)

		score, err := scoreOne(ctx, article, label, system, completer, retry)
		if err != nil {
			slog.Warn("relevance scoring failed", "label", label, "title", article.Title, "error", err)
			article.PriorityScore = weight
			article.AIRelevance = types.RelevanceFailed
			return struct{}{}, nil
		}

		article.PriorityScore = float64(score) * weight
		article.AIRelevance = score
		return struct{}{}, nil
	})
}

func scoreOne(ctx context.Context, article *types.Article, label, system string, completer ai.Completer, retry executor.Policy) (int, error) {
	user := fmt.Sprintf("Title: %s\nAbstract: %s\n\nScore this article's relevance for %s (1-10). JSON only.",
		article.Title, ai.Truncate(article.Abstract, maxAbstractChars), label)

	var score int
	err := retry.Do(ctx, "score", func(ctx context.Context) error {
		content, err := completer.CompleteJSON(ctx, system, user)
		if err != nil {
			return err
		}
		var result relevanceResult
		if err := ai.DecodeJSON(content, &result); err != nil {
			return err
		}
		if result.RelevanceScore == nil {
			return &executor.ValidationError{Reason: "relevance_score missing"}
		}
		if *result.RelevanceScore < 1 || *result.RelevanceScore > 10 {
			return &executor.ValidationError{Reason: fmt.Sprintf("relevance_score %d out of range", *result.RelevanceScore)}
		}
		score = *result.RelevanceScore
		return nil
	})
	return score, err
}

// sortByPriority orders a group highest priority first. The sort is stable
// so equal scores keep their original relative order.
func sortByPriority(group []*types.Article) {
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].PriorityScore > group[j].PriorityScore
	})
}
