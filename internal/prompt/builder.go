// Package prompt renders aggregate contexts into model prompts. Every
// renderer is pure: same context and question in, same prompt out. The
// instruction blocks are contract text for the downstream model, not
// decoration.
package prompt

import (
	"fmt"
	"strings"

	"github.com/cageside/picks-cli/internal/model"
)

const assistantName = "CagesidePicks"

const (
	maxInsideDistanceFights = 10
	maxUnderdogFights       = 8
	maxSideTags             = 5
	maxSideRationales       = 2
	maxNamedAnalysts        = 3
	maxRationaleChars       = 200
)

// FightAnalysis renders the fight_specific prompt.
func FightAnalysis(ctx *model.FightAnalysis, question string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are %s, an AI that synthesizes MMA analyst predictions.

USER QUESTION: %s

FIGHT CONTEXT:
Event: %s
Fight: %s vs %s

PREDICTION SUMMARY:
- Total analysts: %d
- Picking %s: %d analysts
- Picking %s: %d analysts
`,
		assistantName, question,
		ctx.Fight.EventName,
		ctx.Fight.FighterA, ctx.Fight.FighterB,
		ctx.Summary.TotalPredictions,
		ctx.Fight.FighterA, ctx.Summary.PicksForA,
		ctx.Fight.FighterB, ctx.Summary.PicksForB,
	)

	sides := []struct {
		fighter string
		side    model.SideContext
	}{
		{ctx.Fight.FighterA, ctx.FighterA},
		{ctx.Fight.FighterB, ctx.FighterB},
	}
	for _, s := range sides {
		if len(s.side.TopTags) > 0 {
			fmt.Fprintf(&b, "\nKEY FACTORS FOR %s:\n", strings.ToUpper(s.fighter))
			for _, t := range capTags(s.side.TopTags, maxSideTags) {
				fmt.Fprintf(&b, "- %s: mentioned by %d analysts\n", humanizeTag(t.Tag), t.Count)
			}
		}
		if len(s.side.Methods) > 0 {
			fmt.Fprintf(&b, "Expected methods: %s\n", joinMethodCounts(s.side.Methods))
		}
		if len(s.side.ExampleRationales) > 0 {
			fmt.Fprintf(&b, "\nExample analyst reasoning for %s:\n", s.fighter)
			for i, note := range capStrings(s.side.ExampleRationales, maxSideRationales) {
				fmt.Fprintf(&b, "%d. %s...\n", i+1, truncate(note, maxRationaleChars))
			}
		}
	}

	if ctx.Analysts.RevealNames {
		b.WriteString("\nTOP ANALYSTS:\n")
		fmt.Fprintf(&b, "For %s: %s\n", ctx.Fight.FighterA,
			strings.Join(capStrings(ctx.Analysts.TopAnalystsA, maxNamedAnalysts), ", "))
		fmt.Fprintf(&b, "For %s: %s\n", ctx.Fight.FighterB,
			strings.Join(capStrings(ctx.Analysts.TopAnalystsB, maxNamedAnalysts), ", "))
	} else {
		fmt.Fprintf(&b, "\n- %d analysts picked %s\n- %d analysts picked %s\n",
			ctx.Analysts.CountA, ctx.Fight.FighterA,
			ctx.Analysts.CountB, ctx.Fight.FighterB,
		)
	}

	b.WriteString(`
INSTRUCTIONS:
1. Answer the user's question based on the consensus and reasoning above
2. Focus on WHY analysts favor each fighter, not just the numbers
3. Mention specific context tags and analyst reasoning
4. If asked about methods, reference the expected finish types
5. Keep response conversational and insightful (2-4 paragraphs)

RESPONSE:
`)
	return b.String()
}

// InsideDistance renders the inside_distance prompt.
func InsideDistance(ctx *model.InsideDistance, question string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are %s, an AI that synthesizes MMA analyst predictions.

USER QUESTION: %s

EVENT: %s

FIGHTERS MOST LIKELY TO WIN INSIDE THE DISTANCE (KO/TKO/SUB):
`, assistantName, question, ctx.Event)

	if len(ctx.Picks) == 0 {
		b.WriteString("\nNo fighters have significant finish predictions for this event.\n")
	} else {
		picks := ctx.Picks
		if len(picks) > maxInsideDistanceFights {
			picks = picks[:maxInsideDistanceFights]
		}
		for i, pick := range picks {
			fmt.Fprintf(&b, "\n%d. %s (%s)\n   - %d analysts predict finish\n   - Methods: %s\n",
				i+1, pick.FavoredFighter, pick.Fight,
				pick.FinishPredictionCount,
				joinMethodCounts(countMethods(pick.Methods)),
			)
		}
	}

	b.WriteString(`
INSTRUCTIONS:
1. Answer the user's question about which fighters are most likely to win inside the distance
2. Focus on the fighters with the most finish predictions
3. Mention the expected methods (KO, TKO, SUB)
4. Keep response conversational and actionable (2-3 paragraphs)

RESPONSE:
`)
	return b.String()
}

// ConsensusPicks renders the consensus_picks prompt.
func ConsensusPicks(ctx *model.EventConsensus, question string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are %s, an AI that synthesizes MMA analyst predictions.

USER QUESTION: %s

EVENT: %s

CONSENSUS PICKS (sorted by strength):
`, assistantName, question, ctx.Event)

	for i, pick := range ctx.Picks {
		other := pick.FighterB
		if pick.ConsensusFighter == pick.FighterB {
			other = pick.FighterA
		}
		fmt.Fprintf(&b, "\n%d. %s over %s\n   - Consensus: %d-%d (%.1f%%)\n",
			i+1, pick.ConsensusFighter, other,
			pick.ConsensusCount, pick.OpposingCount, pick.ConsensusPercentage,
		)
	}

	b.WriteString(`
INSTRUCTIONS:
1. Answer the user's question about consensus picks
2. Focus on the strongest consensus picks (highest percentages)
3. Highlight interesting patterns or contrarian fights
4. Keep response conversational and actionable (2-3 paragraphs)

RESPONSE:
`)
	return b.String()
}

// Underdogs renders the underdogs prompt.
func Underdogs(ctx *model.EventUnderdogs, question string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are %s, an AI that synthesizes MMA analyst predictions.

USER QUESTION: %s

EVENT: %s

BEST UNDERDOG PICKS (sorted by value):
`, assistantName, question, ctx.Event)

	if len(ctx.Picks) == 0 {
		b.WriteString("\nNo clear underdog opportunities identified for this event.\n")
	} else {
		picks := ctx.Picks
		if len(picks) > maxUnderdogFights {
			picks = picks[:maxUnderdogFights]
		}
		for i, pick := range picks {
			fmt.Fprintf(&b, "\n%d. %s (%s)\n   - Underdog pick: %d-%d (%.0f%%)\n",
				i+1, pick.Underdog, pick.Fight,
				pick.UnderdogCount, pick.FavoriteCount, pick.UnderdogPercentage,
			)
			if len(pick.TopTags) > 0 {
				tags := make([]string, len(pick.TopTags))
				for j, t := range pick.TopTags {
					tags[j] = humanizeTag(t.Tag)
				}
				fmt.Fprintf(&b, "   - Key factors: %s\n", strings.Join(tags, ", "))
			}
			if len(pick.Backers) > 0 {
				names := make([]string, 0, maxNamedAnalysts)
				for _, backer := range pick.Backers {
					names = append(names, backer.Name)
					if len(names) == maxNamedAnalysts {
						break
					}
				}
				fmt.Fprintf(&b, "   - Backed by: %s\n", strings.Join(names, ", "))
			}
		}
	}

	b.WriteString(`
INSTRUCTIONS:
1. Answer the user's question about underdog picks
2. Explain why these underdogs have potential despite being less popular picks
3. Keep response conversational and actionable (2-3 paragraphs)

RESPONSE:
`)
	return b.String()
}

// General renders the fallback prompt for questions no intent matched.
func General(question string) string {
	return fmt.Sprintf(`You are %s, an AI assistant for MMA predictions.

The user asked: %s

This appears to be a general question. Respond helpfully and direct them to ask about
specific fights or events if appropriate. You can answer questions about:
- Specific fights ("who will win Jones vs Miocic?")
- Consensus picks ("what are the top picks for UFC 309?")
- Finish predictions ("who is likely to win inside the distance?")
- Underdogs ("best underdog picks for UFC Vegas 100?")

RESPONSE:
`, assistantName, question)
}

// helpers

func humanizeTag(tag string) string {
	return strings.ReplaceAll(tag, "_", " ")
}

func joinMethodCounts(methods []model.MethodCount) string {
	parts := make([]string, len(methods))
	for i, m := range methods {
		parts[i] = fmt.Sprintf("%s (%d)", m.Method, m.Count)
	}
	return strings.Join(parts, ", ")
}

// countMethods tallies a per-pick method list in first-encountered order.
func countMethods(methods []string) []model.MethodCount {
	idx := map[string]int{}
	var counts []model.MethodCount
	for _, m := range methods {
		if i, ok := idx[m]; ok {
			counts[i].Count++
			continue
		}
		idx[m] = len(counts)
		counts = append(counts, model.MethodCount{Method: m, Count: 1})
	}
	return counts
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func capTags(tags []model.TagCount, n int) []model.TagCount {
	if len(tags) > n {
		return tags[:n]
	}
	return tags
}

func capStrings(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
