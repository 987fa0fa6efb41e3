package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/finaflow/finaflow/internal/models"
	"github.com/finaflow/finaflow/internal/policy"
)

// personaGuidance is the per-persona instruction block. The widget rules are
// the contract the generator is graded against: suppression is as important
// as generation.
var personaGuidance = map[models.Persona]string{
	models.PersonaRelaxed: `VISUAL METAPHOR: health and wellbeing (anxiety reduction).
DATA FORMAT: rounded, no decimals, grouped, qualitative.
AVOID: long transaction lists, negative signs, exact amounts, non-critical alerts.
PREFER: natural language ("a bit more than usual", "you're doing fine"); group similar transactions.
- "summary" is the hero: no big numbers, the sentiment carries the message.
- "chart": at most 3-4 segments, group small categories into "Other".
- "budget": one unified view, soft wording.
- "transactions" and "alerts": keep minimal; they are filtered from display.`,
	models.PersonaAuditor: `VISUAL METAPHOR: command center / terminal (full control).
DATA FORMAT: exact with cents, chronological, complete dates.
AVOID: rounding, vague language, emojis, hidden detail.
PREFER: IDs, exact percentages, every available transaction.
- "transactions" is the hero: the complete list, ordered by date descending.
- "budget": one entry per category with exact values, over-budget shown as-is.
- "chart": every category, no grouping.
- "summary": hard KPIs only, no narrative.
- "alerts": technical log style with exact figures.`,
	models.PersonaSpender: `VISUAL METAPHOR: gamification (motivation towards goals).
DATA FORMAT: relative to targets, forward-looking, opportunity cost.
AVOID: dwelling on the past, generic reassurance, dense tables.
PREFER: impact statements ("this purchase set your goal back"), progress framing.
- "budget" is the hero: progress towards goals, not limits.
- "summary": cause-and-effect coaching.
- "alerts": insights and opportunities, not errors.
- "transactions" and "chart": keep minimal; they are filtered from display.`,
}

// BuildInstructions renders the persona policy and the complete raw
// financial records into the instruction payload for the generator. It is a
// pure function: identical inputs produce byte-identical instructions.
func BuildInstructions(profile *models.UserProfile, rec policy.Record, transactions []models.Transaction, budgets []models.Budget) (string, error) {
	txJSON, err := json.MarshalIndent(transactions, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal transactions: %w", err)
	}
	budgetJSON, err := json.MarshalIndent(budgets, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal budgets: %w", err)
	}

	var sb strings.Builder

	sb.WriteString("You are the generative dashboard engine of FinaFlow. You produce not just data but the correct visual representation for the user's archetype.\n\n")

	fmt.Fprintf(&sb, "# USER PROFILE: %s\n", profile.Name)
	fmt.Fprintf(&sb, "## ARCHETYPE: %s\n\n", strings.ToUpper(string(profile.Persona)))

	if guidance, ok := personaGuidance[profile.Persona]; ok {
		sb.WriteString(guidance)
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, "TONE: %s\n", rec.FormatRules.ToneDescriptor)
	fmt.Fprintf(&sb, "ROUNDING PRECISION: %d decimal places\n\n", rec.FormatRules.RoundingPrecision)

	sb.WriteString("# ACTIVE WIDGETS (display order)\n")
	for i, w := range profile.DashboardConfig.ActiveWidgets {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, w)
	}
	sb.WriteString("\n")

	if len(rec.FormatRules.SuppressWidgets) > 0 {
		sb.WriteString("# SUPPRESSED WIDGETS (never shown to this user)\n")
		for _, w := range rec.FormatRules.SuppressWidgets {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "# TRANSACTIONS (all %d records)\n%s\n\n", len(transactions), txJSON)
	fmt.Fprintf(&sb, "# BUDGETS (all %d records)\n%s\n\n", len(budgets), budgetJSON)

	sb.WriteString("# TASK\n")
	sb.WriteString("Analyze the financial data and generate content adapted to the archetype. ")
	sb.WriteString("Do not invent financial facts: every figure must be derivable from the records above. ")
	sb.WriteString("Generate every widget (summary, transactions, chart, budget, alerts); the server filters what is displayed.\n")

	return sb.String(), nil
}
