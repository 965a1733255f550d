package pipeline

import (
	"context"
	"fmt"
	"strings"

	"pagewright/internal/llm"
	"pagewright/internal/logging"
	"pagewright/internal/plan"
	"pagewright/internal/types"
)

// architect turns the user's request into a normalized plan. This stage is
// deliberately unforgiving: there is no retry, because a request the model
// cannot plan for once will not plan better on resampling, and the loop
// budget belongs to the Builder.
func (o *Orchestrator) architect(ctx context.Context, request, hint string) (*types.Plan, error) {
	timer := logging.StartTimer(logging.CategoryArchitect, "architect stage")
	defer timer.Stop()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Request: %s\n", request)
	if hint != "" {
		sb.WriteString("\n")
		sb.WriteString(hint)
		sb.WriteString("\n")
	}

	response, err := o.client.CompleteWithSystem(ctx, o.prompt(roleArchitect), sb.String())
	if err != nil {
		return nil, fmt.Errorf("architect generation failed: %w", err)
	}

	jsonStr := llm.ExtractJSON(response)
	if jsonStr == "" {
		return nil, fmt.Errorf("architect returned no JSON plan")
	}

	p, err := plan.Parse([]byte(jsonStr))
	if err != nil {
		return nil, fmt.Errorf("architect plan rejected: %w", err)
	}

	if err := o.ensureUniqueSlug(p); err != nil {
		return nil, err
	}

	logging.Architect("planned %s: type=%s pattern=%s files=%v",
		p.Slug, p.ContentType, p.InteractionPattern, p.Files)
	return p, nil
}

// ensureUniqueSlug steers around registry collisions by suffixing the slug.
// File paths derived from the slug are rewritten alongside it.
func (o *Orchestrator) ensureUniqueSlug(p *types.Plan) error {
	if o.slugInUse == nil {
		return nil
	}

	base := p.Slug
	for i := 0; ; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i+1)
		}
		taken, err := o.slugInUse(candidate)
		if err != nil {
			return fmt.Errorf("slug check failed: %w", err)
		}
		if !taken {
			if candidate != p.Slug {
				for j, f := range p.Files {
					p.Files[j] = strings.Replace(f, p.Slug, candidate, 1)
				}
				logging.Architect("slug %s taken, using %s", p.Slug, candidate)
				p.Slug = candidate
			}
			return nil
		}
		if i >= 20 {
			return fmt.Errorf("could not find a free slug for %s", base)
		}
	}
}
