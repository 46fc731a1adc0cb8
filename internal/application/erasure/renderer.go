package erasure

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var reportMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// RenderMarkdown formats a report as a human-readable markdown document.
func RenderMarkdown(r *SubjectReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data Subject Access Report\n\n")
	fmt.Fprintf(&b, "- Report ID: `%s`\n", r.ReportID)
	fmt.Fprintf(&b, "- Subject: `%s`\n", r.SubjectSID)
	fmt.Fprintf(&b, "- Generated: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(&b, "## Profile\n\n")
	fmt.Fprintf(&b, "| Attribute | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Specialty | %s |\n", r.Profile.Specialty)
	fmt.Fprintf(&b, "| Influence tier | %s |\n", r.Profile.InfluenceTier)
	fmt.Fprintf(&b, "| Years of practice | %d |\n", r.Profile.YearsOfPractice)
	fmt.Fprintf(&b, "| Active | %t |\n", r.Profile.IsActive)
	fmt.Fprintf(&b, "| Anonymized | %t |\n", r.Profile.IsAnonymized)
	fmt.Fprintf(&b, "| First name on file | %t |\n", r.Profile.HasFirstName)
	fmt.Fprintf(&b, "| Last name on file | %t |\n", r.Profile.HasLastName)
	fmt.Fprintf(&b, "| Email on file | %t |\n", r.Profile.HasEmail)
	fmt.Fprintf(&b, "| Phone on file | %t |\n\n", r.Profile.HasPhone)

	fmt.Fprintf(&b, "## Consent history (%d records)\n\n", len(r.ConsentHistory))
	if len(r.ConsentHistory) > 0 {
		fmt.Fprintf(&b, "| Recorded | Channel | Status | Source |\n|---|---|---|---|\n")
		for _, c := range r.ConsentHistory {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				c.RecordedAt.Format("2006-01-02 15:04"), c.Channel, c.Status, c.Source)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Interactions (%d records)\n\n", len(r.Interactions))
	if len(r.Interactions) > 0 {
		fmt.Fprintf(&b, "| ID | Channel | Status | Occurred |\n|---|---|---|---|\n")
		for _, i := range r.Interactions {
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
				i.ID, i.Channel, i.Status, i.OccurredAt.Format("2006-01-02 15:04"))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## AI decisions (%d records)\n\n", len(r.AIDecisions))
	if len(r.AIDecisions) > 0 {
		fmt.Fprintf(&b, "| Decided | Model | Factors |\n|---|---|---|\n")
		for _, d := range r.AIDecisions {
			fmt.Fprintf(&b, "| %s | %s | %s |\n",
				d.DecidedAt.Format("2006-01-02 15:04"), d.Model, d.Factors)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Access and change log (%d entries)\n\n", len(r.AuditLog))
	if len(r.AuditLog) > 0 {
		fmt.Fprintf(&b, "| When | Action | Actor |\n|---|---|---|\n")
		for _, e := range r.AuditLog {
			actor := "system"
			if e.ActorID != nil {
				actor = fmt.Sprintf("user %d", *e.ActorID)
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n",
				e.CreatedAt.Format("2006-01-02 15:04"), e.Action, actor)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderHTML converts the markdown rendering to HTML for delivery to the
// data subject.
func RenderHTML(r *SubjectReport) (string, error) {
	var out bytes.Buffer
	if err := reportMarkdown.Convert([]byte(RenderMarkdown(r)), &out); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out.String(), nil
}
