package chat

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/saudedigital/saude/internal/facilities"
	"github.com/saudedigital/saude/internal/triage"
)

// finderPath is where facility-finder actions link to in transcripts.
const finderPath = "/api/facilities/nearest"

// Transcript renders messages as Markdown, one section per message.
func Transcript(msgs []Message) string {
	var sb strings.Builder
	sb.WriteString("# Atendimento de emergência\n")

	for _, m := range msgs {
		sb.WriteString("\n")
		ts := m.Timestamp.Format("02/01/2006 15:04:05")
		switch m.Sender {
		case SenderUser:
			fmt.Fprintf(&sb, "**Você** · %s\n\n", ts)
			for _, line := range strings.Split(m.Text, "\n") {
				sb.WriteString("> " + line + "\n")
			}
		default:
			fmt.Fprintf(&sb, "**Assistente** · %s", ts)
			if m.Tier != nil {
				fmt.Fprintf(&sb, " · _%s_", m.Tier)
			}
			sb.WriteString("\n\n" + m.Text + "\n")
			if len(m.Actions) > 0 {
				sb.WriteString("\n")
				for _, a := range m.Actions {
					sb.WriteString("- " + actionLink(a) + "\n")
				}
			}
		}
	}
	return sb.String()
}

func actionLink(a triage.Action) string {
	switch a.Effect {
	case triage.EffectDial:
		return fmt.Sprintf("[%s](%s)", a.Label, facilities.TelURL(a.Target))
	case triage.EffectOpenFacilityFinder:
		return fmt.Sprintf("[%s](%s)", a.Label, finderPath)
	}
	return a.Label
}

// RenderHTML converts a Markdown transcript to HTML. Raw HTML in the
// source is not passed through.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering transcript: %w", err)
	}
	return buf.String(), nil
}
