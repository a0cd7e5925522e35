package triage

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func defaultEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(nil, Folder{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestClassify(t *testing.T) {
	e := defaultEngine(t)

	tests := []struct {
		name string
		text string
		want Tier
	}{
		{"empty", "", TierLow},
		{"whitespace", "   ", TierLow},
		{"no trigger", "olá, bom dia", TierLow},
		{"critical", "acho que é um infarto", TierCritical},
		{"critical beats medium", "tive um infarto e estou com dor de cabeça", TierCritical},
		{"critical upper case", "ELE NÃO RESPIRA", TierCritical},
		{"critical multiword", "sangramento grave na perna", TierCritical},
		{"high", "Estou com dor no peito", TierHigh},
		{"high beats medium", "tontura e náusea", TierHigh},
		{"medium headache", "estou com dor de cabeça", TierMedium},
		{"medium generic", "sinto muito cansaço", TierMedium},
		{"substring inside word", "doravante", TierMedium},
		{"low consultation", "Quero saber sobre consulta", TierLow},
		{"low medication", "tenho uma dúvida sobre medicamento", TierLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyCriticalRegardlessOfLowerTiers(t *testing.T) {
	e := defaultEngine(t)
	lower := []string{"dor no peito", "febre alta", "dor de cabeça", "náusea", "consulta", "medicamento"}
	for _, trigger := range DefaultLexicon().Triggers(TierCritical) {
		for _, extra := range lower {
			text := extra + " e " + trigger
			if got := e.Classify(text); got != TierCritical {
				t.Errorf("Classify(%q) = %s, want critical", text, got)
			}
		}
	}
}

func TestExplain(t *testing.T) {
	e := defaultEngine(t)

	m := e.Explain("dor intensa no peito")
	if m.Tier != TierHigh || m.Trigger != "dor intensa" {
		t.Errorf("Explain = %+v, want high/dor intensa", m)
	}

	m = e.Explain("bom dia")
	if m.Tier != TierLow || m.Trigger != "" {
		t.Errorf("Explain fallback = %+v, want low with no trigger", m)
	}
}

func TestFolding(t *testing.T) {
	decomposed := "na\u0303o respira"

	e := defaultEngine(t)
	if got := e.Classify(decomposed); got != TierCritical {
		t.Errorf("decomposed input: got %s, want critical", got)
	}
	if got := e.Classify("nao respira"); got != TierLow {
		t.Errorf("unaccented input without accent folding: got %s, want low", got)
	}

	stripped, err := NewEngine(nil, Folder{StripAccents: true})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if got := stripped.Classify("nao respira"); got != TierCritical {
		t.Errorf("unaccented input with accent folding: got %s, want critical", got)
	}
	if got := stripped.Classify("VOMITO"); got != TierHigh {
		t.Errorf("VOMITO with accent folding: got %s, want high", got)
	}
}

func TestRespondUrgentTiers(t *testing.T) {
	e := defaultEngine(t)

	for _, tier := range []Tier{TierCritical, TierHigh} {
		resp := e.Respond("qualquer coisa", tier)
		if resp.Message == "" {
			t.Errorf("%s: empty message", tier)
		}
		if len(resp.Actions) != 2 {
			t.Errorf("%s: got %d actions, want 2", tier, len(resp.Actions))
		}
		if resp.Alert == "" {
			t.Errorf("%s: expected alert text", tier)
		}
		if resp.Tier != tier {
			t.Errorf("Tier = %s, want %s", resp.Tier, tier)
		}
	}

	crit := e.Respond("infarto", TierCritical)
	if crit.Actions[0].Effect != EffectDial || crit.Actions[0].Target != "192" {
		t.Errorf("critical first action = %+v, want dial 192", crit.Actions[0])
	}
	if crit.Actions[1].Effect != EffectOpenFacilityFinder {
		t.Errorf("critical second action = %+v, want facility finder", crit.Actions[1])
	}

	high := e.Respond("dor no peito", TierHigh)
	if high.Actions[0].Effect != EffectOpenFacilityFinder {
		t.Errorf("high first action = %+v, want facility finder", high.Actions[0])
	}
	if high.Actions[1].Target != DefaultNumbers.CareLine {
		t.Errorf("high dial target = %q, want %q", high.Actions[1].Target, DefaultNumbers.CareLine)
	}
}

func TestRespondMedium(t *testing.T) {
	e := defaultEngine(t)

	headache := e.Respond("Estou com DOR DE CABEÇA", TierMedium)
	if !strings.HasPrefix(headache.Message, "Dor de cabeça pode ter várias causas") {
		t.Errorf("headache message = %q", headache.Message)
	}
	if len(headache.Actions) != 0 {
		t.Errorf("medium should carry no actions, got %d", len(headache.Actions))
	}

	generic := e.Respond("muito cansaço", TierMedium)
	if !strings.HasPrefix(generic.Message, "Entendo sua preocupação") {
		t.Errorf("generic medium message = %q", generic.Message)
	}
}

func TestRespondLow(t *testing.T) {
	e := defaultEngine(t)

	tests := []struct {
		text   string
		prefix string
	}{
		{"medicamento ou consulta?", "Para dúvidas sobre medicamentos"},
		{"consulta e medicamento", "Para dúvidas sobre medicamentos"},
		{"Quero saber sobre consulta", "Posso ajudá-lo a encontrar estabelecimentos de saúde para agendar consultas"},
		{"oi", "Obrigado por entrar em contato"},
	}
	for _, tt := range tests {
		resp := e.Respond(tt.text, TierLow)
		if !strings.HasPrefix(resp.Message, tt.prefix) {
			t.Errorf("Respond(%q, low) = %q, want prefix %q", tt.text, resp.Message, tt.prefix)
		}
		if resp.Actions != nil {
			t.Errorf("Respond(%q, low) has actions", tt.text)
		}
		if resp.Alert != "" {
			t.Errorf("Respond(%q, low) has alert %q", tt.text, resp.Alert)
		}
	}
}

func TestEvaluateScenarios(t *testing.T) {
	e := defaultEngine(t)

	r := e.Evaluate("Estou com dor no peito")
	if r.Match.Tier != TierHigh {
		t.Fatalf("tier = %s, want high", r.Match.Tier)
	}
	if !strings.Contains(r.Response.Message, "atenção médica urgente") {
		t.Errorf("message = %q", r.Response.Message)
	}
	if len(r.Response.Actions) != 2 {
		t.Errorf("actions = %d, want 2", len(r.Response.Actions))
	}

	r = e.Evaluate("Quero saber sobre consulta")
	if r.Match.Tier != TierLow {
		t.Fatalf("tier = %s, want low", r.Match.Tier)
	}
	if !strings.Contains(r.Response.Message, "agendar consultas") {
		t.Errorf("message = %q", r.Response.Message)
	}
}

func TestRespondReturnsCopies(t *testing.T) {
	e := defaultEngine(t)
	a := e.Respond("x", TierCritical)
	a.Actions[0].Label = "mutated"
	b := e.Respond("x", TierCritical)
	if b.Actions[0].Label == "mutated" {
		t.Error("Respond shares action slices between calls")
	}
}

func TestCustomNumbers(t *testing.T) {
	e, err := NewEngine(DefaultPack(Numbers{Emergency: "112", CareLine: "5550100"}), Folder{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	resp := e.Respond("", TierCritical)
	if resp.Actions[0].Label != "Ligar SAMU (112)" || resp.Actions[0].Target != "112" {
		t.Errorf("action = %+v", resp.Actions[0])
	}
	if !strings.Contains(resp.Message, "SAMU (112)") || strings.Contains(resp.Message, "192") {
		t.Errorf("critical message = %q, want the configured number", resp.Message)
	}
}

func TestLexiconImmutable(t *testing.T) {
	lex := DefaultLexicon()
	got := lex.Triggers(TierCritical)
	got[0] = "changed"
	if lex.Triggers(TierCritical)[0] != "infarto" {
		t.Error("Triggers exposes internal slice")
	}
	if lex.Len() != 22 {
		t.Errorf("Len = %d, want 22", lex.Len())
	}
}

func TestNewLexiconRejectsEmptyTrigger(t *testing.T) {
	_, err := NewLexicon(map[Tier][]string{TierHigh: {"febre", " "}})
	if !errors.Is(err, ErrInvalidPack) {
		t.Fatalf("err = %v, want ErrInvalidPack", err)
	}
}

func TestParsePack(t *testing.T) {
	data := []byte(`
greeting: Hello
lexicon:
  critical: [heart attack]
  high: [chest pain]
  medium: [headache, pain]
  low: [appointment]
responses:
  critical:
    default:
      message: Call 911 now.
      actions:
        - label: Call 911
          effect: dial
          target: "911"
        - label: Nearby hospitals
          effect: open_facility_finder
    alert: Critical emergency
  high:
    default:
      message: Seek urgent care.
  medium:
    rules:
      - contains: headache
        message: Rest in a dark room.
    default:
      message: Book an appointment.
  low:
    default:
      message: How can I help?
`)
	p, err := ParsePack(data)
	if err != nil {
		t.Fatalf("ParsePack: %v", err)
	}
	e, err := NewEngine(p, Folder{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	if e.Greeting() != "Hello" {
		t.Errorf("Greeting = %q", e.Greeting())
	}
	r := e.Evaluate("HEART ATTACK and headache")
	if r.Match.Tier != TierCritical || r.Response.Actions[0].Target != "911" {
		t.Errorf("Evaluate = %+v", r)
	}
	r = e.Evaluate("a bad headache")
	if r.Response.Message != "Rest in a dark room." {
		t.Errorf("medium rule message = %q", r.Response.Message)
	}
}

func TestNewEngineInvalidPacks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Pack)
	}{
		{"unknown lexicon tier", func(p *Pack) { p.Lexicon["severe"] = []string{"x"} }},
		{"unknown response tier", func(p *Pack) { p.Responses["severe"] = TierReplies{Default: Reply{Message: "x"}} }},
		{"missing tier responses", func(p *Pack) { delete(p.Responses, "medium") }},
		{"empty default", func(p *Pack) { p.Responses["low"] = TierReplies{} }},
		{"bad effect", func(p *Pack) {
			row := p.Responses["high"]
			row.Default.Actions = []Action{{Label: "x", Effect: "teleport"}}
			p.Responses["high"] = row
		}},
		{"dial without number", func(p *Pack) {
			row := p.Responses["high"]
			row.Default.Actions = []Action{{Label: "x", Effect: EffectDial}}
			p.Responses["high"] = row
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPack(DefaultNumbers)
			tt.mutate(p)
			if _, err := NewEngine(p, Folder{}); !errors.Is(err, ErrInvalidPack) {
				t.Errorf("err = %v, want ErrInvalidPack", err)
			}
		})
	}
}

func TestDefaultPackYAML(t *testing.T) {
	data, err := DefaultPack(DefaultNumbers).Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	p, err := ParsePack(data)
	if err != nil {
		t.Fatalf("ParsePack: %v", err)
	}
	e, err := NewEngine(p, Folder{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	r := e.Evaluate("estou com dor de cabeça")
	if !strings.HasPrefix(r.Response.Message, "Dor de cabeça") {
		t.Errorf("message after YAML round trip = %q", r.Response.Message)
	}
}

func TestTierText(t *testing.T) {
	if !(TierLow < TierMedium && TierMedium < TierHigh && TierHigh < TierCritical) {
		t.Fatal("tiers are not ordered by urgency")
	}

	b, err := json.Marshal(map[string]Tier{"tier": TierHigh})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"tier":"high"}` {
		t.Errorf("json = %s", b)
	}

	var v struct{ Tier Tier }
	if err := json.Unmarshal([]byte(`{"Tier":"CRITICAL"}`), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.Tier != TierCritical {
		t.Errorf("Tier = %s, want critical", v.Tier)
	}

	if _, err := ParseTier("urgent"); !errors.Is(err, ErrUnknownTier) {
		t.Errorf("ParseTier(urgent) err = %v", err)
	}
	if !TierHigh.Urgent() || TierMedium.Urgent() {
		t.Error("Urgent() wrong")
	}
}
