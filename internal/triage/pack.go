package triage

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPack is wrapped by every lexicon and catalog validation error.
var ErrInvalidPack = errors.New("invalid triage pack")

// Numbers are the phone numbers referenced by dial actions.
type Numbers struct {
	Emergency string
	CareLine  string
}

// DefaultNumbers are SAMU and the university hospital care line.
var DefaultNumbers = Numbers{
	Emergency: "192",
	CareLine:  "38322483730",
}

// Pack is the on-disk form of a localized lexicon and response catalog.
// Tier keys are tier names.
type Pack struct {
	Greeting  string                 `yaml:"greeting"`
	Lexicon   map[string][]string    `yaml:"lexicon"`
	Responses map[string]TierReplies `yaml:"responses"`
}

// LoadPack reads a YAML pack from path.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading triage pack %s: %w", path, err)
	}
	return ParsePack(data)
}

// ParsePack decodes a YAML pack. Structural validation happens when the
// pack is turned into an Engine.
func ParsePack(data []byte) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}
	return &p, nil
}

// Marshal encodes the pack as YAML.
func (p *Pack) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

func (p *Pack) lexicon() (*Lexicon, error) {
	table := make(map[Tier][]string, len(p.Lexicon))
	for name, phrases := range p.Lexicon {
		tier, err := ParseTier(name)
		if err != nil {
			return nil, fmt.Errorf("%w: lexicon: %v", ErrInvalidPack, err)
		}
		table[tier] = phrases
	}
	return NewLexicon(table)
}

func (p *Pack) catalog(folder Folder) (*Catalog, error) {
	rows := make(map[Tier]TierReplies, len(p.Responses))
	for name, row := range p.Responses {
		tier, err := ParseTier(name)
		if err != nil {
			return nil, fmt.Errorf("%w: responses: %v", ErrInvalidPack, err)
		}
		rows[tier] = row
	}
	return NewCatalog(rows, folder)
}

// DefaultPack returns the Portuguese pack with dial actions pointing at nums.
func DefaultPack(nums Numbers) *Pack {
	lex := make(map[string][]string)
	for tier, phrases := range defaultTriggers() {
		lex[tier.String()] = phrases
	}

	return &Pack{
		Greeting: "Olá! Sou o assistente de emergência do APP DE SAÚDE DIGITAL. Como posso ajudá-lo hoje?",
		Lexicon:  lex,
		Responses: map[string]TierReplies{
			"critical": {
				Default: Reply{
					Message: fmt.Sprintf("🚨 EMERGÊNCIA CRÍTICA DETECTADA! Ligue IMEDIATAMENTE para o SAMU (%s) ou vá ao hospital mais próximo. Não perca tempo!", nums.Emergency),
					Actions: []Action{
						{Label: fmt.Sprintf("Ligar SAMU (%s)", nums.Emergency), Effect: EffectDial, Target: nums.Emergency},
						{Label: "Ver Hospitais Próximos", Effect: EffectOpenFacilityFinder},
					},
				},
				Alert: "EMERGÊNCIA CRÍTICA - Procure atendimento imediato!",
			},
			"high": {
				Default: Reply{
					Message: "⚠️ Situação que requer atenção médica urgente. Recomendo procurar atendimento médico o mais rápido possível. Posso ajudá-lo a encontrar o local mais próximo.",
					Actions: []Action{
						{Label: "Encontrar UPA/Hospital", Effect: EffectOpenFacilityFinder},
						{Label: "Ligar para Hospital", Effect: EffectDial, Target: nums.CareLine},
					},
				},
				Alert: "Situação urgente - Procure atendimento médico!",
			},
			"medium": {
				Rules: []Rule{{
					Contains: "dor de cabeça",
					Reply: Reply{
						Message: "Dor de cabeça pode ter várias causas. Se for intensa ou persistente, procure atendimento médico. Enquanto isso, descanse em local escuro e silencioso.",
					},
				}},
				Default: Reply{
					Message: "Entendo sua preocupação. Para sintomas persistentes, recomendo agendar uma consulta médica. Posso ajudá-lo a encontrar estabelecimentos de saúde próximos.",
				},
			},
			"low": {
				Rules: []Rule{
					{
						Contains: "medicamento",
						Reply: Reply{
							Message: "Para dúvidas sobre medicamentos, consulte sempre um médico ou farmacêutico. Posso ajudá-lo a encontrar farmácias próximas.",
						},
					},
					{
						Contains: "consulta",
						Reply: Reply{
							Message: "Posso ajudá-lo a encontrar estabelecimentos de saúde para agendar consultas. Que tipo de especialidade você procura?",
						},
					},
				},
				Default: Reply{
					Message: `Obrigado por entrar em contato. Como posso ajudá-lo com questões de saúde? Se for uma emergência, digite "emergência" para atendimento prioritário.`,
				},
			},
		},
	}
}
