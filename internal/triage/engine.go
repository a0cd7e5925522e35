package triage

// Engine pairs a Classifier with the response Catalog built from the same
// pack and folding rules. It is safe for concurrent use.
type Engine struct {
	lexicon    *Lexicon
	classifier *Classifier
	catalog    *Catalog
	greeting   string
}

// NewEngine builds an Engine from pack. A nil pack means the default
// Portuguese pack with DefaultNumbers.
func NewEngine(pack *Pack, folder Folder) (*Engine, error) {
	if pack == nil {
		pack = DefaultPack(DefaultNumbers)
	}
	lex, err := pack.lexicon()
	if err != nil {
		return nil, err
	}
	cat, err := pack.catalog(folder)
	if err != nil {
		return nil, err
	}
	return &Engine{
		lexicon:    lex,
		classifier: NewClassifier(lex, folder),
		catalog:    cat,
		greeting:   pack.Greeting,
	}, nil
}

func (e *Engine) Classify(text string) Tier { return e.classifier.Classify(text) }

func (e *Engine) Explain(text string) Match { return e.classifier.Explain(text) }

func (e *Engine) Respond(text string, tier Tier) Response { return e.catalog.Respond(text, tier) }

// Evaluate classifies text and selects the response for the resulting tier.
func (e *Engine) Evaluate(text string) Result {
	m := e.classifier.Explain(text)
	return Result{Match: m, Response: e.catalog.Respond(text, m.Tier)}
}

// Lexicon returns the trigger table the engine classifies with.
func (e *Engine) Lexicon() *Lexicon { return e.lexicon }

// Greeting is the opening system message for new conversations.
func (e *Engine) Greeting() string { return e.greeting }
