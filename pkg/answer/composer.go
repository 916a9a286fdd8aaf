package answer

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	ModeGenerated = "generated"
	ModeRetrieval = "retrieval"

	StatusReady = "ready"
	StatusEmpty = "empty (no data)"

	defaultTopK = 3

	systemPrompt = "You are a helpful telecom customer-service assistant. " +
		"Answer using only the provided context and user data. " +
		"If the answer is not in the context, say that you do not have that information."
	noInformation = "I couldn't find any information related to your question."
)

type Options struct {
	DocsDir       string
	TopK          int
	DefaultAPIKey string
}

// Request is a routed customer message. Context holds the billing or plan
// lookup result, if any; Prompt is the text handed to the generator.
type Request struct {
	Query   string
	Prompt  string
	Context string
	APIKey  string
}

type Answer struct {
	Answer  string   `json:"answer"`
	Mode    string   `json:"mode"`
	Sources []string `json:"sources"`
	Warning string   `json:"warning,omitempty"`
}

type Status struct {
	Status   string `json:"status"`
	DocCount int    `json:"doc_count"`
}

// Composer answers routed requests from the document index, optionally through a Generator.
type Composer struct {
	opts  Options
	index *Index
	gen   Generator
	log   *logrus.Logger
}

// NewComposer builds the composer; gen may be nil to disable generation.
func NewComposer(opts Options, gen Generator, l *logrus.Logger) *Composer {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	return &Composer{opts: opts, index: NewIndex(), gen: gen, log: l}
}

// Reload rebuilds the index from the docs directory.
func (c *Composer) Reload() error {
	docs, err := LoadDocuments(c.opts.DocsDir)
	if err != nil {
		return err
	}
	c.index.Build(docs)
	c.log.WithField("doc_count", len(docs)).WithField("dir", c.opts.DocsDir).Info("document index rebuilt")
	return nil
}

func (c *Composer) Status() Status {
	n := c.index.Len()
	if n == 0 {
		return Status{Status: StatusEmpty, DocCount: 0}
	}
	return Status{Status: StatusReady, DocCount: n}
}

// Answer retrieves supporting documents for req.Query and generates a reply
// when a key is available, falling back to the retrieved text otherwise.
func (c *Composer) Answer(ctx context.Context, req Request) Answer {
	prompt := req.Prompt
	if prompt == "" {
		prompt = req.Query
	}
	matches := c.index.Search(req.Query, c.opts.TopK)
	sources := make([]string, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, m.ID)
	}

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = c.opts.DefaultAPIKey
	}

	var warning string
	if c.gen != nil && apiKey != "" {
		text, err := c.gen.Generate(ctx, apiKey, systemPrompt, withDocuments(matches, prompt))
		if err == nil {
			return Answer{Answer: text, Mode: ModeGenerated, Sources: sources}
		}
		c.log.WithError(err).Warn("generation failed, answering from retrieval")
		warning = "generation unavailable: " + err.Error()
	}

	return Answer{
		Answer:  retrievalAnswer(req.Context, matches),
		Mode:    ModeRetrieval,
		Sources: sources,
		Warning: warning,
	}
}

func withDocuments(matches []Match, prompt string) string {
	if len(matches) == 0 {
		return prompt
	}
	var sb strings.Builder
	sb.WriteString("CONTEXT:\n")
	for _, m := range matches {
		sb.WriteString(m.Text)
		sb.WriteString("\n\n")
	}
	sb.WriteString(prompt)
	return sb.String()
}

func retrievalAnswer(context string, matches []Match) string {
	if strings.TrimSpace(context) != "" {
		return context
	}
	if len(matches) == 0 {
		return noInformation
	}
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}
	return strings.Join(texts, "\n\n")
}
