// Package llm is the model-provider boundary. Every caller sees a single
// capability, Generate(prompt, bindings) -> text, so tests can swap in fixed
// replies without touching orchestration code.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/personalai/assistant/internal/observability"
)

// ErrProvider marks any failure returned by a model provider.
var ErrProvider = errors.New("model provider error")

// Bindings are the named values substituted into a Prompt.
type Bindings map[string]any

// Prompt is a template with {name} placeholders.
type Prompt string

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Variables lists the placeholder names in the template, sorted and de-duplicated.
func (p Prompt) Variables() []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(string(p), -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// Render substitutes every placeholder. A placeholder without a binding is an error.
func (p Prompt) Render(b Bindings) (string, error) {
	var missing []string
	out := placeholderRe.ReplaceAllStringFunc(string(p), func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := b[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return fmt.Sprint(v)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt missing bindings: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Generator produces free text from a prompt template and its bindings.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt, bindings Bindings) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt Prompt, bindings Bindings) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt Prompt, bindings Bindings) (string, error) {
	return f(ctx, prompt, bindings)
}

// completer is the provider-specific single-turn call.
type completer interface {
	complete(ctx context.Context, text string) (string, error)
}

// client renders the prompt, bounds the call with a timeout and normalizes errors.
type client struct {
	provider string
	model    string
	timeout  time.Duration
	backend  completer
}

func (c *client) Generate(ctx context.Context, prompt Prompt, bindings Bindings) (string, error) {
	text, err := prompt.Render(bindings)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProvider, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.backend.complete(ctx, text)
	observability.ObserveLLMCall(c.provider, err == nil)
	if err != nil {
		log.Warn().Err(err).
			Str("provider", c.provider).
			Str("model", c.model).
			Dur("elapsed", time.Since(start)).
			Msg("model call failed")
		return "", fmt.Errorf("%w: %s: %w", ErrProvider, c.provider, err)
	}

	log.Debug().
		Str("provider", c.provider).
		Str("model", c.model).
		Int("prompt_chars", len(text)).
		Int("reply_chars", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("model call")
	return out, nil
}

// Options configures a provider-backed Generator.
type Options struct {
	Provider  string // anthropic | gemini | openai
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// New builds the Generator for opts.Provider.
func New(ctx context.Context, opts Options) (Generator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s: api key is required", opts.Provider)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}

	provider := strings.ToLower(opts.Provider)
	if provider == "" {
		provider = "anthropic"
	}

	var backend completer
	switch provider {
	case "anthropic":
		backend = newAnthropic(opts)
	case "gemini":
		g, err := newGemini(ctx, opts)
		if err != nil {
			return nil, err
		}
		backend = g
	case "openai":
		o, err := newOpenAI(opts)
		if err != nil {
			return nil, err
		}
		backend = o
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}

	return &client{
		provider: provider,
		model:    opts.Model,
		timeout:  opts.Timeout,
		backend:  backend,
	}, nil
}
