package catalog

import "sync/atomic"

// Generations issues liveness tokens for catalog consumers. Each Next call
// invalidates every token issued before it, which gives in-flight background
// work last-requested-wins semantics: a superseded enrichment pass observes a
// dead token and discards its result instead of publishing it.
type Generations struct {
	counter atomic.Uint64
}

// Next invalidates all previously issued tokens and returns a fresh one.
func (g *Generations) Next() *Token {
	return &Token{
		gen: g.counter.Add(1),
		src: g,
	}
}

// Token is a cancellation handle indicating whether a consumer is still
// interested in a pending asynchronous result.
type Token struct {
	gen uint64
	src *Generations
}

// Live reports whether the token is still the most recently issued one. A nil
// token is always live, for callers that do not participate in supersession.
func (t *Token) Live() bool {
	if t == nil {
		return true
	}
	return t.src.counter.Load() == t.gen
}
