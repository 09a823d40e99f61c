package chat

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"google.golang.org/genai"
)

type stateKind int

const (
	tryingStatic stateKind = iota
	discovering
	tryingDiscovered
	done
)

func (k stateKind) String() string {
	switch k {
	case tryingStatic:
		return "trying_static"
	case discovering:
		return "discovering"
	case tryingDiscovered:
		return "trying_discovered"
	default:
		return "done"
	}
}

// state addresses versions[version] and, while trying, candidates[model].
type state struct {
	kind    stateKind
	version int
	model   int
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeNotFound
	outcomeFailed
)

func (o outcome) String() string {
	switch o {
	case outcomeOK:
		return "ok"
	case outcomeNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// advance is the transition taken after an attempt that did not succeed.
// A 404 moves to the next candidate. Any other failure abandons the rest of
// the current version. Exhausting the static phase starts discovery at the
// first version; exhausting discovery ends the run.
func advance(s state, o outcome, candidates, versions int) state {
	if o == outcomeNotFound && s.model+1 < candidates {
		return state{kind: s.kind, version: s.version, model: s.model + 1}
	}
	if s.version+1 < versions {
		if s.kind == tryingStatic {
			return state{kind: tryingStatic, version: s.version + 1}
		}
		return state{kind: discovering, version: s.version + 1}
	}
	if s.kind == tryingStatic {
		return state{kind: discovering}
	}
	return state{kind: done}
}

type failure struct {
	status  int
	version string
	model   string
	message string
}

// machine holds one run of the candidate search.
type machine struct {
	proxy      *Proxy
	key        string
	contents   []*genai.Content
	discovered []string
	notFound   map[string]bool
	last       *failure
}

func (m *machine) run(ctx context.Context) (Reply, error) {
	p := m.proxy
	s := state{kind: tryingStatic}
	if len(p.models) == 0 {
		s = state{kind: discovering}
	}

	for {
		if err := ctx.Err(); err != nil {
			return Reply{}, err
		}

		switch s.kind {
		case tryingStatic, tryingDiscovered:
			candidates := p.models
			if s.kind == tryingDiscovered {
				candidates = m.discovered
			}
			reply, o := m.attempt(ctx, p.versions[s.version], candidates[s.model])
			if o == outcomeOK {
				return reply, nil
			}
			s = advance(s, o, len(candidates), len(p.versions))

		case discovering:
			s = m.discover(ctx, s)

		case done:
			return Reply{}, m.failed()
		}
	}
}

func (m *machine) attempt(ctx context.Context, version, model string) (Reply, outcome) {
	p := m.proxy
	text, err := p.upstream.Generate(ctx, m.key, version, model, m.contents)
	if err == nil && strings.TrimSpace(text) == "" {
		err = &Error{Status: http.StatusBadGateway, Message: "empty response"}
	}
	if err == nil {
		p.metrics.IncChatAttempt(version, outcomeOK.String())
		p.log.Debug().Str("version", version).Str("model", model).Msg("Chat reply received")
		return Reply{Reply: text, Model: model, Version: version}, outcomeOK
	}

	status := statusOf(err)
	o := outcomeFailed
	if status == http.StatusNotFound {
		o = outcomeNotFound
		m.notFound[version+"/"+model] = true
	}
	p.metrics.IncChatAttempt(version, o.String())
	p.log.Debug().Str("version", version).Str("model", model).Int("status", status).Err(err).Msg("Chat attempt failed")
	m.last = &failure{status: status, version: version, model: model, message: messageOf(err)}
	return Reply{}, o
}

// discover lists the models of one version and moves to trying them. Models
// that already answered 404 under this version are skipped.
func (m *machine) discover(ctx context.Context, s state) state {
	p := m.proxy
	version := p.versions[s.version]

	next := func() state {
		if s.version+1 < len(p.versions) {
			return state{kind: discovering, version: s.version + 1}
		}
		return state{kind: done}
	}

	models, err := p.upstream.ListModels(ctx, m.key, version)
	if err != nil {
		status := statusOf(err)
		p.metrics.IncChatAttempt(version, "list_failed")
		m.last = &failure{status: status, version: version, model: "(list)", message: messageOf(err)}
		return next()
	}

	m.discovered = m.discovered[:0]
	for _, model := range models {
		if !slices.Contains(model.Actions, "generateContent") {
			continue
		}
		name := strings.TrimPrefix(model.Name, "models/")
		if name == "" || m.notFound[version+"/"+name] || slices.Contains(m.discovered, name) {
			continue
		}
		m.discovered = append(m.discovered, name)
	}
	p.log.Info().Str("version", version).Int("models", len(m.discovered)).Msg("Discovered generative models")

	if len(m.discovered) == 0 {
		return next()
	}
	return state{kind: tryingDiscovered, version: s.version}
}

func (m *machine) failed() error {
	if m.last == nil {
		return &Error{Status: http.StatusInternalServerError, Message: "no chat model could be reached"}
	}
	return &Error{
		Status: m.last.status,
		Message: fmt.Sprintf("all chat models failed; last attempt %s/%s returned %d: %s",
			m.last.version, m.last.model, m.last.status, m.last.message),
	}
}
