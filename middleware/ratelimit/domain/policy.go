package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Nomes das políticas do catálogo.
const (
	PolicyAuth       = "auth"
	PolicyStrictAuth = "strictAuth"
	PolicyPublic     = "public"
	PolicyAPI        = "api"
	PolicyUpload     = "upload"
)

// Policy é a cota fixa (Limit requisições por Window) de um grupo de rotas.
// Definida no startup e imutável depois disso.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
}

func (p Policy) WindowSeconds() int {
	return int(p.Window / time.Second)
}

func (p Policy) Validate() error {
	if p.Limit <= 0 {
		return errors.Errorf("policy %q: limit must be > 0, got %d", p.Name, p.Limit)
	}
	if p.Window < time.Second {
		return errors.Errorf("policy %q: window must be >= 1s, got %s", p.Name, p.Window)
	}
	if p.Window%time.Second != 0 {
		return errors.Errorf("policy %q: window must be whole seconds, got %s", p.Name, p.Window)
	}
	return nil
}

// Policies é o catálogo nomeado.
type Policies map[string]Policy

// DefaultPolicies devolve uma cópia nova do catálogo padrão.
func DefaultPolicies() Policies {
	return Policies{
		PolicyAuth:       {Name: PolicyAuth, Limit: 5, Window: 900 * time.Second},
		PolicyStrictAuth: {Name: PolicyStrictAuth, Limit: 3, Window: 900 * time.Second},
		PolicyPublic:     {Name: PolicyPublic, Limit: 100, Window: 60 * time.Second},
		PolicyAPI:        {Name: PolicyAPI, Limit: 200, Window: 60 * time.Second},
		PolicyUpload:     {Name: PolicyUpload, Limit: 10, Window: 60 * time.Second},
	}
}

func (ps Policies) Lookup(name string) (Policy, bool) {
	p, ok := ps[name]
	return p, ok
}

// MustLookup é para o wiring do startup, onde nome errado é bug.
func (ps Policies) MustLookup(name string) Policy {
	p, ok := ps[name]
	if !ok {
		panic(fmt.Sprintf("ratelimit: unknown policy %q", name))
	}
	return p
}

// Override troca limit/window de uma política existente.
// Zero mantém o valor atual.
func (ps Policies) Override(name string, limit int, window time.Duration) error {
	p, ok := ps[name]
	if !ok {
		return errors.Errorf("unknown policy %q", name)
	}
	if limit != 0 {
		p.Limit = limit
	}
	if window != 0 {
		p.Window = window
	}
	if err := p.Validate(); err != nil {
		return err
	}
	ps[name] = p
	return nil
}

func (ps Policies) Validate() error {
	for _, name := range ps.Names() {
		if err := ps[name].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Names em ordem estável (para logs).
func (ps Policies) Names() []string {
	out := make([]string, 0, len(ps))
	for name := range ps {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
