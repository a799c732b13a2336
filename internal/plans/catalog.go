// Package plans holds the fixed catalog of diet plans offered at the end of
// the funnel.
package plans

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// QueryParam is the query-string key that carries the selected plan between
// the plan list and the questionnaire (e.g. /formulario?plan=premium).
const QueryParam = "plan"

const (
	Basic   = "basic"
	Premium = "premium"
)

// Plan is one purchasable offer. PriceCents is in the catalog currency.
type Plan struct {
	Key        string   `yaml:"key"         json:"key"`
	Name       string   `yaml:"name"        json:"name"`
	PriceCents int      `yaml:"price_cents" json:"price_cents"`
	Currency   string   `yaml:"currency"    json:"currency"`
	Features   []string `yaml:"features"    json:"features"`
	CTA        string   `yaml:"cta"         json:"cta"`
	Premium    bool     `yaml:"premium"     json:"premium"`
}

// Catalog is an ordered list of plans.
type Catalog struct {
	Plans []Plan `yaml:"plans" json:"plans"`
}

// Default returns the built-in catalog.
func Default() Catalog {
	return Catalog{Plans: []Plan{
		{
			Key:        Basic,
			Name:       "Plano Básico",
			PriceCents: 4700,
			Currency:   "BRL",
			Features: []string{
				"Plano alimentar 100% personalizado e individualizado",
				"Lista de compras automatizada",
				"Guia de Suplementação básica",
				"Acesso via PDF",
				"1 contato com o Nutricionista a cada 15 dias (via e-mail)",
			},
			CTA: "Selecionar Plano Básico",
		},
		{
			Key:        Premium,
			Name:       "Plano Premium",
			PriceCents: 39700,
			Currency:   "BRL",
			Features: []string{
				"Tudo do Plano Básico",
				"1 chamada de vídeo com Nutricionista de 1 hora",
				"Ajustes mensais na dieta",
				"Feedback semanais",
				"Suporte prioritário",
				"Bônus: Avaliação de treino com profissional de educação física",
				"Livro de receitas práticas para o dia-a-dia",
			},
			CTA:     "Selecionar Plano Premium",
			Premium: true,
		},
	}}
}

// Load reads a catalog from a YAML file. ${VAR} references are expanded from
// the environment before parsing. The file must define both the basic and
// premium plans.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}

	var c Catalog
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &c); err != nil {
		return Catalog{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c Catalog) validate() error {
	seen := map[string]bool{}
	for _, p := range c.Plans {
		if p.Key == "" {
			return errors.New("plan without key")
		}
		if seen[p.Key] {
			return fmt.Errorf("duplicate plan %q", p.Key)
		}
		if p.PriceCents <= 0 {
			return fmt.Errorf("plan %q must have a positive price", p.Key)
		}
		seen[p.Key] = true
	}
	for _, key := range []string{Basic, Premium} {
		if !seen[key] {
			return fmt.Errorf("missing plan %q", key)
		}
	}
	return nil
}

// Find returns the plan with the given key.
func (c Catalog) Find(key string) (Plan, bool) {
	for _, p := range c.Plans {
		if p.Key == key {
			return p, true
		}
	}
	return Plan{}, false
}

// Resolve returns key when it names a plan, otherwise the basic plan. The
// questionnaire uses it for the ?plan= query parameter.
func (c Catalog) Resolve(key string) string {
	if _, ok := c.Find(key); ok {
		return key
	}
	return Basic
}
