// Package synth generates synthetic transaction histories for demos and load
// runs. Output is deterministic for a given seed.
package synth

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okian/partyrisk/internal/domain/model"
)

// Profile is the payment behaviour a synthetic party follows.
type Profile int

// Profiles.
const (
	Punctual Profile = iota
	Occasional
	Chronic
)

func (p Profile) String() string {
	switch p {
	case Punctual:
		return "punctual"
	case Occasional:
		return "occasional"
	case Chronic:
		return "chronic"
	}
	return "unknown"
}

// lateness per profile: chance an invoice is paid late and the range of days.
var lateness = map[Profile]struct {
	chance   float64
	min, max int
}{
	Punctual:   {0.02, 1, 5},
	Occasional: {0.3, 1, 25},
	Chronic:    {0.75, 10, 120},
}

var (
	namePrefixes = []string{"Acme", "Globex", "Initech", "Umbrella", "Stark", "Wayne", "Tyrell", "Soylent", "Hooli", "Vandelay"}
	nameSuffixes = []string{"Traders", "Industries", "Exports", "Textiles", "Logistics", "Foods", "Steel", "Pharma"}
	creditTerms  = []int{15, 30, 45, 60, 90}
)

var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Party is a generated counterparty.
type Party struct {
	Name    string
	Profile Profile
}

// Generator produces synthetic transactions.
type Generator struct {
	parties         int
	minTxns         int
	maxTxns         int
	seed            uint64
	chronicShare    float64
	occasionalShare float64
	rng             *rand.Rand
	invoice         int
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		parties:         defaultParties,
		minTxns:         defaultMinTxns,
		maxTxns:         defaultMaxTxns,
		seed:            defaultSeed,
		chronicShare:    defaultChronicShare,
		occasionalShare: defaultOccasionalShare,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.maxTxns < g.minTxns {
		g.maxTxns = g.minTxns
	}
	g.rng = rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))
	return g
}

// Generate returns the parties and their transactions, party by party.
func (g *Generator) Generate() ([]Party, []model.RawTransaction) {
	parties := make([]Party, g.parties)
	var rows []model.RawTransaction
	for i := range parties {
		parties[i] = Party{Name: g.name(i), Profile: g.profile()}
		n := g.minTxns + g.rng.IntN(g.maxTxns-g.minTxns+1)
		for j := 0; j < n; j++ {
			rows = append(rows, g.transaction(parties[i]))
		}
	}
	return parties, rows
}

func (g *Generator) name(i int) string {
	p := namePrefixes[g.rng.IntN(len(namePrefixes))]
	s := nameSuffixes[g.rng.IntN(len(nameSuffixes))]
	return fmt.Sprintf("%s %s %03d", p, s, i+1)
}

func (g *Generator) profile() Profile {
	r := g.rng.Float64()
	switch {
	case r < g.chronicShare:
		return Chronic
	case r < g.chronicShare+g.occasionalShare:
		return Occasional
	}
	return Punctual
}

func (g *Generator) transaction(p Party) model.RawTransaction {
	g.invoice++
	l := lateness[p.Profile]

	// Early payments show up as negative days.
	days := -g.rng.IntN(6)
	if g.rng.Float64() < l.chance {
		days = l.min + g.rng.IntN(l.max-l.min+1)
	}

	amount := decimal.NewFromInt(int64(5_000 + g.rng.IntN(495_000))).Add(decimal.New(int64(g.rng.IntN(100)), -2))
	outstanding := decimal.Zero
	if days > 0 {
		outstanding = amount.Mul(decimal.NewFromFloat(g.rng.Float64())).Round(2)
	}
	issued := epoch.AddDate(0, 0, g.rng.IntN(365))
	credit := creditTerms[g.rng.IntN(len(creditTerms))]

	return model.RawTransaction{
		"PartyName":         p.Name,
		"InvoiceNo":         fmt.Sprintf("INV-%07d", g.invoice),
		"InvoiceDate":       issued.Format(time.DateOnly),
		"Amount":            amount.StringFixed(2),
		"CreditDays":        credit,
		"DaysInPayment":     days,
		"IsDelayed":         days > 0,
		"OutstandingAmount": outstanding.StringFixed(2),
		"PaymentDate":       issued.AddDate(0, 0, credit+days).Format(time.DateOnly),
	}
}
