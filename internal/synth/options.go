package synth

const (
	defaultParties         = 50
	defaultMinTxns         = 3
	defaultMaxTxns         = 40
	defaultSeed            = 42
	defaultChronicShare    = 0.15
	defaultOccasionalShare = 0.35
)

// Option configures a Generator.
type Option func(*Generator)

// WithParties sets the number of parties.
func WithParties(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.parties = n
		}
	}
}

// WithTransactions sets the per-party transaction count range.
func WithTransactions(minTxns, maxTxns int) Option {
	return func(g *Generator) {
		if minTxns > 0 {
			g.minTxns = minTxns
		}
		if maxTxns > 0 {
			g.maxTxns = maxTxns
		}
	}
}

// WithSeed fixes the random seed.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.seed = seed }
}

// WithProfileMix sets the share of chronic and occasional late payers.
// The remainder is punctual.
func WithProfileMix(chronic, occasional float64) Option {
	return func(g *Generator) {
		if chronic >= 0 && occasional >= 0 && chronic+occasional <= 1 {
			g.chronicShare, g.occasionalShare = chronic, occasional
		}
	}
}
