package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/partyrisk/internal/domain/aggregate"
	"github.com/okian/partyrisk/internal/domain/columns"
	"github.com/okian/partyrisk/internal/domain/dedupe"
	"github.com/okian/partyrisk/internal/domain/model"
	"github.com/okian/partyrisk/internal/worker"
	"github.com/okian/partyrisk/pkg/logger"
	"github.com/okian/partyrisk/pkg/metrics"
)

// Batch stages, in order.
type stage int

const (
	stageParsed stage = iota + 1
	stageAggregated
	stageScored
	stageAssembled
)

func (st stage) String() string {
	switch st {
	case stageParsed:
		return "parsed"
	case stageAggregated:
		return "per_party_aggregated"
	case stageScored:
		return "scored"
	case stageAssembled:
		return "assembled"
	}
	return "unknown"
}

// partyGroup is the canonical rows of one party plus how many of its rows
// were rejected.
type partyGroup struct {
	id       string
	txs      []model.CanonicalTransaction
	rejected int
}

type aggregated struct {
	features model.PartyFeatureVector
	err      error
}

type scored struct {
	result *model.RiskResult
	err    error
}

// ScoreBatch scores every party found in rows with the payment delay model
// set. Parties fail independently and are reported as skips. When no party
// yields a result the partial BatchResult is returned with ErrNoResults.
func (s *Service) ScoreBatch(ctx context.Context, rows []model.RawTransaction) (*model.BatchResult, error) {
	start := time.Now()
	s.batches.Add(1)

	ctx, cancel := context.WithTimeout(ctx, s.batchTimeout)
	defer cancel()

	res, err := s.runBatch(ctx, uuid.NewString(), rows)

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "failed"
		s.failedBatches.Add(1)
	case len(res.Skipped) > 0 || len(res.RowIssues) > 0:
		outcome = "partial"
	}
	metrics.RecordBatch(outcome, float64(time.Since(start).Milliseconds()))
	return res, err
}

func (s *Service) runBatch(ctx context.Context, runID string, rows []model.RawTransaction) (*model.BatchResult, error) {
	log := s.logger.Named("batch")
	set := &PaymentDelay

	switch {
	case len(rows) == 0:
		return nil, ErrEmptyBatch
	case len(rows) > s.maxRows:
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRows, len(rows), s.maxRows)
	}

	groups, issues, err := s.parse(rows)
	if err != nil {
		return nil, err
	}
	s.rowsRejected.Add(int64(len(issues)))
	s.advance(ctx, log, runID, stageParsed, logger.Int("rows", len(rows)), logger.Int("parties", len(groups)), logger.Int("rejected_rows", len(issues)))

	aggs, err := worker.Map(ctx, s.pool, groups, func(_ context.Context, _ int, g *partyGroup) (aggregated, error) {
		fv, err := aggregate.Party(g.id, g.txs, g.rejected)
		return aggregated{features: fv, err: err}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate parties: %w", err)
	}
	s.advance(ctx, log, runID, stageAggregated)

	outs, err := worker.Map(ctx, s.pool, aggs, func(ctx context.Context, _ int, a aggregated) (scored, error) {
		if a.err != nil {
			return scored{err: a.err}, nil
		}
		r, err := s.scoreParty(ctx, set, a.features)
		if err != nil && ctx.Err() != nil {
			return scored{}, ctx.Err()
		}
		return scored{result: r, err: err}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("score parties: %w", err)
	}
	s.advance(ctx, log, runID, stageScored)

	res := &model.BatchResult{
		RunID:      runID,
		PartyCount: len(groups),
		Results:    make([]model.RiskResult, 0, len(groups)),
		Skipped:    []model.Skip{},
		RowIssues:  issues,
	}
	for i, g := range groups {
		o := outs[i]
		if o.err != nil {
			kind := ErrorKind(o.err)
			res.Skipped = append(res.Skipped, model.Skip{PartyID: g.id, Kind: kind, Reason: o.err.Error()})
			metrics.RecordPartySkipped(kind)
			log.Warn(ctx, "party skipped", logger.String("run_id", runID), logger.String("party", g.id), logger.String("kind", kind), logger.Error(o.err))
			continue
		}
		res.Results = append(res.Results, *o.result)
		metrics.RecordPartyScored(string(o.result.Tier), o.result.Clamped, o.result.Degraded != "")
	}
	s.partiesScored.Add(int64(len(res.Results)))
	s.partiesSkipped.Add(int64(len(res.Skipped)))
	s.advance(ctx, log, runID, stageAssembled, logger.Int("results", len(res.Results)), logger.Int("skipped", len(res.Skipped)))

	if len(res.Results) == 0 {
		return res, fmt.Errorf("%w: %d parties skipped", ErrNoResults, len(res.Skipped))
	}
	return res, nil
}

func (s *Service) advance(ctx context.Context, log logger.Logger, runID string, st stage, fields ...logger.Field) {
	fields = append([]logger.Field{logger.String("run_id", runID), logger.String("stage", st.String())}, fields...)
	if st == stageAssembled {
		log.Info(ctx, "batch assembled", fields...)
		return
	}
	log.Debug(ctx, "batch stage", fields...)
}

// parse resolves columns once for the batch, converts every row and groups
// the usable ones by party in order of first appearance. Only a schema error
// fails the batch; row errors become issues.
func (s *Service) parse(rows []model.RawTransaction) ([]*partyGroup, []model.RowIssue, error) {
	mapping, err := columns.Build(unionKeys(rows))
	if err != nil {
		return nil, nil, err
	}

	var seen dedupe.Deduper
	if s.dedupeInvoices {
		seen = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	}

	byParty := make(map[string]*partyGroup)
	var (
		order  []*partyGroup
		issues = []model.RowIssue{}
	)
	group := func(id string) *partyGroup {
		g, ok := byParty[id]
		if !ok {
			g = &partyGroup{id: id}
			byParty[id] = g
			order = append(order, g)
		}
		return g
	}
	reject := func(row int, party string, err error) {
		issue := model.RowIssue{Row: row, PartyID: party, Kind: ErrorKind(err), Message: err.Error()}
		var pe *columns.ParseError
		if errors.As(err, &pe) {
			issue.Field = pe.Field
		}
		issues = append(issues, issue)
		metrics.RecordRowRejected(issue.Kind)
		if party != "" {
			group(party).rejected++
		}
	}

	for i, raw := range rows {
		tx, err := mapping.Canonicalize(i, raw)
		if err != nil {
			reject(i, tx.PartyID, err)
			continue
		}
		if seen != nil && tx.InvoiceNo != "" && seen.SeenAndRecord(dedupe.InvoiceKey(tx.PartyID, tx.InvoiceNo)) {
			reject(i, tx.PartyID, fmt.Errorf("%w: invoice %s of party %s", ErrDuplicate, tx.InvoiceNo, tx.PartyID))
			continue
		}
		g := group(tx.PartyID)
		g.txs = append(g.txs, tx)
	}
	return order, issues, nil
}

func unionKeys(rows []model.RawTransaction) []string {
	set := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			set[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// scoreParty runs the model set on one party's features.
func (s *Service) scoreParty(ctx context.Context, set *ModelSet, fv model.PartyFeatureVector) (*model.RiskResult, error) {
	ev, err := s.evaluate(ctx, set, func(r Role) (aggregate.Vector, error) {
		return aggregate.Project(r.ModelID, &fv, r.FeatureNames())
	})
	if err != nil {
		return nil, err
	}
	v := ev.verdict
	return &model.RiskResult{
		PartyID:        fv.PartyID,
		CompositeScore: v.Score,
		Tier:           v.Tier,
		Recommendation: v.Recommendation,
		Policy:         v.Policy,
		Clamped:        v.Clamped,
		Degraded:       v.Degraded,
		Features:       &fv,
		Outputs:        ev.outputs,
	}, nil
}

// ResultTable renders a batch as output rows.
func ResultTable(b *model.BatchResult) []model.ResultRow {
	dp, _ := PaymentDelay.RoleFor(SignalDelayProbability)
	dd, _ := PaymentDelay.RoleFor(SignalDelayDays)
	return b.Table(dp.ModelID, dd.ModelID)
}
