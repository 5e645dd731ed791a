package api

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/partyrisk/internal/adapters/tabular"
	service "github.com/okian/partyrisk/internal/app"
	"github.com/okian/partyrisk/internal/domain/model"
	"github.com/okian/partyrisk/pkg/logger"
)

// BatchScorer scores a batch of raw transactions.
type BatchScorer interface {
	ScoreBatch(ctx context.Context, rows []model.RawTransaction) (*model.BatchResult, error)
}

// BatchResponse is the JSON body of POST /api/batch.
type BatchResponse struct {
	RunID      string             `json:"run_id"`
	PartyCount int                `json:"party_count"`
	Table      []model.ResultRow  `json:"table"`
	Skipped    []model.Skip       `json:"skipped"`
	RowIssues  []model.RowIssue   `json:"row_issues"`
	Results    []model.RiskResult `json:"results,omitempty"`
}

// BatchHandler handles batch scoring requests.
type BatchHandler struct {
	deps    BatchScorer
	maxBody int64
	logger  logger.Logger
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps BatchScorer, maxBody int64, l logger.Logger) *BatchHandler {
	return &BatchHandler{deps: deps, maxBody: maxBody, logger: l}
}

// HandleBatch handles POST /api/batch.
//
// The body is a JSON array of rows, a JSON object {"rows": [...]}, or a CSV
// document sent as text/csv. ?format=csv returns the result table as CSV and
// ?detail=true adds per-party features and model outputs to the JSON body.
func (h *BatchHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.batch"
	if r.Method != http.MethodPost {
		writeError(w, NewKind(op, ErrMethodNotAllowed), nil)
		return
	}

	format, err := requestFormat(r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, WrapKind(op, ErrUnsupportedMedia, err), nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	rows, err := tabular.Read(r.Body, format)
	if err != nil {
		writeError(w, bodyError(op, err), nil)
		return
	}

	res, err := h.deps.ScoreBatch(r.Context(), rows)
	if err != nil {
		h.logger.Warn(r.Context(), "batch failed", logger.String("kind", kindOf(err)), logger.Error(err))
		var details any
		if errors.Is(err, service.ErrNoResults) && res != nil {
			details = h.response(res, false)
		}
		writeError(w, Wrap(op, err), details)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), tabular.FormatCSV) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("X-Run-Id", res.RunID)
		w.Header().Set("X-Skipped-Parties", strconv.Itoa(res.SkippedCount()))
		w.WriteHeader(http.StatusOK)
		if err := tabular.WriteCSV(w, service.ResultTable(res)); err != nil {
			h.logger.Error(r.Context(), "write csv response", logger.Error(err))
		}
		return
	}
	detail, _ := strconv.ParseBool(r.URL.Query().Get("detail"))
	writeJSON(w, http.StatusOK, h.response(res, detail))
}

func (h *BatchHandler) response(res *model.BatchResult, detail bool) BatchResponse {
	out := BatchResponse{
		RunID:      res.RunID,
		PartyCount: res.PartyCount,
		Table:      service.ResultTable(res),
		Skipped:    res.Skipped,
		RowIssues:  res.RowIssues,
	}
	if out.RowIssues == nil {
		out.RowIssues = []model.RowIssue{}
	}
	if detail {
		out.Results = res.Results
	}
	return out
}

func requestFormat(contentType string) (string, error) {
	if strings.TrimSpace(contentType) == "" {
		return tabular.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", err
	}
	switch mt {
	case "application/json":
		return tabular.FormatJSON, nil
	case "text/csv", "application/csv":
		return tabular.FormatCSV, nil
	}
	return "", errors.New(mt)
}
