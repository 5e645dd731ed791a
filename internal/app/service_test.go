package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/partyrisk/internal/app"
	"github.com/okian/partyrisk/internal/domain/columns"
	"github.com/okian/partyrisk/internal/domain/model"
	"github.com/okian/partyrisk/internal/domain/predict"
)

func TestScoreBatch(t *testing.T) {
	Convey("Given a service with payment delay models", t, func() {
		svc := service.New(service.WithRegistry(paymentRegistry()), service.WithWorkerCount(4))
		ctx := context.Background()

		Convey("When party A's two on-time transactions are scored", func() {
			res, err := svc.ScoreBatch(ctx, []model.RawTransaction{
				row("A", 0, false, 55000, 30),
				row("A", -4, false, 80000, 45),
			})

			Convey("Then the features and tier match the worked example", func() {
				So(err, ShouldBeNil)
				So(res.RunID, ShouldNotBeEmpty)
				So(res.PartyCount, ShouldEqual, 1)
				So(len(res.Results), ShouldEqual, 1)
				So(res.Skipped, ShouldBeEmpty)

				r := res.Results[0]
				fv := r.Features
				So(fv.AvgDelayDays, ShouldEqual, -2)
				So(fv.MaxDelayDays, ShouldEqual, 0)
				So(fv.StdDelayDays, ShouldEqual, 2)
				So(fv.DelayedCount, ShouldEqual, 0)
				So(fv.OnTimeRate, ShouldEqual, 1.0)
				So(fv.Amount, ShouldEqual, 67500)
				So(fv.AvgCreditDays, ShouldEqual, 37.5)
				So(r.Tier, ShouldEqual, model.TierLow)
				So(r.Recommendation, ShouldEqual, "LOW RISK - Proceed with normal credit terms")
				So(len(r.Outputs), ShouldEqual, 2)
			})

			Convey("And the output table uses display units", func() {
				table := service.ResultTable(res)
				So(len(table), ShouldEqual, 1)
				So(table[0].PartyName, ShouldEqual, "A")
				So(table[0].DelayProbability, ShouldEqual, 10)
				So(table[0].ExpectedDelayDays, ShouldEqual, 2)
				So(table[0].RiskScore, ShouldEqual, 6.9)
				So(table[0].RiskTier, ShouldEqual, model.TierLow)
			})
		})

		Convey("When the middle party of three has no valid rows", func() {
			rows := []model.RawTransaction{
				row("P1", 0, false, 100, 30),
				row("P2", 5, true, 100, 30),
				row("P3", 12, true, 100, 30),
				row("P1", 2, false, 200, 30),
			}
			rows[1]["Amount"] = "n/a"
			res, err := svc.ScoreBatch(ctx, rows)

			Convey("Then two parties are scored and one is skipped", func() {
				So(err, ShouldBeNil)
				So(res.PartyCount, ShouldEqual, 3)
				So(len(res.Results), ShouldEqual, 2)
				So(res.Results[0].PartyID, ShouldEqual, "P1")
				So(res.Results[1].PartyID, ShouldEqual, "P3")
				So(len(res.Skipped), ShouldEqual, 1)
				So(res.Skipped[0].PartyID, ShouldEqual, "P2")
				So(res.Skipped[0].Kind, ShouldEqual, service.KindInsufficientData)
				So(res.Skipped[0].Reason, ShouldNotBeEmpty)
				So(len(res.RowIssues), ShouldEqual, 1)
				So(res.RowIssues[0].Row, ShouldEqual, 1)
				So(res.RowIssues[0].Field, ShouldEqual, columns.Amount)
			})

			Convey("And the other parties score as if alone", func() {
				alone, err := svc.ScoreBatch(ctx, []model.RawTransaction{rows[0], rows[2], rows[3]})
				So(err, ShouldBeNil)
				So(service.ResultTable(alone), ShouldResemble, service.ResultTable(res))
			})
		})

		Convey("When the same batch runs twice", func() {
			rows := []model.RawTransaction{
				row("Zeta", 3, true, 1000, 30),
				row("Alpha", -1, false, 250.5, 15),
				row("Mid", 40, true, 99999, 60),
				row("Zeta", 9, true, 1200, 30),
			}
			first, err1 := svc.ScoreBatch(ctx, rows)
			second, err2 := svc.ScoreBatch(ctx, rows)

			Convey("Then the output tables are byte-identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				a, _ := json.Marshal(service.ResultTable(first))
				b, _ := json.Marshal(service.ResultTable(second))
				So(string(a), ShouldEqual, string(b))
				So(first.RunID, ShouldNotEqual, second.RunID)
			})

			Convey("And parties keep their order of first appearance", func() {
				So(first.Results[0].PartyID, ShouldEqual, "Zeta")
				So(first.Results[1].PartyID, ShouldEqual, "Alpha")
				So(first.Results[2].PartyID, ShouldEqual, "Mid")
			})
		})

		Convey("When rows name the party through different aliases", func() {
			other := row("", 4, false, 10, 30)
			delete(other, "PartyName")
			other["Customer"] = "Acme"
			res, err := svc.ScoreBatch(ctx, []model.RawTransaction{row("Acme", 0, false, 10, 30), other})

			Convey("Then both rows land on the same party", func() {
				So(err, ShouldBeNil)
				So(len(res.Results), ShouldEqual, 1)
				So(res.Results[0].Features.TotalTxn, ShouldEqual, 2)
			})
		})

		Convey("When a required column is missing everywhere", func() {
			r := row("A", 0, false, 1, 1)
			delete(r, "IsDelayed")
			res, err := svc.ScoreBatch(ctx, []model.RawTransaction{r})

			Convey("Then the batch fails with a schema error", func() {
				So(res, ShouldBeNil)
				var se *columns.SchemaError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Field, ShouldEqual, columns.IsDelayed)
				So(service.ErrorKind(err), ShouldEqual, service.KindSchema)
			})
		})

		Convey("When the batch is empty", func() {
			_, err := svc.ScoreBatch(ctx, nil)
			So(errors.Is(err, service.ErrEmptyBatch), ShouldBeTrue)
		})

		Convey("When an invoice appears twice for a party", func() {
			a := row("A", 0, false, 100, 30)
			a["InvoiceNo"] = "INV-7"
			b := row("A", 20, true, 100, 30)
			b["InvoiceNo"] = "INV-7"
			res, err := svc.ScoreBatch(ctx, []model.RawTransaction{a, b})

			Convey("Then both rows count by default", func() {
				So(err, ShouldBeNil)
				So(res.RowIssues, ShouldBeEmpty)
				So(res.Results[0].Features.TotalTxn, ShouldEqual, 2)
				So(res.Results[0].Features.DelayedCount, ShouldEqual, 1)
				So(res.Results[0].Features.MaxDelayDays, ShouldEqual, 20)
			})

			Convey("And with duplicate detection on the second row is rejected", func() {
				on := service.New(service.WithRegistry(paymentRegistry()), service.WithDedupe(true, 0))
				res, err := on.ScoreBatch(ctx, []model.RawTransaction{a, b})
				So(err, ShouldBeNil)
				So(res.Results[0].Features.TotalTxn, ShouldEqual, 1)
				So(len(res.RowIssues), ShouldEqual, 1)
				So(res.RowIssues[0].Kind, ShouldEqual, service.KindDuplicate)
				So(res.RowIssues[0].Row, ShouldEqual, 1)
			})
		})

		Convey("When parties differing only in case share an invoice number", func() {
			a := row("Acme", 0, false, 100, 30)
			a["InvoiceNo"] = "1"
			b := row("ACME", 0, false, 100, 30)
			b["InvoiceNo"] = "1"
			on := service.New(service.WithRegistry(paymentRegistry()), service.WithDedupe(true, 0))
			res, err := on.ScoreBatch(ctx, []model.RawTransaction{a, b})

			Convey("Then neither row is treated as a duplicate", func() {
				So(err, ShouldBeNil)
				So(res.RowIssues, ShouldBeEmpty)
				So(res.Skipped, ShouldBeEmpty)
				So(len(res.Results), ShouldEqual, 2)
			})
		})

		Convey("Then stats count the work done", func() {
			_, _ = svc.ScoreBatch(ctx, []model.RawTransaction{row("A", 0, false, 1, 1)})
			st := svc.GetStats()
			So(st.Batches, ShouldBeGreaterThanOrEqualTo, 1)
			So(st.PartiesScored, ShouldBeGreaterThanOrEqualTo, 1)
			So(st.ModelsAvailable, ShouldEqual, 2)
			So(st.WorkerCount, ShouldEqual, 4)
		})
	})

	Convey("Given a batch over the row limit", t, func() {
		svc := service.New(service.WithRegistry(paymentRegistry()), service.WithMaxRows(1))
		_, err := svc.ScoreBatch(context.Background(), []model.RawTransaction{row("A", 0, false, 1, 1), row("B", 0, false, 1, 1)})
		So(errors.Is(err, service.ErrTooManyRows), ShouldBeTrue)
	})
}

func TestScoreBatchDegraded(t *testing.T) {
	rows := []model.RawTransaction{row("A", 0, false, 100, 30), row("B", 30, true, 100, 30)}
	ctx := context.Background()

	Convey("Given the delay-days model failed to load", t, func() {
		svc := service.New(service.WithRegistry(paymentRegistry(
			predict.WithModel(delayProbabilityModel(0.1)),
			predict.WithUnavailable("delay_days", errArtifactMissing),
		)))
		res, err := svc.ScoreBatch(ctx, rows)

		Convey("Then parties are still scored and marked degraded", func() {
			So(err, ShouldBeNil)
			So(len(res.Results), ShouldEqual, 2)
			So(res.Results[0].Degraded, ShouldEqual, "missing delay_days")
			So(res.Results[0].CompositeScore, ShouldAlmostEqual, 6, 1e-9)
			So(res.Results[1].CompositeScore, ShouldAlmostEqual, 54, 1e-9)
			So(res.Results[1].Tier, ShouldEqual, model.TierHigh)
			So(service.ResultTable(res)[0].ExpectedDelayDays, ShouldEqual, 0)
		})
	})

	Convey("Given the delay-probability model failed to load", t, func() {
		svc := service.New(service.WithRegistry(paymentRegistry(
			predict.WithUnavailable("delay_probability", errArtifactMissing),
			predict.WithModel(delayDaysModel(3)),
		)))
		res, err := svc.ScoreBatch(ctx, rows)

		Convey("Then every party is skipped and the batch fails", func() {
			So(errors.Is(err, service.ErrNoResults), ShouldBeTrue)
			So(res, ShouldNotBeNil)
			So(len(res.Skipped), ShouldEqual, 2)
			So(res.Skipped[0].Kind, ShouldEqual, service.KindModelUnavailable)
			So(svc.GetStats().FailedBatches, ShouldEqual, 1)
		})
	})

	Convey("Given a model whose features drifted from the aggregator", t, func() {
		svc := service.New(service.WithRegistry(paymentRegistry(
			predict.WithModel(predict.Classify("delay_probability", fakeClassifier{
				features: []string{"avg_delay_days", "on_time_rate"},
				p:        constant(0.5),
			})),
			predict.WithModel(delayDaysModel(3)),
		)))
		res, err := svc.ScoreBatch(ctx, rows)

		Convey("Then parties are skipped with a feature shape error", func() {
			So(errors.Is(err, service.ErrNoResults), ShouldBeTrue)
			So(res.Skipped[0].Kind, ShouldEqual, service.KindFeatureShape)
		})
	})

	Convey("Given adversarial model outputs", t, func() {
		svc := service.New(service.WithRegistry(paymentRegistry(
			predict.WithModel(delayProbabilityModel(1.0)),
			predict.WithModel(delayDaysModel(1e9)),
		)))
		res, err := svc.ScoreBatch(ctx, rows)

		Convey("Then scores stay within [0,100]", func() {
			So(err, ShouldBeNil)
			for _, r := range res.Results {
				So(r.CompositeScore, ShouldBeBetweenOrEqual, 0, 100)
				So(r.Tier, ShouldEqual, model.TierCritical)
			}
		})
	})

	Convey("Given a model slower than the batch timeout", t, func() {
		slow := predict.Classify("delay_probability", fakeClassifier{
			features: roleFeatures(&service.PaymentDelay, "delay_probability"),
			p:        constant(0.1),
			delay:    50 * time.Millisecond,
		})
		svc := service.New(
			service.WithRegistry(paymentRegistry(predict.WithModel(slow), predict.WithModel(delayDaysModel(1)))),
			service.WithBatchTimeout(5*time.Millisecond),
		)
		_, err := svc.ScoreBatch(ctx, rows)

		Convey("Then the batch fails with a timeout", func() {
			So(err, ShouldNotBeNil)
			So(service.ErrorKind(err), ShouldEqual, service.KindTimeout)
		})
	})
}
