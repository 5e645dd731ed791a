package aggregate_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/partyrisk/internal/domain/aggregate"
	"github.com/okian/partyrisk/internal/domain/model"
)

func tx(days float64, delayed bool, amount int64, credit float64) model.CanonicalTransaction {
	return model.CanonicalTransaction{
		PartyID:       "A",
		DaysInPayment: days,
		IsDelayed:     delayed,
		Amount:        decimal.NewFromInt(amount),
		CreditDays:    credit,
	}
}

func TestParty(t *testing.T) {
	Convey("Given two on-time transactions for party A", t, func() {
		txs := []model.CanonicalTransaction{
			tx(0, false, 55000, 30),
			tx(-4, false, 80000, 45),
		}

		Convey("When aggregated", func() {
			fv, err := aggregate.Party("A", txs, 0)

			Convey("Then the feature vector matches the worked example", func() {
				So(err, ShouldBeNil)
				So(fv.PartyID, ShouldEqual, "A")
				So(fv.AvgDelayDays, ShouldEqual, -2)
				So(fv.MaxDelayDays, ShouldEqual, 0)
				So(fv.StdDelayDays, ShouldEqual, 2)
				So(fv.DelayedCount, ShouldEqual, 0)
				So(fv.TotalTxn, ShouldEqual, 2)
				So(fv.OnTimeRate, ShouldEqual, 1.0)
				So(fv.TotalValue, ShouldEqual, 135000)
				So(fv.Amount, ShouldEqual, 67500)
				So(fv.AvgCreditDays, ShouldEqual, 37.5)
				So(fv.OutstandingAmount, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a single transaction", t, func() {
		fv, err := aggregate.Party("A", []model.CanonicalTransaction{tx(17, true, 10, 30)}, 0)

		Convey("Then the standard deviation is zero", func() {
			So(err, ShouldBeNil)
			So(fv.StdDelayDays, ShouldEqual, 0)
			So(fv.MaxDelayDays, ShouldEqual, 17)
			So(fv.OnTimeRate, ShouldEqual, 0)
		})
	})

	Convey("Given only negative delays", t, func() {
		fv, err := aggregate.Party("A", []model.CanonicalTransaction{tx(-9, false, 1, 1), tx(-3, false, 1, 1)}, 0)

		Convey("Then the maximum is the largest negative value", func() {
			So(err, ShouldBeNil)
			So(fv.MaxDelayDays, ShouldEqual, -3)
		})
	})

	Convey("Given groups with arbitrary delay mixes", t, func() {
		Convey("Then on_time_rate and the delayed share sum to exactly one", func() {
			for total := 1; total <= 40; total++ {
				for delayed := 0; delayed <= total; delayed++ {
					txs := make([]model.CanonicalTransaction, total)
					for i := range txs {
						txs[i] = tx(float64(i), i < delayed, 100, 30)
					}
					fv, err := aggregate.Party("A", txs, 0)
					So(err, ShouldBeNil)
					So(fv.OnTimeRate+float64(fv.DelayedCount)/float64(fv.TotalTxn), ShouldEqual, 1.0)
				}
			}
		})
	})

	Convey("Given a party with no valid transactions", t, func() {
		_, err := aggregate.Party("B", nil, 3)

		Convey("Then an InsufficientDataError is returned", func() {
			var ide *aggregate.InsufficientDataError
			So(errors.As(err, &ide), ShouldBeTrue)
			So(ide.PartyID, ShouldEqual, "B")
			So(ide.Rejected, ShouldEqual, 3)
			So(errors.Is(err, aggregate.ErrInsufficientData), ShouldBeTrue)
		})
	})
}

func TestProject(t *testing.T) {
	Convey("Given a feature vector", t, func() {
		fv := model.PartyFeatureVector{DelayedCount: 2, TotalTxn: 5, AvgCreditDays: 30, Amount: 1000}

		Convey("When projected onto regressor features", func() {
			names := []string{model.FeatureDelayedCount, model.FeatureTotalTxn, model.FeatureCreditDays, model.FeatureAmount, model.FeatureOutstandingAmount}
			v, err := aggregate.Project("delay_days", &fv, names)

			Convey("Then values follow the requested order", func() {
				So(err, ShouldBeNil)
				So(v.Names, ShouldResemble, names)
				So(v.Values, ShouldResemble, []float64{2, 5, 30, 1000, 0})
			})
		})

		Convey("When a feature name is unknown", func() {
			_, err := aggregate.Project("m", &fv, []string{model.FeatureTotalTxn, "velocity"})

			Convey("Then a typed shape error names the model and both feature lists", func() {
				So(errors.Is(err, aggregate.ErrFeatureShape), ShouldBeTrue)
				var fse *aggregate.FeatureShapeError
				So(errors.As(err, &fse), ShouldBeTrue)
				So(fse.ModelID, ShouldEqual, "m")
				So(fse.Expected, ShouldResemble, []string{model.FeatureTotalTxn, "velocity"})
				So(fse.Got, ShouldResemble, []string{model.FeatureTotalTxn})
				So(fse.Unknown, ShouldResemble, []string{"velocity"})
				So(err.Error(), ShouldContainSubstring, "unknown [velocity]")
			})
		})
	})

	Convey("Given loose inputs", t, func() {
		v := aggregate.FromMap(map[string]float64{"b": 2}, []string{"a", "b"})
		So(v.Values, ShouldResemble, []float64{0, 2})
	})
}
