//go:build !integration

package usecase_test

import (
	"errors"
	"testing"

	"pnr-tracker/internal/domain"
	"pnr-tracker/internal/domain/model"
	"pnr-tracker/internal/usecase"
)

func reportWith(statuses ...string) *model.StatusReport {
	r := &model.StatusReport{Train: "12345 EXPRESS"}
	for _, s := range statuses {
		r.Passengers = append(r.Passengers, model.PassengerStatus{BookingStatus: "WL5", CurrentStatus: s, Probability: model.ProbabilityLow})
	}
	return r
}

func baselineOf(r *model.StatusReport) model.Baseline {
	return model.Baseline{Recorded: true, StatusText: r.Text(), PassengerStatuses: r.CurrentStatuses()}
}

func TestNewChangeDetector(t *testing.T) {
	for name, want := range map[string]string{
		"text":        usecase.PolicyText,
		" Passenger ": usecase.PolicyPassenger,
		"":            usecase.PolicyPassenger,
	} {
		d, err := usecase.NewChangeDetector(name)
		if err != nil {
			t.Fatalf("NewChangeDetector(%q) failed: %v", name, err)
		}
		if d.Name() != want {
			t.Errorf("NewChangeDetector(%q) = %s, want %s", name, d.Name(), want)
		}
	}

	if _, err := usecase.NewChangeDetector("fuzzy"); !errors.Is(err, domain.ErrUnknownPolicy) {
		t.Errorf("expected ErrUnknownPolicy, got %v", err)
	}
}

func TestChangeDetectorsShared(t *testing.T) {
	policies := []usecase.ChangeDetector{usecase.TextPolicy{}, usecase.PassengerPolicy{}}

	for _, p := range policies {
		t.Run(p.Name()+": empty baseline is always changed", func(t *testing.T) {
			for _, r := range []*model.StatusReport{reportWith(), reportWith("CNF"), reportWith("CNF", "WL1")} {
				if got := p.Detect(model.Baseline{}, r); got != model.Changed {
					t.Errorf("expected Changed against empty baseline, got %s", got)
				}
			}
		})

		t.Run(p.Name()+": identical reports are unchanged", func(t *testing.T) {
			r := reportWith("CNF", "WL1")
			if got := p.Detect(baselineOf(r), reportWith("CNF", "WL1")); got != model.Unchanged {
				t.Errorf("expected Unchanged, got %s", got)
			}
		})

		t.Run(p.Name()+": status change is changed", func(t *testing.T) {
			if got := p.Detect(baselineOf(reportWith("CNF", "WL1")), reportWith("CNF", "CNF")); got != model.Changed {
				t.Errorf("expected Changed, got %s", got)
			}
		})

		t.Run(p.Name()+": shrinking passenger list is changed", func(t *testing.T) {
			if got := p.Detect(baselineOf(reportWith("CNF", "WL1")), reportWith("CNF")); got != model.Changed {
				t.Errorf("expected Changed, got %s", got)
			}
		})

		t.Run(p.Name()+": growing passenger list is changed", func(t *testing.T) {
			if got := p.Detect(baselineOf(reportWith("CNF")), reportWith("CNF", "WL1")); got != model.Changed {
				t.Errorf("expected Changed, got %s", got)
			}
		})
	}
}

func TestTextPolicyCosmeticChange(t *testing.T) {
	before := reportWith("CNF")
	after := reportWith("CNF")
	after.Platform = "4"

	if got := (usecase.TextPolicy{}).Detect(baselineOf(before), after); got != model.Changed {
		t.Errorf("text policy must flag cosmetic differences, got %s", got)
	}
	if got := (usecase.PassengerPolicy{}).Detect(baselineOf(before), after); got != model.Unchanged {
		t.Errorf("passenger policy must ignore cosmetic differences, got %s", got)
	}
}

func TestPassengerPolicyBookingStatusIgnored(t *testing.T) {
	before := reportWith("CNF")
	after := reportWith("CNF")
	after.Passengers[0].Probability = model.ProbabilityHigh

	if got := (usecase.PassengerPolicy{}).Detect(baselineOf(before), after); got != model.Unchanged {
		t.Errorf("only current status counts for the passenger policy, got %s", got)
	}
}

func TestPassengerPolicyRecordedEmptyBaseline(t *testing.T) {
	// a recorded baseline with zero passengers is a real observation
	b := model.Baseline{Recorded: true}
	if got := (usecase.PassengerPolicy{}).Detect(b, reportWith()); got != model.Unchanged {
		t.Errorf("expected Unchanged for two passengerless reports, got %s", got)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	b := baselineOf(reportWith("WL5"))
	fresh := reportWith("CNF")
	for _, p := range []usecase.ChangeDetector{usecase.TextPolicy{}, usecase.PassengerPolicy{}} {
		first := p.Detect(b, fresh)
		for i := 0; i < 10; i++ {
			if p.Detect(b, fresh) != first {
				t.Fatalf("%s policy is not deterministic", p.Name())
			}
		}
		if len(b.PassengerStatuses) != 1 || b.PassengerStatuses[0] != "WL5" {
			t.Fatalf("%s policy mutated its baseline", p.Name())
		}
	}
}
