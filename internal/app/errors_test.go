package app

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsEmptyResult(t *testing.T) {
	err := fmt.Errorf("pipeline: %w", &EmptyResultError{Reason: ReasonGroundFiltered})
	reason, ok := IsEmptyResult(err)
	if !ok || reason != ReasonGroundFiltered {
		t.Errorf("IsEmptyResult = %q, %v", reason, ok)
	}

	if _, ok := IsEmptyResult(errors.New("boom")); ok {
		t.Error("unrelated error reported as empty result")
	}
}

func TestIsConfiguration(t *testing.T) {
	if !IsConfiguration(&ConfigurationError{Reason: "no identifiers"}) {
		t.Error("ConfigurationError not recognized")
	}
	if IsConfiguration(errors.New("boom")) {
		t.Error("unrelated error recognized as configuration")
	}
}

func TestPointTime(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := TracePoint{BaseTime: base, Offset: 100.5}
	want := base.Add(100*time.Second + 500*time.Millisecond)
	if !p.PointTime().Equal(want) {
		t.Errorf("point time = %v, want %v", p.PointTime(), want)
	}
}
