// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"errors"
	"math"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorIs fails the test unless err wraps target.
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// AssertInDelta checks that got is within delta of want.
func AssertInDelta(t *testing.T, got, want, delta float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > delta {
		t.Errorf("value = %g, want %g (±%g)", got, want, delta)
	}
}

// AssertVec3InDelta checks each component of a 3-vector within delta.
func AssertVec3InDelta(t *testing.T, got, want [3]float64, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if math.IsNaN(got[i]) || math.Abs(got[i]-want[i]) > delta {
			t.Errorf("component %d = %g, want %g (±%g)", i, got[i], want[i], delta)
			return
		}
	}
}

// AssertVec2InDelta checks each component of a 2-vector within delta.
func AssertVec2InDelta(t *testing.T, got, want [2]float64, delta float64) {
	t.Helper()
	for i := 0; i < 2; i++ {
		if math.IsNaN(got[i]) || math.Abs(got[i]-want[i]) > delta {
			t.Errorf("component %d = %g, want %g (±%g)", i, got[i], want[i], delta)
			return
		}
	}
}
