package models

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{AssignmentStatusAssigned, AssignmentStatusAccepted},
		{AssignmentStatusAccepted, AssignmentStatusPickedUp},
		{AssignmentStatusPickedUp, AssignmentStatusInTransit},
		{AssignmentStatusPickedUp, AssignmentStatusDelivered},
		{AssignmentStatusInTransit, AssignmentStatusDelivered},
	}
	for _, tr := range allowed {
		if !CanTransition(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be allowed", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to string }{
		{AssignmentStatusAssigned, AssignmentStatusPickedUp},
		{AssignmentStatusAssigned, AssignmentStatusDelivered},
		{AssignmentStatusAccepted, AssignmentStatusDelivered},
		{AssignmentStatusDelivered, AssignmentStatusInTransit},
		{AssignmentStatusDelivered, AssignmentStatusDelivered},
		{AssignmentStatusCancelled, AssignmentStatusAccepted},
		{AssignmentStatusInTransit, AssignmentStatusPickedUp},
	}
	for _, tr := range denied {
		if CanTransition(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be denied", tr.from, tr.to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, status := range []string{AssignmentStatusDelivered, AssignmentStatusCancelled} {
		a := Assignment{Status: status}
		if !a.IsTerminal() {
			t.Errorf("expected %s to be terminal", status)
		}
	}
	for _, status := range []string{AssignmentStatusAssigned, AssignmentStatusAccepted, AssignmentStatusPickedUp, AssignmentStatusInTransit} {
		a := Assignment{Status: status}
		if a.IsTerminal() {
			t.Errorf("expected %s to be non-terminal", status)
		}
	}
}

func TestDelayMinutes(t *testing.T) {
	estimate := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a := Assignment{EstimatedDelivery: estimate}
	if got := a.DelayMinutes(); got != 0 {
		t.Fatalf("expected 0 before delivery, got %.1f", got)
	}

	late := estimate.Add(45 * time.Minute)
	a.ActualDelivery = &late
	if got := a.DelayMinutes(); got != 45 {
		t.Fatalf("expected 45, got %.1f", got)
	}

	early := estimate.Add(-30 * time.Minute)
	a.ActualDelivery = &early
	if got := a.DelayMinutes(); got != -30 {
		t.Fatalf("expected -30, got %.1f", got)
	}
}
