package flood

import (
	"testing"
	"time"
)

func TestSixMessagesInWindowTriggers(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(10*time.Second, 5)
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if tracker.RecordAndCheck(1, base.Add(time.Duration(i)*500*time.Millisecond)) {
			t.Fatalf("flood flagged on message %d", i+1)
		}
	}
	if !tracker.RecordAndCheck(1, base.Add(4*time.Second)) {
		t.Fatal("expected flood on 6th message within window")
	}
}

func TestSpreadMessagesDoNotTrigger(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(10*time.Second, 5)
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	// 5 messages across 11+ seconds never flood, and older entries fall
	// out of the window as time advances.
	for i := 0; i < 5; i++ {
		if tracker.RecordAndCheck(1, base.Add(time.Duration(i)*3*time.Second)) {
			t.Fatalf("unexpected flood on spread message %d", i+1)
		}
	}
	if tracker.RecordAndCheck(1, base.Add(15*time.Second)) {
		t.Fatal("unexpected flood after window expired")
	}
}

func TestWindowsArePerUser(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(10*time.Second, 5)
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		tracker.RecordAndCheck(1, base.Add(time.Duration(i)*time.Second))
	}
	if tracker.RecordAndCheck(2, base.Add(6*time.Second)) {
		t.Fatal("user 2 inherited user 1's window")
	}
}

func TestForgetClearsWindow(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(10*time.Second, 5)
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		tracker.RecordAndCheck(1, base.Add(time.Duration(i)*time.Second))
	}
	tracker.Forget(1)
	if tracker.RecordAndCheck(1, base.Add(7*time.Second)) {
		t.Fatal("window survived Forget")
	}
}
