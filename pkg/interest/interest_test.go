package interest

import "testing"

func TestAccrued_ZeroElapsed(t *testing.T) {
	if got := Accrued(1_000_000, 1000, 0); got != 0 {
		t.Fatalf("interest at t=0: got %d, want 0", got)
	}
}

func TestAccrued_NegativeElapsed(t *testing.T) {
	if got := Accrued(1_000_000, 1000, -60); got != 0 {
		t.Fatalf("negative elapsed: got %d, want 0", got)
	}
}

// 1,000 units at 10% APR for 180 days truncates to 49.
func TestAccrued_HalfYearExample(t *testing.T) {
	const elapsed = 180 * 86400 // 15,552,000s
	got := Accrued(1000, 1000, elapsed)
	if got != 49 {
		t.Fatalf("Accrued(1000, 1000bps, 180d) = %d, want 49", got)
	}
}

func TestAccrued_FullYear(t *testing.T) {
	// 10% APR over exactly one accrual year.
	if got := Accrued(1_000_000, 1000, SecondsPerYear); got != 100_000 {
		t.Fatalf("full year: got %d, want 100000", got)
	}
}

func TestAccrued_TruncatesNeverRoundsUp(t *testing.T) {
	// 1 unit for 1 second at 10000 bps is far below one base unit.
	if got := Accrued(1, 10_000, 1); got != 0 {
		t.Fatalf("sub-unit interest must truncate to 0, got %d", got)
	}
}

func TestAccrued_MonotonicInTime(t *testing.T) {
	var prev uint64
	for _, elapsed := range []int64{0, 1, 3600, 86400, 30 * 86400, SecondsPerYear} {
		got := Accrued(5_000_000, 2200, elapsed)
		if got < prev {
			t.Fatalf("accrual decreased: %d at %ds after %d", got, elapsed, prev)
		}
		prev = got
	}
}

func TestAccrued_NoOverflowOnLargeInputs(t *testing.T) {
	// The intermediate product exceeds uint64; the result must still be exact.
	got := Accrued(1<<60, 10_000, 10*SecondsPerYear)
	if want := uint64(1<<60) * 10; got != want {
		t.Fatalf("large input accrual: got %d, want %d", got, want)
	}
}
