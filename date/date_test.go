package date

import (
	"encoding/json"
	"slices"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestOf(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	testCases := []struct {
		name string
		in   time.Time
		want Date
	}{
		{"midnight utc", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), New(2024, 1, 1)},
		{"end of day utc", time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC), New(2024, 1, 1)},
		{"local zone is converted", time.Date(2024, 1, 2, 0, 30, 0, 0, paris), New(2024, 1, 1)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Of(tc.in); got != tc.want {
				t.Errorf("Of(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	a, b := MustParse("2024-01-31"), MustParse("2024-2-1")
	if !a.Before(b) || b.Before(a) || a.After(b) || !b.After(a) {
		t.Errorf("%v and %v are not ordered", a, b)
	}
	if a.Compare(a) != 0 {
		t.Errorf("%v.Compare(itself) = %d, want 0", a, a.Compare(a))
	}
	if got := a.Add(1); got != b {
		t.Errorf("%v.Add(1) = %v, want %v", a, got, b)
	}
	for _, tc := range []struct {
		x, y string
		want int
	}{
		{"2023-12-31", "2024-01-01", -1},
		{"2024-03-01", "2024-02-29", 1},
		{"2024-02-10", "2024-02-09", 1},
		{"2024-02-10", "2024-02-10", 0},
	} {
		if got := MustParse(tc.x).Compare(MustParse(tc.y)); got != tc.want {
			t.Errorf("%s.Compare(%s) = %d, want %d", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestEndOfDay(t *testing.T) {
	d := MustParse("2024-03-10")
	if got := Of(d.EndOfDay()); got != d {
		t.Errorf("Of(EndOfDay()) = %v, want %v", got, d)
	}
	if !d.EndOfDay().Before(d.Add(1).Time()) {
		t.Errorf("EndOfDay() is not before the next day")
	}
}

func TestJSON(t *testing.T) {
	d := MustParse("2024-7-1")
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2024-07-01"` {
		t.Errorf("json.Marshal() = %s, want %q", data, "2024-07-01")
	}
	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != d {
		t.Errorf("json.Unmarshal() = %v, want %v", back, d)
	}
}

func TestRange(t *testing.T) {
	r := NewRange(MustParse("2024-01-03"), MustParse("2024-01-01"))
	if got := r.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	want := []Date{MustParse("2024-01-01"), MustParse("2024-01-02"), MustParse("2024-01-03")}
	if got := slices.Collect(r.Days()); !slices.Equal(got, want) {
		t.Errorf("Days() = %v, want %v", got, want)
	}
	slices.Reverse(want)
	if got := slices.Collect(r.Backward()); !slices.Equal(got, want) {
		t.Errorf("Backward() = %v, want %v", got, want)
	}
	if r.Contains(MustParse("2024-01-04")) {
		t.Errorf("Contains(2024-01-04) = true, want false")
	}
}
