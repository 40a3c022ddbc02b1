package core

import "testing"

func TestCycleEndDate(t *testing.T) {
	tests := []struct {
		name       string
		closingDay int
		txDate     Date
		want       Date
	}{
		{
			name:       "before closing day stays in same month",
			closingDay: 25,
			txDate:     NewDate(2024, 1, 20),
			want:       NewDate(2024, 1, 25),
		},
		{
			name:       "on closing day stays in same month",
			closingDay: 25,
			txDate:     NewDate(2024, 1, 25),
			want:       NewDate(2024, 1, 25),
		},
		{
			name:       "after closing day rolls to next month",
			closingDay: 25,
			txDate:     NewDate(2024, 1, 26),
			want:       NewDate(2024, 2, 25),
		},
		{
			name:       "rollover across year boundary",
			closingDay: 10,
			txDate:     NewDate(2024, 12, 15),
			want:       NewDate(2025, 1, 10),
		},
		{
			name:       "closing day 31 clips in 30-day month",
			closingDay: 31,
			txDate:     NewDate(2024, 4, 10),
			want:       NewDate(2024, 4, 30),
		},
		{
			name:       "closing day 30 clips in leap february",
			closingDay: 30,
			txDate:     NewDate(2024, 2, 10),
			want:       NewDate(2024, 2, 29),
		},
		{
			name:       "closing day 30 clips in non-leap february",
			closingDay: 30,
			txDate:     NewDate(2023, 2, 10),
			want:       NewDate(2023, 2, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CycleEndDate(tt.closingDay, tt.txDate)
			if !got.Equal(tt.want) {
				t.Errorf("CycleEndDate(%d, %s) = %s, want %s", tt.closingDay, tt.txDate, got, tt.want)
			}
		})
	}
}

func TestCycleDueDate(t *testing.T) {
	tests := []struct {
		name       string
		closingDay int
		dueDay     int
		endDate    Date
		want       Date
	}{
		{
			name:       "due day after closing day falls in closing month",
			closingDay: 5,
			dueDay:     15,
			endDate:    NewDate(2024, 1, 5),
			want:       NewDate(2024, 1, 15),
		},
		{
			name:       "due day before closing day falls in next month",
			closingDay: 25,
			dueDay:     10,
			endDate:    NewDate(2024, 2, 25),
			want:       NewDate(2024, 3, 10),
		},
		{
			name:       "due day equal to closing day falls in next month",
			closingDay: 10,
			dueDay:     10,
			endDate:    NewDate(2024, 3, 10),
			want:       NewDate(2024, 4, 10),
		},
		{
			name:       "due date rolls across year boundary",
			closingDay: 25,
			dueDay:     10,
			endDate:    NewDate(2024, 12, 25),
			want:       NewDate(2025, 1, 10),
		},
		{
			name:       "due day 31 clips in short month",
			closingDay: 28,
			dueDay:     31,
			endDate:    NewDate(2024, 4, 28),
			want:       NewDate(2024, 4, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CycleDueDate(tt.closingDay, tt.dueDay, tt.endDate)
			if !got.Equal(tt.want) {
				t.Errorf("CycleDueDate(%d, %d, %s) = %s, want %s", tt.closingDay, tt.dueDay, tt.endDate, got, tt.want)
			}
		})
	}
}

// Reference scenario: card closing on the 25th, due on the 10th.
func TestCycleScenarioClosing25Due10(t *testing.T) {
	end := CycleEndDate(25, NewDate(2024, 1, 26))
	if !end.Equal(NewDate(2024, 2, 25)) {
		t.Fatalf("end date for 2024-01-26 = %s, want 2024-02-25", end)
	}
	due := CycleDueDate(25, 10, end)
	if !due.Equal(NewDate(2024, 3, 10)) {
		t.Fatalf("due date = %s, want 2024-03-10", due)
	}

	end = CycleEndDate(25, NewDate(2024, 1, 20))
	if !end.Equal(NewDate(2024, 1, 25)) {
		t.Fatalf("end date for 2024-01-20 = %s, want 2024-01-25", end)
	}
	due = CycleDueDate(25, 10, end)
	if !due.Equal(NewDate(2024, 2, 10)) {
		t.Fatalf("due date = %s, want 2024-02-10", due)
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		d    Date
		n    int
		want Date
	}{
		{"plain month shift", NewDate(2024, 1, 15), 1, NewDate(2024, 2, 15)},
		{"several months", NewDate(2024, 1, 15), 2, NewDate(2024, 3, 15)},
		{"year rollover", NewDate(2024, 11, 20), 3, NewDate(2025, 2, 20)},
		{"jan 31 clips to leap feb", NewDate(2024, 1, 31), 1, NewDate(2024, 2, 29)},
		{"jan 31 clips to non-leap feb", NewDate(2023, 1, 31), 1, NewDate(2023, 2, 28)},
		{"day preserved after clip month", NewDate(2024, 1, 31), 2, NewDate(2024, 3, 31)},
		{"zero months", NewDate(2024, 6, 10), 0, NewDate(2024, 6, 10)},
		{"negative shift", NewDate(2024, 3, 31), -1, NewDate(2024, 2, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonths(tt.d, tt.n)
			if !got.Equal(tt.want) {
				t.Errorf("AddMonths(%s, %d) = %s, want %s", tt.d, tt.n, got, tt.want)
			}
		})
	}
}

func TestSplitInstallment(t *testing.T) {
	tests := []struct {
		name       string
		totalCents int64
		count      int
		want       int64
	}{
		{"exact division", 10000, 4, 2500},
		{"100 into 3 rounds down", 10000, 3, 3333},
		{"200 into 3 rounds up", 20000, 3, 6667},
		{"half rounds up", 1001, 2, 501},
		{"single cent drift stays bounded", 99999, 12, 8333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitInstallment(tt.totalCents, tt.count)
			if got != tt.want {
				t.Errorf("SplitInstallment(%d, %d) = %d, want %d", tt.totalCents, tt.count, got, tt.want)
			}
			// Rounding drift must stay within one cent per installment.
			drift := got*int64(tt.count) - tt.totalCents
			if drift < 0 {
				drift = -drift
			}
			if drift > int64(tt.count) {
				t.Errorf("drift %d exceeds %d cents for %d/%d", drift, tt.count, tt.totalCents, tt.count)
			}
		})
	}
}
