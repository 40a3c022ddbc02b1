package core

import "time"

// Billing-cycle date arithmetic. All month math is calendar-correct:
// shifting by a month clips the day to the target month's last valid
// day rather than assuming 30-day months. Closing and due days of
// 29-31 in short months resolve to the month's last day; this clipping
// policy shifts those invoice boundaries and is intentional.

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateClipped builds a date, clipping day to the last valid day of the
// month (e.g. 2024-02-31 becomes 2024-02-29).
func DateClipped(year, month, day int) Date {
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return NewDate(year, month, day)
}

// AddMonths shifts the date by n calendar months, preserving the day
// of month when valid and clipping otherwise (Jan 31 + 1 month is
// Feb 28 or 29).
func AddMonths(d Date, n int) Date {
	months := d.Year()*12 + d.Month() - 1 + n
	year := months / 12
	month := months%12 + 1
	return DateClipped(year, month, d.Day())
}

// CycleEndDate returns the statement closing date of the invoice that
// owns a purchase made on txDate for a card closing on closingDay.
// Purchases on the closing day itself belong to the closing cycle;
// later purchases roll over to the next month's statement.
func CycleEndDate(closingDay int, txDate Date) Date {
	if txDate.Day() <= closingDay {
		return DateClipped(txDate.Year(), txDate.Month(), closingDay)
	}
	next := AddMonths(txDate, 1)
	return DateClipped(next.Year(), next.Month(), closingDay)
}

// CycleDueDate returns the payment due date for an invoice closing on
// endDate. When the due day falls after the closing day the invoice is
// due in the closing month; otherwise it is due the following month.
func CycleDueDate(closingDay, dueDay int, endDate Date) Date {
	if dueDay > closingDay {
		return DateClipped(endDate.Year(), endDate.Month(), dueDay)
	}
	next := AddMonths(endDate, 1)
	return DateClipped(next.Year(), next.Month(), dueDay)
}

// SplitInstallment returns the per-installment amount for a purchase
// of totalCents split into count equal parts, rounded half-up to the
// cent. The drift between count*result and totalCents is not
// reconciled; it is bounded by half a cent per installment.
func SplitInstallment(totalCents int64, count int) int64 {
	n := int64(count)
	q := totalCents / n
	if 2*(totalCents%n) >= n {
		q++
	}
	return q
}
