package engine

// BusinessDays counts the weekdays between from and to, both inclusive, where
// a weekend `to` contributes nothing extra: the half-open weekday count
// [from, to) plus one if `to` itself is a weekday. For from == to on a
// weekday the result is 1.
func BusinessDays(from, to Date) (int, error) {
	if from.After(to) {
		return 0, &IntervalError{From: from, To: to}
	}
	n := 0
	for d := from; d.Before(to); d = d.AddDays(1) {
		if !d.IsWeekend() {
			n++
		}
	}
	if !to.IsWeekend() {
		n++
	}
	return n, nil
}
