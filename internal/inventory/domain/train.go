package domain

// Train is the unit of bookable inventory, keyed by train number.
// Available never leaves [0, Capacity]; the debit path enforces the
// lower bound in the store, Validate enforces the rest on writes.
type Train struct {
	Number      int64
	Name        string
	FromStation string
	ToStation   string
	Capacity    int
	Available   int
	Fare        float64
}

func (t Train) Valid() bool {
	return t.Number > 0 &&
		t.Name != "" &&
		t.FromStation != "" &&
		t.ToStation != "" &&
		t.Capacity >= 0 &&
		t.Available >= 0 && t.Available <= t.Capacity &&
		t.Fare >= 0
}
