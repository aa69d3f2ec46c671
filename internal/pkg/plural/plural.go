// Package plural selects Russian noun forms for a count.
package plural

// Forms holds the three Russian plural forms: one, few, many
// (e.g. монета, монеты, монет).
type Forms [3]string

var (
	Coins   = Forms{"монета", "монеты", "монет"}
	Hours   = Forms{"час", "часа", "часов"}
	Minutes = Forms{"минуту", "минуты", "минут"}
)

// Pick returns the form agreeing with n.
func (f Forms) Pick(n int64) string {
	if n < 0 {
		n = -n
	}
	n %= 100
	if n > 10 && n < 20 {
		return f[2]
	}
	switch n % 10 {
	case 1:
		return f[0]
	case 2, 3, 4:
		return f[1]
	default:
		return f[2]
	}
}
