package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/meenmo/ratekit/utils"
)

// Tenor is a period expressed in months or days, such as "3M", "10Y" or "1W".
type Tenor struct {
	Months int
	Days   int
}

// ParseTenor converts tenor strings like "1W", "3M", "10Y" to a Tenor.
func ParseTenor(s string) (Tenor, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if len(s) < 2 {
		return Tenor{}, fmt.Errorf("ParseTenor: invalid tenor %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return Tenor{}, fmt.Errorf("ParseTenor: invalid tenor %q", s)
	}
	switch s[len(s)-1] {
	case 'D':
		return Tenor{Days: n}, nil
	case 'W':
		return Tenor{Days: 7 * n}, nil
	case 'M':
		return Tenor{Months: n}, nil
	case 'Y':
		return Tenor{Months: 12 * n}, nil
	default:
		return Tenor{}, fmt.Errorf("ParseTenor: invalid tenor unit in %q", s)
	}
}

// MustTenor parses s and panics on error. Intended for literals.
func MustTenor(s string) Tenor {
	t, err := ParseTenor(s)
	if err != nil {
		panic(err)
	}
	return t
}

// IsZero reports whether the tenor is empty.
func (t Tenor) IsZero() bool { return t.Months == 0 && t.Days == 0 }

// AddTo adds the tenor to d without business-day adjustment.
func (t Tenor) AddTo(d time.Time) time.Time {
	if t.Months != 0 {
		d = utils.AddMonth(d, t.Months)
	}
	return d.AddDate(0, 0, t.Days)
}

func (t Tenor) String() string {
	switch {
	case t.Days != 0 && t.Days%7 == 0 && t.Months == 0:
		return strconv.Itoa(t.Days/7) + "W"
	case t.Days != 0:
		return strconv.Itoa(t.Days) + "D"
	case t.Months != 0 && t.Months%12 == 0:
		return strconv.Itoa(t.Months/12) + "Y"
	default:
		return strconv.Itoa(t.Months) + "M"
	}
}
