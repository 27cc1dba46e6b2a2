package page

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"zenith/internal/progression"
)

// Money renders whole currency with separators, switching to SI prefixes
// once the digits stop being readable.
func Money(v float64) string {
	v = math.Floor(v)
	if math.Abs(v) >= 1e15 {
		return humanize.SIWithDigits(v, 2, "")
	}
	return humanize.Commaf(v)
}

func itoa(n int) string { return strconv.Itoa(n) }

func multiplier(v float64) string { return humanize.FtoaWithDigits(v, 2) }

func nextCost(u progression.UpgradeView) string {
	if u.Maxed {
		return "max"
	}
	return Money(u.NextCost)
}

func questStatus(q progression.QuestView) string {
	if q.Claimed {
		return "claimed"
	}
	return fmt.Sprintf("%d%%", int(q.Progress*100))
}

func resetsIn(t time.Time) string { return humanize.Time(t) }
