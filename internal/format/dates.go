package format

import (
	"fmt"
	"time"

	"github.com/goodsign/monday"
)

const dateLayout = "2 de January de 2006, 03:04"

// Bogota is the display zone for every formatted date. Colombia has no DST,
// so a fixed offset is an exact fallback when tzdata is missing.
var Bogota = loadBogota()

func loadBogota() *time.Location {
	if loc, err := time.LoadLocation("America/Bogota"); err == nil {
		return loc
	}
	return time.FixedZone("COT", -5*60*60)
}

// Date renders t as "19 de octubre de 2026, 10:30 a. m." in Bogota time.
func Date(t time.Time) string {
	t = t.In(Bogota)

	// es-CO period marks
	period := "a. m."
	if t.Hour() >= 12 {
		period = "p. m."
	}
	return monday.Format(t, dateLayout, monday.LocaleEsES) + " " + period
}

// RelativeTime describes how long ago t was. After a week it falls back to Date.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}

	seconds := int(diff / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case seconds < 60:
		return fmt.Sprintf("hace %d segundos", seconds)
	case minutes < 60:
		return fmt.Sprintf("hace %d minutos", minutes)
	case hours < 24:
		return fmt.Sprintf("hace %d horas", hours)
	case days < 7:
		return fmt.Sprintf("hace %d días", days)
	default:
		return Date(t)
	}
}
