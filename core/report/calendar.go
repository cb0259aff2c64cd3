package report

import (
	"fmt"
	"strings"
	"time"
)

var (
	hijriMonths = [12]string{
		"محرم", "صفر", "ربيع الأول", "ربيع الآخر", "جمادى الأولى", "جمادى الآخرة",
		"رجب", "شعبان", "رمضان", "شوال", "ذو القعدة", "ذو الحجة",
	}

	arabicDigits = strings.NewReplacer(
		"0", "٠", "1", "١", "2", "٢", "3", "٣", "4", "٤",
		"5", "٥", "6", "٦", "7", "٧", "8", "٨", "9", "٩",
	)
)

// Hijri converts a date to the tabular Islamic calendar (civil epoch).
func Hijri(t time.Time) (year, month, day int) {
	y, m, d := t.Date()
	jdn := julianDayNumber(y, int(m), d)

	l := jdn - 1948440 + 10632
	n := (l - 1) / 10631
	l = l - 10631*n + 354
	j := ((10985-l)/5316)*((50*l)/17719) + (l/5670)*((43*l)/15238)
	l = l - ((30-j)/15)*((17719*j)/50) - (j/16)*((15238*j)/43) + 29
	month = (24 * l) / 709
	day = l - (709*month)/24
	year = 30*n + j - 30
	return year, month, day
}

func julianDayNumber(year, month, day int) int {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

// ArabicDate renders t as a Hijri date with Arabic-Indic digits, e.g. "١ رمضان ١٤٤٥ هـ".
func ArabicDate(t time.Time) string {
	y, m, d := Hijri(t)
	return ArabicDigits(fmt.Sprintf("%d %s %d هـ", d, hijriMonths[m-1], y))
}

// EnglishDate renders t the en-US way, e.g. "3/11/2024".
func EnglishDate(t time.Time) string {
	return t.Format("1/2/2006")
}

// ArabicDigits replaces ASCII digits with Arabic-Indic ones.
func ArabicDigits(s string) string {
	return arabicDigits.Replace(s)
}
