package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

var (
	isoDatePattern     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})\b`)
	monthFirstPattern  = regexp.MustCompile(`(?i)\b` + monthNames + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4}|\d{2})\b`)
	dayFirstPattern    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+` + monthNames + `\.?,?\s+(\d{4}|\d{2})\b`)
)

const monthNames = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// expandYear maps two-digit years onto a century: below 50 is 20xx, else 19xx.
func expandYear(y string) (int, bool) {
	n, err := strconv.Atoi(y)
	if err != nil {
		return 0, false
	}
	if len(y) == 2 {
		if n < 50 {
			return 2000 + n, true
		}
		return 1900 + n, true
	}
	return n, true
}

func formatISO(y, m, d int) (string, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}

// normalizeISODate accepts an already ISO-shaped token as is.
func normalizeISODate(s string) (string, bool) {
	if !isoDatePattern.MatchString(s) {
		return "", false
	}
	return s, true
}

// normalizeNumericDate converts M/D/YY[YY] or M-D-YY[YY] to ISO. US order is
// assumed unless the first component cannot be a month.
func normalizeNumericDate(s string) (string, bool) {
	m := numericDatePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if month > 12 && day <= 12 {
		month, day = day, month
	}
	year, ok := expandYear(m[3])
	if !ok {
		return "", false
	}
	return formatISO(year, month, day)
}

func monthNameDate(monthName, day, year string) (string, bool) {
	name := strings.ToLower(monthName)
	if len(name) > 3 {
		name = name[:3]
	}
	mon, ok := months[name]
	if !ok {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return "", false
	}
	y, ok := expandYear(year)
	if !ok {
		return "", false
	}
	return formatISO(y, mon, d)
}

// FindDate returns the earliest date-shaped token in text that normalises,
// as ISO. ISO, numeric and month-name forms are recognised. A token that
// cannot be a date, such as 13/13/24, does not hide a later one.
func FindDate(text string) (string, bool) {
	best, bestIdx := "", -1
	scan := func(re *regexp.Regexp, normalize func(text string, m []int) (string, bool)) {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			if bestIdx != -1 && m[0] >= bestIdx {
				return
			}
			if date, ok := normalize(text, m); ok {
				best, bestIdx = date, m[0]
				return
			}
		}
	}

	scan(isoDatePattern, func(text string, m []int) (string, bool) {
		return normalizeISODate(text[m[0]:m[1]])
	})
	scan(numericDatePattern, func(text string, m []int) (string, bool) {
		return normalizeNumericDate(text[m[0]:m[1]])
	})
	scan(monthFirstPattern, func(text string, m []int) (string, bool) {
		return monthNameDate(text[m[2]:m[3]], text[m[4]:m[5]], text[m[6]:m[7]])
	})
	scan(dayFirstPattern, func(text string, m []int) (string, bool) {
		return monthNameDate(text[m[4]:m[5]], text[m[2]:m[3]], text[m[6]:m[7]])
	})

	return best, bestIdx != -1
}

// IsValidDate reports whether s is a real calendar date in ISO form.
func IsValidDate(s string) bool {
	_, err := time.Parse(isoLayout, s)
	return err == nil
}
