package templates

import (
	"strconv"
	"strings"
)

// joined renders count items built by item, separated by commas.
func joined(count int, item func(i int) string) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		sb.WriteString(item(i))
		if i < count-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}

// prefixedStrings renders "p0, p1, ..." for prefix p.
func prefixedStrings(prefix string, count int) string {
	return joined(count, func(i int) string {
		return prefix + strconv.Itoa(i)
	})
}

// typedParams renders "v0 T0, v1 T1, ...".
func typedParams(count int) string {
	return joined(count, func(i int) string {
		n := strconv.Itoa(i)
		return "v" + n + " T" + n
	})
}

var numberWords = []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}

func numberWord(n int) string {
	if n < len(numberWords) {
		return numberWords[n]
	}
	return strconv.Itoa(n)
}
