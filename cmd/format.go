package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lukman83/trustrank/internal/models"
)

// printRankingTable prints "shop ||| user ||| final ||| name" lines, best first.
func printRankingTable(w io.Writer, items []models.Item, elapsed time.Duration) {
	fmt.Fprintln(w, "----------------------------")
	fmt.Fprintf(w, "This is the final result: \n\n")
	for _, it := range items {
		if it.Score == nil {
			continue
		}
		fmt.Fprintf(w, "%s ||| %s ||| %s ||| %s%s\n",
			formatPoint(it.Score.ShopPoint),
			formatPoint(it.Score.UserPoint),
			formatPoint(it.Score.FinalPoint),
			it.Name,
			enrichmentNote(it.Enrichment),
		)
	}
	fmt.Fprintln(w, "---------END OF PROGRAM------------")
	fmt.Fprintf(w, "The program took %.2fs to finish.\n", elapsed.Seconds())
}

// formatPoint prints the shortest exact representation, always with a
// fractional part: 10 → "10.0", 3.5 → "3.5".
func formatPoint(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func enrichmentNote(e models.Enrichment) string {
	var notes []string
	if e.ShopFailed {
		notes = append(notes, "shop unavailable")
	}
	if e.RatingsFailed {
		notes = append(notes, "reviews unavailable")
	}
	if len(notes) == 0 {
		return ""
	}
	return "  [" + strings.Join(notes, ", ") + "]"
}
