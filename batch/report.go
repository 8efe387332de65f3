package batch

import (
	"fmt"
	"io"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/mackerelio/go-osstat/memory"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// round2 rounds to 2 decimal places (all MB figures in reports).
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// TotalSizeMB sums the units' sizes. Each size is rounded to 2
// decimals BEFORE the summation; the total is therefore an
// approximation and matches the per-unit lines of the listing.
func TotalSizeMB(units []*Unit) float64 {
	total := 0.0
	for _, u := range units {
		total += u.SizeMB()
	}
	return total
}

// ----------  HELPER  -----------------------------------------------------------------------------------------------//

// printSpace reports free space vs. the batch total. The result is
// advisory: encryption doubles the used space until the operator
// deletes the cleartext, but a shortfall never blocks the run.
func printSpace(out io.Writer, freeBytes uint64, totalMB float64) {
	freeMB := round2(float64(freeBytes) / (1024 * 1024))
	fmt.Fprintf(out, "Free space: %.2f MB (%s)\n", freeMB, humanize.IBytes(freeBytes))
	fmt.Fprintf(out, "Total file size: %.2f MB\n", totalMB)
	if freeMB < totalMB {
		fmt.Fprintf(out, "Are you sure there is enough space?\n")
	}
	fmt.Fprintln(out)
}

// printMemoryAdvisory warns when free RAM is scarce. Mostly relevant
// for the in-process backend (scrypt needs a working buffer per file).
// Prints nothing when there is clearly enough memory.
func printMemoryAdvisory(out io.Writer) {
	mem, err := memory.Get()
	if err != nil {
		return // no stats, no advisory
	}

	totalMB := int(mem.Total / (1024 * 1024))
	usedMB := int(mem.Used / (1024 * 1024))
	freeMB := int(mem.Free / (1024 * 1024))
	if freeMB >= 512 {
		return // OK, print nothing
	}

	fmt.Fprintf(out, "Keep an eye on memory usage!\n")
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(out, "+ memory total: %d MB\n", totalMB)
	_, _ = p.Fprintf(out, "+ memory used: %d MB\n", usedMB)
	_, _ = p.Fprintf(out, "+ memory free: %d MB\n", freeMB)
}
