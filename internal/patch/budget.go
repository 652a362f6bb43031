package patch

import (
	"fmt"
	"strings"

	"github.com/tildaslashalef/reviewgate/internal/loggy"
)

// Notes inserted for truncated content
const (
	stubTooLarge    = "[patch omitted: too large for review]"
	noteTruncated   = "[remaining files omitted: total size limit reached]"
	suffixTruncated = "\n[...truncated...]"
)

// Limits are the three independent payload ceilings, applied in order:
// per-file first, then total accumulation, then a final global cut.
// The ordering guarantees the output never exceeds Global while keeping
// as many complete, uncut files as possible.
type Limits struct {
	PerFile int // largest patch included verbatim
	Total   int // accumulation stops before exceeding this
	Global  int // hard ceiling on the final blob
}

// DefaultLimits returns the default payload ceilings
func DefaultLimits() Limits {
	return Limits{
		PerFile: 12_000,
		Total:   48_000,
		Global:  60_000,
	}
}

// Budgeter assembles the bounded unified-diff payload from an ordered
// sequence of changed files.
type Budgeter struct {
	limits Limits
	logger *loggy.Logger
}

// NewBudgeter creates a new Budgeter
func NewBudgeter(limits Limits, logger *loggy.Logger) *Budgeter {
	return &Budgeter{limits: limits, logger: logger}
}

// Build produces one text blob with a diff header per file. Files whose
// patch exceeds the per-file ceiling are stubbed rather than included;
// files past the total ceiling are dropped wholesale behind a
// truncation note.
func (b *Budgeter) Build(files []File) string {
	var sb strings.Builder

	for n, f := range files {
		entry := fileEntry(f, b.limits.PerFile)

		if sb.Len()+len(entry) > b.limits.Total {
			dropped := len(files) - n
			b.logger.Info("payload total ceiling reached",
				"included", n, "dropped", dropped)
			sb.WriteString(noteTruncated)
			sb.WriteString("\n")
			break
		}
		sb.WriteString(entry)
	}

	blob := sb.String()
	if len(blob) > b.limits.Global {
		cut := b.limits.Global - len(suffixTruncated)
		if cut < 0 {
			cut = 0
		}
		blob = blob[:cut] + suffixTruncated
		b.logger.Info("payload globally truncated", "length", len(blob))
	}
	return blob
}

// fileEntry renders one file's contribution to the payload
func fileEntry(f File, perFile int) string {
	header := fmt.Sprintf("--- a/%s\n+++ b/%s\n", f.Path, f.Path)
	body := f.Patch
	if len(body) > perFile {
		body = stubTooLarge
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return header + body + "\n"
}
