package merge

import "fmt"

// Outcome is what the engine did with one name in one directory
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeSymlinkCopied
	OutcomeDirRecursed
	OutcomeFileCopied
	OutcomeFileMerged
)

var outcomeNames = map[Outcome]string{
	OutcomeSkipped:       "skipped",
	OutcomeSymlinkCopied: "symlink",
	OutcomeDirRecursed:   "dir",
	OutcomeFileCopied:    "copied",
	OutcomeFileMerged:    "merged",
}

// Outcomes lists every outcome in display order
func Outcomes() []Outcome {
	return []Outcome{OutcomeFileMerged, OutcomeFileCopied, OutcomeSymlinkCopied, OutcomeDirRecursed, OutcomeSkipped}
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText lets outcomes show up by name in JSON output
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Pass tells which walk produced an entry
type Pass string

const (
	// PassBase walks the base layer with the overlay as include source
	PassBase Pass = "base"
	// PassOverlay walks the overlay layer to add overlay-only names
	PassOverlay Pass = "overlay"
)

// SkipReason explains an OutcomeSkipped entry
type SkipReason string

const (
	SkipExists      SkipReason = "destination exists"
	SkipDirConflict SkipReason = "destination is a directory"
	SkipUnsupported SkipReason = "unsupported file type"
)

// Entry records the handling of one source path
type Entry struct {
	Pass       Pass       `json:"pass"`
	Source     string     `json:"source"`
	Dest       string     `json:"dest"`
	Kind       string     `json:"kind"`
	Outcome    Outcome    `json:"outcome"`
	Reason     SkipReason `json:"reason,omitempty"`
	Created    bool       `json:"created,omitempty"`
	Directives int        `json:"directives,omitempty"`
}

// Report is the ordered log of a merge run. It only observes decisions and
// never feeds back into them.
type Report struct {
	DryRun  bool    `json:"dryRun"`
	Entries []Entry `json:"entries"`
}

func (r *Report) add(e Entry) {
	r.Entries = append(r.Entries, e)
}

// Count returns how many entries ended with outcome o
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == o {
			n++
		}
	}
	return n
}

// Changed returns the entries that wrote something (or would in a dry run)
func (r *Report) Changed() []Entry {
	var changed []Entry
	for _, e := range r.Entries {
		switch e.Outcome {
		case OutcomeSkipped:
			continue
		case OutcomeDirRecursed:
			if !e.Created {
				continue
			}
		}
		changed = append(changed, e)
	}
	return changed
}

// Find returns the first entry whose destination is dest
func (r *Report) Find(dest string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Dest == dest {
			return e, true
		}
	}
	return Entry{}, false
}
