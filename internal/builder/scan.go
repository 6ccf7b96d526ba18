package builder

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"

	"github.com/pable/gdl-match-report/internal/model"
)

// Discover lists the run directories directly under outputDir whose names
// are {prefix}{N} or {prefix}{N}-{PERSPECTIVE}, in natural order.
func Discover(outputDir, prefix string) ([]model.RunDir, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}

	var dirs []model.RunDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		idx, perspective, ok := splitRunDirName(e.Name(), prefix)
		if !ok {
			continue
		}
		dirs = append(dirs, model.RunDir{
			Name:          e.Name(),
			Index:         idx,
			Perspective:   perspective,
			HasFinalState: isFile(strings.TrimSuffix(outputDir, "/") + "/" + e.Name() + "/" + FinalStateFile),
		})
	}
	sort.Slice(dirs, func(i, j int) bool { return natural.Less(dirs[i].Name, dirs[j].Name) })
	return dirs, nil
}

// splitRunDirName parses {prefix}{N}[-{perspective}].
func splitRunDirName(name, prefix string) (idx int, perspective string, ok bool) {
	rest, found := strings.CutPrefix(name, prefix)
	if !found || rest == "" {
		return 0, "", false
	}
	num, perspective, _ := strings.Cut(rest, "-")
	if num == "" || strings.TrimLeft(num, "0123456789") != "" {
		return 0, "", false
	}
	idx, err := strconv.Atoi(num)
	if err != nil {
		return 0, "", false
	}
	return idx, perspective, true
}

// SuggestRange returns the smallest [start, end) covering every discovered
// directory that has a finalstate.xml. ok is false when there are none.
func SuggestRange(dirs []model.RunDir) (start, end int, ok bool) {
	for _, d := range dirs {
		if !d.HasFinalState {
			continue
		}
		if !ok || d.Index < start {
			start = d.Index
		}
		if !ok || d.Index+1 > end {
			end = d.Index + 1
		}
		ok = true
	}
	return start, end, ok
}

// Perspectives returns the distinct perspective suffixes among dirs, sorted.
func Perspectives(dirs []model.RunDir) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range dirs {
		if d.Perspective == "" || seen[d.Perspective] {
			continue
		}
		seen[d.Perspective] = true
		out = append(out, d.Perspective)
	}
	sort.Strings(out)
	return out
}
