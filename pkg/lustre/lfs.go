package lustre

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/gsi-hpc/ostbalance/pkg/types"
)

// ostIndexPattern matches the trailing relative-target marker that lfs df
// appends to OST rows, e.g. "/lustre[OST:12]".
var ostIndexPattern = regexp.MustCompile(`\[OST:([0-9]+)\]$`)

// LfsSampler retrieves OST fill levels by running lfs df against a Lustre
// mount point.
type LfsSampler struct {
	bin  string
	path string
}

// NewLfsSampler creates a sampler using the given lfs binary and mount path.
func NewLfsSampler(bin, path string) *LfsSampler {
	return &LfsSampler{bin: bin, path: path}
}

// Sample runs lfs df and returns the used-capacity percentage per OST index.
func (s *LfsSampler) Sample() (types.FillLevels, error) {
	out, err := exec.Command(s.bin, "df", s.path).Output()
	if err != nil {
		return nil, fmt.Errorf("lfs df %s: %w", s.path, err)
	}
	return parseDf(out)
}

// parseDf extracts the OST index and use percentage from lfs df output.
// Relevant rows look like:
//
//	lustre-OST0000_UUID  527564  25192  464284  6% /lustre[OST:0]
//
// MDT rows, the header and the summary row carry no OST marker and are
// skipped.
func parseDf(out []byte) (types.FillLevels, error) {
	levels := make(types.FillLevels)

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 6 {
			continue
		}
		match := ostIndexPattern.FindStringSubmatch(fields[5])
		if match == nil {
			continue
		}
		used, err := strconv.Atoi(strings.TrimSuffix(fields[4], "%"))
		if err != nil {
			return nil, fmt.Errorf("unparsable use%% field %q for OST %s: %w",
				fields[4], match[1], err)
		}
		levels[match[1]] = used
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading lfs df output: %w", err)
	}
	return levels, nil
}
