package fragcheck

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/opensvc/check-ceph-osd-frag/core/nagios"
)

type (
	// allocScore is the document returned by
	// `ceph daemon osd.N bluestore allocator score block`.
	//
	// The zero value of FragmentationRating folds together an absent
	// field, a null and a genuine 0 reading. All three skip the osd.
	allocScore struct {
		FragmentationRating float64 `json:"fragmentation_rating"`
	}
)

// score queries each osd allocator sequentially and aggregates the samples
// into the final status and output line body. The first failed or unparsable
// query aborts the run with CRITICAL, discarding the gathered samples.
func (t *T) score(base []string, osds []string) (nagios.T, string) {
	status := nagios.Ok
	samples := make([]string, 0, len(osds))
	for _, osd := range osds {
		args := extend(base, "--format", "json", "daemon", osd, "bluestore", "allocator", "score", "block")
		stdout, stderr, err := t.runTool(args)
		if err != nil || len(bytes.TrimSpace(stdout)) == 0 {
			return nagios.Critical, t.failMsg(stderr, err)
		}
		var doc allocScore
		if err := json.Unmarshal(stdout, &doc); err != nil {
			if t.Log != nil {
				t.Log.Debug().Err(err).Str("osd", osd).Msg("allocator score decode")
			}
			return nagios.Critical, "failed to load json"
		}
		if doc.FragmentationRating == 0 {
			continue
		}
		if doc.FragmentationRating >= t.Critical {
			status = nagios.Worst(status, nagios.Critical)
		}
		samples = append(samples, fmt.Sprintf("%s=%.2f%%", osd, doc.FragmentationRating))
	}
	return status, strings.Join(samples, " ")
}
