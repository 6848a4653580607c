package fragcheck

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// escapeAddr escapes the address literal for insertion in the osd dump
// matching expression. Dots first, then brackets: an IPv6 literal contains
// both, and escaping brackets first would double-escape nothing but escaping
// dots last would corrupt the bracket escapes.
func escapeAddr(addr string) string {
	addr = strings.ReplaceAll(addr, ".", `\.`)
	addr = strings.ReplaceAll(addr, "[", `\[`)
	addr = strings.ReplaceAll(addr, "]", `\]`)
	return addr
}

// matchOSDs extracts from the osd dump report the ids of the osds reported
// up with an endpoint on addr. The dump format is the de facto contract:
// one osd per line, id first, then the up keyword, then the endpoints.
func matchOSDs(dump, addr string) []string {
	re := regexp.MustCompile(`(?m)^(osd\.\d+)\s+up\s.*` + escapeAddr(addr) + `:`)
	var osds []string
	for _, m := range re.FindAllStringSubmatch(dump, -1) {
		osds = append(osds, m[1])
	}
	return osds
}

// discover runs `osd dump` and returns the osd ids to probe. A failed or
// silent dump is a CRITICAL condition reported through the error.
func (t T) discover(base []string, addr string) ([]string, error) {
	stdout, stderr, err := t.runTool(extend(base, "osd", "dump"))
	if err != nil || len(bytes.TrimSpace(stdout)) == 0 {
		return nil, errors.New(t.failMsg(stderr, err))
	}
	return matchOSDs(string(stdout), addr), nil
}
