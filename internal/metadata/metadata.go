// Package metadata reads and writes the per-artifact key/value block that
// identifies an artifact, such as
//
//	CHART_METADATA = {
//	    'name': 'Activation Functions',
//	    'url': 'https://github.com/org/repo/tree/main/03_activation_functions/',
//	}
//
// Both quoted dictionary pairs ('k': 'v') and assignments (k = "v") are
// recognised. Values may not contain their own quote character.
package metadata

import (
	"fmt"
	"regexp"
	"strings"
)

var pairPattern = regexp.MustCompile(`['"]?([A-Za-z_][\w-]*)['"]?\s*[:=]\s*(?:'([^'\n]*)'|"([^"\n]*)")`)

// Pair is one ordered key/value entry.
type Pair struct {
	Key   string
	Value string
}

// Extract returns the pairs of the named block in text. It returns an
// empty map when the block is absent. Later duplicates win.
func Extract(text, block string) map[string]string {
	out := make(map[string]string)
	body, ok := Block(text, block)
	if !ok {
		return out
	}
	for _, m := range pairPattern.FindAllStringSubmatch(body, -1) {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		out[m[1]] = value
	}
	return out
}

// Block returns the text between the braces following "<block> =".
func Block(text, block string) (string, bool) {
	if block == "" {
		return "", false
	}
	re := regexp.MustCompile(regexp.QuoteMeta(block) + `\s*=\s*\{`)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	end := strings.IndexByte(rest, '}')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// Format renders a block in dictionary form with pairs in the given order.
func Format(block string, pairs []Pair) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s = {\n", block)
	for i, p := range pairs {
		sep := ","
		if i == len(pairs)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "    '%s': '%s'%s\n", p.Key, strings.ReplaceAll(p.Value, "'", `\'`), sep)
	}
	b.WriteString("}\n")
	return b.String()
}
