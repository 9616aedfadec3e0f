package domain

import "strings"

// AreaList is an ordered set of affected-area names, first-seen order kept.
type AreaList []string

// ParseAreas splits a semicolon-delimited NWS areaDesc into trimmed,
// deduplicated names. Empty segments are dropped.
func ParseAreas(areaDesc string) AreaList {
	seen := make(map[string]struct{})
	out := AreaList{}
	for _, seg := range strings.Split(areaDesc, ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if _, ok := seen[seg]; ok {
			continue
		}
		seen[seg] = struct{}{}
		out = append(out, seg)
	}
	return out
}

// String joins the areas back with "; ".
func (l AreaList) String() string {
	return strings.Join(l, "; ")
}

// MergeAreas unions the area lists of several alerts, preserving the order
// in which each name first appears.
func MergeAreas(alerts []Alert) AreaList {
	seen := make(map[string]struct{})
	out := AreaList{}
	for _, a := range alerts {
		for _, name := range a.Areas() {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// areaSegmentCount is the raw segment count used by the area-size bonus.
func areaSegmentCount(areaDesc string) int {
	return len(strings.Split(areaDesc, ";"))
}
