package nodepath

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex matches a single path segment, e.g. `conv1` or `sub_net-2`.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// paramRegex matches a parameter name appended to a node reference.
var paramRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// isValidSegmentName rejects names that collide with relative-path
// syntax or are otherwise undesirable.
func isValidSegmentName(name string) bool {
	if name == "." || name == ".." || name == "-" {
		return false
	}
	return segmentRegex.MatchString(name)
}

// Parse creates a Path from its string representation. The input is
// normalized the way the editor normalizes user-typed paths: a missing
// leading slash is added, repeated and trailing slashes collapse.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("path cannot be empty")
	}

	var segments []string
	for _, segment := range strings.Split(strings.Trim(raw, "/"), "/") {
		if segment == "" {
			continue
		}
		if !isValidSegmentName(segment) {
			return Path{}, fmt.Errorf("invalid path segment %q in %q", segment, raw)
		}
		segments = append(segments, segment)
	}

	return Path{segments: segments}, nil
}

// Resolve interprets ref against base, the path of the node the
// reference belongs to. Absolute refs ignore base entirely. In relative
// refs, `..` climbs toward the root (and stays at the root once there),
// `.` stays in place, and any other segment descends.
func Resolve(base Path, ref string) (Path, error) {
	if ref == "" {
		return Path{}, fmt.Errorf("node reference cannot be empty")
	}
	if strings.HasPrefix(ref, "/") {
		return Parse(ref)
	}

	segments := append([]string(nil), base.segments...)
	for _, segment := range strings.Split(ref, "/") {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			if !isValidSegmentName(segment) {
				return Path{}, fmt.Errorf("invalid path segment %q in %q", segment, ref)
			}
			segments = append(segments, segment)
		}
	}

	return Path{segments: segments}, nil
}

// SplitParam splits a parameter reference into its node part and the
// parameter name. A bare name like `freq` has an empty node part and
// addresses the requesting node; `../sibling.freq` splits at the last
// dot into a node reference and a name.
func SplitParam(ref string) (nodeRef, param string, err error) {
	if ref == "" {
		return "", "", fmt.Errorf("parameter reference cannot be empty")
	}

	idx := strings.LastIndex(ref, ".")
	// `..` and `.` belong to relative path syntax, not a parameter
	// separator, so only dots after the final slash count.
	if idx <= strings.LastIndex(ref, "/")+1 {
		idx = -1
	}

	if idx < 0 {
		if strings.Contains(ref, "/") {
			return "", "", fmt.Errorf("reference %q is missing a parameter name", ref)
		}
		nodeRef, param = "", ref
	} else {
		nodeRef, param = ref[:idx], ref[idx+1:]
	}

	if !paramRegex.MatchString(param) {
		return "", "", fmt.Errorf("invalid parameter name %q in reference %q", param, ref)
	}
	return nodeRef, param, nil
}
