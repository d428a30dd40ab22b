// Package navigation resolves view paths relative to the active route.
package navigation

import (
	"context"
	"errors"
	"strings"
)

// ErrAboveRoot is returned when ".." segments climb past "/".
var ErrAboveRoot = errors.New("navigation: path climbs above root")

// Resolve joins segments onto relativeTo the way a router resolves a
// relative link from the active route. ".." drops one path element, "." and
// empty elements are ignored, and a segment starting with "/" restarts from
// the root.
func Resolve(segments []string, relativeTo string) (string, error) {
	stack := split(relativeTo)
	for _, seg := range segments {
		if strings.HasPrefix(seg, "/") {
			stack = stack[:0]
		}
		for _, part := range split(seg) {
			switch part {
			case ".":
			case "..":
				if len(stack) == 0 {
					return "", ErrAboveRoot
				}
				stack = stack[:len(stack)-1]
			default:
				stack = append(stack, part)
			}
		}
	}
	return "/" + strings.Join(stack, "/"), nil
}

func split(path string) []string {
	var parts []string
	for part := range strings.SplitSeq(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// Router resolves navigation targets for the HTTP layer, which turns them
// into redirects.
type Router struct{}

func NewRouter() *Router {
	return &Router{}
}

func (r *Router) Navigate(_ context.Context, segments []string, relativeTo string) (string, error) {
	return Resolve(segments, relativeTo)
}
