package main

import (
	"context"
	"strings"

	"icos-renderer/internal/descriptor"
)

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func listShapes(ctx context.Context, src descriptor.Source) ([]string, error) {
	l, ok := src.(descriptor.Lister)
	if !ok {
		return nil, nil
	}
	return l.Names(ctx)
}
