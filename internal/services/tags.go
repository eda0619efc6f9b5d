package services

import "strings"

// ParseTags splits a comma-separated tag string, trimming each entry and dropping empty ones.
// Order and duplicates are preserved.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
