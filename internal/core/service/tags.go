package service

import (
	"cmp"
	"slices"

	"github.com/postboard/blog-api/internal/core/domain"
)

// TallyTags counts every occurrence of each distinct tag (case-sensitive).
// The result is ordered by count descending; equal counts keep the order in
// which the tags were first seen.
func TallyTags(tagLists [][]string) []domain.TagCount {
	out := []domain.TagCount{}
	index := make(map[string]int)
	for _, tags := range tagLists {
		for _, tag := range tags {
			if i, ok := index[tag]; ok {
				out[i].Count++
				continue
			}
			index[tag] = len(out)
			out = append(out, domain.TagCount{Tag: tag, Count: 1})
		}
	}
	slices.SortStableFunc(out, func(a, b domain.TagCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}
