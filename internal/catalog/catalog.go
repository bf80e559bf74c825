// Package catalog supplies the problem sets assigned to rooms at creation.
package catalog

import (
	"context"
	"errors"
	"math/rand"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/battle"
)

var ErrNotEnoughProblems = errors.New("not enough problems matching the request")

// Filter narrows the pick. Empty difficulty or topics match everything.
type Filter struct {
	Difficulty string
	Topics     []string
}

// Source yields n problems matching the filter, in assignment order.
type Source interface {
	Pick(ctx context.Context, f Filter, n int) ([]battle.Problem, error)
}

// Builtin serves from a fixed in-memory set; the default when no database is
// configured.
type Builtin struct {
	problems []battle.Problem
}

func NewBuiltin(problems []battle.Problem) *Builtin {
	if problems == nil {
		problems = starterSet()
	}
	return &Builtin{problems: problems}
}

func (b *Builtin) Pick(_ context.Context, f Filter, n int) ([]battle.Problem, error) {
	var pool []battle.Problem
	for _, p := range b.problems {
		if matches(p, f) {
			pool = append(pool, p)
		}
	}
	if len(pool) < n {
		return nil, ErrNotEnoughProblems
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	// Each room gets its own copies; the shared set must not be mutable
	// through a handout.
	out := make([]battle.Problem, 0, n)
	for _, p := range pool[:n] {
		out = append(out, p.Clone())
	}
	return out, nil
}

func matches(p battle.Problem, f Filter) bool {
	if f.Difficulty != "" && p.Difficulty != f.Difficulty {
		return false
	}
	if len(f.Topics) == 0 {
		return true
	}
	for _, want := range f.Topics {
		for _, tag := range p.Tags {
			if tag == want {
				return true
			}
		}
	}
	return false
}

func starterSet() []battle.Problem {
	return []battle.Problem{
		{
			ID:          "two-sum",
			Title:       "Two Sum",
			Difficulty:  "easy",
			Description: "Given an array of integers and a target, return indices of the two numbers that add up to the target.",
			Tags:        []string{"array", "hash-table"},
			Snippets: map[string]string{
				"cpp": "class Solution {\npublic:\n    vector<int> twoSum(vector<int>& nums, int target) {\n        return {};\n    }\n};",
			},
			TestCases: []battle.TestCase{
				{Input: "[2,7,11,15]\n9", Expected: "[0,1]"},
				{Input: "[3,2,4]\n6", Expected: "[1,2]"},
			},
		},
		{
			ID:          "valid-parentheses",
			Title:       "Valid Parentheses",
			Difficulty:  "easy",
			Description: "Given a string containing brackets, determine whether the input is valid.",
			Tags:        []string{"stack", "string"},
			Snippets: map[string]string{
				"cpp": "class Solution {\npublic:\n    bool isValid(string s) {\n        return false;\n    }\n};",
			},
			TestCases: []battle.TestCase{
				{Input: "()[]{}", Expected: "true"},
				{Input: "(]", Expected: "false"},
			},
		},
		{
			ID:          "longest-substring",
			Title:       "Longest Substring Without Repeating Characters",
			Difficulty:  "medium",
			Description: "Find the length of the longest substring without repeating characters.",
			Tags:        []string{"string", "sliding-window"},
			Snippets: map[string]string{
				"cpp": "class Solution {\npublic:\n    int lengthOfLongestSubstring(string s) {\n        return 0;\n    }\n};",
			},
			TestCases: []battle.TestCase{
				{Input: "abcabcbb", Expected: "3"},
				{Input: "bbbbb", Expected: "1"},
			},
		},
		{
			ID:          "merge-intervals",
			Title:       "Merge Intervals",
			Difficulty:  "medium",
			Description: "Merge all overlapping intervals and return the non-overlapping intervals.",
			Tags:        []string{"array", "sorting"},
			Snippets: map[string]string{
				"cpp": "class Solution {\npublic:\n    vector<vector<int>> merge(vector<vector<int>>& intervals) {\n        return {};\n    }\n};",
			},
			TestCases: []battle.TestCase{
				{Input: "[[1,3],[2,6],[8,10]]", Expected: "[[1,6],[8,10]]"},
			},
		},
	}
}
