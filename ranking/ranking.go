// Package ranking merges the terminal outputs of all agents into one ordered
// answer list.
//
// Representatives are canonicalized by their predicted test outputs,
// bucketed, vote-counted and ordered diversity-first: one best member per
// distinct passing output, then one per distinct failing output, then
// everything else. Ranking is pure computation — no randomness, no clock —
// so identical inputs always produce identical orderings.
package ranking

import (
	"sort"

	"github.com/solvegrid/solvegrid/core"
)

// Entry is one ranked answer: the record chosen for an agent plus the agent
// it came from.
type Entry struct {
	AgentID string               `json:"agent_id"`
	Record  core.IterationRecord `json:"record"`
}

// Bucket groups representatives that produced bit-identical test outputs.
// Buckets are rebuilt on every Rank call and never persisted.
type Bucket struct {
	// Key is the canonical encoding of the shared test outputs.
	Key string
	// Members holds the bucket's entries in discovery order (config order).
	Members []Entry
	// Passer is true iff at least one member solved all train examples.
	Passer bool
	// Votes counts passing members, plus non-passing members when
	// CountFailedMatches is enabled.
	Votes int
	// MeanScore is the mean train score across members.
	MeanScore float64
}

// Ranker orders agent results into a ranked answer list. Both the normative
// diversity-first strategy and the legacy majority strategy implement it.
type Ranker interface {
	Rank(results []core.AgentResult, opts core.VotingOptions) []Entry
}

// Representatives selects one entry per non-fatal agent, in discovery order:
// the success iteration if one exists, else the selected best iteration,
// else the last. Fatal agents contribute nothing.
func Representatives(results []core.AgentResult) []Entry {
	var entries []Entry
	for _, res := range results {
		if res.Status == core.StatusFatalError {
			continue
		}
		rec, ok := res.Representative()
		if !ok {
			continue
		}
		entries = append(entries, Entry{AgentID: res.AgentID, Record: rec})
	}
	return entries
}

// BuildBuckets groups representatives by canonical key, preserving discovery
// order of both buckets and members, and computes votes and mean scores.
func BuildBuckets(entries []Entry, opts core.VotingOptions) []Bucket {
	index := map[string]int{}
	var buckets []Bucket
	for _, e := range entries {
		key := e.Record.OutputKey()
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[i].Members = append(buckets[i].Members, e)
	}

	for i := range buckets {
		b := &buckets[i]
		passers := 0
		total := 0.0
		for _, m := range b.Members {
			if m.Record.Success {
				passers++
			}
			total += m.Record.Score
		}
		b.Passer = passers > 0
		b.MeanScore = total / float64(len(b.Members))
		// Every member of a bucket reproduced the bucket's output exactly,
		// so with CountFailedMatches the failing members vote too.
		b.Votes = passers
		if opts.CountFailedMatches {
			b.Votes = len(b.Members)
		}
	}
	return buckets
}

// BestMember returns the bucket's highest-scoring member. Ties prefer a
// passer over a non-passer; among equals the first-discovered member wins.
func (b Bucket) BestMember() Entry {
	return b.Members[b.bestIndex()]
}

func (b Bucket) bestIndex() int {
	best := 0
	for i, m := range b.Members[1:] {
		switch {
		case m.Record.Score > b.Members[best].Record.Score:
			best = i + 1
		case m.Record.Score == b.Members[best].Record.Score && m.Record.Success && !b.Members[best].Record.Success:
			best = i + 1
		}
	}
	return best
}

// Diversity is the normative diversity-first ranking strategy.
type Diversity struct{}

// Rank implements Ranker. The output is a permutation containing exactly one
// representative per non-fatal agent: first the best member of each passer
// bucket in bucket rank order, then the best member of each failer bucket,
// then every remaining member, bucket by bucket, intra-bucket by score
// descending.
func (Diversity) Rank(results []core.AgentResult, opts core.VotingOptions) []Entry {
	entries := Representatives(results)
	buckets := BuildBuckets(entries, opts)

	var passers, failers []Bucket
	for _, b := range buckets {
		if b.Passer {
			passers = append(passers, b)
		} else {
			failers = append(failers, b)
		}
	}

	sort.SliceStable(passers, func(i, j int) bool {
		if passers[i].Votes != passers[j].Votes {
			return passers[i].Votes > passers[j].Votes
		}
		if opts.IterationTiebreak {
			ii, ij := passers[i].BestMember().Record.Index, passers[j].BestMember().Record.Index
			if ii != ij {
				if opts.LowToHighIterations {
					return ii < ij
				}
				return ii > ij
			}
		}
		return false // stable: discovery order
	})

	// Failer buckets order by agreement first: reported votes, then raw
	// member count (so agreement still outranks a lone high scorer when
	// CountFailedMatches is off), then mean score.
	sort.SliceStable(failers, func(i, j int) bool {
		if failers[i].Votes != failers[j].Votes {
			return failers[i].Votes > failers[j].Votes
		}
		if len(failers[i].Members) != len(failers[j].Members) {
			return len(failers[i].Members) > len(failers[j].Members)
		}
		if failers[i].MeanScore != failers[j].MeanScore {
			return failers[i].MeanScore > failers[j].MeanScore
		}
		if opts.IterationTiebreak {
			ii, ij := failers[i].BestMember().Record.Index, failers[j].BestMember().Record.Index
			if ii != ij {
				if opts.LowToHighIterations {
					return ii < ij
				}
				return ii > ij
			}
		}
		return false
	})

	ranked := append(passers, failers...)

	out := make([]Entry, 0, len(entries))
	for _, b := range ranked {
		out = append(out, b.BestMember())
	}
	for _, b := range ranked {
		out = append(out, rest(b)...)
	}
	return out
}

// rest returns the bucket's members minus its best one, ordered by score
// descending with discovery order breaking ties.
func rest(b Bucket) []Entry {
	best := b.bestIndex()
	remaining := make([]Entry, 0, len(b.Members)-1)
	for i, m := range b.Members {
		if i == best {
			continue
		}
		remaining = append(remaining, m)
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Record.Score > remaining[j].Record.Score
	})
	return remaining
}

// Majority is the legacy voting strategy kept behind the same interface:
// buckets are ordered by votes and score, then emitted whole, without the
// diversity-first merge.
type Majority struct{}

// Rank implements Ranker.
func (Majority) Rank(results []core.AgentResult, opts core.VotingOptions) []Entry {
	entries := Representatives(results)
	buckets := BuildBuckets(entries, opts)

	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Passer != buckets[j].Passer {
			return buckets[i].Passer
		}
		if len(buckets[i].Members) != len(buckets[j].Members) {
			return len(buckets[i].Members) > len(buckets[j].Members)
		}
		return buckets[i].MeanScore > buckets[j].MeanScore
	})

	out := make([]Entry, 0, len(entries))
	for _, b := range buckets {
		members := append([]Entry{b.BestMember()}, rest(b)...)
		out = append(out, members...)
	}
	return out
}
