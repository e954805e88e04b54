package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvegrid/solvegrid/core"
	"github.com/solvegrid/solvegrid/internal/testutil"
)

// passerResult builds an agent whose success iteration predicts the given
// test output.
func passerResult(id string, out core.Grid) core.AgentResult {
	rec := testutil.NewRecordBuilder().Passed().TestOutput(out).Build()
	return testutil.NewResultBuilder(id).Record(rec).Build()
}

// failerResult builds an agent that never passed, whose last iteration
// predicts the given test output with the given score.
func failerResult(id string, out core.Grid, score float64) core.AgentResult {
	rec := testutil.NewRecordBuilder().Score(score).TestOutput(out).Build()
	return testutil.NewResultBuilder(id).Record(rec).Build()
}

func agentIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.AgentID
	}
	return ids
}

// -------------------- Normative scenarios --------------------

// Three agents agree on output X (passers), two on output Y (passers), one
// failer: X's representative first, then Y's, then the failer's.
func TestRankScenarioPasserAgreementWins(t *testing.T) {
	x := testutil.SimpleGrid(1)
	y := testutil.SimpleGrid(2)
	results := []core.AgentResult{
		passerResult("x1", x),
		passerResult("y1", y),
		passerResult("x2", x),
		passerResult("y2", y),
		passerResult("x3", x),
		failerResult("f1", testutil.SimpleGrid(3), 0.4),
	}

	ranked := Diversity{}.Rank(results, core.VotingOptions{})
	require.Len(t, ranked, 6)
	assert.Equal(t, "x1", ranked[0].AgentID)
	assert.Equal(t, "y1", ranked[1].AgentID)
	assert.Equal(t, "f1", ranked[2].AgentID)
}

// No passers, flag off: the two-member bucket outranks the lone higher
// scorer.
func TestRankScenarioFailerAgreementBeatsScore(t *testing.T) {
	x := testutil.SimpleGrid(1)
	y := testutil.SimpleGrid(2)
	results := []core.AgentResult{
		failerResult("x1", x, 0.6),
		failerResult("y1", y, 0.9),
		failerResult("x2", x, 0.6),
	}

	ranked := Diversity{}.Rank(results, core.VotingOptions{CountFailedMatches: false})
	require.Len(t, ranked, 3)
	assert.Equal(t, "x1", ranked[0].AgentID)
	assert.Equal(t, "y1", ranked[1].AgentID)
	assert.Equal(t, "x2", ranked[2].AgentID)
}

// -------------------- Votes --------------------

func TestFailerBucketVotesZeroWithoutFlag(t *testing.T) {
	results := []core.AgentResult{
		failerResult("a", testutil.SimpleGrid(1), 0.5),
		failerResult("b", testutil.SimpleGrid(1), 0.5),
		failerResult("c", testutil.SimpleGrid(2), 0.9),
	}
	buckets := BuildBuckets(Representatives(results), core.VotingOptions{CountFailedMatches: false})
	require.Len(t, buckets, 2)
	for _, b := range buckets {
		assert.False(t, b.Passer)
		assert.Equal(t, 0, b.Votes)
	}
}

func TestFailedMatchesCountAsVotesWhenEnabled(t *testing.T) {
	out := testutil.SimpleGrid(1)
	// One passer plus one failer that reproduced the same output.
	failingMatch := testutil.NewRecordBuilder().Score(0.7).TestOutput(out).Build()
	results := []core.AgentResult{
		passerResult("p", out),
		testutil.NewResultBuilder("f").Record(failingMatch).Build(),
	}

	with := BuildBuckets(Representatives(results), core.VotingOptions{CountFailedMatches: true})
	require.Len(t, with, 1)
	assert.True(t, with[0].Passer)
	assert.Equal(t, 2, with[0].Votes)

	without := BuildBuckets(Representatives(results), core.VotingOptions{CountFailedMatches: false})
	assert.Equal(t, 1, without[0].Votes)
}

// -------------------- Output shape --------------------

func TestRankIsPermutationOfNonFatalAgents(t *testing.T) {
	results := []core.AgentResult{
		passerResult("a", testutil.SimpleGrid(1)),
		failerResult("b", testutil.SimpleGrid(2), 0.3),
		testutil.NewResultBuilder("dead").Status(core.StatusFatalError).Build(),
		passerResult("c", testutil.SimpleGrid(1)),
		failerResult("d", testutil.SimpleGrid(2), 0.8),
	}

	ranked := Diversity{}.Rank(results, core.VotingOptions{})
	require.Len(t, ranked, 4)

	seen := map[string]int{}
	for _, e := range ranked {
		seen[e.AgentID]++
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1, "d": 1}, seen)
}

func TestRankDiversityFirstMerge(t *testing.T) {
	x := testutil.SimpleGrid(1)
	y := testutil.SimpleGrid(2)
	results := []core.AgentResult{
		passerResult("x1", x),
		passerResult("x2", x),
		failerResult("y1", y, 0.2),
		failerResult("y2", y, 0.6),
	}

	ranked := Diversity{}.Rank(results, core.VotingOptions{})
	require.Len(t, ranked, 4)
	// One representative per bucket first, remaining members after.
	assert.Equal(t, []string{"x1", "y2", "x2", "y1"}, agentIDs(ranked))
}

func TestRankDeterministic(t *testing.T) {
	results := []core.AgentResult{
		passerResult("a", testutil.SimpleGrid(1)),
		passerResult("b", testutil.SimpleGrid(2)),
		failerResult("c", testutil.SimpleGrid(3), 0.5),
		failerResult("d", testutil.SimpleGrid(3), 0.5),
		failerResult("e", testutil.SimpleGrid(4), 0.5),
	}
	opts := core.VotingOptions{CountFailedMatches: true}

	first := Diversity{}.Rank(results, opts)
	for i := 0; i < 5; i++ {
		assert.Equal(t, agentIDs(first), agentIDs(Diversity{}.Rank(results, opts)))
	}
}

func TestRankEmptyAndAllFatal(t *testing.T) {
	assert.Empty(t, Diversity{}.Rank(nil, core.VotingOptions{}))

	fatal := []core.AgentResult{
		testutil.NewResultBuilder("a").Status(core.StatusFatalError).Build(),
	}
	assert.Empty(t, Diversity{}.Rank(fatal, core.VotingOptions{}))
}

// -------------------- Tiebreaks --------------------

func TestRankIterationTiebreak(t *testing.T) {
	x := testutil.SimpleGrid(1)
	y := testutil.SimpleGrid(2)

	early := testutil.NewResultBuilder("early").
		Record(testutil.NewRecordBuilder().Score(0.1).Build()).
		Record(testutil.NewRecordBuilder().Passed().TestOutput(x).Build()).
		Build()
	late := testutil.NewResultBuilder("late").
		Record(testutil.NewRecordBuilder().Score(0.1).Build()).
		Record(testutil.NewRecordBuilder().Score(0.2).Build()).
		Record(testutil.NewRecordBuilder().Passed().TestOutput(y).Build()).
		Build()
	results := []core.AgentResult{late, early}

	lowFirst := Diversity{}.Rank(results, core.VotingOptions{IterationTiebreak: true, LowToHighIterations: true})
	assert.Equal(t, "early", lowFirst[0].AgentID)

	highFirst := Diversity{}.Rank(results, core.VotingOptions{IterationTiebreak: true, LowToHighIterations: false})
	assert.Equal(t, "late", highFirst[0].AgentID)
}

func TestRankStableOnFullTies(t *testing.T) {
	results := []core.AgentResult{
		passerResult("first", testutil.SimpleGrid(1)),
		passerResult("second", testutil.SimpleGrid(2)),
	}
	ranked := Diversity{}.Rank(results, core.VotingOptions{})
	// Equal votes, no tiebreak flags: discovery order wins.
	assert.Equal(t, []string{"first", "second"}, agentIDs(ranked))
}

func TestBestMemberPrefersPasserOnScoreTie(t *testing.T) {
	out := testutil.SimpleGrid(1)
	failing := testutil.NewRecordBuilder().Score(1).TestOutput(out).Build()
	passing := testutil.NewRecordBuilder().Passed().TestOutput(out).Build()
	results := []core.AgentResult{
		testutil.NewResultBuilder("f").Record(failing).Build(),
		testutil.NewResultBuilder("p").Record(passing).Build(),
	}
	buckets := BuildBuckets(Representatives(results), core.VotingOptions{})
	require.Len(t, buckets, 1)
	assert.Equal(t, "p", buckets[0].BestMember().AgentID)
}

// -------------------- Legacy strategy --------------------

func TestMajorityRankCoversAllAgents(t *testing.T) {
	results := []core.AgentResult{
		passerResult("a", testutil.SimpleGrid(1)),
		failerResult("b", testutil.SimpleGrid(2), 0.4),
		failerResult("c", testutil.SimpleGrid(2), 0.6),
	}
	ranked := Majority{}.Rank(results, core.VotingOptions{})
	require.Len(t, ranked, 3)
	// Passer bucket leads, then the failer bucket emitted whole.
	assert.Equal(t, []string{"a", "c", "b"}, agentIDs(ranked))
}
