package progress

import (
	"reflect"
	"testing"
)

type staticMastery map[string]MasteryRecord

func (s staticMastery) Snapshot() map[string]MasteryRecord { return s }

func (s staticMastery) WeakItems() map[string]struct{} {
	out := map[string]struct{}{}
	for k, v := range s {
		if v.Status.Weak() {
			out[k] = struct{}{}
		}
	}
	return out
}

func keys(items []ItemKey) []string {
	out := make([]string, len(items))
	for i, k := range items {
		out[i] = string(k)
	}
	return out
}

func TestOrderByMastery_WeakestFirstStableTies(t *testing.T) {
	m := staticMastery{
		"know1":   {Status: OutcomeKnow},
		"unsure1": {Status: OutcomeUnsure},
		"dk1":     {Status: OutcomeDontKnow},
		"dk2":     {Status: OutcomeDontKnow},
		"know2":   {Status: OutcomeKnow},
	}
	in := []ItemKey{"know1", "new1", "unsure1", "dk1", "new2", "know2", "dk2"}

	got := keys(OrderByMastery(m, in))
	want := []string{"dk1", "dk2", "unsure1", "new1", "new2", "know1", "know2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if string(in[0]) != "know1" {
		t.Fatal("expected input slice untouched")
	}
}

func TestWeakOnly_KeepsInputOrder(t *testing.T) {
	m := staticMastery{
		"a": {Status: OutcomeUnsure},
		"b": {Status: OutcomeKnow},
		"c": {Status: OutcomeDontKnow},
	}
	got := keys(WeakOnly(m, []ItemKey{"c", "b", "x", "a"}))
	if !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Fatalf("expected [c a], got %v", got)
	}
}

func TestWeakOnly_EmptyWhenAllKnown(t *testing.T) {
	m := staticMastery{"a": {Status: OutcomeKnow}}
	if got := WeakOnly(m, []ItemKey{"a", "b"}); len(got) != 0 {
		t.Fatalf("expected no weak items, got %v", got)
	}
}

func TestTally(t *testing.T) {
	m := staticMastery{
		"a": {Status: OutcomeKnow},
		"b": {Status: OutcomeUnsure},
		"c": {Status: OutcomeDontKnow},
		"d": {Status: OutcomeDontKnow},
	}
	s := Tally(m, []ItemKey{"a", "b", "c", "d", "e", "f"})
	want := Stats{Know: 1, Unsure: 1, DontKnow: 2, Unrated: 2}
	if s != want {
		t.Fatalf("expected %+v, got %+v", want, s)
	}
	if s.Weak() != 3 {
		t.Fatalf("expected 3 weak, got %d", s.Weak())
	}
}

func TestRank(t *testing.T) {
	cases := []struct {
		rec   MasteryRecord
		rated bool
		want  int
	}{
		{MasteryRecord{Status: OutcomeDontKnow}, true, 0},
		{MasteryRecord{Status: OutcomeUnsure}, true, 1},
		{MasteryRecord{}, false, 2},
		{MasteryRecord{Status: OutcomeKnow}, true, 3},
	}
	for _, c := range cases {
		if got := Rank(c.rec, c.rated); got != c.want {
			t.Fatalf("rank(%+v, %v): expected %d, got %d", c.rec, c.rated, c.want, got)
		}
	}
}
