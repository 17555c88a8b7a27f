package domain

import "testing"

func TestMatchScoreCountsBothDimensions(t *testing.T) {
	mentor := Account{
		PreferredDisciplines: []string{"Software Engineering", "Data Science"},
		MentoringTopics:      []string{"Career planning", "Interview prep", "Leadership"},
	}
	student := Account{
		PreferredDisciplines: []string{"Data Science", "Design"},
		MentoringTopics:      []string{"Interview prep", "Career planning"},
	}
	if got := MatchScore(mentor, student); got != 3 {
		t.Fatalf("expected score 3, got %d", got)
	}
}

func TestMatchScoreDisjointListsScoreZero(t *testing.T) {
	mentor := Account{
		PreferredDisciplines: []string{"Law"},
		MentoringTopics:      []string{"Negotiation"},
	}
	student := Account{
		PreferredDisciplines: []string{"Medicine"},
		MentoringTopics:      []string{"Research"},
	}
	if got := MatchScore(mentor, student); got != 0 {
		t.Fatalf("expected score 0 for disjoint lists, got %d", got)
	}
	if got := MatchScore(Account{}, Account{}); got != 0 {
		t.Fatalf("expected score 0 for empty lists, got %d", got)
	}
}

func TestMatchScoreOrderIndependent(t *testing.T) {
	mentor := Account{
		PreferredDisciplines: []string{"A", "B", "C"},
		MentoringTopics:      []string{"X", "Y"},
	}
	shuffled := Account{
		PreferredDisciplines: []string{"C", "A", "B"},
		MentoringTopics:      []string{"Y", "X"},
	}
	student := Account{
		PreferredDisciplines: []string{"B", "C"},
		MentoringTopics:      []string{"Y"},
	}
	if MatchScore(mentor, student) != MatchScore(shuffled, student) {
		t.Fatalf("score must not depend on list ordering")
	}
	if got := MatchScore(mentor, student); got < 0 {
		t.Fatalf("score must be non-negative, got %d", got)
	}
}

func TestMatchScoreIgnoresDuplicateEntries(t *testing.T) {
	mentor := Account{PreferredDisciplines: []string{"A", "A", "A"}}
	student := Account{PreferredDisciplines: []string{"A", "A"}}
	if got := MatchScore(mentor, student); got != 1 {
		t.Fatalf("duplicates within a list must count once, got %d", got)
	}
}

func TestMatchLabelBands(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, "No matches"},
		{1, "Low match"},
		{2, "Low match"},
		{3, "Good match"},
		{4, "Good match"},
		{5, "Excellent match"},
		{9, "Excellent match"},
	}
	for _, c := range cases {
		if got := MatchLabel(c.score); got != c.want {
			t.Fatalf("label for %d: expected %q, got %q", c.score, c.want, got)
		}
	}
}
