package domain

// MatchScore counts shared preferred disciplines plus shared mentoring topics
// between a mentor and a student profile. Comparison is exact string equality;
// repeated entries within a list count once. The score is advisory only and
// is shown to admins next to candidate pairings.
func MatchScore(mentor, student Account) int {
	return intersectCount(mentor.PreferredDisciplines, student.PreferredDisciplines) +
		intersectCount(mentor.MentoringTopics, student.MentoringTopics)
}

// MatchLabel maps a score to the label shown in the admin UI.
func MatchLabel(score int) string {
	switch {
	case score <= 0:
		return "No matches"
	case score <= 2:
		return "Low match"
	case score <= 4:
		return "Good match"
	default:
		return "Excellent match"
	}
}

func intersectCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	count := 0
	seen := make(map[string]struct{}, len(b))
	for _, v := range b {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := set[v]; ok {
			count++
		}
	}
	return count
}
