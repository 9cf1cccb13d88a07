package analytics

import "medwaste-backend/internal/models"

func categorySeverity(count int) Severity {
	switch {
	case count > 5:
		return SeverityHigh
	case count > 2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func riskLevel(open int) Severity {
	switch {
	case open > 10:
		return SeverityHigh
	case open > 5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// riskScore açık bildirim sayısıyla artar, 100'de sabitlenir.
func riskScore(open int) int {
	if open >= 10 {
		return 100
	}
	return open * 10
}

func riskMatrix(issues []models.Issue, scope *uint) RiskMatrix {
	counts := make(map[models.IssueCategory]int, len(models.IssueCategories))
	m := RiskMatrix{}
	for _, is := range issues {
		if scope != nil && is.HospitalID != *scope {
			continue
		}
		if is.IsResolved {
			m.ResolvedIssues++
			continue
		}
		m.OpenIssues++
		counts[is.Category]++
	}

	m.ByCategory = make([]RiskCategory, 0, len(models.IssueCategories))
	for _, cat := range models.IssueCategories {
		n := counts[cat]
		m.ByCategory = append(m.ByCategory, RiskCategory{Category: cat, Count: n, Severity: categorySeverity(n)})
	}
	m.Level = riskLevel(m.OpenIssues)
	m.Score = riskScore(m.OpenIssues)
	return m
}
