package tasks

import "github.com/desertthunder/plbackup/internal/models"

// FindMissing lists, in old order, every title of oldSeq that occurs nowhere in newSeq.
//
// Positions are 1-based in oldSeq's index space. Duplicate titles in oldSeq are reported once per occurrence.
func FindMissing(oldSeq, newSeq models.TitleSequence) models.MissingReport {
	present := newSeq.Set()
	report := models.MissingReport{}
	for i, title := range oldSeq {
		if _, ok := present[title]; !ok {
			report = append(report, models.MissingRecord{Position: i + 1, Title: title})
		}
	}
	return report
}
