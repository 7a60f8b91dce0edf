package domain

// reportOrder positions each status in the forward-only lifecycle.
var reportOrder = map[ReportStatus]int{
	ReportStatusDraft:     0,
	ReportStatusCompleted: 1,
	ReportStatusSent:      2,
	ReportStatusArchived:  3,
}

// CanTransition reports whether the report may move to the target status.
// The lifecycle advances one step at a time and never backwards; archiving
// is allowed from any earlier status.
func (r Report) CanTransition(to ReportStatus) bool {
	from, okFrom := reportOrder[r.Status]
	dest, okTo := reportOrder[to]
	if !okFrom || !okTo {
		return false
	}
	if to == ReportStatusArchived {
		return r.Status != ReportStatusArchived
	}
	return dest == from+1
}

// Editable reports whether report content may still change. Findings and
// photos are frozen once the report leaves draft.
func (r Report) Editable() bool {
	return r.Status == ReportStatusDraft
}

// Completable reports whether the report carries enough substance to be
// marked completed.
func (r Report) Completable() bool {
	return len(r.Findings) > 0 || r.Summary != ""
}

// PubliclyVisible reports whether the report may be served through a share
// link. Draft and archived reports are never exposed.
func (r Report) PubliclyVisible() bool {
	if r.ShareToken == nil || *r.ShareToken == "" {
		return false
	}
	return r.Status == ReportStatusCompleted || r.Status == ReportStatusSent
}
