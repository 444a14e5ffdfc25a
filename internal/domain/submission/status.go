package submission

// Status is the validity state of a submission. A submission is created
// valid and is invalidated (and possibly re-validated) by analysts while the
// bundle is reworked.
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
)

// IsValid returns true if the status is one of the defined constants.
func (s Status) IsValid() bool {
	switch s {
	case StatusValid, StatusInvalid:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// ProgressStatus is the submission's stage within the tendering lifecycle.
// The canonical adjacency between stages is reference data served by the
// taxonomy service; the constants below are the known code set and their
// documented order, used as defaults and for validation of enum membership.
type ProgressStatus string

const (
	ProgressPreliminaryDraft ProgressStatus = "preliminaryDraft"
	ProgressDesign           ProgressStatus = "design"
	ProgressCallForTender    ProgressStatus = "callForTender"
	ProgressGranted          ProgressStatus = "granted"
	ProgressRealization      ProgressStatus = "realization"
	ProgressClosing          ProgressStatus = "closing"
)

// ProgressStatuses lists every stage in lifecycle order.
func ProgressStatuses() []ProgressStatus {
	return []ProgressStatus{
		ProgressPreliminaryDraft,
		ProgressDesign,
		ProgressCallForTender,
		ProgressGranted,
		ProgressRealization,
		ProgressClosing,
	}
}

// IsValid returns true if the progress status is a known stage code.
func (p ProgressStatus) IsValid() bool {
	for _, known := range ProgressStatuses() {
		if p == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (p ProgressStatus) String() string {
	return string(p)
}

// Next returns the immediate successor stage in the documented order, used
// as the fallback adjacency when the taxonomy carries none. The second
// return value is false for the final stage.
func (p ProgressStatus) Next() (ProgressStatus, bool) {
	stages := ProgressStatuses()
	for i, stage := range stages {
		if stage == p && i+1 < len(stages) {
			return stages[i+1], true
		}
	}
	return "", false
}

// StatusValidBlocked reports whether declaring the submission valid is
// blocked at this stage: once tendering or realization is underway the
// validity flag can no longer be raised.
func (p ProgressStatus) StatusValidBlocked() bool {
	switch p {
	case ProgressCallForTender, ProgressGranted, ProgressRealization, ProgressClosing:
		return true
	default:
		return false
	}
}

// RequirementEditsBlocked reports whether requirement create/update/delete
// operations are blocked at this stage.
func (p ProgressStatus) RequirementEditsBlocked() bool {
	switch p {
	case ProgressRealization, ProgressClosing:
		return true
	default:
		return false
	}
}

// BeforeTenderEditable reports whether a beforeTender-mentioned requirement
// is still editable at this stage.
func (p ProgressStatus) BeforeTenderEditable() bool {
	switch p {
	case ProgressPreliminaryDraft, ProgressDesign:
		return true
	default:
		return false
	}
}
