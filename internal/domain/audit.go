package domain

import "time"

// Author identifies the user recorded on an audit stamp.
type Author struct {
	UserName    string
	DisplayName string
}

// Audit carries creation and last-modification metadata for an aggregate or
// one of its history entries. LastModifiedAt/By stay zero until the first
// mutation after creation.
type Audit struct {
	CreatedAt      time.Time
	CreatedBy      Author
	LastModifiedAt time.Time
	LastModifiedBy Author
}

// NewAudit returns an audit stamp for a freshly created entity.
func NewAudit(at time.Time, by Author) Audit {
	return Audit{CreatedAt: at, CreatedBy: by}
}

// Touch records a modification on the stamp.
func (a *Audit) Touch(at time.Time, by Author) {
	a.LastModifiedAt = at
	a.LastModifiedBy = by
}
