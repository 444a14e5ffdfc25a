package sqlite

import (
	"time"

	"github.com/civiplan/submission-service/internal/domain"
	"github.com/civiplan/submission-service/internal/domain/submission"
)

// Document types for the JSON columns. Kept separate from the domain types
// so the stored shape stays stable when the aggregate evolves.

type authorDoc struct {
	UserName    string `json:"userName"`
	DisplayName string `json:"displayName"`
}

func newAuthorDoc(a domain.Author) authorDoc {
	return authorDoc{UserName: a.UserName, DisplayName: a.DisplayName}
}

func (d authorDoc) toDomain() domain.Author {
	return domain.Author{UserName: d.UserName, DisplayName: d.DisplayName}
}

type auditDoc struct {
	CreatedAt      time.Time `json:"createdAt"`
	CreatedBy      authorDoc `json:"createdBy"`
	LastModifiedAt time.Time `json:"lastModifiedAt,omitzero"`
	LastModifiedBy authorDoc `json:"lastModifiedBy,omitempty"`
}

func newAuditDoc(a domain.Audit) auditDoc {
	return auditDoc{
		CreatedAt:      a.CreatedAt,
		CreatedBy:      newAuthorDoc(a.CreatedBy),
		LastModifiedAt: a.LastModifiedAt,
		LastModifiedBy: newAuthorDoc(a.LastModifiedBy),
	}
}

func (d auditDoc) toDomain() domain.Audit {
	return domain.Audit{
		CreatedAt:      d.CreatedAt,
		CreatedBy:      d.CreatedBy.toDomain(),
		LastModifiedAt: d.LastModifiedAt,
		LastModifiedBy: d.LastModifiedBy.toDomain(),
	}
}

type requirementDoc struct {
	ID                    string   `json:"id"`
	PlanningRequirementID string   `json:"planningRequirementId,omitempty"`
	ProjectIDs            []string `json:"projectIds"`
	Mention               string   `json:"mention"`
	TypeID                string   `json:"typeId"`
	SubtypeID             string   `json:"subtypeId"`
	Text                  string   `json:"text"`
	IsDeprecated          bool     `json:"isDeprecated"`
	Audit                 auditDoc `json:"audit"`
}

func requirementDocs(reqs []submission.Requirement) []requirementDoc {
	docs := make([]requirementDoc, len(reqs))
	for i, r := range reqs {
		docs[i] = requirementDoc{
			ID:                    r.ID,
			PlanningRequirementID: r.PlanningRequirementID,
			ProjectIDs:            r.ProjectIDs,
			Mention:               string(r.Mention),
			TypeID:                r.TypeID,
			SubtypeID:             r.SubtypeID,
			Text:                  r.Text,
			IsDeprecated:          r.IsDeprecated,
			Audit:                 newAuditDoc(r.Audit),
		}
	}
	return docs
}

func requirementsFromDocs(docs []requirementDoc) []submission.Requirement {
	if len(docs) == 0 {
		return nil
	}
	reqs := make([]submission.Requirement, len(docs))
	for i, d := range docs {
		reqs[i] = submission.Requirement{
			ID:                    d.ID,
			PlanningRequirementID: d.PlanningRequirementID,
			ProjectIDs:            d.ProjectIDs,
			Mention:               submission.Mention(d.Mention),
			TypeID:                d.TypeID,
			SubtypeID:             d.SubtypeID,
			Text:                  d.Text,
			IsDeprecated:          d.IsDeprecated,
			Audit:                 d.Audit.toDomain(),
		}
	}
	return reqs
}

type statusHistoryDoc struct {
	Status    string    `json:"status"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy authorDoc `json:"createdBy"`
}

func statusHistoryDocs(items []submission.StatusHistoryItem) []statusHistoryDoc {
	docs := make([]statusHistoryDoc, len(items))
	for i, item := range items {
		docs[i] = statusHistoryDoc{
			Status:    string(item.Status),
			Comment:   item.Comment,
			CreatedAt: item.CreatedAt,
			CreatedBy: newAuthorDoc(item.CreatedBy),
		}
	}
	return docs
}

func statusHistoryFromDocs(docs []statusHistoryDoc) []submission.StatusHistoryItem {
	if len(docs) == 0 {
		return nil
	}
	items := make([]submission.StatusHistoryItem, len(docs))
	for i, d := range docs {
		items[i] = submission.StatusHistoryItem{
			Status:    submission.Status(d.Status),
			Comment:   d.Comment,
			CreatedAt: d.CreatedAt,
			CreatedBy: d.CreatedBy.toDomain(),
		}
	}
	return items
}

type progressHistoryDoc struct {
	ProgressStatus string    `json:"progressStatus"`
	ChangeDate     time.Time `json:"changeDate"`
	CreatedAt      time.Time `json:"createdAt"`
	CreatedBy      authorDoc `json:"createdBy"`
}

func progressHistoryDocs(items []submission.ProgressHistoryItem) []progressHistoryDoc {
	docs := make([]progressHistoryDoc, len(items))
	for i, item := range items {
		docs[i] = progressHistoryDoc{
			ProgressStatus: string(item.ProgressStatus),
			ChangeDate:     item.ChangeDate,
			CreatedAt:      item.CreatedAt,
			CreatedBy:      newAuthorDoc(item.CreatedBy),
		}
	}
	return docs
}

func progressHistoryFromDocs(docs []progressHistoryDoc) []submission.ProgressHistoryItem {
	if len(docs) == 0 {
		return nil
	}
	items := make([]submission.ProgressHistoryItem, len(docs))
	for i, d := range docs {
		items[i] = submission.ProgressHistoryItem{
			ProgressStatus: submission.ProgressStatus(d.ProgressStatus),
			ChangeDate:     d.ChangeDate,
			CreatedAt:      d.CreatedAt,
			CreatedBy:      d.CreatedBy.toDomain(),
		}
	}
	return items
}
