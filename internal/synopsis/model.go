package synopsis

import "time"

// ExtractionFields are the tender metadata fields pulled out of an RFP
// document, in the order they are presented to the model.
var ExtractionFields = []string{
	"tender_name",
	"customer_name",
	"submission_date",
	"prebid_meeting",
	"prebid_query_submission_date",
	"consultant_name",
	"consultant_email",
	"help_desk",
	"tender_fee",
	"tender_emd",
	"branches",
	"cbs_software",
	"dc",
	"dr",
}

// Synopsis is one tender summary. Fields holds the extraction fields keyed
// by their names in ExtractionFields; absent values are empty strings.
type Synopsis struct {
	ID         string            `json:"id"`
	UserID     string            `json:"-"`
	DocumentID string            `json:"documentId,omitempty"`
	Title      string            `json:"title"`
	Fields     map[string]string `json:"fields"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Field returns a single extraction field value, empty when unset.
func (s Synopsis) Field(name string) string {
	if s.Fields == nil {
		return ""
	}
	return s.Fields[name]
}

// Stats aggregates a user's synopses.
type Stats struct {
	Total              int    `json:"total_synopsis"`
	WithSubmissionDate int    `json:"with_submission_date"`
	WithTenderFee      int    `json:"with_tender_fee"`
	WithDocuments      int    `json:"with_documents"`
	EarliestSubmission string `json:"earliest_submission,omitempty"`
	LatestSubmission   string `json:"latest_submission,omitempty"`
}
