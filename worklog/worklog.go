package worklog

// Entry is one recorded unit of time as fetched from the tracker. Field order
// defines the JSON key order of raw exports.
type Entry struct {
	IssueKey         string `json:"issueKey"`
	IssueSummary     string `json:"issueSummary"`
	Author           string `json:"author"`
	TimeSpent        string `json:"timeSpent"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	Comment          string `json:"comment"`
	Started          string `json:"started"`
	Created          string `json:"created"`

	// AuthorEmail is used for filtering only and never exported.
	AuthorEmail string `json:"-"`
}
