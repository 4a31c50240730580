package models

import (
	"fmt"
	"strings"

	"swimops/src/types"

	"github.com/google/uuid"
)

type FundingSource struct {
	ID                    uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name                  string    `json:"name,omitempty"`
	ShortName             string    `gorm:"uniqueIndex" json:"short_name,omitempty"`
	AllowedEmailDomains   string    `json:"allowed_email_domains,omitempty"`
	AssessmentSessions    int       `gorm:"default:1" json:"assessment_sessions"`
	LessonsPerPO          int       `gorm:"default:12" json:"lessons_per_po"`
	PODurationMonths      int       `gorm:"default:3" json:"po_duration_months"`
	RenewalAlertThreshold int       `gorm:"default:11" json:"renewal_alert_threshold"`
	ContactEmail          *string   `json:"contact_email,omitempty"`
	ContactPhone          *string   `json:"contact_phone,omitempty"`
	Active                bool      `gorm:"default:true" json:"active"`

	types.Timestamps
}

// Domains splits the stored comma-separated list, dropping empty entries.
func (f *FundingSource) Domains() []string {
	var out []string
	for _, d := range strings.Split(f.AllowedEmailDomains, ",") {
		d = strings.TrimSpace(d)
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// Validate mirrors the intake form rules. Returns one message per failing
// field so the client can render them inline.
func (f *FundingSource) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(f.ShortName) == "" {
		errs["short_name"] = "Short name is required"
	}
	for _, d := range f.Domains() {
		if !strings.HasPrefix(d, "@") {
			errs["allowed_email_domains"] = "Email domains must start with @ (e.g., @regional-center.net, @funding.org)"
			break
		}
	}
	if f.AssessmentSessions < 0 {
		errs["assessment_sessions"] = "Assessment sessions cannot be negative"
	}
	if f.LessonsPerPO <= 0 {
		errs["lessons_per_po"] = "Lessons per PO must be greater than 0"
	}
	if f.PODurationMonths <= 0 {
		errs["po_duration_months"] = "PO duration must be greater than 0"
	}
	if f.RenewalAlertThreshold < 0 || f.RenewalAlertThreshold > f.LessonsPerPO {
		errs["renewal_alert_threshold"] = fmt.Sprintf("Renewal alert threshold must be between 0 and %d", f.LessonsPerPO)
	}
	return errs
}

// MatchesEmail reports whether an email is covered by the allowed domains.
// An empty domain list accepts any address.
func (f *FundingSource) MatchesEmail(email string) bool {
	domains := f.Domains()
	if len(domains) == 0 {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	suffix := strings.ToLower(email[at:])
	for _, d := range domains {
		if strings.ToLower(d) == suffix {
			return true
		}
	}
	return false
}
