package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validFundingSource() FundingSource {
	return FundingSource{
		Name:                  "Valley Mountain Regional Center",
		ShortName:             "vmrc",
		AllowedEmailDomains:   "@vmrc.net, @vmrc.org",
		AssessmentSessions:    1,
		LessonsPerPO:          12,
		PODurationMonths:      3,
		RenewalAlertThreshold: 11,
		Active:                true,
	}
}

func TestFundingSourceValidate(t *testing.T) {
	fs := validFundingSource()
	assert.Empty(t, fs.Validate())

	t.Run("missing name and short name", func(t *testing.T) {
		fs := validFundingSource()
		fs.Name = "  "
		fs.ShortName = ""
		errs := fs.Validate()
		assert.Equal(t, "Name is required", errs["name"])
		assert.Equal(t, "Short name is required", errs["short_name"])
	})

	t.Run("domains must start with @", func(t *testing.T) {
		fs := validFundingSource()
		fs.AllowedEmailDomains = "@vmrc.net, vmrc.org"
		errs := fs.Validate()
		assert.Equal(t,
			"Email domains must start with @ (e.g., @regional-center.net, @funding.org)",
			errs["allowed_email_domains"])
	})

	t.Run("numeric bounds", func(t *testing.T) {
		fs := validFundingSource()
		fs.AssessmentSessions = -1
		fs.LessonsPerPO = 0
		fs.PODurationMonths = 0
		errs := fs.Validate()
		assert.Contains(t, errs, "assessment_sessions")
		assert.Contains(t, errs, "lessons_per_po")
		assert.Contains(t, errs, "po_duration_months")
	})

	t.Run("renewal threshold bounded by lessons per PO", func(t *testing.T) {
		fs := validFundingSource()
		fs.RenewalAlertThreshold = 13
		errs := fs.Validate()
		assert.Equal(t, "Renewal alert threshold must be between 0 and 12", errs["renewal_alert_threshold"])
	})
}

func TestFundingSourceDomains(t *testing.T) {
	fs := FundingSource{AllowedEmailDomains: " @vmrc.net ,, @vmrc.org "}
	assert.Equal(t, []string{"@vmrc.net", "@vmrc.org"}, fs.Domains())

	fs.AllowedEmailDomains = ""
	assert.Empty(t, fs.Domains())
}

func TestFundingSourceMatchesEmail(t *testing.T) {
	fs := FundingSource{AllowedEmailDomains: "@vmrc.net, @vmrc.org"}
	assert.True(t, fs.MatchesEmail("coordinator@vmrc.net"))
	assert.True(t, fs.MatchesEmail("Coordinator@VMRC.ORG"))
	assert.False(t, fs.MatchesEmail("coordinator@gmail.com"))
	assert.False(t, fs.MatchesEmail("no-at-sign"))

	open := FundingSource{}
	assert.True(t, open.MatchesEmail("anyone@anywhere.com"), "an empty list accepts any address")
}
