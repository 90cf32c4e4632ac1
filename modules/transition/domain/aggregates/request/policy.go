package request

// CategoryRule is the per-category policy: which fields a submission must
// carry, which additional fields auto-approval requires, and whether the
// category may be auto-approved at all. The rule set is data so deployments
// can override it without code changes.
type CategoryRule struct {
	Submission           []Field
	AutoApproval         []Field
	AutoApprovalEligible bool
}

// Policy maps each requester category to its rule.
type Policy map[Category]CategoryRule

// DefaultPolicy returns the rule set shipped with the engine. Owners and
// tenants qualify for auto-approval once their full payload is present;
// holiday-home operators always go through manual review.
func DefaultPolicy() Policy {
	return Policy{
		CategoryOwner: {
			Submission:           []Field{FieldEmail, FieldPhone},
			AutoApproval:         []Field{FieldMoveDate},
			AutoApprovalEligible: true,
		},
		CategoryTenant: {
			Submission:           []Field{FieldEmail, FieldPhone, FieldLeaseStart, FieldLeaseEnd},
			AutoApproval:         []Field{FieldContractNumber},
			AutoApprovalEligible: true,
		},
		CategoryHHOCompany: {
			Submission:   []Field{FieldEmail, FieldCompanyName, FieldTradeLicenseNumber, FieldTradeLicenseExpiry},
			AutoApproval: nil,
		},
		CategoryHHOOwner: {
			Submission:   []Field{FieldEmail, FieldPermitNumber, FieldPermitExpiry},
			AutoApproval: nil,
		},
	}
}

// RequiredFields returns the submission field set for the category.
func (p Policy) RequiredFields(category Category) []Field {
	return p[category].Submission
}

// Validate checks a detail payload against the submission rule for its
// category. A missing rule means the category is unknown.
func (p Policy) Validate(d Detail) error {
	rule, ok := p[d.Category()]
	if !ok {
		return NewValidationError(string(d.Category()), "unknown request category")
	}
	values := d.Values()
	for _, f := range rule.Submission {
		if values[f] == "" {
			return NewValidationError(string(f), "required field is missing")
		}
	}
	return nil
}

// IsAutoApprovable reports whether a valid submission qualifies for
// immediate approval: the category must be eligible and every
// auto-approval field present on top of the submission set.
func (p Policy) IsAutoApprovable(d Detail) bool {
	rule, ok := p[d.Category()]
	if !ok || !rule.AutoApprovalEligible {
		return false
	}
	values := d.Values()
	for _, f := range rule.AutoApproval {
		if values[f] == "" {
			return false
		}
	}
	return true
}
