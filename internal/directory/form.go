package directory

import (
	"regexp"
	"strings"
)

var (
	contactPattern = regexp.MustCompile(`^[0-9]{10,15}$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// formFields is the order fields appear on the form.
var formFields = []string{"name", "address", "city", "state", "contact", "email_id"}

// FormInput mirrors the registration form.
type FormInput struct {
	Name    string
	Address string
	City    string
	State   string
	Contact string
	EmailID string
}

// ValidateForm runs the checks the form applies before submitting. The
// server only enforces presence; the formats here are advisory. Keys are the
// form field names.
func ValidateForm(in FormInput) map[string]string {
	problems := make(map[string]string)

	required := []struct{ field, value, label string }{
		{"name", in.Name, "School name"},
		{"address", in.Address, "Address"},
		{"city", in.City, "City"},
		{"state", in.State, "State"},
		{"contact", in.Contact, "Contact number"},
		{"email_id", in.EmailID, "Email"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems[r.field] = r.label + " is required"
		}
	}

	if _, missing := problems["contact"]; !missing && !contactPattern.MatchString(in.Contact) {
		problems["contact"] = "Enter a valid contact number"
	}
	if _, missing := problems["email_id"]; !missing && !emailPattern.MatchString(in.EmailID) {
		problems["email_id"] = "Enter a valid email address"
	}

	if len(problems) == 0 {
		return nil
	}
	return problems
}
