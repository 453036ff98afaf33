package model

import "fmt"

// AccountSource tags which table an account lives in.
type AccountSource string

const (
	// SourceUser covers staff, registrar and student accounts (user_accounts).
	SourceUser AccountSource = "user"
	// SourceProf covers instructor accounts (prof_table).
	SourceProf AccountSource = "prof"
)

// ParseAccountSource resolves the boundary value of a "type" parameter.
func ParseAccountSource(s string) (AccountSource, error) {
	if src := AccountSource(s); src.Valid() {
		return src, nil
	}
	return "", fmt.Errorf("invalid account source %q", s)
}

func (s AccountSource) Valid() bool {
	return s == SourceUser || s == SourceProf
}

// Account is the unified identity resolved from either account source. Both
// variants share the fields the login flow reads (hash, status, role, OTP flag);
// Source is the variant tag and the stores pick per-source SQL from it.
// Instructor accounts carry no department and no student number, and only they
// fill the profile fields below.
type Account struct {
	AccountID     string        `json:"account_id"`
	PersonID      string        `json:"person_id"`
	EmployeeID    string        `json:"employee_id,omitempty"`
	Email         string        `json:"email"`
	StudentNumber string        `json:"student_number,omitempty"`
	PasswordHash  string        `json:"-"`
	Role          string        `json:"role"`
	DepartmentID  *int64        `json:"department_id,omitempty"`
	Department    string        `json:"department,omitempty"`
	Active        bool          `json:"active"`
	RequireOTP    bool          `json:"require_otp"`
	Source        AccountSource `json:"source"`

	// Instructor profile fields.
	FirstName    string `json:"fname,omitempty"`
	MiddleName   string `json:"mname,omitempty"`
	LastName     string `json:"lname,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}
