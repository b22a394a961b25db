package models

// UserDetail is the directory view of a user, fetched fresh for every fan-out.
type UserDetail struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	IsBuyer     bool     `json:"isBuyer"`
	Permissions []string `json:"permissions"`
}

// HasPermission reports whether the user holds perm.
func (u *UserDetail) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// UserDirectory is a snapshot of user details indexed by email.
type UserDirectory map[string]*UserDetail

// NewUserDirectory indexes details by email. Later duplicates win.
func NewUserDirectory(details []UserDetail) UserDirectory {
	dir := make(UserDirectory, len(details))
	for i := range details {
		dir[details[i].Email] = &details[i]
	}
	return dir
}

// Lookup returns the detail for email or nil.
func (d UserDirectory) Lookup(email string) *UserDetail {
	return d[email]
}

// IsBuyer reports whether email belongs to a known buyer.
func (d UserDirectory) IsBuyer(email string) bool {
	u := d[email]
	return u != nil && u.IsBuyer
}

// Name returns the display name of email or an empty string.
func (d UserDirectory) Name(email string) string {
	if u := d[email]; u != nil {
		return u.Name
	}
	return ""
}
