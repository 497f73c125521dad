package domain

// Project represents a project time entries are booked against.
type Project struct {
	ID             int64
	OrganizationID int64
	Name           string
}

// NewProject creates a new Project with the given name.
func NewProject(organizationID int64, name string) Project {
	return Project{
		OrganizationID: organizationID,
		Name:           name,
	}
}

// IsValid checks if the project has valid data.
func (p Project) IsValid() bool {
	return p.Name != "" && p.OrganizationID > 0
}

// String returns the project name for display purposes.
func (p Project) String() string {
	return p.Name
}

// Identity is the authenticated caller every persistence call is made for.
type Identity struct {
	UserID         int64
	OrganizationID int64
}
