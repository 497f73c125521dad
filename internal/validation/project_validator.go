package validation

import (
	"fmt"
	"strings"
)

type projectInput struct {
	OrganizationID int64  `field:"organization_id" validate:"gt=0"`
	Name           string `field:"project_name" validate:"notblank,singleline"`
}

// ValidateProject validates a project for creation
func (v *Validator) ValidateProject(organizationID int64, name string) error {
	ve := NewValidationError()
	ve.addValidatorErrors(validate.Struct(projectInput{OrganizationID: organizationID, Name: name}), "")

	trimmed := strings.TrimSpace(name)
	if trimmed != "" {
		ve.addValidatorErrors(validate.Var(trimmed, fmt.Sprintf("max=%d", v.getProjectNameMaxLength())), "project_name")
	}
	return ve.OrNil()
}
