package projects

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	versionPartSeparatorConstant           = ","
	versionUpperBoundPrefixConstant        = "<"
	maximumVersionPartsConstant            = 2
	unsupportedVersionTemplateConstant     = "unsupported version string: %s"
	unsupportedVersionPartTemplateConstant = "unsupported version string part: %s"
)

var versionPartPattern = regexp.MustCompile(`^(<[=]?|>[=]?|==)([0-9]+)[.]?([0-9]+|)[.]?([0-9]+|)[.-]?([0-9]+|)$`)

// ErrUnsupportedVersion indicates a version requirement devtools cannot interpret.
var ErrUnsupportedVersion = errors.New("unsupported version requirement")

// VersionConstraint is one comparison of a version requirement, such as ">=1.2".
type VersionConstraint struct {
	Operator   string
	Components []string
}

// String renders the constraint in requirement notation.
func (constraint VersionConstraint) String() string {
	return constraint.Operator + strings.Join(constraint.Components, ".")
}

// VersionRequirement is a lower constraint optionally followed by an upper "<" constraint.
type VersionRequirement struct {
	raw         string
	Constraints []VersionConstraint
}

// ParseVersionRequirement parses a requirement such as ">=20180630" or ">=1.2,<2".
// The empty string yields an empty requirement.
func ParseVersionRequirement(rawRequirement string) (VersionRequirement, error) {
	trimmedRequirement := strings.TrimSpace(rawRequirement)
	if len(trimmedRequirement) == 0 {
		return VersionRequirement{}, nil
	}

	requirementParts := strings.Split(trimmedRequirement, versionPartSeparatorConstant)
	if len(requirementParts) > maximumVersionPartsConstant {
		return VersionRequirement{}, fmt.Errorf("%w: "+unsupportedVersionTemplateConstant, ErrUnsupportedVersion, rawRequirement)
	}

	constraints := make([]VersionConstraint, 0, len(requirementParts))
	for partIndex, requirementPart := range requirementParts {
		trimmedPart := strings.TrimSpace(requirementPart)
		if partIndex == 1 && !strings.HasPrefix(trimmedPart, versionUpperBoundPrefixConstant) {
			return VersionRequirement{}, fmt.Errorf("%w: "+unsupportedVersionPartTemplateConstant, ErrUnsupportedVersion, trimmedPart)
		}

		matches := versionPartPattern.FindStringSubmatch(trimmedPart)
		if matches == nil {
			return VersionRequirement{}, fmt.Errorf("%w: "+unsupportedVersionPartTemplateConstant, ErrUnsupportedVersion, trimmedPart)
		}

		constraint := VersionConstraint{Operator: matches[1]}
		for _, component := range matches[2:] {
			if len(component) > 0 {
				constraint.Components = append(constraint.Components, component)
			}
		}
		constraints = append(constraints, constraint)
	}

	return VersionRequirement{raw: trimmedRequirement, Constraints: constraints}, nil
}

// String returns the requirement as it was written.
func (requirement VersionRequirement) String() string {
	return requirement.raw
}

// IsEmpty reports whether no constraint is present.
func (requirement VersionRequirement) IsEmpty() bool {
	return len(requirement.Constraints) == 0
}
