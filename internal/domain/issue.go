package domain

import "strings"

// Department is the civic body responsible for an issue.
type Department string

const (
	DepartmentBBMP   Department = "BBMP"
	DepartmentBESCOM Department = "BESCOM"
	DepartmentBWSSB  Department = "BWSSB"
	DepartmentBTP    Department = "BTP"
	DepartmentOther  Department = "Other"
)

var departments = []Department{
	DepartmentBBMP,
	DepartmentBESCOM,
	DepartmentBWSSB,
	DepartmentBTP,
	DepartmentOther,
}

// Departments lists the closed set of departments in display order.
func Departments() []Department {
	out := make([]Department, len(departments))
	copy(out, departments)
	return out
}

// ParseDepartment matches value case-insensitively against the known departments.
func ParseDepartment(value string) (Department, bool) {
	value = strings.TrimSpace(value)
	for _, d := range departments {
		if strings.EqualFold(value, string(d)) {
			return d, true
		}
	}
	return "", false
}

// NormalizeDepartment returns the canonical department for value, or DepartmentOther.
func NormalizeDepartment(value string) Department {
	if d, ok := ParseDepartment(value); ok {
		return d
	}
	return DepartmentOther
}

// CivicIssueDescription is the generated description of a photographed civic issue.
type CivicIssueDescription struct {
	Description         string     `json:"description" validate:"required"`
	Department          Department `json:"department"`
	LocationDescription string     `json:"locationDescription"`
}
