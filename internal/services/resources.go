package services

import "github.com/tunaskarier/portal-api/internal/models"

// Resource describes one paginated collection screen: where it lives
// upstream, which string fields the page-local search scans, and which
// roles may see it.
type Resource struct {
	Name         string
	Path         string
	SearchFields []string
	MentorScoped bool // mentor-facing API calls run under the tighter timeout
	Roles        []models.Role
}

// resources is the portal's screen catalog. Search fields mirror the
// columns each list screen displays.
var resources = []Resource{
	{
		Name:         "admins",
		Path:         "/admins",
		SearchFields: []string{"name", "email"},
		Roles:        []models.Role{models.RoleAdmin},
	},
	{
		Name:         "students",
		Path:         "/students",
		SearchFields: []string{"name", "email", "university", "major"},
		Roles:        []models.Role{models.RoleAdmin, models.RoleMentor},
	},
	{
		Name:         "companies",
		Path:         "/companies",
		SearchFields: []string{"name", "email", "city", "industry"},
		Roles:        []models.Role{models.RoleAdmin},
	},
	{
		Name:         "mentors",
		Path:         "/mentors",
		SearchFields: []string{"name", "email", "expertise"},
		MentorScoped: true,
		Roles:        []models.Role{models.RoleAdmin},
	},
	{
		Name:         "programs",
		Path:         "/programs",
		SearchFields: []string{"title", "description", "company_name"},
		Roles:        []models.Role{models.RoleAdmin, models.RoleCompany, models.RoleStudent},
	},
	{
		Name:         "applications",
		Path:         "/applications",
		SearchFields: []string{"student_name", "program_title", "status"},
		Roles:        []models.Role{models.RoleAdmin, models.RoleCompany, models.RoleMentor, models.RoleStudent},
	},
}

// FindResource returns the resource by name if the role may see it.
func FindResource(name string, role models.Role) (Resource, bool) {
	for _, res := range resources {
		if res.Name != name {
			continue
		}
		for _, r := range res.Roles {
			if r == role {
				return res, true
			}
		}
	}
	return Resource{}, false
}

// ResourcesForRole lists the collection screens visible to a role.
func ResourcesForRole(role models.Role) []Resource {
	out := []Resource{}
	for _, res := range resources {
		for _, r := range res.Roles {
			if r == role {
				out = append(out, res)
				break
			}
		}
	}
	return out
}
