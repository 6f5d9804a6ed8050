// Package navigation describes the pages of the front-end and who may visit them.
package navigation

import (
	"fmt"
	"strings"

	"github.com/skillflow360/skillflow/core/session"
)

const (
	LoginPath    = "/login"
	RegisterPath = "/register"
	ProfilePath  = "/profile"
	SettingsPath = "/settings"

	AdminHome   = "/competences"
	StudentHome = "/competence-student"
)

// Route is a page of the front-end. A route without roles is public.
type Route struct {
	Path  string         `json:"path"`
	Roles []session.Role `json:"roles,omitempty"`
}

func (r Route) Public() bool { return len(r.Roles) == 0 }

// Allows reports whether ident may visit the route.
func (r Route) Allows(ident session.Identity) bool {
	if r.Public() {
		return true
	}
	if !ident.Authenticated() {
		return false
	}
	for _, role := range r.Roles {
		if role == ident.Role {
			return true
		}
	}
	return false
}

var (
	anyRole     = []session.Role{session.RoleAdmin, session.RoleStudent}
	adminOnly   = []session.Role{session.RoleAdmin}
	studentOnly = []session.Role{session.RoleStudent}

	Routes = []Route{
		{Path: LoginPath},
		{Path: RegisterPath},
		{Path: ProfilePath, Roles: anyRole},
		{Path: SettingsPath, Roles: anyRole},

		{Path: "/competences", Roles: adminOnly},
		{Path: "/activities", Roles: adminOnly},
		{Path: "/evaluations", Roles: adminOnly},
		{Path: "/graphe-analyse", Roles: adminOnly},

		{Path: "/competence-student", Roles: studentOnly},
		{Path: "/activities-student", Roles: studentOnly},
		{Path: "/evaluations-student", Roles: studentOnly},
		{Path: "/student/evaluations/:id", Roles: studentOnly},
		{Path: "/student/submissions/:id/result", Roles: studentOnly},
		{Path: "/recommandations", Roles: studentOnly},
	}
)

// Match finds the route of a concrete path, ex: /student/evaluations/3.
func Match(path string) (Route, bool) {
	path = "/" + strings.Trim(path, "/")
	for _, r := range Routes {
		if matchPattern(r.Path, path) {
			return r, true
		}
	}
	return Route{}, false
}

func matchPattern(pattern, path string) bool {
	pp := strings.Split(pattern, "/")
	ps := strings.Split(path, "/")
	if len(pp) != len(ps) {
		return false
	}
	for i := range pp {
		if strings.HasPrefix(pp[i], ":") {
			if ps[i] == "" {
				return false
			}
			continue
		}
		if pp[i] != ps[i] {
			return false
		}
	}
	return true
}

// Resolve returns where ident ends up when asking for path:
// the path itself when allowed, the login page otherwise.
func Resolve(ident session.Identity, path string) string {
	r, ok := Match(path)
	if !ok || !r.Allows(ident) {
		return LoginPath
	}
	return path
}

// Home is the landing page after login.
func Home(role session.Role) string {
	switch role {
	case session.RoleAdmin:
		return AdminHome
	case session.RoleStudent:
		return StudentHome
	default:
		return LoginPath
	}
}

func EvaluationPath(id int64) string {
	return fmt.Sprintf("/student/evaluations/%d", id)
}

// MenuItem is an entry of the sidebar; each role lands on its own page.
type MenuItem struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Admin   string `json:"-"`
	Student string `json:"-"`
}

// MenuEntry is a MenuItem resolved for one role.
type MenuEntry struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

var menu = []MenuItem{
	{ID: "competences", Label: "Competences", Admin: "/competences", Student: "/competence-student"},
	{ID: "activities", Label: "Activities", Admin: "/activities", Student: "/activities-student"},
	{ID: "evaluations", Label: "Evaluations", Admin: "/evaluations", Student: "/evaluations-student"},
	{ID: "graphe", Label: "Graph & Analytics", Admin: "/graphe-analyse"},
	{ID: "recommandations", Label: "Recommendations", Student: "/recommandations"},
}

// Menu lists the sidebar entries visible to role, marking the one at current as active.
func Menu(role session.Role, current string) []MenuEntry {
	entries := make([]MenuEntry, 0, len(menu))
	for _, it := range menu {
		var path string
		switch role {
		case session.RoleAdmin:
			path = it.Admin
		case session.RoleStudent:
			path = it.Student
		}
		if path == "" {
			continue
		}
		entries = append(entries, MenuEntry{ID: it.ID, Label: it.Label, Path: path, Active: path == current})
	}
	return entries
}
